package protocol

import "time"

// Header layout of a device → host record.
//
//	byte0: bit7=start  bit6=end  bit5=reserved  bits4-0=command
//	byte1: bits7-5=sequence      bits4-0=length
const (
	// HeaderSize is the size of the record header in bytes
	HeaderSize = 2

	// MaxRecordSize is the largest length the 5-bit length field can declare
	MaxRecordSize = 0x1F

	// MaxPayloadSize is the largest payload a single record can carry
	MaxPayloadSize = MaxRecordSize - HeaderSize

	startBit      = 0x80
	endBit        = 0x40
	reservedBit   = 0x20
	commandMask   = 0x1F
	sequenceMask  = 0x07
	sequenceShift = 5
	lengthMask    = 0x1F
)

// SequenceModulus is the number of distinct values of the 3-bit sequence field.
const SequenceModulus = 8

// Serial link parameters used by the instrument.
const (
	// DefaultBaudRate is the fixed line speed of the device (8N1)
	DefaultBaudRate = 115200

	// DefaultDataBits is the number of data bits per character
	DefaultDataBits = 8

	// DefaultReadTimeout is the bounded wait of a single transport read
	DefaultReadTimeout = time.Second
)

// LineEnding terminates every outbound command.
const LineEnding = "\r\n"

// Command names understood by the device firmware.
// The text is opaque to this package beyond being terminated with LineEnding.
const (
	// CmdSerialNumber reads the device serial number
	CmdSerialNumber = "sn"

	// CmdVersion reads the firmware and hardware version
	CmdVersion = "version"

	// CmdColor reads the current color sample
	CmdColor = "color"

	// CmdRead reads the ambient light level
	CmdRead = "read"

	// CmdLevel reads or, with an argument, sets the blank-frame detection level
	CmdLevel = "level"

	// CmdSet selects a calibration reference, followed by red, green or blue
	CmdSet = "set"

	// CmdRun starts a blank-frame run
	CmdRun = "run"

	// CmdStop stops a blank-frame run
	CmdStop = "stop"

	// CmdReset performs a soft reset
	CmdReset = "reset"

	// CmdStatus dumps the multi-line status report (text mode)
	CmdStatus = "status"

	// CmdStream begins a continuous stream of readings
	CmdStream = "stream"
)

// Arguments used with the command names above.
const (
	// ArgBootloader makes CmdReset restart into the bootloader
	ArgBootloader = "-b"

	// StreamMode is the stream mode used for continuous readings
	StreamMode = "3"

	RefRed   = "red"
	RefGreen = "green"
	RefBlue  = "blue"
)
