package protocol

// Frame is one decoded device → host record.
type Frame struct {
	// Start marks the first record of a logical message
	Start bool

	// End marks the last record of a logical message
	End bool

	// Reserved is carried through unchanged
	Reserved bool

	// Command echoes the command class (0-31)
	Command uint8

	// Sequence is the 3-bit record counter (0-7)
	Sequence uint8

	// Length is the declared record length including the header (0-31)
	Length uint8

	// Payload is the record body, normally Length-HeaderSize bytes
	Payload []byte
}

// ExpectedPayload returns the payload size declared by the header.
func (f Frame) ExpectedPayload() int {
	n := int(f.Length) - HeaderSize
	if n < 0 {
		return 0
	}
	return n
}

// Short reports whether the payload is shorter than the header declares.
func (f Frame) Short() bool {
	return len(f.Payload) < f.ExpectedPayload()
}

// Decode parses a raw record into a Frame.
//
// Record structure:
//
//	[FLAGS|COMMAND][SEQUENCE|LENGTH][PAYLOAD(LENGTH-2)]
//
// Bytes beyond the declared length are ignored. There is no checksum; the
// serial link's own error detection is the only integrity check.
func Decode(raw []byte) (Frame, error) {
	if len(raw) < HeaderSize {
		return Frame{}, ErrHeaderTooShort
	}

	b0, b1 := raw[0], raw[1]
	f := Frame{
		Start:    b0&startBit != 0,
		End:      b0&endBit != 0,
		Reserved: b0&reservedBit != 0,
		Command:  b0 & commandMask,
		Sequence: (b1 >> sequenceShift) & sequenceMask,
		Length:   b1 & lengthMask,
	}

	if int(f.Length) < HeaderSize {
		return Frame{}, ErrInvalidLength
	}

	if len(raw) < int(f.Length) {
		return Frame{}, &LengthMismatchError{Declared: int(f.Length), Actual: len(raw)}
	}

	f.Payload = make([]byte, int(f.Length)-HeaderSize)
	copy(f.Payload, raw[HeaderSize:f.Length])

	return f, nil
}

// declaredLength extracts the length field from a header without validating it.
func declaredLength(header []byte) int {
	return int(header[1] & lengthMask)
}
