// Package protocol implements the wire protocol of the MCCI Model 2450 BACK
// (Brightness And Color Kit).
//
// The host sends plain ASCII commands terminated with CR-LF. The device answers
// with short binary records that carry pieces of a logical message.
//
// # Record Format
//
// Each record is a 2-byte header followed by a payload:
//
//	byte0: bit7=start  bit6=end  bit5=reserved  bits4-0=command
//	byte1: bits7-5=sequence      bits4-0=length
//	payload: length-2 bytes
//
// Where:
//   - length counts the whole record, header included (at most 31)
//   - sequence is a 3-bit counter
//   - there is no checksum
//
// # Decoding
//
// Use Decode to turn one raw record into a Frame:
//
//	f, err := protocol.Decode(raw)
//	if protocol.IsDecodeError(err) {
//	    // drop the record and keep polling
//	}
//
// # Reading Records
//
// Two FrameReader strategies pull records off a serial transport:
//   - RetryingReader waits until the whole payload has arrived
//   - BlockReader reads the payload once and drops the record if it is short
//
// Both return ErrNoFrame when the transport's bounded wait expires.
//
// # Reassembly
//
// A Reassembler accumulates payloads until a record with the end flag, or a
// short record, completes the message:
//
//	var asm protocol.Reassembler
//	msg, done, err := asm.Feed(f)
//	if done && msg.IsBlank() {
//	    blank++
//	}
//
// Messages made of 7-bit ASCII are KindText and are whitespace trimmed;
// anything else is KindRaw and renders as hex.
//
// # Commands
//
// Use FormatCommand and the Build* helpers to produce outbound command lines:
//
//	cmd := protocol.FormatCommand(protocol.CmdVersion) // "version\r\n"
//	cmd, err := protocol.BuildSetLevelCmd(40)          // "level 40\r\n"
package protocol
