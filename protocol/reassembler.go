package protocol

// Reassembler stitches multi-record payloads into logical messages.
//
// A Reassembler holds the progress of exactly one logical channel; give the
// command path and a streaming path their own values. The zero value is ready
// to use. It is not safe for concurrent use.
type Reassembler struct {
	// SequenceCheck enables validation that each continuation record carries
	// the sequence number following the previous record.
	SequenceCheck bool

	buf     []byte
	lastSeq uint8
	active  bool
}

// Feed adds one record to the message in progress.
//
// A record with Start set replaces anything buffered; other records append.
// The message is flushed when the record has End set, or when its payload is
// shorter than declared, which is taken as an implicit end of message.
//
// Feed returns the flushed message and true, or false if more records are
// needed. With SequenceCheck enabled, a continuation record that skips a
// sequence number discards the partial message and returns a *SequenceError.
func (a *Reassembler) Feed(f Frame) (Message, bool, error) {
	if f.Start {
		a.buf = append(a.buf[:0], f.Payload...)
	} else {
		if a.SequenceCheck && a.active {
			want := (a.lastSeq + 1) % SequenceModulus
			if f.Sequence != want {
				dropped := len(a.buf)
				a.Reset()
				return Message{}, false, &SequenceError{
					Expected:  want,
					Actual:    f.Sequence,
					Discarded: dropped,
				}
			}
		}
		a.buf = append(a.buf, f.Payload...)
	}
	a.lastSeq = f.Sequence
	a.active = true

	if !f.End && !f.Short() {
		return Message{}, false, nil
	}

	msg := NewMessage(a.buf, f.Command)
	a.Reset()
	return msg, true, nil
}

// Pending returns the number of payload bytes buffered for the message in progress.
func (a *Reassembler) Pending() int {
	return len(a.buf)
}

// Reset discards any partial message.
func (a *Reassembler) Reset() {
	a.buf = a.buf[:0]
	a.active = false
}
