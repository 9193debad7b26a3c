package protocol

import "io"

// FrameReader pulls one raw record (header + payload) from r.
// It returns ErrNoFrame when the transport's bounded wait elapses before a
// usable record arrived; any other error comes from r itself.
//
// r follows serial-port semantics: Read waits up to a bounded timeout and
// returns (0, nil) when nothing arrived.
type FrameReader interface {
	ReadRecord(r io.Reader) ([]byte, error)
}

// RetryingReader keeps reading until the declared payload is assembled.
// A read that returns no bytes abandons the record. Used by the command path.
type RetryingReader struct{}

// ReadRecord implements FrameReader.
func (RetryingReader) ReadRecord(r io.Reader) ([]byte, error) {
	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	remaining := payloadSize(header)
	record := make([]byte, HeaderSize, HeaderSize+remaining)
	copy(record, header)

	buf := make([]byte, remaining)
	got := 0
	for got < remaining {
		n, err := r.Read(buf[got:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrNoFrame
		}
		got += n
	}

	return append(record, buf...), nil
}

// BlockReader issues exactly one payload read and drops the record if it comes
// up short. Used by the polling loops, which must not stall on a partial record.
type BlockReader struct{}

// ReadRecord implements FrameReader.
func (BlockReader) ReadRecord(r io.Reader) ([]byte, error) {
	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	remaining := payloadSize(header)
	record := make([]byte, HeaderSize+remaining)
	copy(record, header)
	if remaining == 0 {
		return record, nil
	}

	n, err := r.Read(record[HeaderSize:])
	if err != nil {
		return nil, err
	}
	if n < remaining {
		return nil, ErrNoFrame
	}

	return record, nil
}

// readHeader reads exactly HeaderSize bytes, tolerating a header split across reads.
func readHeader(r io.Reader) ([]byte, error) {
	header := make([]byte, HeaderSize)
	got := 0
	for got < HeaderSize {
		n, err := r.Read(header[got:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrNoFrame
		}
		got += n
	}
	return header, nil
}

// payloadSize returns the number of bytes still owed after the header.
// A declared length below the header size owes nothing; Decode rejects it.
func payloadSize(header []byte) int {
	n := declaredLength(header) - HeaderSize
	if n < 0 {
		return 0
	}
	return n
}
