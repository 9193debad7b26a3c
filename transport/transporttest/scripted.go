// Package transporttest provides a scripted in-memory transport.Transport
// that plays back device output, for tests and examples.
package transporttest

import (
	"strings"
	"sync"

	"github.com/moffa90/go-model2450/protocol"
	"github.com/moffa90/go-model2450/transport"
)

// Scripted plays back queued inbound chunks and records outbound writes.
//
// Each Read fills p from the queue until p is full, the queue runs dry, or a
// gap (see Pause) is reached; a gap is consumed and ends the read like an
// elapsed serial timeout. An empty queue reads as (0, nil).
type Scripted struct {
	mu       sync.Mutex
	queue    [][]byte
	written  []string
	triggers map[string][][][]byte
	closed   bool

	// ReadErr and WriteErr, when set, are returned by Read and Write.
	ReadErr  error
	WriteErr error

	// Reads counts calls to Read.
	Reads int
}

var _ transport.Transport = (*Scripted)(nil)

// New returns an open, empty Scripted transport.
func New() *Scripted {
	return &Scripted{triggers: make(map[string][][][]byte)}
}

// Queue appends inbound chunks.
func (s *Scripted) Queue(chunks ...[]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		if len(c) == 0 {
			continue
		}
		s.queue = append(s.queue, append([]byte(nil), c...))
	}
}

// Pause queues a gap: the read that reaches it returns early.
func (s *Scripted) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, nil)
}

// On queues chunks to be delivered when cmd is written. cmd is compared
// without its line ending. Registering the same command several times
// answers successive writes in order.
func (s *Scripted) On(cmd string, chunks ...[]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(cmd)
	s.triggers[key] = append(s.triggers[key], chunks)
}

// Written returns the commands written so far, line endings included.
func (s *Scripted) Written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.written...)
}

// Read implements transport.Transport.
func (s *Scripted) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Reads++
	if s.closed {
		return 0, transport.ErrClosed
	}
	if s.ReadErr != nil {
		return 0, s.ReadErr
	}

	n := 0
	for n < len(p) && len(s.queue) > 0 {
		chunk := s.queue[0]
		if chunk == nil {
			s.queue = s.queue[1:]
			break
		}
		m := copy(p[n:], chunk)
		n += m
		if m < len(chunk) {
			s.queue[0] = chunk[m:]
		} else {
			s.queue = s.queue[1:]
		}
	}
	return n, nil
}

// Write implements transport.Transport.
func (s *Scripted) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, transport.ErrClosed
	}
	if s.WriteErr != nil {
		return 0, s.WriteErr
	}

	cmd := string(p)
	s.written = append(s.written, cmd)

	key := strings.TrimSpace(cmd)
	if pending := s.triggers[key]; len(pending) > 0 {
		for _, c := range pending[0] {
			if c == nil {
				s.queue = append(s.queue, nil)
				continue
			}
			s.queue = append(s.queue, append([]byte(nil), c...))
		}
		s.triggers[key] = pending[1:]
	}
	return len(p), nil
}

// Available implements transport.Transport. It reports the bytes queued
// before the next gap; a gap at the head is consumed.
func (s *Scripted) Available() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, transport.ErrClosed
	}
	if len(s.queue) > 0 && s.queue[0] == nil {
		s.queue = s.queue[1:]
		return 0, nil
	}

	n := 0
	for _, c := range s.queue {
		if c == nil {
			break
		}
		n += len(c)
	}
	return n, nil
}

// Close implements transport.Transport.
func (s *Scripted) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// IsOpen implements transport.Transport.
func (s *Scripted) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Record builds one raw device record. The length field is derived from payload.
func Record(start, end bool, command, sequence uint8, payload []byte) []byte {
	return RecordWithLength(start, end, command, sequence, uint8(protocol.HeaderSize+len(payload)), payload)
}

// RecordWithLength builds a raw record whose header declares length,
// regardless of the payload actually supplied.
func RecordWithLength(start, end bool, command, sequence, length uint8, payload []byte) []byte {
	var b0 byte
	if start {
		b0 |= 0x80
	}
	if end {
		b0 |= 0x40
	}
	b0 |= command & 0x1F
	b1 := (sequence&0x07)<<5 | length&0x1F

	return append([]byte{b0, b1}, payload...)
}

// Message splits text into as many records as needed, with start and end
// flags and a running sequence number, and returns them concatenated.
func Message(command uint8, text string) []byte {
	payload := []byte(text)
	var out []byte
	seq := uint8(0)
	for first := true; first || len(payload) > 0; first = false {
		n := len(payload)
		if n > protocol.MaxPayloadSize {
			n = protocol.MaxPayloadSize
		}
		last := n == len(payload)
		out = append(out, Record(first, last, command, seq, payload[:n])...)
		payload = payload[n:]
		seq = (seq + 1) % protocol.SequenceModulus
	}
	return out
}

// Blank returns a single-record message with an empty payload, the device's
// report of a blank video frame.
func Blank(command uint8) []byte {
	return Record(true, true, command, 0, nil)
}
