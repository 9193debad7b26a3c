package transport

import (
	"errors"
	"fmt"
)

// Transport is a byte-oriented duplex channel to the instrument.
//
// Read waits up to the transport's read timeout for len(p) bytes and returns
// whatever arrived; (0, nil) means the wait elapsed with no data. Available
// reports how many bytes can be read without waiting.
//
// A Transport is owned by one logical channel at a time and is not safe for
// concurrent use.
type Transport interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Available() (int, error)
	Close() error
	IsOpen() bool
}

var (
	// ErrUnavailable is matched by OpenError when a port cannot be opened.
	ErrUnavailable = errors.New("transport: unavailable")

	// ErrClosed is returned by operations on a closed transport.
	ErrClosed = errors.New("transport: closed")
)

// OpenError reports a failure to open a port.
type OpenError struct {
	Port string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("transport: open %s: %v", e.Port, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrUnavailable.
func (e *OpenError) Is(target error) bool {
	return target == ErrUnavailable
}
