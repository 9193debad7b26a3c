package driver

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConnected is returned when the transport is not open.
	ErrNotConnected = errors.New("driver: transport not open")

	// ErrTimeout is matched by TimeoutError.
	ErrTimeout = errors.New("driver: command timed out")
)

// TimeoutError indicates that a command was abandoned before its response was
// reassembled, because the command timeout elapsed or the context was done.
type TimeoutError struct {
	Command string
	Elapsed time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q abandoned after %s: %v", e.Command, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
