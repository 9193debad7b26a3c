package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrHeaderTooShort is returned when fewer than HeaderSize bytes are decoded.
	ErrHeaderTooShort = errors.New("protocol: record too short to decode header")

	// ErrInvalidLength is returned when a header declares a length below HeaderSize.
	ErrInvalidLength = errors.New("protocol: declared length smaller than header")

	// ErrLengthMismatch is matched by LengthMismatchError.
	ErrLengthMismatch = errors.New("protocol: record length mismatch")

	// ErrSequenceGap is matched by SequenceError.
	ErrSequenceGap = errors.New("protocol: sequence gap")

	// ErrNoFrame means no complete record arrived within the transport's bounded wait.
	// It is not a decode failure; callers poll again.
	ErrNoFrame = errors.New("protocol: no frame")
)

// LengthMismatchError reports a record that is shorter than its header declares.
type LengthMismatchError struct {
	Declared int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("protocol: record length mismatch: expected %d bytes, got %d", e.Declared, e.Actual)
}

// Is reports whether target is ErrLengthMismatch.
func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrLengthMismatch
}

// SequenceError reports a continuation record whose sequence number does not
// follow the previous record of the same message.
type SequenceError struct {
	Expected uint8
	Actual   uint8
	// Discarded is the number of buffered payload bytes dropped
	Discarded int
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("protocol: sequence gap: expected %d, got %d (%d bytes discarded)",
		e.Expected, e.Actual, e.Discarded)
}

// Is reports whether target is ErrSequenceGap.
func (e *SequenceError) Is(target error) bool {
	return target == ErrSequenceGap
}

// IsDecodeError returns true if err is a malformed or truncated record error.
// Such errors are dropped by polling loops rather than surfaced to callers.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrHeaderTooShort) ||
		errors.Is(err, ErrInvalidLength) ||
		errors.Is(err, ErrLengthMismatch)
}
