package driver

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/moffa90/go-model2450/protocol"
)

// Config holds the device configuration.
type Config struct {
	// ProgressCallback is called after each message of a blank-frame run (optional)
	ProgressCallback ProgressCallback

	// Logger receives structured logs (default: disabled)
	Logger zerolog.Logger

	// CommandTimeout bounds Send; zero leaves only the caller's context
	CommandTimeout time.Duration

	// RetryInterval is the pause before polling again when no record arrived
	RetryInterval time.Duration

	// PollInterval paces the blank-frame loop
	PollInterval time.Duration

	// CommandDelay is the pause after every command write
	CommandDelay time.Duration

	// TextPollInterval paces the text-mode loop
	TextPollInterval time.Duration

	// TextWait is the default window of the text-mode commands
	TextWait time.Duration

	// ResetDelay is how long to wait after a reset before closing the port
	ResetDelay time.Duration

	// SequenceCheck enables record sequence validation during reassembly
	SequenceCheck bool

	// CommandReader reads records on the command path
	CommandReader protocol.FrameReader

	// PollReader reads records in the blank-frame loop
	PollReader protocol.FrameReader
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Logger:           zerolog.Nop(),
		RetryInterval:    600 * time.Microsecond,
		PollInterval:     600 * time.Microsecond,
		CommandDelay:     time.Millisecond,
		TextPollInterval: 100 * time.Millisecond,
		TextWait:         2 * time.Second,
		ResetDelay:       100 * time.Millisecond,
		CommandReader:    protocol.RetryingReader{},
		PollReader:       protocol.BlockReader{},
	}
}

// Option is a functional option for configuring the Device.
type Option func(*Config)

// WithProgressCallback sets a callback that observes blank-frame runs.
//
// Example:
//
//	dev := driver.New(port,
//	    driver.WithProgressCallback(func(p driver.RunProgress) {
//	        fmt.Printf("%s: %d blank of %d\n", p.Elapsed, p.Blank, p.Messages)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets the logger for device operations.
//
// Example:
//
//	dev := driver.New(port, driver.WithLogger(log.Logger))
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithCommandTimeout bounds how long Send waits for a response.
// Without it, Send waits until its context is done.
//
// Example:
//
//	dev := driver.New(port, driver.WithCommandTimeout(5*time.Second))
func WithCommandTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout >= 0 {
			c.CommandTimeout = timeout
		}
	}
}

// WithRetryInterval sets the pause between polls on the command path.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.RetryInterval = d
		}
	}
}

// WithPollInterval sets the pacing of the blank-frame loop.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.PollInterval = d
		}
	}
}

// WithCommandDelay sets the pause after each command write.
func WithCommandDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.CommandDelay = d
		}
	}
}

// WithTextPollInterval sets the pacing of the text-mode loop.
func WithTextPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.TextPollInterval = d
		}
	}
}

// WithTextWait sets the default window of Status, StartRun and StopRun.
func WithTextWait(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.TextWait = d
		}
	}
}

// WithResetDelay sets the wait between a reset command and closing the port.
func WithResetDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.ResetDelay = d
		}
	}
}

// WithSequenceCheck enables or disables record sequence validation.
// Default is false: records are reassembled regardless of their sequence numbers.
//
// Example:
//
//	dev := driver.New(port, driver.WithSequenceCheck(true))
func WithSequenceCheck(check bool) Option {
	return func(c *Config) {
		c.SequenceCheck = check
	}
}

// WithFrameReaders replaces the record read strategies of the command path
// and of the blank-frame loop. A nil reader keeps the default.
func WithFrameReaders(command, poll protocol.FrameReader) Option {
	return func(c *Config) {
		if command != nil {
			c.CommandReader = command
		}
		if poll != nil {
			c.PollReader = poll
		}
	}
}
