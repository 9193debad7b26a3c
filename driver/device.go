package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/moffa90/go-model2450/protocol"
	"github.com/moffa90/go-model2450/transport"
)

// Device drives a Model 2450 over a transport.
//
// Requests are serialized: one command must complete before the next is
// issued. StopBlankFrames is the exception and may be called while a
// blank-frame run is in progress.
type Device struct {
	t      transport.Transport
	config Config

	// mu is held for the duration of a request; wmu only around writes.
	mu  sync.Mutex
	wmu sync.Mutex

	// asm holds the command path's reassembly progress.
	asm protocol.Reassembler
}

// New creates a new Device on the given transport with the given options.
//
// Example:
//
//	port, err := transport.OpenSerial(transport.DefaultSerialConfig("/dev/ttyACM0"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dev := driver.New(port,
//	    driver.WithCommandTimeout(5*time.Second),
//	)
func New(t transport.Transport, opts ...Option) *Device {
	if t == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Device{
		t:      t,
		config: cfg,
	}
	d.asm.SequenceCheck = cfg.SequenceCheck
	return d
}

// Write sends one command line without waiting for a response.
// The line ending is appended if missing.
func (d *Device) Write(ctx context.Context, cmd string) error {
	return d.write(ctx, cmd)
}

func (d *Device) write(ctx context.Context, cmd string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !d.t.IsOpen() {
		return ErrNotConnected
	}

	line := protocol.Terminate(cmd)

	d.wmu.Lock()
	_, err := d.t.Write([]byte(line))
	d.wmu.Unlock()
	if err != nil {
		return fmt.Errorf("write %q: %w", strings.TrimSpace(line), err)
	}

	d.logDebug("sent command", "cmd", strings.TrimSpace(line))

	// the command is out; a cut-short delay does not undo it
	_ = sleepCtx(ctx, d.config.CommandDelay)
	return nil
}

// Send writes cmd and waits for one framed response.
//
// The wait ends when a message is reassembled, when CommandTimeout elapses,
// or when ctx is done; the latter two return a *TimeoutError. Malformed
// records are logged and skipped. Transport errors are returned.
//
// Example:
//
//	msg, err := dev.Send(ctx, "version")
//	if errors.Is(err, driver.ErrTimeout) {
//	    // device did not answer
//	}
func (d *Device) Send(ctx context.Context, cmd string) (protocol.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.config.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.CommandTimeout)
		defer cancel()
	}

	d.asm.Reset()
	start := time.Now()
	if err := d.write(ctx, cmd); err != nil {
		if ctx.Err() != nil {
			return protocol.Message{}, d.timeout(cmd, start, ctx.Err())
		}
		return protocol.Message{}, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return protocol.Message{}, d.timeout(cmd, start, err)
		}

		msg, ok, err := d.poll(d.config.CommandReader, &d.asm)
		if err != nil {
			return protocol.Message{}, fmt.Errorf("read response to %q: %w", strings.TrimSpace(cmd), err)
		}
		if ok {
			d.logDebug("received response",
				"cmd", strings.TrimSpace(cmd),
				"kind", msg.Kind.String(),
				"elapsed", time.Since(start).String(),
			)
			return msg, nil
		}

		_ = sleepCtx(ctx, d.config.RetryInterval)
	}
}

func (d *Device) timeout(cmd string, start time.Time, err error) error {
	d.asm.Reset()
	return &TimeoutError{
		Command: strings.TrimSpace(cmd),
		Elapsed: time.Since(start),
		Err:     err,
	}
}

// poll reads at most one record with reader and feeds it to asm.
// It reports a flushed message, if any. A missing, malformed or out of
// sequence record is not an error; transport failures are.
func (d *Device) poll(reader protocol.FrameReader, asm *protocol.Reassembler) (protocol.Message, bool, error) {
	raw, err := reader.ReadRecord(d.t)
	if errors.Is(err, protocol.ErrNoFrame) {
		return protocol.Message{}, false, nil
	}
	if err != nil {
		return protocol.Message{}, false, err
	}

	f, err := protocol.Decode(raw)
	if err != nil {
		d.logDebug("dropped record", "error", err.Error(), "raw", fmt.Sprintf("% X", raw))
		return protocol.Message{}, false, nil
	}

	msg, done, err := asm.Feed(f)
	if err != nil {
		d.logDebug("dropped message", "error", err.Error())
		return protocol.Message{}, false, nil
	}
	if done && msg.Kind == protocol.KindRaw {
		d.logDebug("non-ascii payload", "payload", msg.String())
	}
	return msg, done, nil
}

// Close closes the underlying transport.
func (d *Device) Close() error {
	return d.t.Close()
}

// IsOpen reports whether the underlying transport is open.
func (d *Device) IsOpen() bool {
	return d.t.IsOpen()
}

// sleepCtx pauses for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// logDebug logs a debug message with key/value pairs.
func (d *Device) logDebug(msg string, keysAndValues ...interface{}) {
	d.config.Logger.Debug().Fields(keysAndValues).Msg(msg)
}

// logInfo logs an info message with key/value pairs.
func (d *Device) logInfo(msg string, keysAndValues ...interface{}) {
	d.config.Logger.Info().Fields(keysAndValues).Msg(msg)
}

// logError logs an error message with key/value pairs.
func (d *Device) logError(msg string, keysAndValues ...interface{}) {
	d.config.Logger.Error().Fields(keysAndValues).Msg(msg)
}
