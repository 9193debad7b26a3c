package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/moffa90/go-model2450/protocol"
	"github.com/moffa90/go-model2450/transport"
)

// Stream starts the continuous reading stream and calls handler with each
// non-empty line the device sends.
//
// Record payloads are concatenated and split on the protocol line ending,
// independently of the command path. Non-ASCII bytes are dropped from each
// line. Stream returns nil when the transport is closed, ctx's error when ctx
// is done, or the first transport error.
//
// Stream holds the device for its whole duration; handler must not issue
// other requests on the same Device.
//
// Example:
//
//	err := dev.Stream(ctx, func(line string) {
//	    fmt.Println(line)
//	})
func (d *Device) Stream(ctx context.Context, handler func(line string)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.write(ctx, protocol.BuildStreamCmd()); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}

	var lines lineBuffer
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := d.config.CommandReader.ReadRecord(d.t)
		switch {
		case errors.Is(err, protocol.ErrNoFrame):
			_ = sleepCtx(ctx, d.config.RetryInterval)
			continue
		case errors.Is(err, transport.ErrClosed):
			d.logInfo("stream ended", "reason", "transport closed")
			return nil
		case err != nil:
			return fmt.Errorf("stream: %w", err)
		}

		f, err := protocol.Decode(raw)
		if err != nil {
			d.logDebug("dropped record", "error", err.Error())
			continue
		}

		for _, line := range lines.Add(f.Payload) {
			handler(line)
		}
	}
}

// lineBuffer splits a byte stream into lines terminated by protocol.LineEnding.
type lineBuffer struct {
	buf []byte
}

// Add appends p and returns every complete non-empty line, trimmed and
// stripped of non-ASCII bytes.
func (l *lineBuffer) Add(p []byte) []string {
	l.buf = append(l.buf, p...)

	var out []string
	sep := []byte(protocol.LineEnding)
	for {
		i := bytes.Index(l.buf, sep)
		if i < 0 {
			break
		}
		line := asciiOnly(l.buf[:i])
		l.buf = l.buf[i+len(sep):]
		if line != "" {
			out = append(out, line)
		}
	}

	if len(l.buf) == 0 {
		l.buf = nil
	}
	return out
}

func asciiOnly(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c < 0x80 {
			sb.WriteByte(c)
		}
	}
	return strings.TrimSpace(sb.String())
}
