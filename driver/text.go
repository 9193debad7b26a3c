package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moffa90/go-model2450/protocol"
	"github.com/moffa90/go-model2450/transport"
)

// NotConnectedText is what SendText returns when the transport is not open.
const NotConnectedText = "Serial port not connected.\n"

// SendText writes cmd and collects line-oriented replies for the whole of wait.
//
// The result starts with an echo of the command and holds every non-empty
// line received, each followed by a newline. Invalid UTF-8 is dropped. The
// window is never cut short by the content; only ctx can end it early, in
// which case the output collected so far is returned with ctx's error.
//
// A closed transport is not an error: SendText returns NotConnectedText.
func (d *Device) SendText(ctx context.Context, cmd string, wait time.Duration) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.t.IsOpen() {
		return NotConnectedText, nil
	}

	line := protocol.Terminate(cmd)
	d.wmu.Lock()
	_, err := d.t.Write([]byte(line))
	d.wmu.Unlock()
	if err != nil {
		return "", fmt.Errorf("write %q: %w", strings.TrimSpace(line), err)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "[Sent TEXT command]: %s\n", strings.TrimSpace(cmd))

	start := time.Now()
	for time.Since(start) < wait {
		n, err := d.t.Available()
		for err == nil && n > 0 && time.Since(start) < wait {
			var text string
			text, err = d.readLine()
			if text != "" {
				out.WriteString(text)
				out.WriteByte('\n')
			}
			if err == nil {
				n, err = d.t.Available()
			}
		}
		if errors.Is(err, transport.ErrClosed) {
			d.logInfo("transport closed during text command", "cmd", strings.TrimSpace(cmd))
			break
		}
		if err != nil {
			d.logError("text read failed", "cmd", strings.TrimSpace(cmd), "error", err.Error())
		}

		if err := sleepCtx(ctx, d.config.TextPollInterval); err != nil {
			return out.String(), err
		}
	}

	return out.String(), nil
}

// readLine reads one line byte by byte, stopping at a newline or when the
// transport's read times out, and returns it trimmed.
func (d *Device) readLine() (string, error) {
	var buf []byte
	b := make([]byte, 1)
	for {
		n, err := d.t.Read(b)
		if err != nil {
			return cleanLine(buf), err
		}
		if n == 0 || b[0] == '\n' {
			return cleanLine(buf), nil
		}
		buf = append(buf, b[0])
	}
}

func cleanLine(b []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(b), ""))
}
