package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moffa90/go-model2450/protocol"
	"github.com/moffa90/go-model2450/transport"
)

// RunBlankFrames starts a blank-frame run, counts the blank messages the
// device reports for duration, then stops the run and returns the count.
//
// The run has its own reassembly state, separate from the command path. A
// duration of zero or less sends the start and stop commands and returns 0.
// Malformed records are logged and skipped.
//
// If ctx is done first, the stop command is still sent and the count so far
// is returned with ctx's error. If the transport closes mid-run, the count so
// far is returned with ErrNotConnected.
//
// Example:
//
//	n, err := dev.RunBlankFrames(ctx, 10*time.Second)
//	fmt.Printf("%d blank frames\n", n)
func (d *Device) RunBlankFrames(ctx context.Context, duration time.Duration) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.write(ctx, protocol.FormatCommand(protocol.CmdRun)); err != nil {
		return 0, fmt.Errorf("start run: %w", err)
	}

	start := time.Now()
	var asm protocol.Reassembler
	asm.SequenceCheck = d.config.SequenceCheck
	progress := RunProgress{}

	d.logInfo("blank-frame run started", "duration", duration.String())

	for time.Since(start) < duration {
		if err := ctx.Err(); err != nil {
			d.stopAfterCancel(ctx)
			return progress.Blank, err
		}

		msg, ok, err := d.poll(d.config.PollReader, &asm)
		if errors.Is(err, transport.ErrClosed) {
			d.logError("transport closed during run", "blank", progress.Blank)
			return progress.Blank, ErrNotConnected
		}
		if err != nil {
			d.logError("poll failed", "error", err.Error())
		}

		if ok {
			progress.Messages++
			if msg.IsBlank() {
				progress.Blank++
			}
			progress.Last = msg.String()
			progress.Elapsed = time.Since(start)
			d.reportProgress(progress)
		}

		_ = sleepCtx(ctx, d.config.PollInterval)
	}

	// ctx may have ended during the last poll; the device must still stop.
	if err := ctx.Err(); err != nil {
		d.stopAfterCancel(ctx)
		return progress.Blank, err
	}

	if err := d.write(ctx, protocol.FormatCommand(protocol.CmdStop)); err != nil {
		return progress.Blank, fmt.Errorf("stop run: %w", err)
	}

	d.logInfo("blank-frame run complete",
		"blank", progress.Blank,
		"messages", progress.Messages,
		"elapsed", time.Since(start).String(),
	)

	return progress.Blank, nil
}

// StopBlankFrames sends the stop command on its own. It may be called from
// another goroutine while RunBlankFrames is polling.
func (d *Device) StopBlankFrames(ctx context.Context) error {
	if err := d.write(ctx, protocol.FormatCommand(protocol.CmdStop)); err != nil {
		return fmt.Errorf("stop run: %w", err)
	}
	d.logInfo("sent stop")
	return nil
}

func (d *Device) stopAfterCancel(ctx context.Context) {
	if err := d.write(context.WithoutCancel(ctx), protocol.FormatCommand(protocol.CmdStop)); err != nil {
		d.logError("stop after cancel failed", "error", err.Error())
	}
}

// reportProgress calls the progress callback if configured.
func (d *Device) reportProgress(p RunProgress) {
	if d.config.ProgressCallback != nil {
		d.config.ProgressCallback(p)
	}
}
