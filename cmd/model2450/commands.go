package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moffa90/go-model2450/driver"
	"github.com/moffa90/go-model2450/protocol"
	"github.com/moffa90/go-model2450/telemetry"
)

// publisher receives stream lines and run results; *telemetry.Publisher implements it.
type publisher interface {
	PublishReading(telemetry.Reading) error
	PublishBlankRun(telemetry.BlankRun) error
}

type cli struct {
	dev    *driver.Device
	device string
	sink   publisher
	out    io.Writer
}

var errUsage = errors.New("invalid arguments, see -h")

func (c *cli) execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	name, rest := args[0], args[1:]

	switch name {
	case "sn":
		return c.print(c.dev.SerialNumber(ctx))
	case "version":
		return c.print(c.dev.Version(ctx))
	case "color":
		return c.print(c.dev.Color(ctx))
	case "read":
		return c.print(c.dev.AmbientLevel(ctx))
	case "level":
		if len(rest) == 0 {
			return c.print(c.dev.DetectionLevel(ctx))
		}
		level, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("level %q: %w", rest[0], errUsage)
		}
		return c.print(c.dev.SetDetectionLevel(ctx, level))
	case "set":
		if len(rest) == 0 {
			return errUsage
		}
		switch rest[0] {
		case protocol.RefRed:
			return c.print(c.dev.SetRedReference(ctx))
		case protocol.RefGreen:
			return c.print(c.dev.SetGreenReference(ctx))
		case protocol.RefBlue:
			return c.print(c.dev.SetBlueReference(ctx))
		default:
			return fmt.Errorf("set %q: %w", rest[0], errUsage)
		}
	case "status":
		out, err := c.dev.Status(ctx)
		fmt.Fprint(c.out, out)
		return err
	case "run":
		return c.run(ctx, rest)
	case "stop":
		return c.dev.StopBlankFrames(ctx)
	case "stream":
		return c.stream(ctx)
	case "reset":
		c.dev.Reset(ctx)
		return nil
	case "boot":
		c.dev.ResetToBootloader(ctx)
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", name, errUsage)
	}
}

func (c *cli) print(s string, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, s)
	return nil
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	duration, err := parseDuration(args[0])
	if err != nil {
		return err
	}

	started := time.Now()
	n, runErr := c.dev.RunBlankFrames(ctx, duration)
	fmt.Fprintf(c.out, "blank frames: %d\n", n)

	if c.sink != nil {
		result := telemetry.BlankRun{
			Device:   c.device,
			Started:  started,
			Duration: duration.String(),
			Blank:    n,
		}
		if runErr != nil {
			result.Error = runErr.Error()
		}
		if err := c.sink.PublishBlankRun(result); err != nil {
			log.Warn().Err(err).Msg("publish run result")
		}
	}

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// parseDuration accepts a Go duration or a plain number of seconds.
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(math.Round(secs * float64(time.Second))), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, errUsage)
	}
	return d, nil
}

func (c *cli) stream(ctx context.Context) error {
	err := c.dev.Stream(ctx, func(line string) {
		fmt.Fprintln(c.out, line)
		if c.sink == nil {
			return
		}
		r := telemetry.Reading{Device: c.device, Time: time.Now().UTC(), Line: line}
		if err := c.sink.PublishReading(r); err != nil {
			log.Warn().Err(err).Msg("publish reading")
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

