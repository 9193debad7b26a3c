package driver

import (
	"context"
	"time"

	"github.com/moffa90/go-model2450/protocol"
)

// query sends a named command and returns the response rendered as text.
func (d *Device) query(ctx context.Context, name string, args ...string) (string, error) {
	msg, err := d.Send(ctx, protocol.FormatCommand(name, args...))
	if err != nil {
		return "", err
	}
	return msg.String(), nil
}

// SerialNumber reads the device serial number.
func (d *Device) SerialNumber(ctx context.Context) (string, error) {
	return d.query(ctx, protocol.CmdSerialNumber)
}

// Version reads the firmware and hardware version string.
func (d *Device) Version(ctx context.Context) (string, error) {
	return d.query(ctx, protocol.CmdVersion)
}

// Color reads the current color measurement.
func (d *Device) Color(ctx context.Context) (string, error) {
	return d.query(ctx, protocol.CmdColor)
}

// AmbientLevel reads the ambient light level.
func (d *Device) AmbientLevel(ctx context.Context) (string, error) {
	return d.query(ctx, protocol.CmdRead)
}

// DetectionLevel reads the blank-frame detection level.
func (d *Device) DetectionLevel(ctx context.Context) (string, error) {
	return d.query(ctx, protocol.CmdLevel)
}

// SetDetectionLevel sets the blank-frame detection level.
func (d *Device) SetDetectionLevel(ctx context.Context, level int) (string, error) {
	cmd, err := protocol.BuildSetLevelCmd(level)
	if err != nil {
		return "", err
	}
	msg, err := d.Send(ctx, cmd)
	if err != nil {
		return "", err
	}
	return msg.String(), nil
}

// SetRedReference stores the current reading as the red calibration reference.
func (d *Device) SetRedReference(ctx context.Context) (string, error) {
	return d.SetReference(ctx, protocol.RefRed)
}

// SetGreenReference stores the current reading as the green calibration reference.
func (d *Device) SetGreenReference(ctx context.Context) (string, error) {
	return d.SetReference(ctx, protocol.RefGreen)
}

// SetBlueReference stores the current reading as the blue calibration reference.
func (d *Device) SetBlueReference(ctx context.Context) (string, error) {
	return d.SetReference(ctx, protocol.RefBlue)
}

// SetReference stores the current reading as the named calibration reference.
// ref must be protocol.RefRed, RefGreen or RefBlue; anything else is rejected
// without writing to the device.
func (d *Device) SetReference(ctx context.Context, ref string) (string, error) {
	cmd, err := protocol.BuildSetReferenceCmd(ref)
	if err != nil {
		return "", err
	}
	msg, err := d.Send(ctx, cmd)
	if err != nil {
		return "", err
	}
	return msg.String(), nil
}

// Status queries the device status in text mode.
func (d *Device) Status(ctx context.Context) (string, error) {
	return d.SendText(ctx, protocol.FormatCommand(protocol.CmdStatus), d.config.TextWait)
}

// StartRun sends the run command in text mode and returns what the device
// printed during TextWait. Use RunBlankFrames to count blank frames instead.
func (d *Device) StartRun(ctx context.Context) (string, error) {
	return d.SendText(ctx, protocol.FormatCommand(protocol.CmdRun), d.config.TextWait)
}

// StopRun sends the stop command in text mode.
func (d *Device) StopRun(ctx context.Context) (string, error) {
	return d.SendText(ctx, protocol.FormatCommand(protocol.CmdStop), d.config.TextWait)
}

// Reset soft-resets the device and closes the transport.
// The device drops the link while resetting, so failures are logged, not returned.
func (d *Device) Reset(ctx context.Context) {
	d.reset(ctx, false)
}

// ResetToBootloader resets the device into its bootloader and closes the transport.
func (d *Device) ResetToBootloader(ctx context.Context) {
	d.reset(ctx, true)
}

func (d *Device) reset(ctx context.Context, bootloader bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := protocol.BuildResetCmd(bootloader)
	if err := d.write(ctx, cmd); err != nil {
		d.logError("ignoring error during reset", "bootloader", bootloader, "error", err.Error())
	}

	wait := d.config.ResetDelay
	if wait > 0 {
		time.Sleep(wait)
	}

	if err := d.t.Close(); err != nil {
		d.logError("ignoring error closing after reset", "error", err.Error())
	}
	d.logInfo("device reset", "bootloader", bootloader)
}
