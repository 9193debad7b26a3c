package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCommand builds an outbound command line: the name and arguments joined
// by single spaces and terminated with LineEnding.
//
// Outbound messages are plain ASCII; they are never framed.
//
//	FormatCommand(CmdLevel, "40") == "level 40\r\n"
func FormatCommand(name string, args ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(name))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	b.WriteString(LineEnding)
	return b.String()
}

// Terminate appends LineEnding to cmd unless it already ends with it.
func Terminate(cmd string) string {
	if strings.HasSuffix(cmd, LineEnding) {
		return cmd
	}
	return strings.TrimRight(cmd, "\r\n") + LineEnding
}

// BuildSetLevelCmd builds the command that sets the blank-frame detection level.
func BuildSetLevelCmd(level int) (string, error) {
	if level < 0 {
		return "", fmt.Errorf("level must be non-negative, got %d", level)
	}
	return FormatCommand(CmdLevel, strconv.Itoa(level)), nil
}

// BuildSetReferenceCmd builds the command that stores a calibration reference.
// ref must be RefRed, RefGreen or RefBlue.
func BuildSetReferenceCmd(ref string) (string, error) {
	switch ref {
	case RefRed, RefGreen, RefBlue:
		return FormatCommand(CmdSet, ref), nil
	default:
		return "", fmt.Errorf("unknown calibration reference %q", ref)
	}
}

// BuildResetCmd builds a soft reset, or a reset into the bootloader.
func BuildResetCmd(bootloader bool) string {
	if bootloader {
		return FormatCommand(CmdReset, ArgBootloader)
	}
	return FormatCommand(CmdReset)
}

// BuildStreamCmd builds the command that starts the continuous reading stream.
func BuildStreamCmd() string {
	return FormatCommand(CmdStream, StreamMode)
}
