package protocol

import (
	"encoding/hex"
	"strings"
)

// MessageKind tells how a reassembled message was classified.
type MessageKind int

const (
	// KindText is a message whose bytes are all 7-bit ASCII
	KindText MessageKind = iota

	// KindRaw is a message containing non-ASCII bytes
	KindRaw
)

func (k MessageKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Message is one fully reassembled logical message.
type Message struct {
	// Kind is KindText or KindRaw
	Kind MessageKind

	// Text is the whitespace-trimmed ASCII content (KindText only)
	Text string

	// Raw holds the reassembled bytes (KindRaw only)
	Raw []byte

	// Command is the command class of the record that completed the message
	Command uint8
}

// IsBlank reports whether m is a text message with no content after trimming.
// The device reports a blank video frame this way.
func (m Message) IsBlank() bool {
	return m.Kind == KindText && m.Text == ""
}

// String returns the text content, or the raw bytes as lowercase hex.
func (m Message) String() string {
	if m.Kind == KindRaw {
		return hex.EncodeToString(m.Raw)
	}
	return m.Text
}

// NewMessage classifies buf as ASCII text or raw bytes.
func NewMessage(buf []byte, command uint8) Message {
	if !isASCII(buf) {
		raw := make([]byte, len(buf))
		copy(raw, buf)
		return Message{Kind: KindRaw, Raw: raw, Command: command}
	}
	return Message{
		Kind:    KindText,
		Text:    strings.TrimFunc(string(buf), isTrimmable),
		Command: command,
	}
}

// isTrimmable reports ASCII whitespace, including the file, group, record
// and unit separators (0x1C-0x1F) the firmware may pad with.
func isTrimmable(r rune) bool {
	switch {
	case r == ' ', r >= '\t' && r <= '\r':
		return true
	case r >= 0x1C && r <= 0x1F:
		return true
	default:
		return false
	}
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
