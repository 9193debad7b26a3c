package protocol

import (
	"bytes"
	"errors"
	"testing"
)

// Helper function to build a raw record for testing
func buildTestRecord(start, end bool, command, sequence byte, payload []byte) []byte {
	length := byte(HeaderSize + len(payload))
	return buildTestRecordWithLength(start, end, command, sequence, length, payload)
}

func buildTestRecordWithLength(start, end bool, command, sequence, length byte, payload []byte) []byte {
	var b0 byte
	if start {
		b0 |= startBit
	}
	if end {
		b0 |= endBit
	}
	b0 |= command & commandMask
	b1 := (sequence&sequenceMask)<<sequenceShift | length&lengthMask

	record := []byte{b0, b1}
	return append(record, payload...)
}

func TestDecodeHeaderFields(t *testing.T) {
	for _, start := range []bool{false, true} {
		for _, end := range []bool{false, true} {
			for _, reserved := range []bool{false, true} {
				for command := byte(0); command <= commandMask; command++ {
					for sequence := byte(0); sequence <= sequenceMask; sequence++ {
						for length := byte(HeaderSize); length <= MaxRecordSize; length++ {
							raw := buildTestRecordWithLength(start, end, command, sequence, length,
								make([]byte, int(length)-HeaderSize))
							if reserved {
								raw[0] |= reservedBit
							}

							f, err := Decode(raw)
							if err != nil {
								t.Fatalf("Decode(% X) unexpected error: %v", raw, err)
							}
							if f.Start != start || f.End != end || f.Reserved != reserved {
								t.Fatalf("Decode(% X) flags = %v/%v/%v, want %v/%v/%v",
									raw, f.Start, f.End, f.Reserved, start, end, reserved)
							}
							if f.Command != command || f.Sequence != sequence || f.Length != length {
								t.Fatalf("Decode(% X) = cmd %d seq %d len %d, want cmd %d seq %d len %d",
									raw, f.Command, f.Sequence, f.Length, command, sequence, length)
							}
							if len(f.Payload) != int(length)-HeaderSize {
								t.Fatalf("payload length = %d, want %d", len(f.Payload), int(length)-HeaderSize)
							}
						}
					}
				}
			}
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		raw         []byte
		wantPayload []byte
		wantErr     error
	}{
		{
			name:        "header only",
			raw:         buildTestRecord(true, true, 1, 0, nil),
			wantPayload: []byte{},
		},
		{
			name:        "ascii payload",
			raw:         buildTestRecord(true, true, 3, 2, []byte("1234\r\n")),
			wantPayload: []byte("1234\r\n"),
		},
		{
			name:        "trailing bytes ignored",
			raw:         append(buildTestRecord(true, false, 3, 0, []byte("AB")), 'X', 'Y'),
			wantPayload: []byte("AB"),
		},
		{
			name:    "empty input",
			raw:     nil,
			wantErr: ErrHeaderTooShort,
		},
		{
			name:    "single byte",
			raw:     []byte{0xC0},
			wantErr: ErrHeaderTooShort,
		},
		{
			name:    "declared length below header",
			raw:     []byte{0xC0, 0x01},
			wantErr: ErrInvalidLength,
		},
		{
			name:    "declared length zero",
			raw:     []byte{0xC0, 0x00, 0x20},
			wantErr: ErrInvalidLength,
		},
		{
			name:    "truncated payload",
			raw:     buildTestRecordWithLength(true, true, 0, 0, 6, []byte("AB")),
			wantErr: ErrLengthMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode(tt.raw)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if !IsDecodeError(err) {
					t.Errorf("IsDecodeError(%v) = false, want true", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !bytes.Equal(f.Payload, tt.wantPayload) {
				t.Errorf("payload = %q, want %q", f.Payload, tt.wantPayload)
			}
		})
	}
}

func TestDecodeLengthMismatchDetails(t *testing.T) {
	raw := buildTestRecordWithLength(true, true, 0, 0, 10, []byte("abc"))

	_, err := Decode(raw)

	var lm *LengthMismatchError
	if !errors.As(err, &lm) {
		t.Fatalf("error = %v, want *LengthMismatchError", err)
	}
	if lm.Declared != 10 || lm.Actual != 5 {
		t.Errorf("mismatch = %d/%d, want 10/5", lm.Declared, lm.Actual)
	}
}

func TestDecodeCopiesPayload(t *testing.T) {
	raw := buildTestRecord(true, true, 0, 0, []byte("AB"))

	f, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw[2] = 'Z'
	if string(f.Payload) != "AB" {
		t.Errorf("payload aliases input: got %q", f.Payload)
	}
}

func TestFrameShort(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  bool
	}{
		{"complete", Frame{Length: 4, Payload: []byte("AB")}, false},
		{"short", Frame{Length: 4, Payload: []byte("A")}, true},
		{"empty declared", Frame{Length: 2, Payload: nil}, false},
		{"invalid length", Frame{Length: 1, Payload: nil}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.Short(); got != tt.want {
				t.Errorf("Short() = %v, want %v", got, tt.want)
			}
		})
	}
}
