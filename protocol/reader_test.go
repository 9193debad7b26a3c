package protocol

import (
	"bytes"
	"errors"
	"testing"
)

// chunkReader returns one scripted chunk per Read and (0, nil) once drained,
// like a serial port whose read timeout elapsed.
type chunkReader struct {
	chunks [][]byte
	err    error
	reads  int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	c.reads++
	if c.err != nil {
		return 0, c.err
	}
	for len(c.chunks) > 0 {
		chunk := c.chunks[0]
		n := copy(p, chunk)
		if n < len(chunk) {
			c.chunks[0] = chunk[n:]
		} else {
			c.chunks = c.chunks[1:]
		}
		if n > 0 {
			return n, nil
		}
	}
	return 0, nil
}

func TestRetryingReader(t *testing.T) {
	record := buildTestRecord(true, true, 3, 0, []byte("1234"))

	tests := []struct {
		name    string
		chunks  [][]byte
		want    []byte
		wantErr error
	}{
		{
			name:   "whole record in one chunk",
			chunks: [][]byte{record},
			want:   record,
		},
		{
			name:   "payload split across reads",
			chunks: [][]byte{record[:2], record[2:3], record[3:]},
			want:   record,
		},
		{
			name:   "header split across reads",
			chunks: [][]byte{record[:1], record[1:]},
			want:   record,
		},
		{
			name:   "header only record",
			chunks: [][]byte{buildTestRecord(true, true, 1, 0, nil)},
			want:   buildTestRecord(true, true, 1, 0, nil),
		},
		{
			name:    "nothing arrives",
			chunks:  nil,
			wantErr: ErrNoFrame,
		},
		{
			name:    "half a header",
			chunks:  [][]byte{record[:1]},
			wantErr: ErrNoFrame,
		},
		{
			name:    "payload stalls",
			chunks:  [][]byte{record[:4]},
			wantErr: ErrNoFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RetryingReader{}.ReadRecord(&chunkReader{chunks: tt.chunks})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("record = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestBlockReader(t *testing.T) {
	record := buildTestRecord(true, true, 3, 0, []byte("1234"))

	tests := []struct {
		name    string
		chunks  [][]byte
		want    []byte
		wantErr error
	}{
		{
			name:   "whole record",
			chunks: [][]byte{record},
			want:   record,
		},
		{
			name:    "payload split is dropped",
			chunks:  [][]byte{record[:2], record[2:4], record[4:]},
			wantErr: ErrNoFrame,
		},
		{
			name:   "header only record",
			chunks: [][]byte{buildTestRecord(false, true, 0, 0, nil)},
			want:   buildTestRecord(false, true, 0, 0, nil),
		},
		{
			name:    "nothing arrives",
			wantErr: ErrNoFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BlockReader{}.ReadRecord(&chunkReader{chunks: tt.chunks})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("record = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestBlockReaderDropsPartialRecord(t *testing.T) {
	first := buildTestRecord(true, true, 3, 0, []byte("1234"))
	second := buildTestRecord(true, true, 3, 1, []byte("99"))
	r := &chunkReader{chunks: [][]byte{first[:2], first[2:4], second}}

	if _, err := (BlockReader{}).ReadRecord(r); !errors.Is(err, ErrNoFrame) {
		t.Fatalf("first read error = %v, want ErrNoFrame", err)
	}

	// one header read, one payload read, no retry
	if r.reads != 2 {
		t.Errorf("reads = %d, want 2", r.reads)
	}
}

func TestReaderPropagatesTransportError(t *testing.T) {
	boom := errors.New("port closed")

	for _, reader := range []FrameReader{RetryingReader{}, BlockReader{}} {
		_, err := reader.ReadRecord(&chunkReader{err: boom})
		if !errors.Is(err, boom) {
			t.Errorf("%T error = %v, want %v", reader, err, boom)
		}
		if errors.Is(err, ErrNoFrame) {
			t.Errorf("%T transport error reported as ErrNoFrame", reader)
		}
	}
}

func TestReaderInvalidDeclaredLength(t *testing.T) {
	r := &chunkReader{chunks: [][]byte{{0xC0, 0x01}}}

	raw, err := RetryingReader{}.ReadRecord(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := Decode(raw); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("Decode error = %v, want ErrInvalidLength", err)
	}
}
