package protocol

import (
	"bytes"
	"errors"
	"testing"
)

// TestHasMagic tests the magic pre-filter
func TestHasMagic(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want bool
	}{
		{
			name: "Exact magic only",
			buf:  []byte("RVFU"),
			want: true,
		},
		{
			name: "Magic with trailing bytes",
			buf:  []byte("RVFU\x01rest of header"),
			want: true,
		},
		{
			name: "Empty buffer",
			buf:  nil,
			want: false,
		},
		{
			name: "Too short",
			buf:  []byte("RVF"),
			want: false,
		},
		{
			name: "Wrong marker",
			buf:  []byte("RVFX after"),
			want: false,
		},
		{
			name: "Magic not at start",
			buf:  []byte("\x00RVFU"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasMagic(tt.buf); got != tt.want {
				t.Errorf("HasMagic() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestChunk_RoundTrip tests serialize/parse round trip
func TestChunk_RoundTrip(t *testing.T) {
	payload := make([]byte, 4*FrameWidth)
	for i := range payload {
		payload[i] = byte(i)
	}

	tests := []struct {
		name  string
		chunk Chunk
	}{
		{
			name: "Mid-frame chunk",
			chunk: Chunk{
				Width:      FrameWidth,
				Height:     FrameHeight,
				LineNumber: 5,
				NumLines:   4,
				EndFrame:   false,
				FrameID:    42,
				Seq:        1000,
				Payload:    payload,
			},
		},
		{
			name: "End of frame chunk",
			chunk: Chunk{
				Width:      FrameWidth,
				Height:     FrameHeight,
				LineNumber: 77,
				NumLines:   4,
				EndFrame:   true,
				FrameID:    43,
				Seq:        1019,
				Payload:    payload,
			},
		},
		{
			name: "Single line",
			chunk: Chunk{
				Width:      FrameWidth,
				Height:     FrameHeight,
				LineNumber: 1,
				NumLines:   1,
				FrameID:    1,
				Seq:        0,
				Payload:    payload[:FrameWidth],
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, err := tt.chunk.Serialize()
			if err != nil {
				t.Fatalf("Serialize() error = %v", err)
			}
			if len(wire) != HeaderSize+tt.chunk.PayloadSize() {
				t.Errorf("wire length = %d, want %d", len(wire), HeaderSize+tt.chunk.PayloadSize())
			}
			if !HasMagic(wire) {
				t.Error("serialized chunk does not start with magic")
			}

			parsed, err := ParseChunk(wire)
			if err != nil {
				t.Fatalf("ParseChunk() error = %v", err)
			}

			if parsed.Width != tt.chunk.Width {
				t.Errorf("Width = %d, want %d", parsed.Width, tt.chunk.Width)
			}
			if parsed.Height != tt.chunk.Height {
				t.Errorf("Height = %d, want %d", parsed.Height, tt.chunk.Height)
			}
			if parsed.LineNumber != tt.chunk.LineNumber {
				t.Errorf("LineNumber = %d, want %d", parsed.LineNumber, tt.chunk.LineNumber)
			}
			if parsed.NumLines != tt.chunk.NumLines {
				t.Errorf("NumLines = %d, want %d", parsed.NumLines, tt.chunk.NumLines)
			}
			if parsed.EndFrame != tt.chunk.EndFrame {
				t.Errorf("EndFrame = %t, want %t", parsed.EndFrame, tt.chunk.EndFrame)
			}
			if parsed.FrameID != tt.chunk.FrameID {
				t.Errorf("FrameID = %d, want %d", parsed.FrameID, tt.chunk.FrameID)
			}
			if parsed.Seq != tt.chunk.Seq {
				t.Errorf("Seq = %d, want %d", parsed.Seq, tt.chunk.Seq)
			}
			if !bytes.Equal(parsed.Payload, tt.chunk.Payload[:tt.chunk.PayloadSize()]) {
				t.Error("payload mismatch after round trip")
			}
		})
	}
}

// TestParseChunk_Errors tests parse failures
func TestParseChunk_Errors(t *testing.T) {
	valid, err := (&Chunk{
		Width:      FrameWidth,
		Height:     FrameHeight,
		LineNumber: 1,
		NumLines:   2,
		FrameID:    7,
		Seq:        3,
		Payload:    make([]byte, 2*FrameWidth),
	}).Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	badVersion := append([]byte(nil), valid...)
	badVersion[OffsetVersion] = 99

	badMagic := append([]byte(nil), valid...)
	badMagic[0] = 'X'

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "Empty input",
			data:    nil,
			wantErr: ErrChunkTooShort,
		},
		{
			name:    "Short header",
			data:    valid[:HeaderSize-1],
			wantErr: ErrChunkTooShort,
		},
		{
			name:    "Bad magic",
			data:    badMagic,
			wantErr: ErrInvalidMagic,
		},
		{
			name:    "Bad version",
			data:    badVersion,
			wantErr: ErrInvalidVersion,
		},
		{
			name:    "Truncated payload",
			data:    valid[:HeaderSize+FrameWidth],
			wantErr: ErrTruncatedPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChunk(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestParseChunk_ExtraBytes verifies trailing bytes past the declared
// payload are ignored
func TestParseChunk_ExtraBytes(t *testing.T) {
	wire, err := (&Chunk{
		Width:      FrameWidth,
		Height:     FrameHeight,
		LineNumber: 1,
		NumLines:   1,
		Payload:    make([]byte, FrameWidth),
	}).Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	wire = append(wire, 0xAA, 0xBB)

	parsed, err := ParseChunk(wire)
	if err != nil {
		t.Fatalf("ParseChunk() error = %v", err)
	}
	if len(parsed.Payload) != FrameWidth {
		t.Errorf("payload length = %d, want %d", len(parsed.Payload), FrameWidth)
	}
}

// TestChunk_Clone tests deep copy
func TestChunk_Clone(t *testing.T) {
	orig := &Chunk{
		Width:      FrameWidth,
		Height:     FrameHeight,
		LineNumber: 10,
		NumLines:   1,
		FrameID:    5,
		Seq:        100,
		Payload:    make([]byte, FrameWidth),
	}
	orig.Payload[0] = 0x42

	clone := orig.Clone()
	clone.Payload[0] = 0x99

	if orig.Payload[0] != 0x42 {
		t.Error("Clone() shares payload with original")
	}
	if clone.Seq != orig.Seq || clone.FrameID != orig.FrameID {
		t.Error("Clone() did not copy header fields")
	}
}

// TestChunk_SerializeTruncated tests serialization with short payload
func TestChunk_SerializeTruncated(t *testing.T) {
	c := &Chunk{
		Width:      FrameWidth,
		Height:     FrameHeight,
		LineNumber: 1,
		NumLines:   4,
		Payload:    make([]byte, FrameWidth), // declares 4 lines, has 1
	}
	if _, err := c.Serialize(); !errors.Is(err, ErrTruncatedPayload) {
		t.Errorf("Serialize() error = %v, want %v", err, ErrTruncatedPayload)
	}
}
