package sender

import (
	"bytes"
	"testing"

	"github.com/rvflabs/rvf-go/pkg/protocol"
)

// TestChunker_FullFrame verifies chunk layout for a full frame
func TestChunker_FullFrame(t *testing.T) {
	tests := []struct {
		name          string
		linesPerChunk int
		wantChunks    int
		wantLastLines uint8
	}{
		{
			name:          "Four lines per chunk",
			linesPerChunk: 4,
			wantChunks:    20,
			wantLastLines: 4,
		},
		{
			name:          "Uneven split",
			linesPerChunk: 7,
			wantChunks:    12, // 11*7 + 3
			wantLastLines: 3,
		},
		{
			name:          "Whole frame in one chunk",
			linesPerChunk: protocol.FrameHeight,
			wantChunks:    1,
			wantLastLines: protocol.FrameHeight,
		},
		{
			name:          "Invalid falls back to default",
			linesPerChunk: 0,
			wantChunks:    20,
			wantLastLines: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := NewChunker(tt.linesPerChunk)
			chunks, err := k.ChunkFrame(TestPattern(0))
			if err != nil {
				t.Fatalf("ChunkFrame() error = %v", err)
			}

			if len(chunks) != tt.wantChunks {
				t.Fatalf("chunk count = %d, want %d", len(chunks), tt.wantChunks)
			}

			last := chunks[len(chunks)-1]
			if last.NumLines != tt.wantLastLines {
				t.Errorf("last chunk NumLines = %d, want %d", last.NumLines, tt.wantLastLines)
			}
			if !last.EndFrame {
				t.Error("last chunk not flagged EndFrame")
			}

			for i, c := range chunks {
				if i < len(chunks)-1 && c.EndFrame {
					t.Errorf("chunk %d flagged EndFrame early", i)
				}
				if c.Seq != uint32(i) {
					t.Errorf("chunk %d Seq = %d, want %d", i, c.Seq, i)
				}
				if c.FrameID != 0 {
					t.Errorf("chunk %d FrameID = %d, want 0", i, c.FrameID)
				}
			}
		})
	}
}

// TestChunker_SeqRunsAcrossFrames verifies the global counter does not
// reset at frame boundaries
func TestChunker_SeqRunsAcrossFrames(t *testing.T) {
	k := NewChunker(4)

	for frame := 0; frame < 3; frame++ {
		chunks, err := k.ChunkFrame(TestPattern(frame))
		if err != nil {
			t.Fatalf("ChunkFrame() error = %v", err)
		}
		for i, c := range chunks {
			want := uint32(frame*20 + i)
			if c.Seq != want {
				t.Fatalf("frame %d chunk %d Seq = %d, want %d", frame, i, c.Seq, want)
			}
			if c.FrameID != uint32(frame) {
				t.Fatalf("frame %d chunk %d FrameID = %d", frame, i, c.FrameID)
			}
		}
	}

	if k.NextSeq() != 60 {
		t.Errorf("NextSeq = %d, want 60", k.NextSeq())
	}
}

// TestChunker_PayloadContent verifies scanlines are copied faithfully
func TestChunker_PayloadContent(t *testing.T) {
	pixels := TestPattern(7)
	k := NewChunker(8)

	chunks, err := k.ChunkFrame(pixels)
	if err != nil {
		t.Fatalf("ChunkFrame() error = %v", err)
	}

	for _, c := range chunks {
		start := (int(c.LineNumber) - 1) * protocol.FrameWidth
		want := pixels[start : start+len(c.Payload)]
		if !bytes.Equal(c.Payload, want) {
			t.Errorf("payload mismatch at line %d", c.LineNumber)
		}
	}

	// Mutating the source frame must not change emitted payloads
	first := chunks[0].Payload[0]
	pixels[0] ^= 0xFF
	if chunks[0].Payload[0] != first {
		t.Error("chunk payload aliases the source frame")
	}
}

// TestChunker_BadFrameSize rejects wrong frame sizes
func TestChunker_BadFrameSize(t *testing.T) {
	k := NewChunker(4)
	if _, err := k.ChunkFrame(make([]byte, 100)); err == nil {
		t.Error("ChunkFrame() accepted short frame")
	}
}
