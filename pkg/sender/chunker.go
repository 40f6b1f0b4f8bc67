package sender

import (
	"fmt"

	"github.com/rvflabs/rvf-go/pkg/protocol"
)

// Chunker splits full frames into wire chunks. It owns the producer
// side counters: FrameID increments once per frame, Seq increments once
// per chunk and runs across frame boundaries.
type Chunker struct {
	linesPerChunk int
	nextFrameID   uint32
	nextSeq       uint32
}

// DefaultLinesPerChunk keeps chunks small enough for any transport.
const DefaultLinesPerChunk = 4

// NewChunker creates a chunker emitting linesPerChunk scanlines per
// chunk. Values outside [1, FrameHeight] fall back to the default.
func NewChunker(linesPerChunk int) *Chunker {
	if linesPerChunk < 1 || linesPerChunk > protocol.FrameHeight {
		linesPerChunk = DefaultLinesPerChunk
	}
	return &Chunker{linesPerChunk: linesPerChunk}
}

// ChunkFrame splits one width*height frame into chunks. The last chunk
// carries the end-of-frame flag. Payloads are copies; the caller may
// reuse pixels immediately.
func (k *Chunker) ChunkFrame(pixels []byte) ([]*protocol.Chunk, error) {
	if len(pixels) != protocol.FrameBytes {
		return nil, fmt.Errorf("frame must be %d bytes, got %d", protocol.FrameBytes, len(pixels))
	}

	frameID := k.nextFrameID
	k.nextFrameID++

	var chunks []*protocol.Chunk
	for row := 0; row < protocol.FrameHeight; row += k.linesPerChunk {
		lines := k.linesPerChunk
		if row+lines > protocol.FrameHeight {
			lines = protocol.FrameHeight - row
		}

		payload := make([]byte, lines*protocol.FrameWidth)
		copy(payload, pixels[row*protocol.FrameWidth:(row+lines)*protocol.FrameWidth])

		chunks = append(chunks, &protocol.Chunk{
			Width:      protocol.FrameWidth,
			Height:     protocol.FrameHeight,
			LineNumber: uint16(row + 1),
			NumLines:   uint8(lines),
			EndFrame:   row+lines == protocol.FrameHeight,
			FrameID:    frameID,
			Seq:        k.nextSeq,
			Payload:    payload,
		})
		k.nextSeq++
	}

	return chunks, nil
}

// NextSeq returns the sequence number the next chunk will carry.
func (k *Chunker) NextSeq() uint32 {
	return k.nextSeq
}

// NextFrameID returns the frame identifier the next frame will carry.
func (k *Chunker) NextFrameID() uint32 {
	return k.nextFrameID
}
