package reassembly

import (
	"time"

	"github.com/rvflabs/rvf-go/pkg/protocol"
)

// FrameHandler receives completed frames.
// It is invoked synchronously from Apply, exactly once per end-of-frame
// chunk. The frame carries an independent copy of the pixel data, so the
// handler may retain it while the reassembler accumulates the next frame.
type FrameHandler func(frame *Frame)

// Reassembler converts a stream of RVF chunks into completed frames.
//
// The frame buffer is reused across frames: rows not rewritten by the
// next frame keep their previous content. This is intentional protocol
// behavior (it allows partial-frame display), not something to clear.
//
// A Reassembler is single-writer: exactly one goroutine calls Apply.
// Use one instance per stream; the atomic statistics may be read from
// other goroutines.
type Reassembler struct {
	width  int
	height int

	// Frame accumulator
	buffer       []byte // width*height, reused across frames
	written      []bool // rows written in the current frame cycle
	linesWritten int
	seqGaps      int

	// Sequence tracking, shared across frame boundaries
	lastSeq     uint32
	haveLastSeq bool

	handler FrameHandler
	stats   *Statistics
}

// NewReassembler creates a reassembler for the fixed protocol geometry.
func NewReassembler() *Reassembler {
	return &Reassembler{
		width:   protocol.FrameWidth,
		height:  protocol.FrameHeight,
		buffer:  make([]byte, protocol.FrameBytes),
		written: make([]bool, protocol.FrameHeight),
		stats:   NewStatistics(),
	}
}

// OnFrame registers the completed-frame handler.
// Must be called before chunks are applied; only one handler is held.
func (r *Reassembler) OnFrame(handler FrameHandler) {
	r.handler = handler
}

// Apply consumes one chunk. Malformed or inconsistent chunks are
// dropped silently; Apply never fails. Sequence discontinuities are
// counted, never acted on.
func (r *Reassembler) Apply(chunk *protocol.Chunk) {
	// Geometry must match the fixed protocol frame exactly
	if int(chunk.Width) != r.width || int(chunk.Height) != r.height {
		r.stats.ChunkDroppedGeometry()
		return
	}
	if chunk.NumLines == 0 {
		r.stats.ChunkDroppedEmpty()
		return
	}

	// Gap detection against the global chunk counter. The baseline is
	// always advanced, so one lost chunk counts as exactly one gap,
	// attributed to whichever frame is in progress.
	if r.haveLastSeq && chunk.Seq != r.lastSeq+1 {
		r.seqGaps++
		r.stats.SeqGap()
	}
	r.lastSeq = chunk.Seq
	r.haveLastSeq = true

	startRow := int(chunk.LineNumber) - 1
	if startRow < 0 || startRow >= r.height {
		r.stats.ChunkDroppedBounds()
		return
	}

	if len(chunk.Payload) < int(chunk.NumLines)*r.width {
		r.stats.ChunkDroppedTruncated()
		return
	}

	// Copy scanlines row by row, skipping rows past the bottom edge
	// without rejecting the rest of the chunk.
	for i := 0; i < int(chunk.NumLines); i++ {
		row := startRow + i
		if row >= r.height {
			continue
		}
		copy(r.buffer[row*r.width:(row+1)*r.width], chunk.Payload[i*r.width:(i+1)*r.width])
		if !r.written[row] {
			r.written[row] = true
			r.linesWritten++
			r.stats.LineWritten()
		}
	}
	r.stats.ChunkApplied()

	if chunk.EndFrame {
		r.emitFrame(chunk)
	}
}

// emitFrame snapshots the buffer, notifies the handler, and resets the
// per-frame accumulator. The sequence baseline is kept.
func (r *Reassembler) emitFrame(chunk *protocol.Chunk) {
	pixels := make([]byte, len(r.buffer))
	copy(pixels, r.buffer)

	frame := &Frame{
		Pixels:       pixels,
		Width:        r.width,
		Height:       r.height,
		FrameID:      chunk.FrameID,
		Seq:          chunk.Seq,
		LinesWritten: r.linesWritten,
		SeqGaps:      r.seqGaps,
		Timestamp:    time.Now(),
	}

	if frame.Complete() {
		r.stats.FrameCompleted()
	} else {
		r.stats.FramePartial()
	}

	if r.handler != nil {
		r.handler(frame)
	}

	r.ResetFrameState()
}

// LinesWritten returns the count of distinct rows written in the
// current frame cycle.
func (r *Reassembler) LinesWritten() int {
	return r.linesWritten
}

// SeqGaps returns the count of sequence discontinuities observed in the
// current frame cycle.
func (r *Reassembler) SeqGaps() int {
	return r.seqGaps
}

// Statistics returns the cross-frame statistics tracker.
func (r *Reassembler) Statistics() *Statistics {
	return r.stats
}

// ResetFrameState clears the in-progress frame counters without
// touching the sequence baseline. Called after each completed frame.
func (r *Reassembler) ResetFrameState() {
	for i := range r.written {
		r.written[i] = false
	}
	r.linesWritten = 0
	r.seqGaps = 0
}

// ResetAll clears the sequence baseline and the frame counters.
// Used when a fresh capture session starts.
func (r *Reassembler) ResetAll() {
	r.ResetFrameState()
	r.lastSeq = 0
	r.haveLastSeq = false
}
