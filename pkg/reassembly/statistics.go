package reassembly

import (
	"sync/atomic"
	"time"
)

// Statistics tracks cross-frame reassembly metrics.
// All counters are atomic so status and metrics layers can read them
// while the stream goroutine keeps applying chunks.
type Statistics struct {
	chunksApplied          uint64
	chunksDroppedGeometry  uint64
	chunksDroppedEmpty     uint64
	chunksDroppedBounds    uint64
	chunksDroppedTruncated uint64
	seqGaps                uint64
	linesWritten           uint64
	framesCompleted        uint64
	framesPartial          uint64

	lastFrameTimeNano int64
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	return &Statistics{}
}

// ChunkApplied increments the applied chunk count
func (s *Statistics) ChunkApplied() {
	atomic.AddUint64(&s.chunksApplied, 1)
}

// ChunkDroppedGeometry increments chunks dropped for geometry mismatch
func (s *Statistics) ChunkDroppedGeometry() {
	atomic.AddUint64(&s.chunksDroppedGeometry, 1)
}

// ChunkDroppedEmpty increments chunks dropped for zero scanlines
func (s *Statistics) ChunkDroppedEmpty() {
	atomic.AddUint64(&s.chunksDroppedEmpty, 1)
}

// ChunkDroppedBounds increments chunks dropped for an out-of-range
// start row
func (s *Statistics) ChunkDroppedBounds() {
	atomic.AddUint64(&s.chunksDroppedBounds, 1)
}

// ChunkDroppedTruncated increments chunks dropped for short payloads
func (s *Statistics) ChunkDroppedTruncated() {
	atomic.AddUint64(&s.chunksDroppedTruncated, 1)
}

// SeqGap increments the sequence discontinuity count
func (s *Statistics) SeqGap() {
	atomic.AddUint64(&s.seqGaps, 1)
}

// LineWritten increments the distinct scanline count
func (s *Statistics) LineWritten() {
	atomic.AddUint64(&s.linesWritten, 1)
}

// FrameCompleted increments the full-coverage frame count
func (s *Statistics) FrameCompleted() {
	atomic.AddUint64(&s.framesCompleted, 1)
	atomic.StoreInt64(&s.lastFrameTimeNano, time.Now().UnixNano())
}

// FramePartial increments the partial-coverage frame count
func (s *Statistics) FramePartial() {
	atomic.AddUint64(&s.framesPartial, 1)
	atomic.StoreInt64(&s.lastFrameTimeNano, time.Now().UnixNano())
}

// GetChunksApplied returns the applied chunk count
func (s *Statistics) GetChunksApplied() uint64 {
	return atomic.LoadUint64(&s.chunksApplied)
}

// GetChunksDropped returns the total dropped chunk count
func (s *Statistics) GetChunksDropped() uint64 {
	return atomic.LoadUint64(&s.chunksDroppedGeometry) +
		atomic.LoadUint64(&s.chunksDroppedEmpty) +
		atomic.LoadUint64(&s.chunksDroppedBounds) +
		atomic.LoadUint64(&s.chunksDroppedTruncated)
}

// GetChunksDroppedGeometry returns chunks dropped for geometry mismatch
func (s *Statistics) GetChunksDroppedGeometry() uint64 {
	return atomic.LoadUint64(&s.chunksDroppedGeometry)
}

// GetChunksDroppedEmpty returns chunks dropped for zero scanlines
func (s *Statistics) GetChunksDroppedEmpty() uint64 {
	return atomic.LoadUint64(&s.chunksDroppedEmpty)
}

// GetChunksDroppedBounds returns chunks dropped for bad start rows
func (s *Statistics) GetChunksDroppedBounds() uint64 {
	return atomic.LoadUint64(&s.chunksDroppedBounds)
}

// GetChunksDroppedTruncated returns chunks dropped for short payloads
func (s *Statistics) GetChunksDroppedTruncated() uint64 {
	return atomic.LoadUint64(&s.chunksDroppedTruncated)
}

// GetSeqGaps returns the total sequence discontinuity count
func (s *Statistics) GetSeqGaps() uint64 {
	return atomic.LoadUint64(&s.seqGaps)
}

// GetLinesWritten returns the total distinct scanline count
func (s *Statistics) GetLinesWritten() uint64 {
	return atomic.LoadUint64(&s.linesWritten)
}

// GetFramesCompleted returns the full-coverage frame count
func (s *Statistics) GetFramesCompleted() uint64 {
	return atomic.LoadUint64(&s.framesCompleted)
}

// GetFramesPartial returns the partial-coverage frame count
func (s *Statistics) GetFramesPartial() uint64 {
	return atomic.LoadUint64(&s.framesPartial)
}

// GetFramesEmitted returns the total frame notification count
func (s *Statistics) GetFramesEmitted() uint64 {
	return atomic.LoadUint64(&s.framesCompleted) + atomic.LoadUint64(&s.framesPartial)
}

// GetLastFrameTime returns when the last frame was emitted
func (s *Statistics) GetLastFrameTime() time.Time {
	nano := atomic.LoadInt64(&s.lastFrameTimeNano)
	if nano == 0 {
		return time.Time{}
	}
	return time.Unix(0, nano)
}

// Reset resets all statistics to zero
func (s *Statistics) Reset() {
	atomic.StoreUint64(&s.chunksApplied, 0)
	atomic.StoreUint64(&s.chunksDroppedGeometry, 0)
	atomic.StoreUint64(&s.chunksDroppedEmpty, 0)
	atomic.StoreUint64(&s.chunksDroppedBounds, 0)
	atomic.StoreUint64(&s.chunksDroppedTruncated, 0)
	atomic.StoreUint64(&s.seqGaps, 0)
	atomic.StoreUint64(&s.linesWritten, 0)
	atomic.StoreUint64(&s.framesCompleted, 0)
	atomic.StoreUint64(&s.framesPartial, 0)
	atomic.StoreInt64(&s.lastFrameTimeNano, 0)
}
