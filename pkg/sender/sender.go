package sender

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/rvflabs/rvf-go/pkg/channel"
	"github.com/rvflabs/rvf-go/pkg/protocol"
)

// Sender streams frames to a datagram channel as RVF chunks.
// It is the producer-side counterpart of the reassembler and drives
// the generator tool, the examples, and end-to-end tests.
type Sender struct {
	ch      channel.DatagramChannel
	chunker *Chunker

	chunkDelay time.Duration
	lossRate   float64
	rng        *rand.Rand

	stats struct {
		framesSent    atomic.Uint64
		chunksSent    atomic.Uint64
		chunksDropped atomic.Uint64
	}
}

// SenderConfig configures a sender
type SenderConfig struct {
	LinesPerChunk int           // Scanlines per chunk (default 4)
	ChunkDelay    time.Duration // Pause between chunks (0 = no pacing)

	// LossRate injects synthetic chunk loss for gap-accounting soak
	// tests: each chunk is independently dropped with this probability.
	LossRate float64
	Seed     int64 // RNG seed for loss injection (0 = time-based)
}

// NewSender creates a sender writing to the given channel
func NewSender(ch channel.DatagramChannel, config SenderConfig) *Sender {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Sender{
		ch:         ch,
		chunker:    NewChunker(config.LinesPerChunk),
		chunkDelay: config.ChunkDelay,
		lossRate:   config.LossRate,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// SendFrame chunks one frame and writes every chunk to the channel.
// Synthetic loss drops chunks before the write; the Seq counter still
// advances, so receivers observe genuine gaps.
func (s *Sender) SendFrame(ctx context.Context, pixels []byte) error {
	chunks, err := s.chunker.ChunkFrame(pixels)
	if err != nil {
		return err
	}

	for _, chunk := range chunks {
		if s.lossRate > 0 && s.rng.Float64() < s.lossRate {
			s.stats.chunksDropped.Add(1)
			continue
		}

		wire, err := chunk.Serialize()
		if err != nil {
			return fmt.Errorf("serialize chunk: %w", err)
		}
		if err := s.ch.Write(ctx, wire); err != nil {
			return fmt.Errorf("write chunk seq %d: %w", chunk.Seq, err)
		}
		s.stats.chunksSent.Add(1)

		if s.chunkDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.chunkDelay):
			}
		}
	}

	s.stats.framesSent.Add(1)
	return nil
}

// SendChunk serializes and writes a single chunk as-is.
// Used by tools that need precise control over header fields.
func (s *Sender) SendChunk(ctx context.Context, chunk *protocol.Chunk) error {
	wire, err := chunk.Serialize()
	if err != nil {
		return err
	}
	if err := s.ch.Write(ctx, wire); err != nil {
		return err
	}
	s.stats.chunksSent.Add(1)
	return nil
}

// FramesSent returns the number of frames sent
func (s *Sender) FramesSent() uint64 {
	return s.stats.framesSent.Load()
}

// ChunksSent returns the number of chunks written to the channel
func (s *Sender) ChunksSent() uint64 {
	return s.stats.chunksSent.Load()
}

// ChunksDropped returns the number of chunks dropped by loss injection
func (s *Sender) ChunksDropped() uint64 {
	return s.stats.chunksDropped.Load()
}
