package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Chunk represents one RVF transport chunk carrying a slice of
// consecutive scanlines for a single frame.
//
// A Chunk is immutable once constructed; consumers must not modify
// Payload after handing the chunk to a reassembler.
type Chunk struct {
	// Header fields
	Width      uint16 // Declared frame width
	Height     uint16 // Declared frame height
	LineNumber uint16 // First scanline carried, 1-based
	NumLines   uint8  // Count of consecutive scanlines carried
	EndFrame   bool   // Last chunk of the current frame
	FrameID    uint32 // Producer-assigned frame identifier
	Seq        uint32 // Global chunk counter, shared across frames

	// Scanline bytes, NumLines rows of Width bytes, top to bottom
	Payload []byte
}

// HasMagic reports whether buf begins with the RVF magic marker.
// It is the fast pre-filter applied to raw datagrams before a full
// header parse; it validates nothing beyond the first four bytes.
func HasMagic(buf []byte) bool {
	if len(buf) < len(Magic) {
		return false
	}
	return bytes.Equal(buf[:len(Magic)], Magic[:])
}

// ParseChunk parses wire format data into a Chunk.
// The returned chunk's Payload aliases data; callers that reuse the
// read buffer must copy first.
func ParseChunk(data []byte) (*Chunk, error) {
	if len(data) < HeaderSize {
		return nil, ErrChunkTooShort
	}
	if !HasMagic(data) {
		return nil, ErrInvalidMagic
	}
	if data[OffsetVersion] != Version {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, data[OffsetVersion])
	}

	c := &Chunk{
		Width:      binary.BigEndian.Uint16(data[OffsetWidth:]),
		Height:     binary.BigEndian.Uint16(data[OffsetHeight:]),
		LineNumber: binary.BigEndian.Uint16(data[OffsetLineNumber:]),
		NumLines:   data[OffsetNumLines],
		EndFrame:   data[OffsetEndFrame] != 0,
		FrameID:    binary.BigEndian.Uint32(data[OffsetFrameID:]),
		Seq:        binary.BigEndian.Uint32(data[OffsetSeq:]),
	}

	payloadLen := int(c.NumLines) * int(c.Width)
	if len(data)-HeaderSize < payloadLen {
		return nil, fmt.Errorf("%w: have %d, need %d",
			ErrTruncatedPayload, len(data)-HeaderSize, payloadLen)
	}
	c.Payload = data[HeaderSize : HeaderSize+payloadLen]

	return c, nil
}

// PayloadSize returns the number of payload bytes the header declares.
func (c *Chunk) PayloadSize() int {
	return int(c.NumLines) * int(c.Width)
}

// Serialize converts the chunk to wire format.
func (c *Chunk) Serialize() ([]byte, error) {
	if len(c.Payload) < c.PayloadSize() {
		return nil, fmt.Errorf("%w: have %d, need %d",
			ErrTruncatedPayload, len(c.Payload), c.PayloadSize())
	}

	buf := make([]byte, HeaderSize+c.PayloadSize())
	copy(buf[OffsetMagic:], Magic[:])
	buf[OffsetVersion] = Version
	binary.BigEndian.PutUint16(buf[OffsetWidth:], c.Width)
	binary.BigEndian.PutUint16(buf[OffsetHeight:], c.Height)
	binary.BigEndian.PutUint16(buf[OffsetLineNumber:], c.LineNumber)
	buf[OffsetNumLines] = c.NumLines
	if c.EndFrame {
		buf[OffsetEndFrame] = 1
	}
	binary.BigEndian.PutUint32(buf[OffsetFrameID:], c.FrameID)
	binary.BigEndian.PutUint32(buf[OffsetSeq:], c.Seq)
	copy(buf[HeaderSize:], c.Payload[:c.PayloadSize()])

	return buf, nil
}

// Clone creates a deep copy of the chunk
func (c *Chunk) Clone() *Chunk {
	payload := make([]byte, len(c.Payload))
	copy(payload, c.Payload)

	clone := *c
	clone.Payload = payload
	return &clone
}

// String returns a string representation of the chunk
func (c *Chunk) String() string {
	return fmt.Sprintf("Chunk{Frame=%d, Seq=%d, Line=%d, Lines=%d, End=%t, %dx%d}",
		c.FrameID, c.Seq, c.LineNumber, c.NumLines, c.EndFrame, c.Width, c.Height)
}
