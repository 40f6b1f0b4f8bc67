package protocol

import "errors"

// RVF Wire Format Constants

// Magic is the 4-byte marker that opens every RVF chunk header.
var Magic = [4]byte{'R', 'V', 'F', 'U'}

// Header layout
const (
	HeaderSize = 21 // Fixed chunk header size in bytes

	// Field offsets within the header
	OffsetMagic      = 0  // 4 bytes, ASCII "RVFU"
	OffsetVersion    = 4  // 1 byte, protocol version
	OffsetWidth      = 5  // 2 bytes, declared frame width
	OffsetHeight     = 7  // 2 bytes, declared frame height
	OffsetLineNumber = 9  // 2 bytes, first scanline carried, 1-based
	OffsetNumLines   = 11 // 1 byte, count of scanlines carried
	OffsetEndFrame   = 12 // 1 byte, 0/1 last-chunk-of-frame flag
	OffsetFrameID    = 13 // 4 bytes, producer frame identifier
	OffsetSeq        = 17 // 4 bytes, global chunk counter
)

// Frame geometry
const (
	FrameWidth  = 320 // Fixed frame width in pixels
	FrameHeight = 80  // Fixed frame height in pixels
	FrameBytes  = FrameWidth * FrameHeight

	// MaxChunkSize is the largest possible wire chunk
	// (header + 255 scanlines of FrameWidth bytes)
	MaxChunkSize = HeaderSize + 255*FrameWidth
)

// Protocol parameters
const (
	Version     uint8 = 1     // Current protocol version
	DefaultPort       = 50070 // Default transport port
)

// Parse errors
var (
	ErrChunkTooShort    = errors.New("chunk shorter than header")
	ErrInvalidMagic     = errors.New("invalid magic marker")
	ErrInvalidVersion   = errors.New("unsupported protocol version")
	ErrTruncatedPayload = errors.New("payload shorter than declared scanlines")
)
