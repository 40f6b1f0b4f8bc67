package channel

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rvflabs/rvf-go/pkg/protocol"
)

// readChunkFrame reads one complete RVF chunk from a byte stream.
// Stream transports (TCP, QUIC) have no datagram boundaries, so the
// payload length is derived from the header's declared geometry:
// numLines * width bytes follow the fixed header.
func readChunkFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, protocol.HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	if !protocol.HasMagic(header) {
		return nil, fmt.Errorf("stream out of sync: %w", protocol.ErrInvalidMagic)
	}

	width := binary.BigEndian.Uint16(header[protocol.OffsetWidth:])
	numLines := header[protocol.OffsetNumLines]
	payloadLen := int(numLines) * int(width)

	chunk := make([]byte, protocol.HeaderSize+payloadLen)
	copy(chunk, header)

	if payloadLen > 0 {
		if _, err := io.ReadFull(r, chunk[protocol.HeaderSize:]); err != nil {
			return nil, err
		}
	}

	return chunk, nil
}
