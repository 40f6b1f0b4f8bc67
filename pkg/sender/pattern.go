package sender

import "github.com/rvflabs/rvf-go/pkg/protocol"

// TestPattern renders a moving diagonal gradient frame for tick t.
// Used by the generator tool so receivers have visibly changing input.
func TestPattern(t int) []byte {
	pixels := make([]byte, protocol.FrameBytes)
	for y := 0; y < protocol.FrameHeight; y++ {
		row := pixels[y*protocol.FrameWidth : (y+1)*protocol.FrameWidth]
		for x := range row {
			row[x] = byte(x + y*2 + t*3)
		}
	}
	return pixels
}
