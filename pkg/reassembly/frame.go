package reassembly

import (
	"fmt"
	"time"
)

// Frame is one completed grayscale frame plus reassembly metadata.
// Pixels is an independent copy owned by the receiver of the
// notification; later Apply calls never touch it.
type Frame struct {
	Pixels []byte // Width*Height grayscale bytes, row-major
	Width  int
	Height int

	FrameID      uint32    // Producer frame identifier of the end chunk
	Seq          uint32    // Sequence number of the end chunk
	LinesWritten int       // Distinct scanlines written this frame
	SeqGaps      int       // Sequence discontinuities observed this frame
	Timestamp    time.Time // When the end-of-frame chunk was applied
}

// Complete reports whether every scanline was written this frame.
func (f *Frame) Complete() bool {
	return f.LinesWritten == f.Height
}

// Completeness returns the fraction of scanlines written, in [0, 1].
func (f *Frame) Completeness() float64 {
	if f.Height == 0 {
		return 0
	}
	return float64(f.LinesWritten) / float64(f.Height)
}

// Row returns the pixel bytes of one scanline. The slice aliases
// Pixels; row must be in [0, Height).
func (f *Frame) Row(row int) []byte {
	return f.Pixels[row*f.Width : (row+1)*f.Width]
}

// String returns a string representation of the frame
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{ID=%d, Seq=%d, Lines=%d/%d, Gaps=%d}",
		f.FrameID, f.Seq, f.LinesWritten, f.Height, f.SeqGaps)
}
