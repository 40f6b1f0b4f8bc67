package export

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rvflabs/rvf-go/pkg/reassembly"
)

// SnapshotWriter saves completed frames as grayscale PNG files.
type SnapshotWriter struct {
	dir string
}

// NewSnapshotWriter creates a writer saving into dir, creating it if
// needed.
func NewSnapshotWriter(dir string) (*SnapshotWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &SnapshotWriter{dir: dir}, nil
}

// Write saves one frame and returns the file path.
// Files are named by frame identifier and capture time, so replays of
// the same stream do not collide.
func (w *SnapshotWriter) Write(frame *reassembly.Frame) (string, error) {
	img := FrameImage(frame)

	name := fmt.Sprintf("frame_%06d_%s.png", frame.FrameID,
		frame.Timestamp.Format("20060102T150405.000"))
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	return path, nil
}

// FrameImage wraps a frame's pixels as a grayscale image without
// copying.
func FrameImage(frame *reassembly.Frame) *image.Gray {
	return &image.Gray{
		Pix:    frame.Pixels,
		Stride: frame.Width,
		Rect:   image.Rect(0, 0, frame.Width, frame.Height),
	}
}
