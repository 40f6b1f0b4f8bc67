package export

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rvflabs/rvf-go/pkg/protocol"
	"github.com/rvflabs/rvf-go/pkg/reassembly"
)

func testFrame() *reassembly.Frame {
	pixels := make([]byte, protocol.FrameBytes)
	for i := range pixels {
		pixels[i] = byte(i)
	}
	return &reassembly.Frame{
		Pixels:       pixels,
		Width:        protocol.FrameWidth,
		Height:       protocol.FrameHeight,
		FrameID:      12,
		Seq:          240,
		LinesWritten: protocol.FrameHeight,
		Timestamp:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// TestSnapshotWriter writes a frame and decodes it back
func TestSnapshotWriter(t *testing.T) {
	dir := t.TempDir()
	w, err := NewSnapshotWriter(filepath.Join(dir, "snaps"))
	if err != nil {
		t.Fatalf("NewSnapshotWriter() error = %v", err)
	}

	frame := testFrame()
	path, err := w.Write(frame)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != protocol.FrameWidth || bounds.Dy() != protocol.FrameHeight {
		t.Errorf("snapshot size = %dx%d, want %dx%d",
			bounds.Dx(), bounds.Dy(), protocol.FrameWidth, protocol.FrameHeight)
	}
}

// TestSessionReport writes and spot-checks the CSV
func TestSessionReport(t *testing.T) {
	report := NewSessionReport()
	report.Record(testFrame())

	partial := testFrame()
	partial.FrameID = 13
	partial.LinesWritten = 40
	partial.SeqGaps = 2
	report.Record(partial)

	if report.FrameCount() != 2 {
		t.Fatalf("FrameCount = %d, want 2", report.FrameCount())
	}

	path := filepath.Join(t.TempDir(), "session.csv")
	if err := report.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("report has %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "frame_id,seq,") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "13,240,40,2,50.0") {
		t.Errorf("partial frame row = %q", lines[2])
	}
}
