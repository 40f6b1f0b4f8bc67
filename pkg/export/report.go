package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rvflabs/rvf-go/pkg/reassembly"
)

// SessionReport accumulates per-frame rows and writes them as a CSV
// spreadsheet when the capture session ends.
type SessionReport struct {
	mu      sync.Mutex
	started time.Time
	rows    [][]string
}

// NewSessionReport creates an empty report
func NewSessionReport() *SessionReport {
	return &SessionReport{started: time.Now()}
}

// Record adds one completed frame to the report
func (r *SessionReport) Record(frame *reassembly.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows = append(r.rows, []string{
		strconv.FormatUint(uint64(frame.FrameID), 10),
		strconv.FormatUint(uint64(frame.Seq), 10),
		strconv.Itoa(frame.LinesWritten),
		strconv.Itoa(frame.SeqGaps),
		fmt.Sprintf("%.1f", frame.Completeness()*100),
		frame.Timestamp.Format(time.RFC3339Nano),
	})
}

// FrameCount returns the number of recorded frames
func (r *SessionReport) FrameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// WriteFile writes the report as CSV to path
func (r *SessionReport) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	r.mu.Lock()
	defer r.mu.Unlock()

	w := csv.NewWriter(f)
	header := []string{"frame_id", "seq", "lines_written", "seq_gaps", "completeness_pct", "timestamp"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, row := range r.rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
