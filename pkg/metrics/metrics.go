package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rvflabs/rvf-go/pkg/reassembly"
	"github.com/rvflabs/rvf-go/pkg/rvf"
)

var (
	registerOnce sync.Once

	frameCompleteness = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rvf",
			Subsystem: "frames",
			Name:      "completeness_ratio",
			Help:      "Fraction of scanlines present in each emitted frame.",
			Buckets:   []float64{0.25, 0.5, 0.75, 0.9, 0.95, 0.99, 1.0},
		},
	)
)

// RegisterMetrics registers the push-style collectors once
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(frameCompleteness)
	})
}

// ObserveFrame records per-frame observations
func ObserveFrame(frame *reassembly.Frame) {
	RegisterMetrics()
	frameCompleteness.Observe(frame.Completeness())
}

// SessionCollector exposes per-session stream counters at scrape time.
// The underlying statistics are atomic, so scraping never interferes
// with the stream goroutines.
type SessionCollector struct {
	manager *rvf.Manager

	datagramsDesc   *prometheus.Desc
	bytesDesc       *prometheus.Desc
	parseErrorsDesc *prometheus.Desc
	appliedDesc     *prometheus.Desc
	droppedDesc     *prometheus.Desc
	seqGapsDesc     *prometheus.Desc
	framesDesc      *prometheus.Desc
}

// NewSessionCollector creates a collector over the manager's sessions
func NewSessionCollector(manager *rvf.Manager) *SessionCollector {
	return &SessionCollector{
		manager: manager,
		datagramsDesc: prometheus.NewDesc(
			"rvf_datagrams_received_total",
			"Chunk datagrams received from the transport.",
			[]string{"session"}, nil,
		),
		bytesDesc: prometheus.NewDesc(
			"rvf_bytes_received_total",
			"Chunk bytes received from the transport.",
			[]string{"session"}, nil,
		),
		parseErrorsDesc: prometheus.NewDesc(
			"rvf_parse_errors_total",
			"Datagrams that failed header parsing.",
			[]string{"session"}, nil,
		),
		appliedDesc: prometheus.NewDesc(
			"rvf_chunks_applied_total",
			"Chunks accepted by the reassembler.",
			[]string{"session"}, nil,
		),
		droppedDesc: prometheus.NewDesc(
			"rvf_chunks_dropped_total",
			"Chunks discarded by the reassembler, by reason.",
			[]string{"session", "reason"}, nil,
		),
		seqGapsDesc: prometheus.NewDesc(
			"rvf_seq_gaps_total",
			"Sequence discontinuities observed.",
			[]string{"session"}, nil,
		),
		framesDesc: prometheus.NewDesc(
			"rvf_frames_total",
			"Frames emitted, by coverage result.",
			[]string{"session", "result"}, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.datagramsDesc
	ch <- c.bytesDesc
	ch <- c.parseErrorsDesc
	ch <- c.appliedDesc
	ch <- c.droppedDesc
	ch <- c.seqGapsDesc
	ch <- c.framesDesc
}

// Collect implements prometheus.Collector
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	for _, session := range c.manager.Sessions() {
		name := session.Name()
		recv := session.Receiver().Statistics()
		reasm := session.Receiver().Reassembler().Statistics()

		counter := func(desc *prometheus.Desc, value uint64, labels ...string) {
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue,
				float64(value), labels...)
		}

		counter(c.datagramsDesc, recv.GetDatagramsReceived(), name)
		counter(c.bytesDesc, recv.GetBytesReceived(), name)
		counter(c.parseErrorsDesc, recv.GetParseErrors(), name)
		counter(c.appliedDesc, reasm.GetChunksApplied(), name)

		counter(c.droppedDesc, reasm.GetChunksDroppedGeometry(), name, "geometry")
		counter(c.droppedDesc, reasm.GetChunksDroppedEmpty(), name, "empty")
		counter(c.droppedDesc, reasm.GetChunksDroppedBounds(), name, "bounds")
		counter(c.droppedDesc, reasm.GetChunksDroppedTruncated(), name, "truncated")

		counter(c.seqGapsDesc, reasm.GetSeqGaps(), name)

		counter(c.framesDesc, reasm.GetFramesCompleted(), name, "complete")
		counter(c.framesDesc, reasm.GetFramesPartial(), name, "partial")
	}
}
