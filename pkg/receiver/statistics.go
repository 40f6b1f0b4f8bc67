package receiver

import (
	"sync/atomic"
	"time"
)

// Statistics tracks receiver-level metrics: what arrived on the wire
// before the reassembler saw it.
type Statistics struct {
	datagramsReceived uint64
	bytesReceived     uint64
	badDatagrams      uint64
	parseErrors       uint64
	framesEmitted     uint64

	lastDatagramTimeNano int64
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	return &Statistics{}
}

// DatagramReceived records one received datagram of n bytes
func (s *Statistics) DatagramReceived(n uint64) {
	atomic.AddUint64(&s.datagramsReceived, 1)
	atomic.AddUint64(&s.bytesReceived, n)
	atomic.StoreInt64(&s.lastDatagramTimeNano, time.Now().UnixNano())
}

// BadDatagram records a datagram that failed the magic pre-filter
func (s *Statistics) BadDatagram() {
	atomic.AddUint64(&s.badDatagrams, 1)
}

// ParseError records a datagram that failed header parsing
func (s *Statistics) ParseError() {
	atomic.AddUint64(&s.parseErrors, 1)
}

// FrameEmitted records a completed-frame notification
func (s *Statistics) FrameEmitted() {
	atomic.AddUint64(&s.framesEmitted, 1)
}

// GetDatagramsReceived returns the received datagram count
func (s *Statistics) GetDatagramsReceived() uint64 {
	return atomic.LoadUint64(&s.datagramsReceived)
}

// GetBytesReceived returns the received byte count
func (s *Statistics) GetBytesReceived() uint64 {
	return atomic.LoadUint64(&s.bytesReceived)
}

// GetBadDatagrams returns the count of datagrams without the magic marker
func (s *Statistics) GetBadDatagrams() uint64 {
	return atomic.LoadUint64(&s.badDatagrams)
}

// GetParseErrors returns the count of unparseable datagrams
func (s *Statistics) GetParseErrors() uint64 {
	return atomic.LoadUint64(&s.parseErrors)
}

// GetFramesEmitted returns the completed-frame notification count
func (s *Statistics) GetFramesEmitted() uint64 {
	return atomic.LoadUint64(&s.framesEmitted)
}

// GetLastDatagramTime returns when the last datagram arrived
func (s *Statistics) GetLastDatagramTime() time.Time {
	nano := atomic.LoadInt64(&s.lastDatagramTimeNano)
	if nano == 0 {
		return time.Time{}
	}
	return time.Unix(0, nano)
}

// Reset resets all statistics to zero
func (s *Statistics) Reset() {
	atomic.StoreUint64(&s.datagramsReceived, 0)
	atomic.StoreUint64(&s.bytesReceived, 0)
	atomic.StoreUint64(&s.badDatagrams, 0)
	atomic.StoreUint64(&s.parseErrors, 0)
	atomic.StoreUint64(&s.framesEmitted, 0)
	atomic.StoreInt64(&s.lastDatagramTimeNano, 0)
}
