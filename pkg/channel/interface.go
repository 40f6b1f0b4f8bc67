package channel

import "context"

// ConnectionStateListener receives notifications about connection state changes
type ConnectionStateListener interface {
	// OnConnectionEstablished is called when a new connection is established
	OnConnectionEstablished()

	// OnConnectionLost is called when a connection is lost
	OnConnectionLost()
}

// DatagramChannel represents a pluggable transport that delivers raw
// RVF chunk datagrams. Users implement this interface to provide UDP,
// TCP, QUIC, or any custom transport.
type DatagramChannel interface {
	// Read reads the next chunk datagram from the transport.
	// Blocks until data is available or the context is cancelled.
	// Returns one complete wire chunk (header + payload); buffers that
	// fail the magic pre-filter are dropped inside the channel and
	// never surfaced.
	Read(ctx context.Context) ([]byte, error)

	// Write writes one chunk datagram to the transport.
	// Must be thread-safe; producers and tools may write concurrently.
	Write(ctx context.Context, data []byte) error

	// Close closes the transport.
	// Should cleanup all resources and unblock any pending Read/Write.
	Close() error

	// Statistics returns transport-level statistics.
	// Optional - can return zero values if not tracked.
	Statistics() TransportStats

	// SetConnectionStateListener sets a listener for connection state changes.
	// Optional - connectionless transports can ignore this.
	SetConnectionStateListener(listener ConnectionStateListener)
}

// TransportStats provides transport-level statistics
type TransportStats struct {
	BytesSent     uint64 // Total bytes sent
	BytesReceived uint64 // Total bytes received
	WriteErrors   uint64 // Number of write errors
	ReadErrors    uint64 // Number of read errors
	Connects      uint64 // Number of connections (for connection-oriented transports)
	Disconnects   uint64 // Number of disconnections
}

// ChannelState represents the state of a channel
type ChannelState int

const (
	ChannelStateOpen ChannelState = iota
	ChannelStateClosed
)

// String returns string representation of ChannelState
func (s ChannelState) String() string {
	switch s {
	case ChannelStateOpen:
		return "Open"
	case ChannelStateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}
