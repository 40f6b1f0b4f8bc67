package receiver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rvflabs/rvf-go/pkg/channel"
	"github.com/rvflabs/rvf-go/pkg/internal/logger"
	"github.com/rvflabs/rvf-go/pkg/protocol"
	"github.com/rvflabs/rvf-go/pkg/reassembly"
)

var ErrAlreadyStarted = errors.New("receiver already started")

// StreamState reports liveness of the incoming chunk stream
type StreamState int

const (
	StreamStateWaiting StreamState = iota // No frame seen yet
	StreamStateLive                       // Frames arriving
	StreamStateStalled                    // No frame within the liveness timeout
)

// String returns string representation of StreamState
func (s StreamState) String() string {
	switch s {
	case StreamStateWaiting:
		return "Waiting"
	case StreamStateLive:
		return "Live"
	case StreamStateStalled:
		return "Stalled"
	default:
		return "Unknown"
	}
}

// StateHandler receives stream liveness transitions
type StateHandler func(state StreamState)

// Receiver drives one capture stream: it reads chunk datagrams from a
// channel, parses them, and feeds the reassembler. It owns the liveness
// watchdog; the reassembler itself has no notion of time.
//
// The receiver is the single writer of its reassembler. All parse and
// apply failures are absorbed here; a bad chunk never stops the stream.
type Receiver struct {
	ch     channel.DatagramChannel
	reasm  *reassembly.Reassembler
	stats  *Statistics
	logger logger.Logger

	livenessTimeout time.Duration

	stateHandler StateHandler
	state        StreamState
	stateMu      sync.Mutex

	// Lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	startMu sync.Mutex
}

// ReceiverConfig configures a receiver
type ReceiverConfig struct {
	// LivenessTimeout is how long the stream may go without a
	// completed frame before it is reported stalled. Default: 5s.
	LivenessTimeout time.Duration

	// Logger for stream-level diagnostics (nil = default logger)
	Logger logger.Logger
}

// NewReceiver creates a receiver reading from the given channel
func NewReceiver(ch channel.DatagramChannel, config ReceiverConfig) *Receiver {
	if config.LivenessTimeout == 0 {
		config.LivenessTimeout = 5 * time.Second
	}
	log := config.Logger
	if log == nil {
		log = logger.GetDefault()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Receiver{
		ch:              ch,
		reasm:           reassembly.NewReassembler(),
		stats:           NewStatistics(),
		logger:          log,
		livenessTimeout: config.LivenessTimeout,
		state:           StreamStateWaiting,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// OnFrame registers the completed-frame handler.
// Must be called before Start.
func (r *Receiver) OnFrame(handler reassembly.FrameHandler) {
	r.reasm.OnFrame(func(frame *reassembly.Frame) {
		r.stats.FrameEmitted()
		r.setState(StreamStateLive)
		handler(frame)
	})
}

// OnStateChange registers the liveness transition handler.
// Must be called before Start.
func (r *Receiver) OnStateChange(handler StateHandler) {
	r.stateHandler = handler
}

// Start begins reading chunks. A fresh capture session starts from a
// clean sequence baseline.
func (r *Receiver) Start() error {
	r.startMu.Lock()
	defer r.startMu.Unlock()

	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	r.reasm.ResetAll()

	r.wg.Add(1)
	go r.readLoop()

	r.wg.Add(1)
	go r.watchdog()

	return nil
}

// Stop terminates the read loop and the watchdog
func (r *Receiver) Stop() {
	r.cancel()
	r.wg.Wait()
}

// readLoop pulls datagrams off the channel and applies them
func (r *Receiver) readLoop() {
	defer r.wg.Done()

	for {
		data, err := r.ch.Read(r.ctx)
		if err != nil {
			if r.ctx.Err() != nil {
				return
			}
			r.logger.Warn("Receiver: channel read failed: %v", err)
			continue
		}

		r.stats.DatagramReceived(uint64(len(data)))

		// The channel already pre-filtered the magic marker, but a
		// custom channel implementation may not have.
		if !protocol.HasMagic(data) {
			r.stats.BadDatagram()
			continue
		}

		chunk, err := protocol.ParseChunk(data)
		if err != nil {
			r.stats.ParseError()
			r.logger.Debug("Receiver: dropping unparseable chunk: %v", err)
			continue
		}

		r.reasm.Apply(chunk)
	}
}

// watchdog reports the stream stalled when no frame completes within
// the liveness timeout
func (r *Receiver) watchdog() {
	defer r.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			last := r.reasm.Statistics().GetLastFrameTime()
			if last.IsZero() {
				continue
			}
			if time.Since(last) > r.livenessTimeout {
				r.setState(StreamStateStalled)
			}
		}
	}
}

// setState transitions the stream state and notifies the handler
func (r *Receiver) setState(state StreamState) {
	r.stateMu.Lock()
	changed := r.state != state
	prev := r.state
	r.state = state
	handler := r.stateHandler
	r.stateMu.Unlock()

	if !changed {
		return
	}

	r.logger.Info("Receiver: stream %s -> %s", prev, state)
	if handler != nil {
		handler(state)
	}
}

// State returns the current stream liveness state
func (r *Receiver) State() StreamState {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.state
}

// Reassembler exposes the underlying reassembler for statistics access
func (r *Receiver) Reassembler() *reassembly.Reassembler {
	return r.reasm
}

// Statistics returns the receiver-level statistics tracker
func (r *Receiver) Statistics() *Statistics {
	return r.stats
}
