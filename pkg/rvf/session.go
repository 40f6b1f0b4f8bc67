package rvf

import (
	"sync"

	"github.com/google/uuid"

	"github.com/rvflabs/rvf-go/pkg/channel"
	"github.com/rvflabs/rvf-go/pkg/internal/logger"
	"github.com/rvflabs/rvf-go/pkg/internal/queue"
	"github.com/rvflabs/rvf-go/pkg/reassembly"
	"github.com/rvflabs/rvf-go/pkg/receiver"
)

// Session is one capture stream: a channel, its receiver, and a
// fan-out of completed frames to any number of subscribers.
//
// Each subscriber gets a bounded drop-oldest queue, so a slow consumer
// (disk export, preview socket) sees fresh frames late rather than
// stalling the stream goroutine.
type Session struct {
	id     string
	name   string
	recv   *receiver.Receiver
	ch     channel.DatagramChannel
	logger logger.Logger

	subs   map[string]*Subscription
	subsMu sync.RWMutex
}

// Subscription is one subscriber's view of a session's frames
type Subscription struct {
	id      string
	session *Session
	q       *queue.Dropping
}

// DefaultSubscriptionDepth bounds each subscriber's frame backlog
const DefaultSubscriptionDepth = 8

// newSession wires a channel to a fresh receiver
func newSession(name string, ch channel.DatagramChannel, config receiver.ReceiverConfig) *Session {
	log := config.Logger
	if log == nil {
		log = logger.GetDefault()
	}

	s := &Session{
		id:     uuid.NewString(),
		name:   name,
		recv:   receiver.NewReceiver(ch, config),
		ch:     ch,
		logger: log,
		subs:   make(map[string]*Subscription),
	}

	s.recv.OnFrame(s.fanOut)
	return s
}

// fanOut pushes a completed frame to every subscriber queue
func (s *Session) fanOut(frame *reassembly.Frame) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()

	for _, sub := range s.subs {
		if !sub.q.Push(frame) {
			s.logger.Debug("Session %s: subscriber %s dropped a frame", s.name, sub.id)
		}
	}
}

// Subscribe registers a frame consumer with the given queue depth
// (<=0 uses the default)
func (s *Session) Subscribe(depth int) *Subscription {
	if depth <= 0 {
		depth = DefaultSubscriptionDepth
	}

	sub := &Subscription{
		id:      uuid.NewString(),
		session: s,
		q:       queue.NewDropping(depth),
	}

	s.subsMu.Lock()
	s.subs[sub.id] = sub
	s.subsMu.Unlock()

	return sub
}

// Frames returns the subscriber's frame stream.
// Items are always *reassembly.Frame.
func (sub *Subscription) Frames() <-chan interface{} {
	return sub.q.Chan()
}

// Dropped returns how many frames this subscriber missed
func (sub *Subscription) Dropped() uint64 {
	return sub.q.Dropped()
}

// Cancel removes the subscription from its session
func (sub *Subscription) Cancel() {
	sub.session.subsMu.Lock()
	delete(sub.session.subs, sub.id)
	sub.session.subsMu.Unlock()
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Name returns the session name
func (s *Session) Name() string {
	return s.name
}

// Receiver exposes the underlying receiver for state and statistics
func (s *Session) Receiver() *receiver.Receiver {
	return s.recv
}

// StatusString returns the receiver's one-line status summary
func (s *Session) StatusString() string {
	return s.recv.StatusString()
}

// start begins the capture
func (s *Session) start() error {
	return s.recv.Start()
}

// stop terminates the capture and closes the channel
func (s *Session) stop() {
	s.recv.Stop()
	s.ch.Close()
}
