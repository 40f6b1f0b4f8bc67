package queue

import "sync/atomic"

// Dropping is a bounded queue that discards the oldest item when full.
// Live-frame consumers want the freshest frames and must never apply
// backpressure to the stream goroutine, so Push always succeeds.
type Dropping struct {
	ch      chan interface{}
	dropped atomic.Uint64
}

// NewDropping creates a dropping queue with the given capacity
func NewDropping(capacity int) *Dropping {
	if capacity < 1 {
		capacity = 1
	}
	return &Dropping{
		ch: make(chan interface{}, capacity),
	}
}

// Push adds an item, evicting the oldest queued item if necessary.
// Returns false if an eviction happened.
func (q *Dropping) Push(value interface{}) bool {
	evicted := false
	for {
		select {
		case q.ch <- value:
			return !evicted
		default:
		}

		// Queue full: evict one and retry. Another consumer may race
		// us to the slot, hence the loop.
		select {
		case <-q.ch:
			q.dropped.Add(1)
			evicted = true
		default:
		}
	}
}

// Chan returns the receive side of the queue
func (q *Dropping) Chan() <-chan interface{} {
	return q.ch
}

// Len returns the number of queued items
func (q *Dropping) Len() int {
	return len(q.ch)
}

// Dropped returns the number of evicted items
func (q *Dropping) Dropped() uint64 {
	return q.dropped.Load()
}
