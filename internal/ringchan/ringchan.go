// Package ringchan provides a bounded event channel with overwrite-oldest
// semantics, used to stream discovery events to a consumer that may read
// slower than the radio produces.
package ringchan

import "sync/atomic"

// Ring wraps a buffered channel so that producers never block: when the
// buffer is full the oldest element is dropped to make room. Consumers read
// it like an ordinary channel via C.
type Ring[T any] struct {
	ch      chan T
	dropped atomic.Int64
}

// New creates a Ring with the given capacity. Panics if capacity <= 0.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("ringchan: capacity must be > 0")
	}
	return &Ring[T]{ch: make(chan T, capacity)}
}

// C returns the receive side. Consumers can range over it until Close.
func (r *Ring[T]) C() <-chan T {
	return r.ch
}

// Send enqueues v, discarding the oldest buffered element if the ring is
// full. It never blocks indefinitely.
func (r *Ring[T]) Send(v T) {
	select {
	case r.ch <- v:
	default:
		select {
		case <-r.ch:
			r.dropped.Add(1)
		default:
		}
		r.ch <- v
	}
}

// TrySend enqueues v only if there is room, reporting whether it did.
func (r *Ring[T]) TrySend(v T) bool {
	select {
	case r.ch <- v:
		return true
	default:
		return false
	}
}

// Len returns the number of buffered elements.
func (r *Ring[T]) Len() int {
	return len(r.ch)
}

// Dropped returns how many elements were discarded to make room.
func (r *Ring[T]) Dropped() int64 {
	return r.dropped.Load()
}

// Close closes the ring. Sending after Close panics.
func (r *Ring[T]) Close() {
	close(r.ch)
}
