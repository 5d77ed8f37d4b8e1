// Package event provides the cooperative blocking primitives spec.md
// calls component C8 and treats as "assumed available from the host
// runtime layer" — the original names them OSInitEvent/OSWaitEvent/
// OSSignalEvent(All). They are implemented here over plain channels, the
// way the teacher builds a hybrid event/queue out of a buffered channel
// in machine.Machine.GetInputChan.
package event

import "sync"

// AutoResetEvent is a single-waiter, auto-resetting signal: one Signal
// wakes exactly one pending (or future) Wait, then the event returns to
// the unsignalled state. It models OSInitEvent(..., AutoReset) +
// OSWaitEvent + OSSignalEvent from the original.
type AutoResetEvent struct {
	ch chan struct{}
}

// NewAutoResetEvent returns an unsignalled auto-reset event.
func NewAutoResetEvent() *AutoResetEvent {
	return &AutoResetEvent{ch: make(chan struct{}, 1)}
}

// Wait blocks until the event is signalled.
func (e *AutoResetEvent) Wait() {
	<-e.ch
}

// Signal wakes one waiter (or arms the event for the next Wait if none
// is currently blocked). It never blocks.
func (e *AutoResetEvent) Signal() {
	select {
	case e.ch <- struct{}{}:
	default:
	}
}

// Broadcaster wakes every goroutine currently blocked in Wait, the way
// OSSignalEventAll wakes every thread waiting on an event rather than
// just one. Used for the IPC driver's free-FIFO wait, which may have
// more than one allocator blocked at once.
type Broadcaster struct {
	mu sync.Mutex
	ch chan struct{}
}

// NewBroadcaster returns a Broadcaster with no pending signal.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{ch: make(chan struct{})}
}

// Wait blocks until the next SignalAll call made after Wait started.
func (b *Broadcaster) Wait() {
	b.mu.Lock()
	ch := b.ch
	b.mu.Unlock()

	<-ch
}

// SignalAll wakes every goroutine currently parked in Wait.
func (b *Broadcaster) SignalAll() {
	b.mu.Lock()
	close(b.ch)
	b.ch = make(chan struct{})
	b.mu.Unlock()
}
