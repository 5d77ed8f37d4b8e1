package event

import "fmt"

// MsgQueue is a small bounded message queue, standing in for OSMessageQueue.
// FS command blocks post their async result here — either the caller's
// own queue (async calls) or a one-slot internal queue the block owns for
// the duration of a synchronous call (spec.md §4.6 "Prepare").
type MsgQueue[T any] struct {
	ch chan T
}

// NewMsgQueue returns a MsgQueue with the given fixed capacity.
func NewMsgQueue[T any](capacity int) *MsgQueue[T] {
	return &MsgQueue[T]{ch: make(chan T, capacity)}
}

// Send posts v without blocking. Per spec.md §4.6, failing to post a
// result is a fatal invariant violation: a full queue here means a
// caller is not draining its results, which the original treats as an
// abort rather than a recoverable error.
func (q *MsgQueue[T]) Send(v T) {
	select {
	case q.ch <- v:
	default:
		panic(fmt.Sprintf("event: message queue full, cannot post result %+v", v))
	}
}

// Receive blocks until a value is posted.
func (q *MsgQueue[T]) Receive() T {
	return <-q.ch
}
