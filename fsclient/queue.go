package fsclient

import "sync"

// CmdQueue is a per-client ordered sequence of command blocks with
// priority ordering (spec.md's "FS Command Queue"). At most one block
// is submitted to the FSA device at a time; ProcessCmd dequeues the
// next one only once the current in-flight block has finished.
type CmdQueue struct {
	mu      sync.Mutex
	pending []*CmdBlock
	inFlight *CmdBlock

	// submit hands a dequeued block to the transport layer. Set once by
	// the owning Client; never nil once a Client is constructed.
	submit func(*CmdBlock)
}

func newCmdQueue(submit func(*CmdBlock)) *CmdQueue {
	return &CmdQueue{submit: submit}
}

// PushBack inserts block after every pending entry of equal or higher
// priority, preserving FIFO order among equal priorities (spec.md §4.6
// requeue's non-front path, and the ordinary enqueue path used when a
// command is first submitted).
func (q *CmdQueue) PushBack(block *CmdBlock) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := len(q.pending)
	for i > 0 && q.pending[i-1].Priority > block.Priority {
		i--
	}

	q.pending = append(q.pending, nil)
	copy(q.pending[i+1:], q.pending[i:])
	q.pending[i] = block
}

// PushFront inserts block ahead of every other pending entry,
// regardless of priority (used by Busy-requeue and the chunked-read
// driver, which must resume before any other client work runs).
func (q *CmdQueue) PushFront(block *CmdBlock) {
	q.mu.Lock()
	q.pending = append([]*CmdBlock{block}, q.pending...)
	q.mu.Unlock()
}

// finishCmdLocked marks the queue's current in-flight command as
// finished, if any. Called under the queue mutex from both Requeue and
// replyResult.
func (q *CmdQueue) finishCmdLocked() {
	q.inFlight = nil
}

// ProcessCmd dequeues and submits the next pending command if none is
// currently in flight (spec.md §3 "process next"). It is a no-op if the
// queue is empty or a command is already in flight.
func (q *CmdQueue) ProcessCmd() {
	q.mu.Lock()

	if q.inFlight != nil || len(q.pending) == 0 {
		q.mu.Unlock()
		return
	}

	next := q.pending[0]
	q.pending = q.pending[1:]
	q.inFlight = next
	next.Status = InProgress

	q.mu.Unlock()

	q.submit(next)
}

// Requeue implements spec.md §4.6 requeue: if block was cancelled while
// queued, it is retired with Cancelled instead of being resubmitted.
// Otherwise it is (re)inserted and ProcessCmd is invoked to keep the
// queue draining.
func (q *CmdQueue) Requeue(block *CmdBlock, insertAtFront bool, finishCmdFn func(*CmdBlock, Status)) {
	q.mu.Lock()

	block.finishCmdFn = finishCmdFn

	block.mu.Lock()
	cancelling := block.cancelling
	if cancelling {
		block.cancelling = false
		block.Status = CmdCancelled
	}
	block.mu.Unlock()

	if cancelling {
		if block.client != nil && block.client.lastDequeuedCommand == block {
			block.client.lastDequeuedCommand = nil
		}

		q.mu.Unlock()
		replyResult(block, Cancelled)

		return
	}

	block.Status = QueuedCommand
	q.finishCmdLocked()

	if insertAtFront {
		q.pending = append([]*CmdBlock{block}, q.pending...)
	} else {
		i := len(q.pending)
		for i > 0 && q.pending[i-1].Priority > block.Priority {
			i--
		}

		q.pending = append(q.pending, nil)
		copy(q.pending[i+1:], q.pending[i:])
		q.pending[i] = block
	}

	q.mu.Unlock()

	q.ProcessCmd()
}

// replyResult implements spec.md §4.6 reply_result: mark the in-flight
// slot finished, invoke the block's finish function, then start the
// next queued command.
func replyResult(block *CmdBlock, status Status) {
	client := block.client
	if client == nil {
		if block.finishCmdFn != nil {
			block.finishCmdFn(block, status)
		}

		return
	}

	client.queue.mu.Lock()
	client.queue.finishCmdLocked()
	client.queue.mu.Unlock()

	if block.finishCmdFn != nil {
		block.finishCmdFn(block, status)
	}

	client.queue.ProcessCmd()
}
