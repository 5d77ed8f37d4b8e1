package fsclient

import (
	"testing"

	"github.com/wiiu-emu/ios-core/fsa"
)

// TestFinishReadCmdRequeuesAtFrontAheadOfCompetingCommand exercises
// spec.md §4.6 finish_read_cmd's continuation requeue: a chunked read
// that still has bytes remaining after a full-size round must resume
// before any other command already sitting in the queue, matching the
// front-insertion language used for the Busy-requeue case a few lines
// earlier in the same section.
func TestFinishReadCmdRequeuesAtFrontAheadOfCompetingCommand(t *testing.T) {
	t.Parallel()

	labels := map[*CmdBlock]string{}

	var order []string

	var queue *CmdQueue
	queue = newCmdQueue(func(b *CmdBlock) {
		order = append(order, labels[b])
		// Simulate the submitted command completing immediately so
		// ProcessCmd is free to dequeue whatever comes next.
		queue.mu.Lock()
		queue.finishCmdLocked()
		queue.mu.Unlock()
	})

	client := &Client{queue: queue}

	competing := &CmdBlock{client: client, Priority: 16}
	labels[competing] = "competing"
	queue.PushBack(competing)

	readBlock := &CmdBlock{
		client:   client,
		Priority: 16,
		shim:     &fsa.Shim{ResultCount: FSMaxBytesPerRequest},
		read: readState{
			bytesRead:      0,
			bytesRemaining: FSMaxBytesPerRequest + 1,
			readSize:       FSMaxBytesPerRequest,
			chunkSize:      1,
		},
	}
	labels[readBlock] = "read-continuation"

	// The read's first round is already in flight; finishReadCmd is the
	// reply handler for it.
	queue.inFlight = readBlock

	finishReadCmd(readBlock, StatusOK)

	if len(order) == 0 || order[0] != "read-continuation" {
		t.Fatalf("submit order = %v, want the read continuation submitted before the competing command", order)
	}
}
