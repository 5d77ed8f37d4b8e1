package fsclient

import (
	"sync"

	"github.com/wiiu-emu/ios-core/event"
	"github.com/wiiu-emu/ios-core/fsa"
)

// CmdBlockStatus is a CmdBlock's lifecycle state (spec.md's FS Command
// Block Body "status").
type CmdBlockStatus int

const (
	Initialised CmdBlockStatus = iota
	QueuedCommand
	InProgress
	CmdCancelled
)

func (s CmdBlockStatus) String() string {
	switch s {
	case Initialised:
		return "Initialised"
	case QueuedCommand:
		return "QueuedCommand"
	case InProgress:
		return "InProgress"
	case CmdCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// AsyncResult is what a message queue attached to a CmdBlock receives:
// the block that completed and its translated Status.
type AsyncResult struct {
	Block  *CmdBlock
	Status Status
}

// AsyncCallback is the alternative to a message queue: invoked directly
// from the AppIO handler path with the same payload an ioMsgQueue
// message would carry.
type AsyncCallback func(block *CmdBlock, status Status)

// AsyncData carries exactly one of Callback or Queue, never both
// (spec.md §4.6 Prepare); PrepareSync fills in Queue with a block-owned
// one-slot queue.
type AsyncData struct {
	Callback AsyncCallback
	Queue    *event.MsgQueue[AsyncResult]
}

// readState is the chunked-read driver's progress record (spec.md
// §4.6 finish_read_cmd). fullDst is the caller's whole destination
// slice; each round submits the [bytesRead : bytesRead+readSize] window
// of it, so the FSA device writes directly into the caller's buffer
// with no extra copy.
type readState struct {
	fullDst        []byte
	bytesRead      uint32
	bytesRemaining uint32
	readSize       uint32
	chunkSize      uint32
	pos            int64
	readWithPos    bool
}

// CmdBlock is the per-call scratch and metadata record a caller
// allocates once and can reuse across many commands (spec.md's "FS
// Command Block Body" / glossary "Block"). It corresponds to
// original_source's FSCmdBlockBody.
type CmdBlock struct {
	mu sync.Mutex

	Status    CmdBlockStatus
	Priority  int
	ErrorMask ErrorFlag

	client     *Client
	cancelling bool

	finishCmdFn func(*CmdBlock, Status)
	asyncData   AsyncData
	result      AsyncResult

	shim   *fsa.Shim
	output any

	// vecData carries a one-shot Ioctlv payload (e.g. WriteFile); read
	// carries the chunked-read driver's own multi-round window instead.
	vecData []byte
	read    readState

	userData any
}

// NewCmdBlock returns a CmdBlock ready for its first Prepare call,
// matching original_source's FSInitCmdBlock (default priority 16).
func NewCmdBlock() *CmdBlock {
	return &CmdBlock{Status: Initialised, Priority: 16}
}

// Reset returns block to its just-initialised state, discarding any
// command-specific binding left over from its last use. A block must be
// Initialised or Cancelled before it can be prepared again.
func (b *CmdBlock) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Status = Initialised
	b.Priority = 16
	b.ErrorMask = FlagNone
	b.cancelling = false
	b.finishCmdFn = nil
	b.asyncData = AsyncData{}
	b.result = AsyncResult{}
	b.shim = nil
	b.output = nil
	b.vecData = nil
	b.read = readState{}
}

// SetUserData stores an opaque caller value retrievable with UserData
// (original_source's FSSetUserData/FSGetUserData).
func (b *CmdBlock) SetUserData(v any) {
	b.mu.Lock()
	b.userData = v
	b.mu.Unlock()
}

// UserData returns the value last passed to SetUserData, or nil.
func (b *CmdBlock) UserData() any {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.userData
}

// Cancel requests cancellation of a queued (not yet in-flight) command.
// The cancelling bit is observed only at the next requeue boundary
// (spec.md §5 "Cancellation is cooperative").
func (b *CmdBlock) Cancel() {
	b.mu.Lock()
	b.cancelling = true
	b.mu.Unlock()
}
