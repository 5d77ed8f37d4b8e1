package fsclient

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wiiu-emu/ios-core/event"
	"github.com/wiiu-emu/ios-core/fsa"
	"github.com/wiiu-emu/ios-core/wire"
)

// FSMaxBytesPerRequest bounds a single chunked-read IPC round-trip
// (spec.md §4.6 finish_read_cmd), matching original_source's constant.
const FSMaxBytesPerRequest = 256 * 1024

// Transport is the boundary a Client submits FSA requests across. It is
// implemented by ipcdriver.Driver bound to an open FSA handle: Submit
// stamps buf as an Ioctl/Ioctlv request, hands it to the per-core IPC
// driver, and calls onReply from the driver's AppIO handler goroutine
// once the kernel dispatcher has written a reply into buf.
type Transport interface {
	Submit(buf *wire.Buffer, onReply func(*wire.Buffer))
}

// Client is a registered FS client (spec.md's "FS Client Body" /
// original_source's FSClientBody): one command queue, one volume-state
// machine, and the last FSA status observed.
type Client struct {
	SessionID uuid.UUID

	transport Transport
	log       *zap.Logger

	queue *CmdQueue
	FSM   *FSM

	mu                  sync.Mutex
	registered          bool
	lastError           fsa.Status
	lastDequeuedCommand *CmdBlock
}

// NewClient registers a new client against transport (an FSA handle's
// per-core driver binding). The client starts registered; Unregister
// causes any command already in flight to complete with Cancelled
// instead of being delivered.
func NewClient(transport Transport, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		SessionID: uuid.New(),
		transport: transport,
		log:       log,
		FSM:       NewFSM(),
		registered: true,
	}
	c.queue = newCmdQueue(c.submit)

	return c
}

// Unregister marks the client unregistered; HandleResult treats any
// subsequent reply for this client's blocks as Cancelled (spec.md §4.6
// step 1).
func (c *Client) Unregister() {
	c.mu.Lock()
	c.registered = false
	c.mu.Unlock()
}

func (c *Client) isRegistered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.registered
}

// LastError returns the most recent FSA status this client's commands
// completed with.
func (c *Client) LastError() fsa.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastError
}

// PrepareAsync attaches block to client and arms it for one command,
// delivering its result via asyncData.Callback or asyncData.Queue
// (spec.md §4.6 Prepare).
// block must be Initialised or Cancelled. Exactly one of
// asyncData.Callback or asyncData.Queue must be set.
func PrepareAsync(client *Client, block *CmdBlock, errorMask ErrorFlag, asyncData AsyncData) Status {
	if block.Status != Initialised && block.Status != CmdCancelled {
		client.log.Error("invalid CmdBlock state for Prepare", zap.Stringer("status", block.Status))

		return FatalError
	}

	if (asyncData.Callback != nil) == (asyncData.Queue != nil) {
		client.log.Error("async callback and message queue are mutually exclusive")

		return FatalError
	}

	block.ErrorMask = errorMask
	block.client = client
	block.asyncData = asyncData

	return StatusOK
}

// PrepareSync is PrepareAsync with a block-owned one-slot queue the
// caller pops from with Wait; every synchronous call is async
// underneath (spec.md §4.6). Its error mask is empty: a synchronous
// caller wants the translated Status back, not an FSM Fatal transition
// swallowing it.
func PrepareSync(client *Client, block *CmdBlock) Status {
	q := event.NewMsgQueue[AsyncResult](1)

	return PrepareAsync(client, block, FlagNone, AsyncData{Queue: q})
}

// Wait blocks until block's command (prepared with PrepareSync)
// completes and returns its Status.
func Wait(block *CmdBlock) Status {
	result := block.asyncData.Queue.Receive()

	return result.Status
}

// submit is the CmdQueue's dispatch callback: it builds the wire.Buffer
// for block's shim and hands it to the transport, wiring HandleResult
// as the reply continuation. The reply's wire.Status is reinterpreted
// directly as an fsa.Status: fsa.Device.Ioctl/Ioctlv never returns
// anything but its own status space once a handle is open, which is
// the only path a Client's transport ever exercises.
func (c *Client) submit(block *CmdBlock) {
	buf := &wire.Buffer{Payload: block.shim}

	switch {
	case block.read.fullDst != nil:
		buf.Command = wire.CommandIoctlv
		end := block.read.bytesRead + block.read.readSize
		buf.Vec = []wire.IOBuffer{{Data: block.read.fullDst[block.read.bytesRead:end]}}
	case block.vecData != nil:
		buf.Command = wire.CommandIoctlv
		buf.Vec = []wire.IOBuffer{{Data: block.vecData}}
	default:
		buf.Command = wire.CommandIoctl
	}

	c.transport.Submit(buf, func(reply *wire.Buffer) {
		c.HandleResult(block, fsa.Status(reply.Reply))
	})
}

// enqueue is the entry point every FSA-command helper (OpenFile,
// ReadFile, ...) funnels through after populating block.shim: Prepare
// must already have run.
func (c *Client) enqueue(block *CmdBlock, finish func(*CmdBlock, Status)) Status {
	if block.client != c {
		return FatalError
	}

	c.queue.Requeue(block, false, finish)

	return StatusOK
}
