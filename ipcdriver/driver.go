// Package ipcdriver implements the per-core IPC driver (spec.md
// component C3): the allocate/submit/wait/free lifecycle a core uses to
// talk to the kernel's ios.Dispatcher across a fixed-capacity FIFO
// transport, plus the async callback path that plays the role of the
// original's "AppIO thread" reply handler.
package ipcdriver

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wiiu-emu/ios-core/event"
	"github.com/wiiu-emu/ios-core/ios"
	"github.com/wiiu-emu/ios-core/wire"
)

// Status is a Driver's own lifecycle state (spec.md's IPC Driver
// "status" field), distinct from wire.Status.
type Status int

const (
	Uninit Status = iota
	Initialised
	Open
	Closed
)

// Request is one of a Driver's N pre-allocated slots (spec.md's "IPC
// Request"): an owning IPC buffer plus the bookkeeping needed to route
// its eventual reply back to whichever caller allocated it.
type Request struct {
	index int
	buf   *wire.Buffer

	finishEvent   *event.AutoResetEvent
	asyncCallback func(*wire.Buffer)
	allocated     bool
}

// Buffer returns the request's underlying IPC buffer. Callers may
// inspect it (e.g. after WaitResponse) but must not retain it past
// FreeRequest.
func (r *Request) Buffer() *wire.Buffer { return r.buf }

// Driver is a single core's IPC driver: N buffers, N requests, a free
// FIFO seeded at Open, an outbound FIFO the background dispatch loop
// drains, and the counters spec.md §4.2 calls out.
type Driver struct {
	log        *zap.Logger
	dispatcher *ios.Dispatcher

	capacity int
	buffers  []*wire.Buffer
	requests []*Request

	freeMu   sync.Mutex
	free     *wire.FIFO[*Request]
	waitFree *event.Broadcaster

	outboundMu    sync.Mutex
	outbound      *wire.FIFO[*Request]
	outboundReady *event.AutoResetEvent
	stop          chan struct{}
	done          chan struct{}

	status Status

	requestsSubmitted     atomic.Uint64
	requestsProcessed     atomic.Uint64
	failedAllocateRequest atomic.Uint64
	failedFreeRequest     atomic.Uint64
}

// NewDriver returns a Driver with capacity request slots, dispatching
// through dispatcher. It starts Uninit; call Init then Open before use.
func NewDriver(capacity int, dispatcher *ios.Dispatcher, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}

	return &Driver{
		log:        log,
		dispatcher: dispatcher,
		capacity:   capacity,
		status:     Uninit,
	}
}

// Init prepares the wait-free event and marks the driver Initialised.
// It may be called again after Close, but never while Open.
func (d *Driver) Init() {
	if d.status == Open {
		panic("ipcdriver: Init called while driver is Open")
	}

	d.waitFree = event.NewBroadcaster()
	d.status = Initialised
}

// Open links each request to its buffer, seeds the free FIFO with all
// requests, and starts the background dispatch loop. Requires status to
// be Closed or Initialised.
func (d *Driver) Open() error {
	if d.status != Closed && d.status != Initialised {
		return fmt.Errorf("ipcdriver: Open requires Closed or Initialised, got %v", d.status)
	}

	d.buffers = make([]*wire.Buffer, d.capacity)
	d.requests = make([]*Request, d.capacity)
	d.free = wire.NewFIFO[*Request](d.capacity)
	d.outbound = wire.NewFIFO[*Request](d.capacity)
	d.outboundReady = event.NewAutoResetEvent()
	d.stop = make(chan struct{})
	d.done = make(chan struct{})

	for i := 0; i < d.capacity; i++ {
		buf := &wire.Buffer{}
		req := &Request{index: i, buf: buf}
		d.buffers[i] = buf
		d.requests[i] = req

		if err := d.free.Push(req); err != nil {
			return fmt.Errorf("ipcdriver: seeding free FIFO: %w", err)
		}
	}

	// free and outbound are seeded/used exclusively under freeMu/outboundMu
	// from here on; the loop above runs before Open publishes the driver.

	d.status = Open

	go d.dispatchLoop()

	return nil
}

// Close marks the driver Closed. Requests already allocated remain
// allocated until their replies arrive and are freed normally; Close
// does not cancel in-flight work.
func (d *Driver) Close() {
	d.status = Closed

	if d.stop != nil {
		close(d.stop)
		d.outboundReady.Signal() // unblock dispatchLoop if it is parked waiting for work
		<-d.done
	}
}

func (d *Driver) dispatchLoop() {
	defer close(d.done)

	for {
		select {
		case <-d.stop:
			return
		default:
		}

		d.outboundReady.Wait()

		for {
			d.outboundMu.Lock()
			req, err := d.outbound.Pop()
			d.outboundMu.Unlock()

			if err != nil {
				break
			}

			d.dispatcher.Dispatch(req.buf)
			d.requestsProcessed.Add(1)

			if req.asyncCallback != nil {
				req.asyncCallback(req.buf)
				d.freeRequest(req)
			} else {
				req.finishEvent.Signal()
			}
		}

		select {
		case <-d.stop:
			return
		default:
		}
	}
}

// AllocateRequest pops a request from the free FIFO, blocking on the
// wait-free event if none is available (spec.md §4.2 allocate_request).
// The returned request's buffer is zeroed and stamped with handle,
// command, and payload.
func (d *Driver) AllocateRequest(handle int32, command wire.Command, payload any, vec []wire.IOBuffer, asyncCallback func(*wire.Buffer)) *Request {
	for {
		d.freeMu.Lock()
		req, err := d.free.Pop()
		d.freeMu.Unlock()

		if err == nil {
			req.buf.Reset()
			req.buf.Handle = handle
			req.buf.Command = command
			req.buf.Payload = payload
			req.buf.Vec = vec
			req.allocated = true
			req.asyncCallback = asyncCallback

			return req
		}

		d.failedAllocateRequest.Add(1)
		d.waitFree.Wait()
	}
}

// SubmitRequest arms a fresh finish event and hands req to the
// dispatch loop via the outbound FIFO (spec.md §4.2 submit_request).
// Non-blocking from the caller's perspective.
func (d *Driver) SubmitRequest(req *Request) {
	req.finishEvent = event.NewAutoResetEvent()
	d.requestsSubmitted.Add(1)

	d.outboundMu.Lock()
	err := d.outbound.Push(req)
	d.outboundMu.Unlock()

	if err != nil {
		// The outbound FIFO shares capacity with the free FIFO, so it can
		// never receive more concurrently in-flight requests than were
		// ever allocated; a full push here is a bug in the driver itself.
		panic(fmt.Sprintf("ipcdriver: outbound FIFO full submitting request: %v", err))
	}

	d.outboundReady.Signal()
}

// WaitResponse blocks until req's reply has been written, frees req,
// and returns the reply status (spec.md §4.2 wait_response).
func (d *Driver) WaitResponse(req *Request) wire.Status {
	req.finishEvent.Wait()

	reply := req.buf.Reply

	d.freeRequest(req)

	return reply
}

// FreeRequest returns req to the free FIFO and wakes any allocator
// blocked on it (spec.md §4.2 free_request). Exported for callers that
// manage their own async lifecycle instead of going through Submit.
func (d *Driver) FreeRequest(req *Request) { d.freeRequest(req) }

func (d *Driver) freeRequest(req *Request) {
	if !req.allocated {
		panic(fmt.Sprintf("ipcdriver: request %d freed twice", req.index))
	}

	req.allocated = false

	d.freeMu.Lock()
	err := d.free.Push(req)
	d.freeMu.Unlock()

	if err != nil {
		d.failedFreeRequest.Add(1)
		d.log.Error("ipcdriver: free FIFO full freeing request, this is a driver bug", zap.Error(err))

		return
	}

	d.waitFree.SignalAll()
}

// BoundTransport adapts a Driver to fsclient.Transport for one already-
// open FSA handle. A fsclient.Client only ever talks to a single open
// FSA handle for its whole lifetime, so binding the handle here rather
// than threading it through every fsclient call keeps that package
// oblivious to ios.Dispatcher's handle allocation entirely.
type BoundTransport struct {
	driver *Driver
	handle int32
}

// Bind returns a Transport that stamps every submitted buffer with
// handle before allocating a request on d.
func (d *Driver) Bind(handle int32) *BoundTransport {
	return &BoundTransport{driver: d, handle: handle}
}

// Submit implements fsclient.Transport: allocate a request for buf on
// the bound handle, submit it, and invoke onReply from the dispatch
// loop once the kernel has written a reply. This is the async path;
// buf is not reused by the caller until onReply fires.
func (t *BoundTransport) Submit(buf *wire.Buffer, onReply func(*wire.Buffer)) {
	buf.Handle = t.handle

	req := t.driver.AllocateRequest(buf.Handle, buf.Command, buf.Payload, buf.Vec, onReply)
	t.driver.SubmitRequest(req)
}

// Counters is a snapshot of a Driver's diagnostic counters (spec.md's
// "counters (submitted/processed/failures)"), used by the diag package.
type Counters struct {
	Submitted             uint64
	Processed             uint64
	FailedAllocateRequest uint64
	FailedFreeRequest     uint64
	FreeLen               int
	OutboundLen           int
}

// Snapshot returns the driver's current counters.
func (d *Driver) Snapshot() Counters {
	c := Counters{
		Submitted:             d.requestsSubmitted.Load(),
		Processed:             d.requestsProcessed.Load(),
		FailedAllocateRequest: d.failedAllocateRequest.Load(),
		FailedFreeRequest:     d.failedFreeRequest.Load(),
	}

	if d.free != nil {
		d.freeMu.Lock()
		c.FreeLen = d.free.Len()
		d.freeMu.Unlock()
	}

	if d.outbound != nil {
		d.outboundMu.Lock()
		c.OutboundLen = d.outbound.Len()
		d.outboundMu.Unlock()
	}

	return c
}
