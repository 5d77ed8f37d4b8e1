package ipcdriver_test

import (
	"testing"
	"time"

	"github.com/wiiu-emu/ios-core/fsa"
	"github.com/wiiu-emu/ios-core/hostfs"
	"github.com/wiiu-emu/ios-core/ios"
	"github.com/wiiu-emu/ios-core/ipcdriver"
	"github.com/wiiu-emu/ios-core/wire"
)

func openFSA(t *testing.T, dispatcher *ios.Dispatcher) int32 {
	t.Helper()

	name := "/dev/fsa\x00"

	buf := &wire.Buffer{
		Command: wire.CommandOpen,
		Handle:  -1,
		Buffer1: wire.IOBuffer{Data: []byte(name)},
	}
	buf.Args[1] = uint32(len(name))

	dispatcher.Dispatch(buf)

	if buf.Reply < 0 {
		t.Fatalf("opening /dev/fsa: got status %v", buf.Reply)
	}

	return int32(buf.Reply)
}

func newDispatcher(t *testing.T) *ios.Dispatcher {
	t.Helper()

	registry := ios.NewRegistry()
	registry.Register("/dev/fsa", fsa.Factory(fsa.NewDevice(hostfs.NewMem(), nil)))

	return ios.NewDispatcher(registry, nil)
}

func TestAllocateRequestBlocksUntilFreed(t *testing.T) {
	t.Parallel()

	d := ipcdriver.NewDriver(1, newDispatcher(t), nil)
	d.Init()

	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	first := d.AllocateRequest(0, wire.CommandIoctl, nil, nil, nil)

	secondReady := make(chan *ipcdriver.Request)
	go func() {
		secondReady <- d.AllocateRequest(0, wire.CommandIoctl, nil, nil, nil)
	}()

	select {
	case <-secondReady:
		t.Fatal("second AllocateRequest returned before the first was freed")
	case <-time.After(50 * time.Millisecond):
	}

	d.FreeRequest(first)

	select {
	case <-secondReady:
	case <-time.After(time.Second):
		t.Fatal("second AllocateRequest never unblocked after FreeRequest")
	}
}

func TestSubmitRequestRoundTripsThroughDispatcher(t *testing.T) {
	t.Parallel()

	dispatcher := newDispatcher(t)
	handle := openFSA(t, dispatcher)

	d := ipcdriver.NewDriver(4, dispatcher, nil)
	d.Init()

	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	shim := &fsa.Shim{Command: fsa.CommandMakeDir, Path: "/sub"}
	req := d.AllocateRequest(handle, wire.CommandIoctl, shim, nil, nil)
	d.SubmitRequest(req)

	if status := d.WaitResponse(req); status != wire.StatusOK {
		t.Fatalf("MakeDir via driver: got %v, want StatusOK", status)
	}

	snap := d.Snapshot()
	if snap.Submitted != 1 || snap.Processed != 1 {
		t.Fatalf("counters after one round trip: got %+v", snap)
	}
}

func TestBoundTransportStampsHandleAndInvokesAsyncCallback(t *testing.T) {
	t.Parallel()

	dispatcher := newDispatcher(t)
	handle := openFSA(t, dispatcher)

	d := ipcdriver.NewDriver(4, dispatcher, nil)
	d.Init()

	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	transport := d.Bind(handle)

	shim := &fsa.Shim{Command: fsa.CommandMakeDir, Path: "/from-transport"}
	buf := &wire.Buffer{Payload: shim, Command: wire.CommandIoctl}

	done := make(chan wire.Status, 1)
	transport.Submit(buf, func(reply *wire.Buffer) {
		if reply.Handle != handle {
			t.Errorf("reply.Handle: got %d, want %d", reply.Handle, handle)
		}
		done <- reply.Reply
	})

	select {
	case status := <-done:
		if status != wire.StatusOK {
			t.Fatalf("MakeDir via BoundTransport: got %v, want StatusOK", status)
		}
	case <-time.After(time.Second):
		t.Fatal("onReply never invoked")
	}
}
