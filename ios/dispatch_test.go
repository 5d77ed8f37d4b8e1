package ios_test

import (
	"testing"

	"github.com/wiiu-emu/ios-core/ios"
	"github.com/wiiu-emu/ios-core/wire"
)

type fakeDevice struct {
	handle int32
	closed bool
}

func (f *fakeDevice) Open(mode ios.OpenMode) wire.Status { return wire.StatusOK }
func (f *fakeDevice) Close() wire.Status                 { f.closed = true; return wire.StatusOK }

func (f *fakeDevice) Ioctl(request uint32, payload any) wire.Status {
	if request == 0xFF {
		return wire.Status(-100)
	}

	return wire.StatusOK
}

func (f *fakeDevice) Ioctlv(request uint32, payload any, vec []wire.IOBuffer) wire.Status {
	return wire.Status(len(vec))
}

func (f *fakeDevice) SetHandle(h int32) { f.handle = h }

func openName(name string) *wire.Buffer {
	data := append([]byte(name), 0)

	return &wire.Buffer{
		Command: wire.CommandOpen,
		Handle:  -1,
		Args:    [wire.ArgCount]uint32{0, uint32(len(data)), 0},
		Buffer1: wire.IOBuffer{Data: data},
	}
}

func TestOpenAllocatesIncreasingHandles(t *testing.T) {
	t.Parallel()

	reg := ios.NewRegistry()
	reg.Register("/dev/fsa", func() ios.Device { return &fakeDevice{} })

	d := ios.NewDispatcher(reg, nil)

	buf1 := openName("/dev/fsa")
	d.Dispatch(buf1)

	if buf1.Command != wire.CommandReply {
		t.Fatalf("Command after dispatch: got %v, want CommandReply", buf1.Command)
	}

	if buf1.Reply != 1 {
		t.Fatalf("first Open reply: got %v, want 1", buf1.Reply)
	}

	buf2 := openName("/dev/fsa")
	d.Dispatch(buf2)

	if buf2.Reply != 2 {
		t.Fatalf("second Open reply: got %v, want 2", buf2.Reply)
	}

	closeBuf := &wire.Buffer{Command: wire.CommandClose, Handle: 1}
	d.Dispatch(closeBuf)

	if closeBuf.Reply != wire.StatusOK {
		t.Fatalf("Close reply: got %v, want OK", closeBuf.Reply)
	}

	buf3 := openName("/dev/fsa")
	d.Dispatch(buf3)

	if buf3.Reply != 3 {
		t.Fatalf("third Open reply: got %v, want 3 (handles must never be reused)", buf3.Reply)
	}
}

func TestOpenUnknownDeviceReturnsNoExists(t *testing.T) {
	t.Parallel()

	d := ios.NewDispatcher(ios.NewRegistry(), nil)

	buf := openName("/dev/x")
	d.Dispatch(buf)

	if buf.Reply != wire.StatusNoExists {
		t.Fatalf("Open unknown device: got %v, want StatusNoExists", buf.Reply)
	}
}

func TestIoctlOnClosedHandleIsInvalidHandle(t *testing.T) {
	t.Parallel()

	reg := ios.NewRegistry()
	reg.Register("/dev/fsa", func() ios.Device { return &fakeDevice{} })
	d := ios.NewDispatcher(reg, nil)

	openBuf := openName("/dev/fsa")
	d.Dispatch(openBuf)

	closeBuf := &wire.Buffer{Command: wire.CommandClose, Handle: int32(openBuf.Reply)}
	d.Dispatch(closeBuf)

	ioctlBuf := &wire.Buffer{Command: wire.CommandIoctl, Handle: int32(openBuf.Reply)}
	d.Dispatch(ioctlBuf)

	if ioctlBuf.Reply != wire.StatusInvalidHandle {
		t.Fatalf("Ioctl after Close: got %v, want StatusInvalidHandle", ioctlBuf.Reply)
	}
}

func TestUnknownCommandPanics(t *testing.T) {
	t.Parallel()

	d := ios.NewDispatcher(ios.NewRegistry(), nil)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unimplemented command")
		}
	}()

	d.Dispatch(&wire.Buffer{Command: wire.CommandSeek})
}
