package ios

import (
	"bytes"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wiiu-emu/ios-core/wire"
)

// Dispatcher is the sole entry point a per-core ipcdriver.Driver submits
// wire.Buffer requests to (spec.md §4.3). It resolves Open/Close/Ioctl/
// Ioctlv requests against a Registry and an open-handle table, and is
// the only component that writes wire.CommandReply.
type Dispatcher struct {
	registry *Registry
	log      *zap.Logger

	mu         sync.Mutex
	open       map[int32]Device
	nextHandle int32
}

// NewDispatcher returns a Dispatcher serving devices out of registry.
// Handle allocation starts at 1, so 0 is never a live handle and -1
// (used by Open requests, which have no handle yet) can never collide
// with one.
func NewDispatcher(registry *Registry, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}

	return &Dispatcher{
		registry:   registry,
		log:        log,
		open:       make(map[int32]Device),
		nextHandle: 1,
	}
}

// Dispatch handles one IPC transaction in place: buf.Command selects the
// operation, and on return buf.Command is always wire.CommandReply with
// buf.Reply holding the result. Dispatch never blocks.
func (d *Dispatcher) Dispatch(buf *wire.Buffer) {
	prevHandle := buf.Handle
	prevCommand := buf.Command

	var reply wire.Status

	switch buf.Command {
	case wire.CommandOpen:
		name := parseName(buf.Buffer1.Data, buf.Args[1])
		mode := OpenMode(buf.Args[2])
		reply = d.openDevice(name, mode)
	case wire.CommandClose:
		reply = d.closeDevice(buf.Handle)
	case wire.CommandIoctl:
		dev, ok := d.getDevice(buf.Handle)
		if !ok {
			reply = wire.StatusInvalidHandle
		} else {
			reply = dev.Ioctl(buf.Args[0], buf.Payload)
		}
	case wire.CommandIoctlv:
		dev, ok := d.getDevice(buf.Handle)
		if !ok {
			reply = wire.StatusInvalidHandle
		} else {
			reply = dev.Ioctlv(buf.Args[0], buf.Payload, buf.Vec)
		}
	default:
		panic(fmt.Sprintf("ios: unimplemented IPC command %v", buf.Command))
	}

	buf.PrevHandle = prevHandle
	buf.PrevCommand = prevCommand
	buf.Reply = reply
	buf.Command = wire.CommandReply

	d.log.Debug("dispatched",
		zap.Stringer("command", prevCommand),
		zap.Int32("handle", prevHandle),
		zap.Stringer("reply", reply))
}

// parseName reads a NUL-terminated device name out of data, honoring
// length (which per spec.md §6 includes the terminator).
func parseName(data []byte, length uint32) string {
	if int(length) > len(data) {
		length = uint32(len(data))
	}

	if length == 0 {
		return ""
	}

	name := data[:length]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}

	return string(name)
}

// openDevice implements spec.md §4.4 open_device: construct, open, and
// on success register the device under a freshly allocated handle.
func (d *Dispatcher) openDevice(name string, mode OpenMode) wire.Status {
	factory, ok := d.registry.lookup(name)
	if !ok {
		return wire.StatusNoExists
	}

	dev := factory()

	if status := dev.Open(mode); status != wire.StatusOK {
		return status
	}

	d.mu.Lock()
	handle := d.nextHandle
	d.nextHandle++
	dev.SetHandle(handle)
	d.open[handle] = dev
	d.mu.Unlock()

	return wire.Status(handle)
}

// closeDevice implements spec.md §4.4's close path.
func (d *Dispatcher) closeDevice(handle int32) wire.Status {
	d.mu.Lock()
	dev, ok := d.open[handle]

	if ok {
		delete(d.open, handle)
	}

	d.mu.Unlock()

	if !ok {
		return wire.StatusInvalidHandle
	}

	return dev.Close()
}

// getDevice looks up a live device by handle.
func (d *Dispatcher) getDevice(handle int32) (Device, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	dev, ok := d.open[handle]

	return dev, ok
}
