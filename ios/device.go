// Package ios implements the kernel-side IPC dispatcher (spec.md
// component C4) and the device registry / open-handle lifecycle
// (component C5). It is the Go analogue of original_source's
// kernel_ios.cpp: a name -> factory map, an int -> Device open-handle
// table, and a single dispatch entry point that a per-core
// ipcdriver.Driver submits wire.Buffer values to.
package ios

import "github.com/wiiu-emu/ios-core/wire"

// OpenMode mirrors the mode word an Open request carries in args[2].
type OpenMode uint32

const (
	OpenModeRead OpenMode = 1 << iota
	OpenModeWrite
)

// Device is the four-entry-point surface every pseudo-device implements
// (spec.md §3 "Device"). It generalizes the teacher's port-IO
// device.IODevice interface (Read/Write/IOPort/Size) to this domain's
// open/close/ioctl/ioctlv vocabulary: one small interface, no device
// hierarchy, exactly the shape spec.md §9 asks for.
type Device interface {
	Open(mode OpenMode) wire.Status
	Close() wire.Status
	Ioctl(request uint32, payload any) wire.Status
	Ioctlv(request uint32, payload any, vec []wire.IOBuffer) wire.Status
	SetHandle(handle int32)
}

// Factory constructs a fresh, unopened Device instance.
type Factory func() Device
