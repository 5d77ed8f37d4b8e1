package wire

// ArgCount is the number of general-purpose argument words carried by a
// Buffer, matching the original IPC record's args[8].
const ArgCount = 8

// IOBuffer is an in-process stand-in for the (pointer, length) pair the
// original wire format carries for its data regions. Since the core and
// kernel dispatcher share one address space here, the pointer collapses
// to a plain byte slice; Len() still reports what the wire contract
// calls "length" for callers that only care about the size.
type IOBuffer struct {
	Data []byte
}

// Len reports the buffer's length in bytes.
func (b IOBuffer) Len() int { return len(b.Data) }

// Buffer is the single request/reply record passed between an
// ipcdriver.Driver and the ios.Dispatcher (spec.md §3 "IPC Buffer").
//
// Ownership is exclusive at every instant: the driver owns it until
// Submit, the kernel owns it until the reply is written, then the
// driver owns it again until it is freed back to the free FIFO. Command
// only ever moves request-kind -> CommandReply within one transaction;
// it never moves backwards.
//
// spec.md §6 requires byte-exact wire layout only insofar as it is
// needed to reproduce status-code and queue-ordering semantics, and
// explicitly excludes guest-ABI compatibility from this spec's scope.
// Since dispatcher and device live in the same process here, Payload and
// Vec carry Go values directly instead of a marshalled byte union: the
// dispatcher stays oblivious to their contents (it only routes them by
// handle), which is the property the original's opaque buffer pointers
// existed to provide in the first place.
type Buffer struct {
	Command Command
	// Handle identifies the target device, or -1 for CommandOpen where
	// the device does not exist yet.
	Handle int32
	Args    [ArgCount]uint32
	// Buffer1 carries the NUL-terminated device name for CommandOpen
	// (Args[1] is its length including the terminator, per spec.md §6).
	Buffer1 IOBuffer

	// Payload is the device-specific in/out record for CommandIoctl and
	// CommandIoctlv (e.g. *fsa.Shim). Opaque to the dispatcher.
	Payload any
	// Vec carries large binary regions alongside Payload for
	// CommandIoctlv; the FSA device's ReadFile and WriteFile take their
	// data buffer from Vec[0].
	Vec []IOBuffer

	// Reply carries the transport Status once Command == CommandReply.
	Reply Status

	// PrevHandle and PrevCommand echo the values the request carried,
	// written by the dispatcher alongside Reply.
	PrevHandle  int32
	PrevCommand Command

	Flags     uint32
	ProcessID uint32
}

// Reset clears a Buffer back to its zero value in place.
func (b *Buffer) Reset() {
	b.Command = 0
	b.Handle = 0
	b.Args = [ArgCount]uint32{}
	b.Buffer1 = IOBuffer{}
	b.Payload = nil
	b.Vec = nil
	b.Reply = StatusOK
	b.PrevHandle = 0
	b.PrevCommand = 0
	b.Flags = 0
	b.ProcessID = 0
}
