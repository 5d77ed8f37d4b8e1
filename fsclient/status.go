// Package fsclient implements the per-client command queue, chunked
// read driver, and volume-state machine that sits between a caller's
// FS command block and the fsa.Device (spec.md components C7). It is
// grounded on original_source's coreinit_fs_cmdblock.cpp and
// coreinit_fs_client.cpp: a Client owns a CmdQueue and an FSM, and each
// call fills in a CmdBlock that flows through Prepare -> Requeue ->
// HandleResult -> a finish function.
package fsclient

import (
	"fmt"

	"github.com/wiiu-emu/ios-core/fsa"
)

// Status is the client-visible result code a CmdBlock's callback or
// message queue receives, the "FSStatus" of spec.md §4.7.
type Status int32

// Named Status constants start at namedStatusBase rather than -1, so
// that no named value can ever collide with a passed-through
// fsa.Status. spec.md §4.7's first row delivers those statuses to the
// caller with their own FSA numeric identity intact (Status(fsaStatus)
// in classify), and fsa.Status's own range runs from -1 down to -38.
// Keeping a wide gap below that means Status(fsaStatus) and a named
// constant are never numerically equal, so
// status == fsclient.NotFound can never false-positive on an unrelated
// passthrough condition.
const namedStatusBase = -100

const (
	StatusOK Status = 0

	// End reports EndOfDir/EndOfFile.
	End Status = namedStatusBase - iota + 1
	// Cancelled reports a block that was cancelled before or during
	// submission.
	Cancelled
	Max
	AlreadyOpen
	NotFound
	Exists
	AccessError
	PermissionError
	StorageFull
	JournalFull
	UnsupportedCmd
	NotFile
	NotDirectory
	FileTooBig
	// FatalError reports a programmer/user error caught at Prepare time
	// (spec.md §7 "user errors"), distinct from a transport fatality.
	FatalError
)

func (s Status) String() string {
	if s >= 0 {
		return fmt.Sprintf("OK(%d)", int32(s))
	}

	if name, ok := statusNames[s]; ok {
		return name
	}

	// Passthrough negative FSA statuses (spec.md §4.7 first row) keep
	// their FSA numeric identity; report it as such.
	return fmt.Sprintf("FSStatus(fsa=%v)", fsa.Status(s))
}

var statusNames = map[Status]string{
	End:             "End",
	Cancelled:       "Cancelled",
	Max:             "Max",
	AlreadyOpen:     "AlreadyOpen",
	NotFound:        "NotFound",
	Exists:          "Exists",
	AccessError:     "AccessError",
	PermissionError: "PermissionError",
	StorageFull:     "StorageFull",
	JournalFull:     "JournalFull",
	UnsupportedCmd:  "UnsupportedCmd",
	NotFile:         "NotFile",
	NotDirectory:    "NotDirectory",
	FileTooBig:      "FileTooBig",
	FatalError:      "FatalError",
}
