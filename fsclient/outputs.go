package fsclient

import "github.com/wiiu-emu/ios-core/fsa"

// The Output* types are the caller-supplied bindings finishCmd copies
// an FSA response into (spec.md §4.6 finish_cmd "command-specific
// output binding"). Each op helper in ops.go stores one of these in
// block.output before enqueueing; a nil pointer field is tolerated the
// way original_source tolerates a nil GetFileBlockAddress output.

type OpenFileOutput struct{ Handle *int32 }

type OpenDirOutput struct{ Handle *int32 }

type ReadDirOutput struct{ Entry *fsa.DirEntry }

type StatFileOutput struct{ Stat *fsa.Stat }

type GetPosFileOutput struct{ Pos *int64 }

type GetVolumeInfoOutput struct{ Info *fsa.VolumeInfo }

type GetCwdOutput struct{ Path *string }

// GetFileBlockAddressOutput exists for API completeness; the FSA device
// always reports StatusUnsupportedCmd for this command, so Address is
// never written.
type GetFileBlockAddressOutput struct{ Address *int64 }

type GetErrorOutput struct{ Error *fsa.Status }
