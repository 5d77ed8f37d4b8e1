package fsclient

// ErrorFlag is the bitset a CmdBlock's error_mask is drawn from
// (spec.md §4.7 / glossary "Error mask"). A category set in a block's
// mask, when matched by the FSA status the block's command failed
// with, drives the client's FSM to Fatal instead of delivering the
// translated Status to the caller.
type ErrorFlag uint32

const FlagNone ErrorFlag = 0

const (
	FlagAlreadyOpen ErrorFlag = 1 << iota
	FlagNotFound
	FlagExists
	FlagAccessError
	FlagPermissionError
	FlagStorageFull
	FlagJournalFull
	FlagUnsupportedCmd
	FlagNotFile
	FlagNotDir
	FlagFileTooBig
	FlagMax
	FlagCancelled

	flagCount
)

// FlagAll is the union of every category, matching original_source's
// FSErrorFlag::All.
const FlagAll = flagCount - 1
