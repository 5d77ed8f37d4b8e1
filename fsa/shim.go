package fsa

import "os"

// SeekOrigin mirrors the whence argument SetPosFile understands.
type SeekOrigin int

const (
	SeekSet SeekOrigin = iota
	SeekCur
	SeekEnd
)

// Stat is the copy-out shape for StatFile, matching the fields
// original_source's FSStat carries (flags, size, block address left out
// since this backend has no block-device notion; GetFileBlockAddress
// always reports StatusUnsupportedCmd).
type Stat struct {
	Size    int64
	IsDir   bool
	Mode    uint32
	ModTime int64 // unix seconds
}

// DirEntry is the copy-out shape for ReadDir.
type DirEntry struct {
	Name  string
	IsDir bool
	Size  int64
}

// VolumeInfo is the copy-out shape for GetVolumeInfo.
type VolumeInfo struct {
	DeviceSizeBytes int64
	FreeSpaceBytes  int64
}

// Shim is the single request/response record fsclient builds and passes
// through wire.Buffer.Payload for CommandIoctl/CommandIoctlv (spec.md
// §4.5 "device requests are carried as an opaque per-command shim").
// The FSA device reads the request fields and, on success, fills in the
// matching Result* field; fsclient's finishCmd copies the result back
// out into the caller's output binding (Stat, DirEntry, etc.).
type Shim struct {
	Command Command

	// Request fields, populated by fsclient before dispatch.
	Path       string
	NewPath    string
	Mode       os.FileMode
	OpenFlags  int
	FileHandle int32
	DirHandle  int32
	Offset     int64
	Origin     SeekOrigin
	Count      uint32
	QueryType  QueryType

	// Response fields, populated by the FSA device on success.
	ResultFileHandle int32
	ResultDirHandle  int32
	ResultCount      uint32
	ResultStat       Stat
	ResultDirEntry   DirEntry
	ResultVolumeInfo VolumeInfo
	ResultCwd        string
	ResultFreeBytes  int64
	ResultLastError  Status
}
