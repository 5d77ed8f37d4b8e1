// Package fsa implements the filesystem-access pseudo-device (spec.md
// component C6), the sole device in scope for this spec. It translates
// FSACommand requests carried in a Shim into operations against a
// pluggable hostfs.Filesystem.
package fsa

import "fmt"

// Status is the device-level result code the FSA device returns,
// translated by fsclient into an FSStatus + error-mask + volume-state
// decision (spec.md §4.7).
type Status int32

const (
	StatusOK Status = 0

	StatusNotInit               Status = -1
	StatusOutOfRange            Status = -2
	StatusOutOfResources        Status = -3
	StatusLinkEntry             Status = -4
	StatusUnavailableCmd        Status = -5
	StatusInvalidParam          Status = -6
	StatusInvalidPath           Status = -7
	StatusInvalidBuffer         Status = -8
	StatusInvalidAlignment      Status = -9
	StatusInvalidClientHandle   Status = -10
	StatusInvalidFileHandle     Status = -11
	StatusInvalidDirHandle      Status = -12
	StatusBusy                  Status = -13
	StatusCancelled             Status = -14
	StatusEndOfDir              Status = -15
	StatusEndOfFile             Status = -16
	StatusMaxMountpoints        Status = -17
	StatusMaxVolumes            Status = -18
	StatusMaxClients            Status = -19
	StatusMaxFiles              Status = -20
	StatusMaxDirs               Status = -21
	StatusAlreadyOpen           Status = -22
	StatusNotFound              Status = -23
	StatusAlreadyExists         Status = -24
	StatusNotEmpty              Status = -25
	StatusAccessError           Status = -26
	StatusPermissionError       Status = -27
	StatusDataCorrupted         Status = -28
	StatusStorageFull           Status = -29
	StatusJournalFull           Status = -30
	StatusUnsupportedCmd        Status = -31
	StatusNotFile               Status = -32
	StatusNotDir                Status = -33
	StatusFileTooBig            Status = -34
	StatusMediaError            Status = -35
	StatusInvalidMedia          Status = -36
	StatusMediaNotReady         Status = -37
	StatusWriteProtected        Status = -38
)

func (s Status) String() string {
	if s == StatusOK {
		return "OK"
	}

	if s > 0 {
		return fmt.Sprintf("OK(%d)", int32(s))
	}

	if name, ok := statusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("FSAStatus(%d)", int32(s))
}

var statusNames = map[Status]string{
	StatusNotInit:             "NotInit",
	StatusOutOfRange:          "OutOfRange",
	StatusOutOfResources:      "OutOfResources",
	StatusLinkEntry:           "LinkEntry",
	StatusUnavailableCmd:      "UnavailableCmd",
	StatusInvalidParam:        "InvalidParam",
	StatusInvalidPath:         "InvalidPath",
	StatusInvalidBuffer:       "InvalidBuffer",
	StatusInvalidAlignment:    "InvalidAlignment",
	StatusInvalidClientHandle: "InvalidClientHandle",
	StatusInvalidFileHandle:   "InvalidFileHandle",
	StatusInvalidDirHandle:    "InvalidDirHandle",
	StatusBusy:                "Busy",
	StatusCancelled:           "Cancelled",
	StatusEndOfDir:            "EndOfDir",
	StatusEndOfFile:           "EndOfFile",
	StatusMaxMountpoints:      "MaxMountpoints",
	StatusMaxVolumes:          "MaxVolumes",
	StatusMaxClients:          "MaxClients",
	StatusMaxFiles:            "MaxFiles",
	StatusMaxDirs:             "MaxDirs",
	StatusAlreadyOpen:         "AlreadyOpen",
	StatusNotFound:            "NotFound",
	StatusAlreadyExists:       "AlreadyExists",
	StatusNotEmpty:            "NotEmpty",
	StatusAccessError:         "AccessError",
	StatusPermissionError:     "PermissionError",
	StatusDataCorrupted:       "DataCorrupted",
	StatusStorageFull:         "StorageFull",
	StatusJournalFull:         "JournalFull",
	StatusUnsupportedCmd:      "UnsupportedCmd",
	StatusNotFile:             "NotFile",
	StatusNotDir:              "NotDir",
	StatusFileTooBig:          "FileTooBig",
	StatusMediaError:          "MediaError",
	StatusInvalidMedia:        "InvalidMedia",
	StatusMediaNotReady:       "MediaNotReady",
	StatusWriteProtected:      "WriteProtected",
}
