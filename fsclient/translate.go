package fsclient

import "github.com/wiiu-emu/ios-core/fsa"

// classification is the per-status outcome of spec.md §4.7's
// authoritative table: the FSStatus to deliver, the errorFlags category
// it belongs to, and whether it instead requires a special action
// (requeue, swallow) that HandleResult must perform instead of a normal
// translate-and-deliver.
type classification struct {
	status  Status
	flags   ErrorFlag
	requeue bool
	swallow bool
}

// passthroughStatuses are delivered to the caller unchanged in value,
// with no error-mask category (spec.md §4.7 first row).
var passthroughStatuses = map[fsa.Status]bool{
	fsa.StatusNotInit:             true,
	fsa.StatusOutOfRange:          true,
	fsa.StatusOutOfResources:      true,
	fsa.StatusLinkEntry:           true,
	fsa.StatusUnavailableCmd:      true,
	fsa.StatusInvalidParam:        true,
	fsa.StatusInvalidPath:         true,
	fsa.StatusInvalidBuffer:       true,
	fsa.StatusInvalidAlignment:    true,
	fsa.StatusInvalidClientHandle: true,
	fsa.StatusInvalidFileHandle:   true,
	fsa.StatusInvalidDirHandle:    true,
}

// classify implements spec.md §4.7. It does not handle MediaNotReady,
// WriteProtected, DataCorrupted, or MediaError: those drive an FSM
// transition directly and are checked by HandleResult before classify
// is ever called.
func classify(fsaStatus fsa.Status) classification {
	if passthroughStatuses[fsaStatus] {
		return classification{status: Status(fsaStatus), flags: FlagNone}
	}

	switch fsaStatus {
	case fsa.StatusBusy:
		return classification{requeue: true}
	case fsa.StatusCancelled:
		return classification{status: Cancelled, flags: FlagAll}
	case fsa.StatusEndOfDir, fsa.StatusEndOfFile:
		return classification{status: End, flags: FlagAll}
	case fsa.StatusMaxMountpoints, fsa.StatusMaxVolumes, fsa.StatusMaxClients,
		fsa.StatusMaxFiles, fsa.StatusMaxDirs:
		return classification{status: Max, flags: FlagMax}
	case fsa.StatusAlreadyOpen:
		return classification{status: AlreadyOpen, flags: FlagAlreadyOpen}
	case fsa.StatusNotFound:
		return classification{status: NotFound, flags: FlagNotFound}
	case fsa.StatusAlreadyExists, fsa.StatusNotEmpty:
		return classification{status: Exists, flags: FlagExists}
	case fsa.StatusAccessError:
		return classification{status: AccessError, flags: FlagAccessError}
	case fsa.StatusPermissionError:
		return classification{status: PermissionError, flags: FlagPermissionError}
	case fsa.StatusStorageFull:
		return classification{status: StorageFull, flags: FlagStorageFull}
	case fsa.StatusJournalFull:
		return classification{status: JournalFull, flags: FlagJournalFull}
	case fsa.StatusUnsupportedCmd:
		return classification{status: UnsupportedCmd, flags: FlagUnsupportedCmd}
	case fsa.StatusNotFile:
		return classification{status: NotFile, flags: FlagNotFile}
	case fsa.StatusNotDir:
		return classification{status: NotDirectory, flags: FlagNotDir}
	case fsa.StatusFileTooBig:
		return classification{status: FileTooBig, flags: FlagFileTooBig}
	case fsa.StatusInvalidMedia:
		return classification{swallow: true}
	default:
		// Any FSA status this table does not name (including a positive
		// success value routed here by mistake) passes through as-is.
		return classification{status: Status(fsaStatus), flags: FlagNone}
	}
}
