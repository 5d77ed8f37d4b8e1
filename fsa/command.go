package fsa

// Command identifies the operation carried by a Shim, analogous to
// original_source's FSACommand enum. It is the value the FSA device
// switches on inside Ioctl/Ioctlv (spec.md §4.5).
type Command uint32

const (
	CommandMount Command = iota + 1
	CommandUnmount
	CommandOpenFile
	CommandCloseFile
	CommandReadFile
	CommandWriteFile
	CommandSetPosFile
	CommandGetPosFile
	CommandIsEof
	CommandFlushFile
	CommandAppendFile
	CommandTruncateFile
	CommandStatFile
	CommandGetFileBlockAddress
	CommandOpenDir
	CommandCloseDir
	CommandReadDir
	CommandRewindDir
	CommandMakeDir
	CommandRemove
	CommandRename
	CommandChangeDir
	CommandGetCwd
	CommandGetVolumeInfo
	CommandChangeMode
	CommandMakeQuota
	CommandFlushQuota
	CommandRollbackQuota
	CommandRemoveQuota
	CommandRegisterFlushQuota
	CommandFlushMultiQuota
	CommandMakeLink
	CommandGetInfoByQuery
	CommandGetError
)

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}

	return "Unknown"
}

var commandNames = map[Command]string{
	CommandMount:               "Mount",
	CommandUnmount:             "Unmount",
	CommandOpenFile:            "OpenFile",
	CommandCloseFile:           "CloseFile",
	CommandReadFile:            "ReadFile",
	CommandWriteFile:           "WriteFile",
	CommandSetPosFile:          "SetPosFile",
	CommandGetPosFile:          "GetPosFile",
	CommandIsEof:               "IsEof",
	CommandFlushFile:           "FlushFile",
	CommandAppendFile:          "AppendFile",
	CommandTruncateFile:        "TruncateFile",
	CommandStatFile:            "StatFile",
	CommandGetFileBlockAddress: "GetFileBlockAddress",
	CommandOpenDir:             "OpenDir",
	CommandCloseDir:            "CloseDir",
	CommandReadDir:             "ReadDir",
	CommandRewindDir:           "RewindDir",
	CommandMakeDir:             "MakeDir",
	CommandRemove:              "Remove",
	CommandRename:              "Rename",
	CommandChangeDir:           "ChangeDir",
	CommandGetCwd:              "GetCwd",
	CommandGetVolumeInfo:       "GetVolumeInfo",
	CommandChangeMode:          "ChangeMode",
	CommandMakeQuota:           "MakeQuota",
	CommandFlushQuota:          "FlushQuota",
	CommandRollbackQuota:       "RollbackQuota",
	CommandRemoveQuota:         "RemoveQuota",
	CommandRegisterFlushQuota:  "RegisterFlushQuota",
	CommandFlushMultiQuota:     "FlushMultiQuota",
	CommandMakeLink:            "MakeLink",
	CommandGetInfoByQuery:      "GetInfoByQuery",
	CommandGetError:            "GetError",
}

// QueryType selects which Shim result field GetInfoByQuery fills in
// (ResultFreeBytes or ResultCount); fsclient copies neither out.
type QueryType uint32

const (
	QueryTypeFreeSpaceSize QueryType = iota
	QueryTypeDirSize
	QueryTypeDirEntryNum
	QueryTypeDeviceInfo
)
