package fsclient

import (
	"os"

	"github.com/wiiu-emu/ios-core/fsa"
)

// The methods below are the client-facing FSA operations (spec.md
// §4.5's closed command set). Each requires block to have already gone
// through PrepareAsync or PrepareSync; they build the Shim, attach the
// caller's output binding, and enqueue through the client's CmdQueue.
// All return StatusOK once queued — the actual result arrives via
// block's callback or, for PrepareSync blocks, through Wait.

func (c *Client) enqueueShim(block *CmdBlock, shim *fsa.Shim, output any) Status {
	block.shim = shim
	block.output = output

	return c.enqueue(block, finishCmd)
}

func (c *Client) OpenFile(block *CmdBlock, path string, flags int, mode os.FileMode, out *OpenFileOutput) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandOpenFile, Path: path, OpenFlags: flags, Mode: mode}, out)
}

func (c *Client) CloseFile(block *CmdBlock, fileHandle int32) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandCloseFile, FileHandle: fileHandle}, nil)
}

// ReadFile enqueues a chunked read of up to len(dst) bytes into dst,
// split into rounds of at most FSMaxBytesPerRequest and chunkSize-sized
// units for the final reported count (spec.md §4.6 finish_read_cmd).
// The final status delivered to block is the number of whole chunkSize
// units transferred.
func (c *Client) ReadFile(block *CmdBlock, fileHandle int32, dst []byte, chunkSize uint32, readWithPos bool, pos int64) Status {
	if chunkSize == 0 {
		chunkSize = 1
	}

	total := uint32(len(dst))

	readSize := total
	if readSize > FSMaxBytesPerRequest {
		readSize = FSMaxBytesPerRequest
	}

	block.read = readState{
		fullDst:        dst,
		bytesRemaining: total,
		readSize:       readSize,
		chunkSize:      chunkSize,
		pos:            pos,
		readWithPos:    readWithPos,
	}

	block.shim = &fsa.Shim{Command: fsa.CommandReadFile, FileHandle: fileHandle, Offset: pos, Count: 1}

	return c.enqueue(block, finishReadCmd)
}

func (c *Client) WriteFile(block *CmdBlock, fileHandle int32, src []byte) Status {
	block.shim = &fsa.Shim{Command: fsa.CommandWriteFile, FileHandle: fileHandle}
	block.vecData = src

	return c.enqueue(block, finishCmd)
}

func (c *Client) SetPosFile(block *CmdBlock, fileHandle int32, offset int64, origin fsa.SeekOrigin) Status {
	return c.enqueueShim(block, &fsa.Shim{
		Command: fsa.CommandSetPosFile, FileHandle: fileHandle, Offset: offset, Origin: origin,
	}, nil)
}

func (c *Client) GetPosFile(block *CmdBlock, fileHandle int32, out *GetPosFileOutput) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandGetPosFile, FileHandle: fileHandle}, out)
}

func (c *Client) IsEof(block *CmdBlock, fileHandle int32) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandIsEof, FileHandle: fileHandle}, nil)
}

func (c *Client) FlushFile(block *CmdBlock, fileHandle int32) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandFlushFile, FileHandle: fileHandle}, nil)
}

func (c *Client) AppendFile(block *CmdBlock, fileHandle int32) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandAppendFile, FileHandle: fileHandle}, nil)
}

func (c *Client) TruncateFile(block *CmdBlock, fileHandle int32, size int64) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandTruncateFile, FileHandle: fileHandle, Offset: size}, nil)
}

func (c *Client) StatFile(block *CmdBlock, fileHandle int32, out *StatFileOutput) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandStatFile, FileHandle: fileHandle}, out)
}

func (c *Client) GetFileBlockAddress(block *CmdBlock, fileHandle int32, offset int64, out *GetFileBlockAddressOutput) Status {
	return c.enqueueShim(block, &fsa.Shim{
		Command: fsa.CommandGetFileBlockAddress, FileHandle: fileHandle, Offset: offset,
	}, out)
}

func (c *Client) OpenDir(block *CmdBlock, path string, out *OpenDirOutput) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandOpenDir, Path: path}, out)
}

func (c *Client) CloseDir(block *CmdBlock, dirHandle int32) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandCloseDir, DirHandle: dirHandle}, nil)
}

func (c *Client) ReadDir(block *CmdBlock, dirHandle int32, out *ReadDirOutput) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandReadDir, DirHandle: dirHandle}, out)
}

func (c *Client) RewindDir(block *CmdBlock, dirHandle int32) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandRewindDir, DirHandle: dirHandle}, nil)
}

func (c *Client) MakeDir(block *CmdBlock, path string) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandMakeDir, Path: path}, nil)
}

func (c *Client) Remove(block *CmdBlock, path string) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandRemove, Path: path}, nil)
}

func (c *Client) Rename(block *CmdBlock, oldPath, newPath string) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandRename, Path: oldPath, NewPath: newPath}, nil)
}

func (c *Client) ChangeDir(block *CmdBlock, path string) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandChangeDir, Path: path}, nil)
}

func (c *Client) GetCwd(block *CmdBlock, out *GetCwdOutput) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandGetCwd}, out)
}

func (c *Client) GetVolumeInfo(block *CmdBlock, out *GetVolumeInfoOutput) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandGetVolumeInfo}, out)
}

func (c *Client) ChangeMode(block *CmdBlock, path string, mode os.FileMode) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandChangeMode, Path: path, Mode: mode}, nil)
}

func (c *Client) GetInfoByQuery(block *CmdBlock, path string, queryType fsa.QueryType) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandGetInfoByQuery, Path: path, QueryType: queryType}, nil)
}

func (c *Client) GetError(block *CmdBlock, out *GetErrorOutput) Status {
	return c.enqueueShim(block, &fsa.Shim{Command: fsa.CommandGetError}, out)
}
