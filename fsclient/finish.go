package fsclient

import "github.com/wiiu-emu/ios-core/fsa"

// finishCmd copies the FSA response out of block.shim into block's
// output binding and posts the result (spec.md §4.6 finish_cmd). It is
// the default finish function every op helper in ops.go installs, except
// ReadFile which installs finishReadCmd instead.
func finishCmd(block *CmdBlock, status Status) {
	retireBlock(block)

	if status < 0 {
		setResult(block, status)
		return
	}

	copyOut(block)
	setResult(block, status)
}

// retireBlock clears the cancelling bit and the client's dequeued-block
// back-reference, then marks block Cancelled — original_source reuses
// that state as "idle and ready to Reset", which reads oddly but is
// exactly what FSInitCmdBlock's precondition accepts.
func retireBlock(block *CmdBlock) {
	block.mu.Lock()
	block.cancelling = false
	block.mu.Unlock()

	if client := block.client; client != nil {
		client.mu.Lock()
		if client.lastDequeuedCommand == block {
			client.lastDequeuedCommand = nil
		}
		client.mu.Unlock()
	}

	block.Status = CmdCancelled
}

func copyOut(block *CmdBlock) {
	if block.shim == nil || block.output == nil {
		return
	}

	shim := block.shim

	switch shim.Command {
	case fsa.CommandOpenFile:
		if out, ok := block.output.(*OpenFileOutput); ok && out.Handle != nil {
			*out.Handle = shim.ResultFileHandle
		}
	case fsa.CommandOpenDir:
		if out, ok := block.output.(*OpenDirOutput); ok && out.Handle != nil {
			*out.Handle = shim.ResultDirHandle
		}
	case fsa.CommandReadDir:
		if out, ok := block.output.(*ReadDirOutput); ok && out.Entry != nil {
			*out.Entry = shim.ResultDirEntry
		}
	case fsa.CommandStatFile:
		if out, ok := block.output.(*StatFileOutput); ok && out.Stat != nil {
			*out.Stat = shim.ResultStat
		}
	case fsa.CommandGetPosFile:
		if out, ok := block.output.(*GetPosFileOutput); ok && out.Pos != nil {
			*out.Pos = shim.Offset
		}
	case fsa.CommandGetVolumeInfo:
		if out, ok := block.output.(*GetVolumeInfoOutput); ok && out.Info != nil {
			*out.Info = shim.ResultVolumeInfo
		}
	case fsa.CommandGetCwd:
		if out, ok := block.output.(*GetCwdOutput); ok && out.Path != nil {
			*out.Path = shim.ResultCwd
		}
	case fsa.CommandGetFileBlockAddress:
		// Always unsupported; nothing to copy (see GetFileBlockAddressOutput).
	case fsa.CommandGetError:
		if out, ok := block.output.(*GetErrorOutput); ok && out.Error != nil {
			*out.Error = shim.ResultLastError
		}
	case fsa.CommandGetInfoByQuery:
		// Resolved open question: response layout undefined upstream, so
		// no copy-out is performed (SPEC_FULL.md / DESIGN.md).
	default:
		// Mount, Unmount, ChangeDir, MakeDir, Remove, Rename, RewindDir,
		// CloseDir, WriteFile, SetPosFile, IsEof, CloseFile, FlushFile,
		// AppendFile, TruncateFile, the quota family, ChangeMode, and
		// MakeLink carry no response payload beyond the status itself.
	}
}

// finishReadCmd is the chunked-read driver (spec.md §4.6
// finish_read_cmd). It is installed as the finish function only for
// ReadFile commands. status < 0 hands off to finishCmd unchanged;
// otherwise the byte count for this round comes from block.shim's
// response (this implementation's wire carries the count as data
// rather than folding it into the status word, per wire.Buffer's
// Payload design).
func finishReadCmd(block *CmdBlock, status Status) {
	if status < 0 {
		finishCmd(block, status)
		return
	}

	n := block.shim.ResultCount
	block.read.bytesRead += n
	block.read.bytesRemaining -= n

	if block.read.bytesRemaining == 0 || n < block.read.readSize {
		chunksRead := Status(block.read.bytesRead / block.read.chunkSize)
		finishCmd(block, chunksRead)

		return
	}

	if block.read.bytesRemaining > FSMaxBytesPerRequest {
		block.read.readSize = FSMaxBytesPerRequest
	} else {
		block.read.readSize = block.read.bytesRemaining
	}

	if block.read.readWithPos {
		block.read.pos += int64(n)
		block.shim.Offset = block.read.pos
	}

	block.client.queue.Requeue(block, true, finishReadCmd)
}

// setResult delivers block's outcome to the caller (spec.md §4.6
// set_result). Sending on a full queue is a fatal invariant violation
// (event.MsgQueue.Send panics), matching decaf_abort in the source: at
// most one result should ever be outstanding for a given block.
func setResult(block *CmdBlock, status Status) {
	result := AsyncResult{Block: block, Status: status}

	block.mu.Lock()
	block.result = result
	block.mu.Unlock()

	switch {
	case block.asyncData.Queue != nil:
		block.asyncData.Queue.Send(result)
	case block.asyncData.Callback != nil:
		block.asyncData.Callback(block, status)
	default:
		panic("fsclient: CmdBlock has neither an async callback nor a message queue")
	}
}
