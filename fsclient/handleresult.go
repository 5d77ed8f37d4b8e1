package fsclient

import (
	"go.uber.org/zap"

	"github.com/wiiu-emu/ios-core/fsa"
)

// HandleResult is invoked from the transport's reply continuation (the
// emulated AppIO handler path) once block's command has a reply
// (spec.md §4.6 "Reply from kernel side"). It records the client's last
// error, applies the FSA-status media-health transitions the spec
// singles out, classifies everything else via the §4.7 table, and
// either requeues (Busy), drives the FSM to Fatal, or delivers the
// translated Status to block's finish function.
func (c *Client) HandleResult(block *CmdBlock, fsaStatus fsa.Status) {
	if !c.isRegistered() {
		if block.finishCmdFn != nil {
			block.finishCmdFn(block, Cancelled)
		}

		return
	}

	c.mu.Lock()
	c.lastError = fsaStatus
	c.mu.Unlock()

	switch fsaStatus {
	case fsa.StatusMediaNotReady:
		c.FSM.SetState(VolumeWrongMedia)
		return
	case fsa.StatusWriteProtected:
		c.FSM.SetState(VolumeMediaError)
		return
	case fsa.StatusDataCorrupted:
		// Resolved open question (source marks this TODO): drive the FSM
		// to the state of the same name and stop, mirroring the two
		// transitions the source does specify.
		c.FSM.SetState(VolumeDataCorrupted)
		return
	case fsa.StatusMediaError:
		c.FSM.SetState(VolumeMediaError)
		return
	}

	var result classification

	if fsaStatus < 0 {
		result = classify(fsaStatus)

		if result.requeue {
			c.queue.Requeue(block, true, block.finishCmdFn)
			return
		}

		if result.swallow {
			return
		}

		if block.ErrorMask&result.flags != 0 {
			c.FSM.EnterState(VolumeFatal)
			return
		}
	} else {
		result = classification{status: Status(fsaStatus)}
	}

	c.mu.Lock()
	if c.lastDequeuedCommand == block {
		c.lastDequeuedCommand = nil
	}
	c.mu.Unlock()

	replyResult(block, result.status)
}

// SetLogger swaps the client's logger; a nil log installs a no-op
// logger.
func (c *Client) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	c.log = log
}
