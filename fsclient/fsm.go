package fsclient

import "sync"

// VolumeState is a Client's media-health classification (spec.md's
// "Volume-State Machine").
type VolumeState int

const (
	VolumeInitial VolumeState = iota
	VolumeReady
	VolumeNoMedia
	VolumeWrongMedia
	VolumeMediaError
	VolumeDataCorrupted
	VolumeFatal
)

func (s VolumeState) String() string {
	switch s {
	case VolumeInitial:
		return "Initial"
	case VolumeReady:
		return "Ready"
	case VolumeNoMedia:
		return "NoMedia"
	case VolumeWrongMedia:
		return "WrongMedia"
	case VolumeMediaError:
		return "MediaError"
	case VolumeDataCorrupted:
		return "DataCorrupted"
	case VolumeFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// FSM is a Client's volume-state machine. State transitions happen from
// HandleResult on the AppIO handler path; reads may happen from any
// goroutine, hence the mutex.
type FSM struct {
	mu    sync.Mutex
	state VolumeState
}

// NewFSM returns an FSM in its Initial state.
func NewFSM() *FSM {
	return &FSM{state: VolumeInitial}
}

// State returns the current volume state.
func (f *FSM) State() VolumeState {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}

// SetState unconditionally moves the FSM to state.
func (f *FSM) SetState(state VolumeState) {
	f.mu.Lock()
	f.state = state
	f.mu.Unlock()
}

// EnterState is SetState under another name at the callsite matching
// original_source's fsmEnterState, used for the Fatal transition to
// keep call sites reading the way the source does.
func (f *FSM) EnterState(state VolumeState) {
	f.SetState(state)
}
