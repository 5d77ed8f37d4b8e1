// Package diag streams periodic per-core counters to an io.Writer using
// the same framed binary transport the teacher's migration package uses
// to stream VM state: a fixed 4-byte type + 8-byte length header
// followed by a gob-encoded payload.
//
// Unlike migration.Sender/Receiver, nothing here applies a received
// message to live state: there are only counters to observe, so the
// Receiver only reads frames and no Receiver.Apply-equivalent exists.
package diag

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/wiiu-emu/ios-core/ipcdriver"
)

// MsgType identifies a framed diagnostics message.
type MsgType uint32

const (
	// MsgSnapshot carries a gob-encoded Snapshot.
	MsgSnapshot MsgType = 1
	// MsgDone signals the sender has stopped streaming.
	MsgDone MsgType = 2
)

// CoreSnapshot is one core's counters and volume state at a point in
// time.
type CoreSnapshot struct {
	CoreID      int
	VolumeState string
	Counters    ipcdriver.Counters
}

// Snapshot is one framed diagnostics message: every core's counters,
// tagged with a monotonically increasing sequence number so a consumer
// can detect drops.
type Snapshot struct {
	Sequence uint64
	Cores    []CoreSnapshot
}

// Sender writes framed Snapshot messages to w.
type Sender struct {
	w io.Writer
}

// NewSender wraps w as a diagnostics Sender.
func NewSender(w io.Writer) *Sender { return &Sender{w: w} }

func (s *Sender) send(t MsgType, payload []byte) error {
	hdr := make([]byte, 12)
	binary.BigEndian.PutUint32(hdr[0:4], uint32(t))
	binary.BigEndian.PutUint64(hdr[4:12], uint64(len(payload)))

	if _, err := s.w.Write(hdr); err != nil {
		return fmt.Errorf("diag: send header: %w", err)
	}

	if len(payload) > 0 {
		if _, err := s.w.Write(payload); err != nil {
			return fmt.Errorf("diag: send payload: %w", err)
		}
	}

	return nil
}

// SendSnapshot gob-encodes snap and sends it as a MsgSnapshot.
func (s *Sender) SendSnapshot(snap *Snapshot) error {
	pr, pw := io.Pipe()

	errCh := make(chan error, 1)

	go func() {
		enc := gob.NewEncoder(pw)
		errCh <- enc.Encode(snap)

		pw.Close()
	}()

	payload, err := io.ReadAll(pr)
	if err != nil {
		return fmt.Errorf("diag: encode snapshot: %w", err)
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("diag: encode snapshot: %w", err)
	}

	return s.send(MsgSnapshot, payload)
}

// SendDone signals the end of the diagnostics stream.
func (s *Sender) SendDone() error { return s.send(MsgDone, nil) }

// Receiver reads framed diagnostics messages from r. It exists for
// tooling that wants to inspect a captured stream (or a test's pipe);
// nothing in this module applies a received Snapshot to live state.
type Receiver struct {
	r io.Reader
}

// NewReceiver wraps r as a diagnostics Receiver.
func NewReceiver(r io.Reader) *Receiver { return &Receiver{r: r} }

// Next reads the next framed message and returns its type and payload.
func (r *Receiver) Next() (MsgType, []byte, error) {
	hdr := make([]byte, 12)
	if _, err := io.ReadFull(r.r, hdr); err != nil {
		return 0, nil, fmt.Errorf("diag: read header: %w", err)
	}

	t := MsgType(binary.BigEndian.Uint32(hdr[0:4]))
	length := binary.BigEndian.Uint64(hdr[4:12])

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r.r, payload); err != nil {
			return 0, nil, fmt.Errorf("diag: read payload: %w", err)
		}
	}

	return t, payload, nil
}

// DecodeSnapshot gob-decodes a MsgSnapshot payload.
func DecodeSnapshot(payload []byte) (*Snapshot, error) {
	var snap Snapshot

	dec := gob.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("diag: decode snapshot: %w", err)
	}

	return &snap, nil
}

// CoreSource is the subset of runtime.Core a Streamer needs, kept as an
// interface so this package does not import runtime and force every
// consumer of counters to also pull in the orchestration layer.
type CoreSource interface {
	CoreID() int
	VolumeState() string
	DriverSnapshot() ipcdriver.Counters
}

// Streamer periodically snapshots a fixed set of cores and sends them
// through a Sender until stopped.
type Streamer struct {
	sender *Sender
	cores  []CoreSource
	period time.Duration

	sequence uint64
}

// NewStreamer returns a Streamer that snapshots cores every period.
func NewStreamer(sender *Sender, cores []CoreSource, period time.Duration) *Streamer {
	return &Streamer{sender: sender, cores: cores, period: period}
}

// Run sends one Snapshot every period until ctx-like stop fires (the
// caller passes a channel rather than a context to keep this package
// free of a context.Context/*runtime.Runtime dependency edge). When stop
// fires it sends MsgDone and returns; if sending a Snapshot fails, it
// returns that error without sending MsgDone.
func (s *Streamer) Run(stop <-chan struct{}) error {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return s.sender.SendDone()
		case <-ticker.C:
			if err := s.sendOnce(); err != nil {
				return err
			}
		}
	}
}

func (s *Streamer) sendOnce() error {
	s.sequence++

	snap := &Snapshot{Sequence: s.sequence, Cores: make([]CoreSnapshot, len(s.cores))}

	for i, c := range s.cores {
		snap.Cores[i] = CoreSnapshot{
			CoreID:      c.CoreID(),
			VolumeState: c.VolumeState(),
			Counters:    c.DriverSnapshot(),
		}
	}

	return s.sender.SendSnapshot(snap)
}
