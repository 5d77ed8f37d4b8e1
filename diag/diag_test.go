package diag_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/wiiu-emu/ios-core/diag"
	"github.com/wiiu-emu/ios-core/ipcdriver"
)

type fakeCore struct {
	id       int
	state    string
	counters ipcdriver.Counters
}

func (f fakeCore) CoreID() int                       { return f.id }
func (f fakeCore) VolumeState() string               { return f.state }
func (f fakeCore) DriverSnapshot() ipcdriver.Counters { return f.counters }

func TestSendSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sender := diag.NewSender(&buf)
	snap := &diag.Snapshot{
		Sequence: 1,
		Cores: []diag.CoreSnapshot{
			{CoreID: 0, VolumeState: "VolumeReady", Counters: ipcdriver.Counters{Submitted: 3, Processed: 3}},
		},
	}

	if err := sender.SendSnapshot(snap); err != nil {
		t.Fatalf("SendSnapshot: %v", err)
	}

	receiver := diag.NewReceiver(&buf)

	msgType, payload, err := receiver.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}

	if msgType != diag.MsgSnapshot {
		t.Fatalf("msgType: got %v, want MsgSnapshot", msgType)
	}

	got, err := diag.DecodeSnapshot(payload)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}

	if got.Sequence != 1 || len(got.Cores) != 1 || got.Cores[0].VolumeState != "VolumeReady" {
		t.Fatalf("decoded snapshot mismatch: %+v", got)
	}
}

func TestStreamerSendsUntilStopped(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	sender := diag.NewSender(&buf)
	cores := []diag.CoreSource{fakeCore{id: 0, state: "VolumeReady"}}
	streamer := diag.NewStreamer(sender, cores, 5*time.Millisecond)

	stop := make(chan struct{})

	done := make(chan error, 1)

	go func() { done <- streamer.Run(stop) }()

	time.Sleep(20 * time.Millisecond)
	close(stop)

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	receiver := diag.NewReceiver(&buf)

	sawSnapshot := false

	for {
		msgType, _, err := receiver.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}

		if msgType == diag.MsgSnapshot {
			sawSnapshot = true

			continue
		}

		if msgType == diag.MsgDone {
			break
		}
	}

	if !sawSnapshot {
		t.Fatal("streamer never sent a snapshot before MsgDone")
	}
}
