package fsclient

import "testing"

func TestCmdBlockResetReturnsToInitialised(t *testing.T) {
	t.Parallel()

	b := NewCmdBlock()
	b.Status = InProgress
	b.ErrorMask = FlagAll
	b.shim = nil
	b.SetUserData("keep-me")

	b.Reset()

	if b.Status != Initialised {
		t.Fatalf("Status after Reset: got %v, want Initialised", b.Status)
	}

	if b.Priority != 16 {
		t.Fatalf("Priority after Reset: got %d, want 16 (default)", b.Priority)
	}

	if b.ErrorMask != FlagNone {
		t.Fatalf("ErrorMask after Reset: got %v, want FlagNone", b.ErrorMask)
	}
}

func TestCmdBlockUserDataRoundTrip(t *testing.T) {
	t.Parallel()

	b := NewCmdBlock()
	b.SetUserData(42)

	if got := b.UserData(); got != 42 {
		t.Fatalf("UserData: got %v, want 42", got)
	}
}

func TestCmdBlockCancelSetsFlag(t *testing.T) {
	t.Parallel()

	b := NewCmdBlock()
	b.Cancel()

	if !b.cancelling {
		t.Fatalf("cancelling flag not set after Cancel")
	}
}
