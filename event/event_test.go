package event_test

import (
	"testing"
	"time"

	"github.com/wiiu-emu/ios-core/event"
)

func TestAutoResetEventWakesOneWaiter(t *testing.T) {
	t.Parallel()

	e := event.NewAutoResetEvent()
	done := make(chan struct{})

	go func() {
		e.Wait()
		close(done)
	}()

	e.Signal()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter never woke up")
	}
}

func TestAutoResetEventSignalBeforeWaitArms(t *testing.T) {
	t.Parallel()

	e := event.NewAutoResetEvent()
	e.Signal()

	done := make(chan struct{})

	go func() {
		e.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pre-armed signal did not wake waiter")
	}
}

func TestBroadcasterWakesAllWaiters(t *testing.T) {
	t.Parallel()

	b := event.NewBroadcaster()

	const n = 5

	woke := make(chan int, n)

	for i := 0; i < n; i++ {
		go func(id int) {
			b.Wait()
			woke <- id
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	b.SignalAll()

	for i := 0; i < n; i++ {
		select {
		case <-woke:
		case <-time.After(time.Second):
			t.Fatalf("only %d/%d waiters woke", i, n)
		}
	}
}

func TestMsgQueueSendReceive(t *testing.T) {
	t.Parallel()

	q := event.NewMsgQueue[int](1)
	q.Send(42)

	if got := q.Receive(); got != 42 {
		t.Fatalf("Receive: got %d, want 42", got)
	}
}

func TestMsgQueueFullPanics(t *testing.T) {
	t.Parallel()

	q := event.NewMsgQueue[int](1)
	q.Send(1)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic posting to a full queue")
		}
	}()

	q.Send(2)
}
