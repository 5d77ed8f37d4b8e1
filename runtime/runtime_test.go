package runtime_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/wiiu-emu/ios-core/fsclient"
	"github.com/wiiu-emu/ios-core/runtime"
)

func TestNewRejectsZeroCores(t *testing.T) {
	t.Parallel()

	if _, err := runtime.New(runtime.Config{NumCores: 0}, nil); err == nil {
		t.Fatal("expected an error for NumCores == 0")
	}
}

func TestNewOpensOneFSAHandlePerCore(t *testing.T) {
	t.Parallel()

	rt, err := runtime.New(runtime.Config{NumCores: 3}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	if len(rt.Cores) != 3 {
		t.Fatalf("Cores: got %d, want 3", len(rt.Cores))
	}

	seen := make(map[int32]bool)

	for _, core := range rt.Cores {
		if core.Client == nil {
			t.Fatalf("core %d: nil Client", core.ID)
		}
	}

	// A directory made from core 0 is visible to an OpenDir from core 1,
	// showing that both cores' handles route to one underlying FSA
	// device.
	first := rt.Cores[0].Client
	block := fsclient.NewCmdBlock()
	fsclient.PrepareSync(first, block)
	first.MakeDir(block, "/shared")

	if status := fsclient.Wait(block); status != fsclient.StatusOK {
		t.Fatalf("MakeDir from core 0: got %v, want StatusOK", status)
	}

	second := rt.Cores[1].Client
	openBlock := fsclient.NewCmdBlock()
	fsclient.PrepareSync(second, openBlock)

	var out fsclient.OpenDirOutput

	var handle int32
	out.Handle = &handle

	second.OpenDir(openBlock, "/shared", &out)

	if status := fsclient.Wait(openBlock); status != fsclient.StatusOK {
		t.Fatalf("OpenDir /shared from core 1: got %v, want StatusOK", status)
	}

	_ = seen
}

func TestRunStopsAllCoresOnCancel(t *testing.T) {
	t.Parallel()

	rt, err := runtime.New(runtime.Config{NumCores: 2}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- rt.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run never returned after context cancellation")
	}
}

func TestNewWithHostFSRootUsesRealDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	rt, err := runtime.New(runtime.Config{NumCores: 1, HostFSRoot: dir}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer rt.Close()

	client := rt.Cores[0].Client

	openBlock := fsclient.NewCmdBlock()
	fsclient.PrepareSync(client, openBlock)

	var openOut fsclient.OpenFileOutput

	var handle int32
	openOut.Handle = &handle

	client.OpenFile(openBlock, "/on-disk.txt", os.O_CREATE|os.O_RDWR, 0o644, &openOut)

	if status := fsclient.Wait(openBlock); status != fsclient.StatusOK {
		t.Fatalf("OpenFile on real disk: got %v, want StatusOK", status)
	}

	if _, err := os.Stat(dir + "/on-disk.txt"); err != nil {
		t.Fatalf("file not created on real disk: %v", err)
	}
}
