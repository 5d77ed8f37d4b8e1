// Command ioscli boots a runtime.Runtime (every core holding its own
// /dev/fsa handle) and runs a handful of sample filesystem operations
// from the first core. It is the demo binary this module ships in place of the
// teacher's interactive VM console: no guest binary runs here, so there
// is no terminal loop to drive it, only a short scripted sequence.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/wiiu-emu/ios-core/config"
	"github.com/wiiu-emu/ios-core/diag"
	"github.com/wiiu-emu/ios-core/fsa"
	"github.com/wiiu-emu/ios-core/fsclient"
	"github.com/wiiu-emu/ios-core/runtime"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ioscli:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.ParseArgs(args)
	if err != nil {
		return err
	}

	if cfg.Profile != "" {
		stop := startProfiling(cfg.Profile)
		defer stop.Stop()
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	rt, err := runtime.New(runtime.Config{NumCores: cfg.NumCores, HostFSRoot: cfg.HostFSRoot}, log)
	if err != nil {
		return fmt.Errorf("starting runtime: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.DiagInterval > 0 {
		go streamDiagnostics(rt, cfg.DiagInterval, ctx.Done())
	}

	if err := runDemo(rt.Cores[0].Client, cfg.ChunkSize); err != nil {
		cancel()

		return fmt.Errorf("running demo: %w", err)
	}

	fmt.Println("demo complete, cores running until interrupted")

	return rt.Run(ctx)
}

// stopper matches pkg/profile.Start's return type without importing it
// into this function's signature, keeping the profiling dependency
// confined to startProfiling.
type stopper interface{ Stop() }

func startProfiling(mode string) stopper {
	switch mode {
	case "cpu":
		return profile.Start(profile.CPUProfile)
	case "mem":
		return profile.Start(profile.MemProfile)
	case "block":
		return profile.Start(profile.BlockProfile)
	case "goroutine":
		return profile.Start(profile.GoroutineProfile)
	default:
		return profile.Start()
	}
}

// runDemo exercises the closed FSA command set enough to prove the
// pipeline works end to end: create a file, write to it, rewind, read
// it back, then close it. readBufSize sizes the
// destination buffer for the demo's ReadFile call (the -chunk-size
// flag); the FS-level chunkSize argument to ReadFile stays 1 so the
// returned status is a plain byte count.
func runDemo(client *fsclient.Client, readBufSize uint32) error {
	openBlock := fsclient.NewCmdBlock()
	fsclient.PrepareSync(client, openBlock)

	var openOut fsclient.OpenFileOutput

	var handle int32
	openOut.Handle = &handle

	client.OpenFile(openBlock, "/hello.txt", os.O_CREATE|os.O_RDWR, 0o644, &openOut)

	if status := fsclient.Wait(openBlock); status != fsclient.StatusOK {
		return fmt.Errorf("OpenFile: %v", status)
	}

	writeBlock := fsclient.NewCmdBlock()
	fsclient.PrepareSync(client, writeBlock)
	client.WriteFile(writeBlock, handle, []byte("hello from ioscli\n"))

	if status := fsclient.Wait(writeBlock); status != fsclient.StatusOK {
		return fmt.Errorf("WriteFile: %v", status)
	}

	seekBlock := fsclient.NewCmdBlock()
	fsclient.PrepareSync(client, seekBlock)
	client.SetPosFile(seekBlock, handle, 0, fsa.SeekSet)

	if status := fsclient.Wait(seekBlock); status != fsclient.StatusOK {
		return fmt.Errorf("SetPosFile: %v", status)
	}

	readBlock := fsclient.NewCmdBlock()
	fsclient.PrepareSync(client, readBlock)

	dst := make([]byte, readBufSize)
	client.ReadFile(readBlock, handle, dst, 1, false, 0)

	status := fsclient.Wait(readBlock)
	if status < 0 {
		return fmt.Errorf("ReadFile: %v", status)
	}

	fmt.Printf("read %d bytes: %s", int(status), dst[:status])

	closeBlock := fsclient.NewCmdBlock()
	fsclient.PrepareSync(client, closeBlock)
	client.CloseFile(closeBlock, handle)

	if status := fsclient.Wait(closeBlock); status != fsclient.StatusOK {
		return fmt.Errorf("CloseFile: %v", status)
	}

	return nil
}

func streamDiagnostics(rt *runtime.Runtime, interval time.Duration, stop <-chan struct{}) {
	sources := make([]diag.CoreSource, len(rt.Cores))
	for i, c := range rt.Cores {
		sources[i] = c
	}

	streamer := diag.NewStreamer(diag.NewSender(os.Stderr), sources, interval)
	_ = streamer.Run(stop)
}
