// Package runtime orchestrates the pieces the rest of this module only
// defines: it builds a registry with the FSA device registered, a
// kernel dispatcher on top of it, and one ipcdriver.Driver + fsclient.Client
// pair per core, then runs the fleet until its context is cancelled.
//
// This is not itself a spec component; it is the wiring
// vmm.VMM and machine.Machine perform for a fleet of vCPUs, rewritten
// around a fleet of FS clients instead.
package runtime

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wiiu-emu/ios-core/fsa"
	"github.com/wiiu-emu/ios-core/fsclient"
	"github.com/wiiu-emu/ios-core/hostfs"
	"github.com/wiiu-emu/ios-core/ios"
	"github.com/wiiu-emu/ios-core/ipcdriver"
	"github.com/wiiu-emu/ios-core/wire"
)

// fsaDeviceName is the only device this runtime registers, matching
// spec.md's closed device set of one: FSA.
const fsaDeviceName = "/dev/fsa"

// driverCapacity is the number of in-flight IPC requests each core's
// driver can hold at once, matching original_source's default
// IPCBufferCount.
const driverCapacity = 32

// Config selects how many cores to run and what backs the FSA device.
type Config struct {
	NumCores int

	// HostFSRoot roots the FSA device at a real directory. Empty means
	// an in-memory filesystem, useful for demos and tests that should
	// not touch the host disk.
	HostFSRoot string
}

// Core is one core's IPC driver and FS client, bound to the core's own
// /dev/fsa handle (every core's handle routes to the one shared
// fsa.Device). It implements diag.CoreSource.
type Core struct {
	ID     int
	Driver *ipcdriver.Driver
	Client *fsclient.Client
}

// CoreID returns the core's index.
func (c *Core) CoreID() int { return c.ID }

// VolumeState returns the core's FS client's current volume-state name.
func (c *Core) VolumeState() string { return c.Client.FSM.State().String() }

// DriverSnapshot returns the core's IPC driver counters.
func (c *Core) DriverSnapshot() ipcdriver.Counters { return c.Driver.Snapshot() }

// Runtime owns the kernel-side dispatcher and every core's client.
type Runtime struct {
	log *zap.Logger

	dispatcher *ios.Dispatcher
	fsaHandle  int32

	Cores []*Core
}

// New builds a Runtime per cfg: one shared FSA device, one dispatcher,
// and cfg.NumCores driver+client pairs each already Open and holding
// their own open handle to /dev/fsa.
func New(cfg Config, log *zap.Logger) (*Runtime, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.NumCores <= 0 {
		return nil, fmt.Errorf("runtime: NumCores must be positive, got %d", cfg.NumCores)
	}

	fs, err := newFilesystem(cfg.HostFSRoot)
	if err != nil {
		return nil, fmt.Errorf("runtime: building host filesystem: %w", err)
	}

	registry := ios.NewRegistry()
	registry.Register(fsaDeviceName, fsa.Factory(fsa.NewDevice(fs, log)))

	dispatcher := ios.NewDispatcher(registry, log)

	r := &Runtime{
		log:        log,
		dispatcher: dispatcher,
	}

	for i := 0; i < cfg.NumCores; i++ {
		core, err := r.newCore(i)
		if err != nil {
			r.closeCores()

			return nil, fmt.Errorf("runtime: starting core %d: %w", i, err)
		}

		r.Cores = append(r.Cores, core)
	}

	return r, nil
}

func newFilesystem(root string) (hostfs.Filesystem, error) {
	if root == "" {
		return hostfs.NewMem(), nil
	}

	return hostfs.New(root)
}

func (r *Runtime) newCore(id int) (*Core, error) {
	driver := ipcdriver.NewDriver(driverCapacity, r.dispatcher, r.log)
	driver.Init()

	if err := driver.Open(); err != nil {
		return nil, err
	}

	handle, status := r.openFSA()
	if status != wire.StatusOK {
		driver.Close()

		return nil, fmt.Errorf("opening %s: status %v", fsaDeviceName, status)
	}

	client := fsclient.NewClient(driver.Bind(handle), r.log.With(zap.Int("core", id)))

	return &Core{ID: id, Driver: driver, Client: client}, nil
}

// openFSA opens /dev/fsa directly against the dispatcher. Every core
// shares the same underlying fsa.Device (registered once as a
// singleton factory) but is handed its own dispatcher-level handle, the
// way the original hands every client its own FSA client body against
// one FSADevice.
func (r *Runtime) openFSA() (int32, wire.Status) {
	name := fsaDeviceName + "\x00"

	buf := &wire.Buffer{
		Command: wire.CommandOpen,
		Handle:  -1,
		Buffer1: wire.IOBuffer{Data: []byte(name)},
	}
	buf.Args[1] = uint32(len(name))

	r.dispatcher.Dispatch(buf)

	if buf.Reply < 0 {
		return 0, buf.Reply
	}

	return int32(buf.Reply), wire.StatusOK
}

func (r *Runtime) closeCores() {
	for _, c := range r.Cores {
		c.Driver.Close()
	}

	r.Cores = nil
}

// Run keeps every core's driver alive until ctx is cancelled, then
// closes them in order. It never returns an error of its own; a core's
// driver has no failure mode short of a panic, so the errgroup exists
// to give a future core workload (spec.md's CLI issuing commands from
// a per-core goroutine) first-error-wins cancellation instead of the
// teacher's shared, silently-overwritten err variable.
func (r *Runtime) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, core := range r.Cores {
		core := core

		g.Go(func() error {
			r.log.Info("core started", zap.Int("core", core.ID))
			<-gctx.Done()
			r.log.Info("core stopping", zap.Int("core", core.ID))

			return nil
		})
	}

	err := g.Wait()

	r.closeCores()

	return err
}

// Close tears down every core's driver without waiting on a context,
// for callers (such as tests) that never called Run.
func (r *Runtime) Close() {
	r.closeCores()
}
