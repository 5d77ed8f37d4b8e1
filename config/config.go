// Package config parses cmd/ioscli's command-line flags into a
// runtime.Config plus the ambient options (profiling, diagnostics
// interval) the demo binary needs but runtime itself has no business
// knowing about.
package config

import (
	"flag"
	"fmt"
	"time"
)

// Config is the fully parsed command line.
type Config struct {
	// NumCores is the number of ipcdriver.Driver/fsclient.Client pairs
	// runtime.New starts.
	NumCores int

	// HostFSRoot roots the FSA device at a real directory. Empty means
	// an in-memory filesystem.
	HostFSRoot string

	// Profile selects a pkg/profile mode ("cpu", "mem", "block",
	// "goroutine", or "" to disable profiling entirely).
	Profile string

	// DiagInterval is how often the demo binary streams a diag.Snapshot
	// to stderr. Zero disables diagnostics streaming.
	DiagInterval time.Duration

	// ChunkSize is the size in bytes of the destination buffer the demo
	// passes to fsclient.Client.ReadFile; the client splits a read
	// larger than fsclient.FSMaxBytesPerRequest into several rounds.
	ChunkSize uint32
}

// ParseArgs parses args (typically os.Args) into a Config.
func ParseArgs(args []string) (Config, error) {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)

	numCores := fs.Int("c", 1, "number of cores to run")
	hostFSRoot := fs.String("root", "", "host directory to back the FSA device; empty means in-memory")
	profile := fs.String("profile", "", "pkg/profile mode to run under: cpu, mem, block, goroutine, or empty to disable")
	diagInterval := fs.Duration("diag-interval", 0, "how often to stream diagnostics to stderr; 0 disables")
	chunkSize := fs.Uint("chunk-size", 64*1024, "size in bytes of the demo's read buffer")

	if err := fs.Parse(args[1:]); err != nil {
		return Config{}, fmt.Errorf("config: parsing flags: %w", err)
	}

	if *numCores <= 0 {
		return Config{}, fmt.Errorf("config: -c must be positive, got %d", *numCores)
	}

	if *chunkSize == 0 {
		return Config{}, fmt.Errorf("config: -chunk-size must be positive")
	}

	switch *profile {
	case "", "cpu", "mem", "block", "goroutine":
	default:
		return Config{}, fmt.Errorf("config: unknown -profile mode %q", *profile)
	}

	return Config{
		NumCores:     *numCores,
		HostFSRoot:   *hostFSRoot,
		Profile:      *profile,
		DiagInterval: *diagInterval,
		ChunkSize:    uint32(*chunkSize),
	}, nil
}
