package config_test

import (
	"testing"
	"time"

	"github.com/wiiu-emu/ios-core/config"
)

func TestParseArgsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.ParseArgs([]string{"ioscli"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}

	if cfg.NumCores != 1 || cfg.HostFSRoot != "" || cfg.Profile != "" || cfg.DiagInterval != 0 {
		t.Fatalf("defaults: got %+v", cfg)
	}

	if cfg.ChunkSize != 64*1024 {
		t.Fatalf("ChunkSize default: got %d, want 65536", cfg.ChunkSize)
	}
}

func TestParseArgsOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := config.ParseArgs([]string{
		"ioscli", "-c", "4", "-root", "/tmp/fs", "-profile", "cpu", "-diag-interval", "2s", "-chunk-size", "1024",
	})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}

	if cfg.NumCores != 4 {
		t.Fatalf("NumCores: got %d, want 4", cfg.NumCores)
	}

	if cfg.HostFSRoot != "/tmp/fs" {
		t.Fatalf("HostFSRoot: got %q, want /tmp/fs", cfg.HostFSRoot)
	}

	if cfg.Profile != "cpu" {
		t.Fatalf("Profile: got %q, want cpu", cfg.Profile)
	}

	if cfg.DiagInterval != 2*time.Second {
		t.Fatalf("DiagInterval: got %v, want 2s", cfg.DiagInterval)
	}

	if cfg.ChunkSize != 1024 {
		t.Fatalf("ChunkSize: got %d, want 1024", cfg.ChunkSize)
	}
}

func TestParseArgsRejectsZeroCores(t *testing.T) {
	t.Parallel()

	if _, err := config.ParseArgs([]string{"ioscli", "-c", "0"}); err == nil {
		t.Fatal("expected an error for -c 0")
	}
}

func TestParseArgsRejectsUnknownProfile(t *testing.T) {
	t.Parallel()

	if _, err := config.ParseArgs([]string{"ioscli", "-profile", "bogus"}); err == nil {
		t.Fatal("expected an error for an unknown -profile mode")
	}
}
