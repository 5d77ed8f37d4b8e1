package hostfs_test

import (
	"os"
	"testing"

	"github.com/wiiu-emu/ios-core/hostfs"
)

func TestMemFilesystemRoundTrip(t *testing.T) {
	t.Parallel()

	fs := hostfs.NewMem()

	f, err := fs.OpenFile("/greeting.txt", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	if _, err := f.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := fs.Stat("/greeting.txt")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	if info.Size != 5 {
		t.Fatalf("Size: got %d, want 5", info.Size)
	}
}

func TestMemFilesystemReadDir(t *testing.T) {
	t.Parallel()

	fs := hostfs.NewMem()

	if err := fs.Mkdir("/dir", 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	for _, name := range []string{"/dir/a.txt", "/dir/b.txt"} {
		f, err := fs.OpenFile(name, os.O_CREATE|os.O_RDWR, 0o644)
		if err != nil {
			t.Fatalf("OpenFile(%s): %v", name, err)
		}

		f.Close()
	}

	entries, err := fs.ReadDir("/dir")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("ReadDir len: got %d, want 2", len(entries))
	}
}

func TestNewRejectsNonDirectory(t *testing.T) {
	t.Parallel()

	tmp, err := os.CreateTemp(t.TempDir(), "notadir")
	if err != nil {
		t.Fatal(err)
	}

	tmp.Close()

	if _, err := hostfs.New(tmp.Name()); err == nil {
		t.Fatal("expected error rooting hostfs at a plain file")
	}
}
