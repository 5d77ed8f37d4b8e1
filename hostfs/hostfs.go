// Package hostfs is the pluggable backend behind the FSA device
// (spec.md §1 calls "the actual on-disk filesystem backend ... a
// pluggable host FS behind the FSA device" out of scope for this
// spec's core, but a Device implementation needs something to delegate
// to). It is grounded on paglimo-beegfs-go's rst/internal/filesystem
// package, which wraps github.com/spf13/afero the same way: a small
// interface, one implementation rooted at a real directory and one
// in-memory implementation for tests.
package hostfs

import (
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
)

// FileInfo is the subset of os.FileInfo the FSA device needs to fill in
// an FSStat response.
type FileInfo struct {
	Name    string
	IsDir   bool
	Size    int64
	Mode    os.FileMode
	ModTime time.Time
}

// DirEntry describes one entry returned by Filesystem.ReadDir.
type DirEntry struct {
	Name  string
	IsDir bool
	Size  int64
}

// File is an open file handle.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	Truncate(size int64) error
	Sync() error
	Stat() (FileInfo, error)
}

// Filesystem is the host-side operations the FSA device translates its
// requests into.
type Filesystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	Rename(oldName, newName string) error
	Mkdir(name string, perm os.FileMode) error
	Chmod(name string, mode os.FileMode) error
	Stat(name string) (FileInfo, error)
	ReadDir(name string) ([]DirEntry, error)
}

// New returns a Filesystem rooted at root on the real filesystem. All
// paths passed to its methods are resolved relative to root, the way
// afero.NewBasePathFs sandboxes an afero.OsFs.
func New(root string) (Filesystem, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return nil, &os.PathError{Op: "hostfs.New", Path: root, Err: os.ErrInvalid}
	}

	return &aferoFS{fs: afero.NewBasePathFs(afero.NewOsFs(), root)}, nil
}

// NewMem returns an in-memory Filesystem, used by tests and by the FSA
// device's own test suite so they never touch the real disk.
func NewMem() Filesystem {
	return &aferoFS{fs: afero.NewMemMapFs()}
}

type aferoFS struct {
	fs afero.Fs
}

func (a *aferoFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	f, err := a.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	return &aferoFile{f: f}, nil
}

func (a *aferoFS) Remove(name string) error { return a.fs.Remove(name) }

func (a *aferoFS) Rename(oldName, newName string) error { return a.fs.Rename(oldName, newName) }

func (a *aferoFS) Mkdir(name string, perm os.FileMode) error { return a.fs.MkdirAll(name, perm) }

func (a *aferoFS) Chmod(name string, mode os.FileMode) error { return a.fs.Chmod(name, mode) }

func (a *aferoFS) Stat(name string) (FileInfo, error) {
	info, err := a.fs.Stat(name)
	if err != nil {
		return FileInfo{}, err
	}

	return toFileInfo(info), nil
}

func (a *aferoFS) ReadDir(name string) ([]DirEntry, error) {
	infos, err := afero.ReadDir(a.fs, name)
	if err != nil {
		return nil, err
	}

	entries := make([]DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = DirEntry{Name: info.Name(), IsDir: info.IsDir(), Size: info.Size()}
	}

	return entries, nil
}

func toFileInfo(info os.FileInfo) FileInfo {
	return FileInfo{
		Name:    info.Name(),
		IsDir:   info.IsDir(),
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
	}
}

type aferoFile struct {
	f afero.File
}

func (a *aferoFile) Read(p []byte) (int, error)  { return a.f.Read(p) }
func (a *aferoFile) Write(p []byte) (int, error) { return a.f.Write(p) }
func (a *aferoFile) Seek(offset int64, whence int) (int64, error) {
	return a.f.Seek(offset, whence)
}
func (a *aferoFile) Close() error            { return a.f.Close() }
func (a *aferoFile) Truncate(size int64) error { return a.f.Truncate(size) }
func (a *aferoFile) Sync() error             { return a.f.Sync() }

func (a *aferoFile) Stat() (FileInfo, error) {
	info, err := a.f.Stat()
	if err != nil {
		return FileInfo{}, err
	}

	return toFileInfo(info), nil
}
