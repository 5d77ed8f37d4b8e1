package fsa

import (
	"errors"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/wiiu-emu/ios-core/hostfs"
	"github.com/wiiu-emu/ios-core/ios"
	"github.com/wiiu-emu/ios-core/wire"
)

// Device is the FSA pseudo-device (spec.md §4.5 / component C6). It is
// the only ios.Device this spec defines: every FS client command
// eventually becomes one Ioctl or Ioctlv call here, carrying a *Shim in
// wire.Buffer.Payload.
//
// A Device owns its own open-file and open-directory handle tables,
// separate from ios.Dispatcher's device handle table; FSA handles are
// meaningful only to this device.
type Device struct {
	fs  hostfs.Filesystem
	log *zap.Logger

	mu             sync.Mutex
	handle         int32
	files          map[int32]hostfs.File
	dirs           map[int32]*openDir
	nextFileHandle int32
	nextDirHandle  int32
	cwd            string
	lastError      Status
}

type openDir struct {
	entries []hostfs.DirEntry
	pos     int
}

// NewDevice returns an unopened FSA device backed by fs. The returned
// value's zero handle tables mean file and directory handles start at 1,
// mirroring ios.Dispatcher's own handle allocation.
func NewDevice(fs hostfs.Filesystem, log *zap.Logger) *Device {
	if log == nil {
		log = zap.NewNop()
	}

	return &Device{
		fs:             fs,
		log:            log,
		files:          make(map[int32]hostfs.File),
		dirs:           make(map[int32]*openDir),
		nextFileHandle: 1,
		nextDirHandle:  1,
		cwd:            "/",
	}
}

// Factory returns an ios.Factory that always hands back this same
// Device. FSA is a singleton device: every core's fsclient.Client opens
// the same "/dev/fsa" name and gets routed to one shared instance,
// matching original_source's single coreinit_fsa handle per title.
func Factory(dev *Device) ios.Factory {
	return func() ios.Device { return dev }
}

func (d *Device) Open(mode ios.OpenMode) wire.Status { return wire.StatusOK }
func (d *Device) Close() wire.Status                 { return wire.StatusOK }
func (d *Device) SetHandle(handle int32)             { d.handle = handle }

// Ioctl services every non-read/write FSA command.
func (d *Device) Ioctl(request uint32, payload any) wire.Status {
	shim, ok := payload.(*Shim)
	if !ok {
		return wire.Status(StatusInvalidParam)
	}

	status := d.dispatch(shim)
	if status != StatusOK {
		d.mu.Lock()
		d.lastError = status
		d.mu.Unlock()
	}

	return wire.Status(status)
}

// Ioctlv services ReadFile and WriteFile, whose payload data rides in
// vec rather than inline in the Shim (spec.md §4.5).
func (d *Device) Ioctlv(request uint32, payload any, vec []wire.IOBuffer) wire.Status {
	shim, ok := payload.(*Shim)
	if !ok {
		return wire.Status(StatusInvalidParam)
	}

	switch shim.Command {
	case CommandReadFile:
		if len(vec) < 1 {
			return wire.Status(StatusInvalidBuffer)
		}

		status := d.readFile(shim, vec[0].Data)

		return wire.Status(status)
	case CommandWriteFile:
		if len(vec) < 1 {
			return wire.Status(StatusInvalidBuffer)
		}

		status := d.writeFile(shim, vec[0].Data)

		return wire.Status(status)
	default:
		return wire.Status(d.dispatch(shim))
	}
}

func (d *Device) dispatch(shim *Shim) Status {
	switch shim.Command {
	case CommandMount:
		return StatusOK
	case CommandUnmount:
		return StatusOK
	case CommandOpenFile:
		return d.openFile(shim)
	case CommandCloseFile:
		return d.closeFile(shim)
	case CommandSetPosFile:
		return d.setPosFile(shim)
	case CommandGetPosFile:
		return d.getPosFile(shim)
	case CommandIsEof:
		return d.isEof(shim)
	case CommandFlushFile:
		return d.flushFile(shim)
	case CommandAppendFile:
		return d.appendFile(shim)
	case CommandTruncateFile:
		return d.truncateFile(shim)
	case CommandStatFile:
		return d.statFile(shim)
	case CommandGetFileBlockAddress:
		return StatusUnsupportedCmd
	case CommandOpenDir:
		return d.openDir(shim)
	case CommandCloseDir:
		return d.closeDir(shim)
	case CommandReadDir:
		return d.readDir(shim)
	case CommandRewindDir:
		return d.rewindDir(shim)
	case CommandMakeDir:
		return d.makeDir(shim)
	case CommandRemove:
		return d.remove(shim)
	case CommandRename:
		return d.rename(shim)
	case CommandChangeDir:
		return d.changeDir(shim)
	case CommandGetCwd:
		d.mu.Lock()
		shim.ResultCwd = d.cwd
		d.mu.Unlock()

		return StatusOK
	case CommandGetVolumeInfo:
		return d.getVolumeInfo(shim)
	case CommandChangeMode:
		return d.changeMode(shim)
	case CommandMakeQuota, CommandFlushQuota, CommandRollbackQuota, CommandRemoveQuota,
		CommandRegisterFlushQuota, CommandFlushMultiQuota:
		return StatusUnsupportedCmd
	case CommandMakeLink:
		return StatusUnsupportedCmd
	case CommandGetInfoByQuery:
		return d.getInfoByQuery(shim)
	case CommandGetError:
		d.mu.Lock()
		shim.ResultLastError = d.lastError
		d.mu.Unlock()

		return StatusOK
	default:
		return StatusUnsupportedCmd
	}
}

func (d *Device) resolve(path string) string {
	if path == "" {
		return d.cwd
	}

	if path[0] == '/' {
		return path
	}

	return d.cwd + "/" + path
}

func (d *Device) openFile(shim *Shim) Status {
	path := d.resolve(shim.Path)

	f, err := d.fs.OpenFile(path, shim.OpenFlags, shim.Mode)
	if err != nil {
		return translateErr(err)
	}

	d.mu.Lock()
	handle := d.nextFileHandle
	d.nextFileHandle++
	d.files[handle] = f
	d.mu.Unlock()

	shim.ResultFileHandle = handle

	return StatusOK
}

func (d *Device) closeFile(shim *Shim) Status {
	d.mu.Lock()
	f, ok := d.files[shim.FileHandle]

	if ok {
		delete(d.files, shim.FileHandle)
	}

	d.mu.Unlock()

	if !ok {
		return StatusInvalidFileHandle
	}

	if err := f.Close(); err != nil {
		return translateErr(err)
	}

	return StatusOK
}

func (d *Device) getFile(handle int32) (hostfs.File, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	f, ok := d.files[handle]

	return f, ok
}

// readFile fills dst (sized by the caller to the chunk this call may
// transfer) and reports the byte count actually read via
// shim.ResultCount, folding io.EOF into a short, non-error read as
// fsclient's finishReadCmd expects (spec.md §4.7 chunked read loop).
func (d *Device) readFile(shim *Shim, dst []byte) Status {
	f, ok := d.getFile(shim.FileHandle)
	if !ok {
		return StatusInvalidFileHandle
	}

	n, err := f.Read(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return translateErr(err)
	}

	shim.ResultCount = uint32(n)

	return StatusOK
}

func (d *Device) writeFile(shim *Shim, src []byte) Status {
	f, ok := d.getFile(shim.FileHandle)
	if !ok {
		return StatusInvalidFileHandle
	}

	n, err := f.Write(src)
	if err != nil {
		return translateErr(err)
	}

	shim.ResultCount = uint32(n)

	return StatusOK
}

func (d *Device) setPosFile(shim *Shim) Status {
	f, ok := d.getFile(shim.FileHandle)
	if !ok {
		return StatusInvalidFileHandle
	}

	var whence int

	switch shim.Origin {
	case SeekSet:
		whence = io.SeekStart
	case SeekCur:
		whence = io.SeekCurrent
	case SeekEnd:
		whence = io.SeekEnd
	}

	if _, err := f.Seek(shim.Offset, whence); err != nil {
		return translateErr(err)
	}

	return StatusOK
}

func (d *Device) getPosFile(shim *Shim) Status {
	f, ok := d.getFile(shim.FileHandle)
	if !ok {
		return StatusInvalidFileHandle
	}

	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return translateErr(err)
	}

	shim.Offset = pos

	return StatusOK
}

// isEof reports end-of-file through its own return status rather than a
// response field: StatusEndOfFile at or past the end, StatusOK
// otherwise. This mirrors original_source's FSACommand::IsEof, whose
// result the caller reads directly off the reply, with no separate
// output binding.
func (d *Device) isEof(shim *Shim) Status {
	f, ok := d.getFile(shim.FileHandle)
	if !ok {
		return StatusInvalidFileHandle
	}

	info, err := f.Stat()
	if err != nil {
		return translateErr(err)
	}

	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return translateErr(err)
	}

	if pos >= info.Size {
		return StatusEndOfFile
	}

	return StatusOK
}

func (d *Device) flushFile(shim *Shim) Status {
	f, ok := d.getFile(shim.FileHandle)
	if !ok {
		return StatusInvalidFileHandle
	}

	if err := f.Sync(); err != nil {
		return translateErr(err)
	}

	return StatusOK
}

func (d *Device) appendFile(shim *Shim) Status {
	f, ok := d.getFile(shim.FileHandle)
	if !ok {
		return StatusInvalidFileHandle
	}

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return translateErr(err)
	}

	return StatusOK
}

func (d *Device) truncateFile(shim *Shim) Status {
	f, ok := d.getFile(shim.FileHandle)
	if !ok {
		return StatusInvalidFileHandle
	}

	if err := f.Truncate(shim.Offset); err != nil {
		return translateErr(err)
	}

	return StatusOK
}

func (d *Device) statFile(shim *Shim) Status {
	f, ok := d.getFile(shim.FileHandle)
	if !ok {
		return StatusInvalidFileHandle
	}

	info, err := f.Stat()
	if err != nil {
		return translateErr(err)
	}

	shim.ResultStat = Stat{
		Size:    info.Size,
		IsDir:   info.IsDir,
		Mode:    uint32(info.Mode.Perm()),
		ModTime: info.ModTime.Unix(),
	}

	return StatusOK
}

func (d *Device) openDir(shim *Shim) Status {
	path := d.resolve(shim.Path)

	entries, err := d.fs.ReadDir(path)
	if err != nil {
		return translateErr(err)
	}

	d.mu.Lock()
	handle := d.nextDirHandle
	d.nextDirHandle++
	d.dirs[handle] = &openDir{entries: entries}
	d.mu.Unlock()

	shim.ResultDirHandle = handle

	return StatusOK
}

func (d *Device) closeDir(shim *Shim) Status {
	d.mu.Lock()
	_, ok := d.dirs[shim.DirHandle]

	if ok {
		delete(d.dirs, shim.DirHandle)
	}

	d.mu.Unlock()

	if !ok {
		return StatusInvalidDirHandle
	}

	return StatusOK
}

func (d *Device) readDir(shim *Shim) Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	dir, ok := d.dirs[shim.DirHandle]
	if !ok {
		return StatusInvalidDirHandle
	}

	if dir.pos >= len(dir.entries) {
		return StatusEndOfDir
	}

	e := dir.entries[dir.pos]
	dir.pos++

	shim.ResultDirEntry = DirEntry{Name: e.Name, IsDir: e.IsDir, Size: e.Size}

	return StatusOK
}

func (d *Device) rewindDir(shim *Shim) Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	dir, ok := d.dirs[shim.DirHandle]
	if !ok {
		return StatusInvalidDirHandle
	}

	dir.pos = 0

	return StatusOK
}

func (d *Device) makeDir(shim *Shim) Status {
	if err := d.fs.Mkdir(d.resolve(shim.Path), os.FileMode(0o755)); err != nil {
		return translateErr(err)
	}

	return StatusOK
}

func (d *Device) remove(shim *Shim) Status {
	if err := d.fs.Remove(d.resolve(shim.Path)); err != nil {
		return translateErr(err)
	}

	return StatusOK
}

func (d *Device) rename(shim *Shim) Status {
	if err := d.fs.Rename(d.resolve(shim.Path), d.resolve(shim.NewPath)); err != nil {
		return translateErr(err)
	}

	return StatusOK
}

func (d *Device) changeDir(shim *Shim) Status {
	target := d.resolve(shim.Path)

	info, err := d.fs.Stat(target)
	if err != nil {
		return translateErr(err)
	}

	if !info.IsDir {
		return StatusNotDir
	}

	d.mu.Lock()
	d.cwd = target
	d.mu.Unlock()

	return StatusOK
}

func (d *Device) getVolumeInfo(shim *Shim) Status {
	info, err := d.fs.Stat("/")
	if err != nil {
		return translateErr(err)
	}

	shim.ResultVolumeInfo = VolumeInfo{DeviceSizeBytes: info.Size, FreeSpaceBytes: -1}

	return StatusOK
}

func (d *Device) changeMode(shim *Shim) Status {
	if err := d.fs.Chmod(d.resolve(shim.Path), shim.Mode); err != nil {
		return translateErr(err)
	}

	return StatusOK
}

func (d *Device) getInfoByQuery(shim *Shim) Status {
	switch shim.QueryType {
	case QueryTypeDeviceInfo, QueryTypeFreeSpaceSize:
		shim.ResultFreeBytes = -1

		return StatusOK
	case QueryTypeDirSize, QueryTypeDirEntryNum:
		entries, err := d.fs.ReadDir(d.resolve(shim.Path))
		if err != nil {
			return translateErr(err)
		}

		shim.ResultCount = uint32(len(entries))

		return StatusOK
	default:
		return StatusInvalidParam
	}
}

// translateErr maps a hostfs/afero error into the FSA status it would
// have produced; an error it does not recognise becomes StatusMediaError.
func translateErr(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case os.IsNotExist(err):
		return StatusNotFound
	case os.IsPermission(err):
		return StatusPermissionError
	case os.IsExist(err):
		return StatusAlreadyExists
	case errors.Is(err, io.EOF):
		return StatusEndOfFile
	default:
		return StatusMediaError
	}
}
