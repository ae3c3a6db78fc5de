package fs

import (
	"context"

	"zipsh/internal/logging"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	fileLogger = logging.GetLogger().WithPrefix("file")
)

// File represents a file entry of the snapshot.
type File struct {
	fs    *FS
	entry *Entry
}

// Attr implements the Node interface, returning the file's attributes.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	fileLogger.Trace("Getting attributes for file: %q", f.entry.Path)

	size := uint64(len(f.entry.Data))
	mtime := f.entry.ModTime
	if mtime.IsZero() {
		mtime = f.fs.snap.LoadedAt()
	}

	// Archive permissions minus every write bit
	perm := f.entry.Mode.Perm() &^ 0222
	if perm == 0 {
		perm = 0444
	}

	a.Mode = perm
	a.Size = size
	a.Mtime = mtime
	a.Atime = mtime // We don't track access time
	a.Ctime = mtime // We don't track creation time
	a.Uid = f.fs.uid
	a.Gid = f.fs.gid
	a.BlockSize = 4096
	a.Blocks = (size + 511) / 512

	fileLogger.Trace("File attributes: mode=%v, size=%d, mtime=%v",
		a.Mode, a.Size, a.Mtime)
	return nil
}

// Open implements the NodeOpener interface. Only read access is granted.
func (f *File) Open(_ context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	fileLogger.Debug("Opening file %q with flags %v", f.entry.Path, req.Flags)

	if !req.Flags.IsReadOnly() {
		fileLogger.Warn("Attempted write access to read-only file: %q", f.entry.Path)
		return nil, ToFuseError(NewFSError(OpOpen, f.entry.Path, ErrReadOnly))
	}

	// Snapshot content never changes
	resp.Flags |= fuse.OpenKeepCache

	return &FileHandle{entry: f.entry}, nil
}

// FileHandle represents an open file handle over an in-memory payload.
type FileHandle struct {
	entry *Entry
}

// Read implements the HandleReader interface, reading data from the payload.
func (fh *FileHandle) Read(_ context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	fileLogger.Trace("Reading %d bytes from file %q at offset %d",
		req.Size, fh.entry.Path, req.Offset)

	data := fh.entry.Data
	if req.Offset < 0 {
		return ToFuseError(NewFSError(OpRead, fh.entry.Path, ErrInvalidPath))
	}
	if req.Offset >= int64(len(data)) {
		resp.Data = nil
		return nil
	}

	end := req.Offset + int64(req.Size)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	resp.Data = data[req.Offset:end]
	fileLogger.Trace("Successfully read %d bytes", len(resp.Data))
	return nil
}
