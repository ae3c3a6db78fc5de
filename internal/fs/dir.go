package fs

import (
	"context"
	"os"
	"strings"

	"zipsh/internal/logging"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var (
	dirLogger = logging.GetLogger().WithPrefix("dir")
)

// Dir represents a directory in the virtual filesystem.
// It can be the root, an explicit directory marker from the archive, or an
// implied directory that only exists because entries live below it.
type Dir struct {
	fs   *FS
	path *VirtualPath
}

// Attr implements the Node interface, returning directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	dirLogger.Trace("Getting attributes for directory: %q", d.path.String())

	a.Mode = os.ModeDir | 0555
	a.Uid = d.fs.uid
	a.Gid = d.fs.gid
	a.Mtime = d.fs.snap.LoadedAt()

	// Explicit markers carry their own timestamp
	if e, ok := d.fs.snap.Lookup(d.path.String()); ok && e.Dir && !e.ModTime.IsZero() {
		a.Mtime = e.ModTime
	}
	a.Atime = a.Mtime
	a.Ctime = a.Mtime
	return nil
}

// Lookup implements the NodeStringLookuper interface, finding a child node.
func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	dirLogger.Debug("Looking up %q in directory %q", name, d.path.String())
	// snapshot keys never hold a separator inside a name, and Join would
	// otherwise reinterpret one
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		dirLogger.Debug("Rejecting lookup of %q", name)
		return nil, ToFuseError(NewFSError(OpLookup, name, ErrPathNotFound))
	}
	childPath := d.path.Join(name)
	snap := d.fs.snap

	if snap.IsDir(childPath.String()) {
		dirLogger.Debug("Found directory: %q", childPath.String())
		return &Dir{fs: d.fs, path: childPath}, nil
	}

	if e, ok := snap.Lookup(childPath.String()); ok {
		dirLogger.Debug("Found file: %q", childPath.String())
		return &File{fs: d.fs, entry: e}, nil
	}

	dirLogger.Debug("Path not found: %q", childPath.String())
	return nil, ToFuseError(NewFSError(OpLookup, childPath.String(), ErrPathNotFound))
}

// ReadDirAll implements the HandleReadDirAller interface, listing directory contents.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	dirLogger.Debug("Reading directory contents: %q", d.path.String())

	// Add standard entries
	entries := []fuse.Dirent{
		{Name: ".", Type: fuse.DT_Dir},
		{Name: "..", Type: fuse.DT_Dir},
	}

	for _, name := range d.fs.snap.Children(d.path.String()) {
		typ := fuse.DT_File
		if d.fs.snap.IsDir(d.path.Join(name).String()) {
			typ = fuse.DT_Dir
		}
		dirLogger.Trace("Found entry: %q (type=%v)", name, typ)
		entries = append(entries, fuse.Dirent{Name: name, Type: typ})
	}

	dirLogger.Debug("Directory %q contains %d entries", d.path.String(), len(entries))
	return entries, nil
}
