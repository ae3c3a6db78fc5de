package fs

import (
	"path"
	"strings"

	"zipsh/internal/logging"
)

var (
	pathLogger = logging.GetLogger().WithPrefix("path")
)

// Root is the path of the virtual filesystem root.
const Root = "/"

// Normalize turns a raw archive entry name or user supplied path into the
// canonical form used as snapshot key: forward slashes only, a single
// leading slash, no trailing slash, no empty, "." or ".." segments.
// ".." never climbs above the root.
func Normalize(raw string) string {
	p := strings.ReplaceAll(raw, `\`, "/")
	cleaned := path.Clean(Root + p)
	pathLogger.Trace("Normalized path: %q -> %q", raw, cleaned)
	return cleaned
}

// Resolve computes the absolute path target refers to when interpreted
// from cursor. Absolute targets replace the cursor entirely.
func Resolve(cursor, target string) string {
	t := strings.ReplaceAll(target, `\`, "/")
	if strings.HasPrefix(t, "/") {
		return Normalize(t)
	}
	return Normalize(cursor + "/" + t)
}

// Parent returns the parent of a normalized path. The parent of the root
// is the root.
func Parent(p string) string {
	return path.Dir(Normalize(p))
}

// childPrefix is the prefix every descendant of p starts with.
func childPrefix(p string) string {
	if p == Root {
		return Root
	}
	return p + "/"
}

// VirtualPath represents a path in our virtual filesystem.
// All paths are absolute and normalized.
type VirtualPath struct {
	// always starts with /, never ends with one unless it is the root
	path string
}

// NewVirtualPath creates a new VirtualPath instance.
// It normalizes the path and ensures it's absolute.
func NewVirtualPath(p string) *VirtualPath {
	return &VirtualPath{path: Normalize(p)}
}

// String returns the string representation of the path
func (vp *VirtualPath) String() string {
	return vp.path
}

// Join returns the path of the child called name.
func (vp *VirtualPath) Join(name string) *VirtualPath {
	return NewVirtualPath(childPrefix(vp.path) + name)
}

// Parent returns a VirtualPath representing the parent directory
func (vp *VirtualPath) Parent() *VirtualPath {
	return &VirtualPath{path: path.Dir(vp.path)}
}

// Base returns the last element of the path
func (vp *VirtualPath) Base() string {
	return path.Base(vp.path)
}

// IsRoot returns true if this is the root virtual path "/"
func (vp *VirtualPath) IsRoot() bool {
	return vp.path == Root
}
