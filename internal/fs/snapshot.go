package fs

import (
	"os"
	"sort"
	"strings"
	"time"

	"zipsh/internal/archive"
	"zipsh/internal/logging"
)

var (
	snapLogger = logging.GetLogger().WithPrefix("snapshot")
)

// Entry is one normalized archive member.
type Entry struct {
	Path    string
	Dir     bool // directory marker, carries no payload
	Mode    os.FileMode
	ModTime time.Time
	Data    []byte
}

// Name returns the last path segment of the entry.
func (e *Entry) Name() string {
	return NewVirtualPath(e.Path).Base()
}

// Snapshot is the immutable path -> Entry view of an archive. The hierarchy
// is not stored; children and implied directories are derived from the
// sorted key set by prefix comparison.
type Snapshot struct {
	source  string
	entries map[string]*Entry
	paths   []string // sorted keys of entries
	loaded  time.Time
}

// Load opens the archive at path and builds its snapshot. Any failure is
// reported as *LoadError.
func Load(path string) (*Snapshot, error) {
	snapLogger.Info("Loading archive %s", path)
	a, err := archive.Open(path)
	if err != nil {
		return nil, &LoadError{Archive: path, Err: err}
	}
	s := NewSnapshot(a.Entries)
	s.source = path
	return s, nil
}

// NewSnapshot normalizes raw archive entries into a snapshot. When two raw
// names normalize to the same path the first one encountered wins.
func NewSnapshot(raw []archive.Entry) *Snapshot {
	s := &Snapshot{
		entries: make(map[string]*Entry, len(raw)),
		paths:   make([]string, 0, len(raw)),
		loaded:  time.Now(),
	}

	for _, re := range raw {
		p := Normalize(re.Name)
		if p == Root {
			snapLogger.Debug("Ignoring root entry %q", re.Name)
			continue
		}
		if _, exists := s.entries[p]; exists {
			snapLogger.Debug("Duplicate entry %q normalizes to existing %q, keeping first", re.Name, p)
			continue
		}

		entry := &Entry{
			Path:    p,
			Dir:     re.Dir,
			Mode:    re.Mode,
			ModTime: re.ModTime,
		}
		if !re.Dir {
			entry.Data = re.Data
		}
		s.entries[p] = entry
		s.paths = append(s.paths, p)
		snapLogger.Trace("Added entry %q (dir=%v, %d bytes)", p, entry.Dir, len(entry.Data))
	}
	sort.Strings(s.paths)

	snapLogger.Debug("Snapshot holds %d entries", len(s.paths))
	return s
}

// Source returns the archive path the snapshot was loaded from, if any.
func (s *Snapshot) Source() string {
	return s.source
}

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loaded
}

// Len returns the number of explicit entries.
func (s *Snapshot) Len() int {
	return len(s.paths)
}

// Paths returns all explicit entry paths in lexicographic order.
func (s *Snapshot) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Lookup returns the explicit entry stored at the normalized path p.
func (s *Snapshot) Lookup(p string) (*Entry, bool) {
	e, ok := s.entries[p]
	return e, ok
}

// Exists reports whether p is a valid cursor location: the root, an
// explicit entry, or an implied directory with at least one descendant.
func (s *Snapshot) Exists(p string) bool {
	if p == Root {
		return true
	}
	if _, ok := s.entries[p]; ok {
		return true
	}
	return s.hasDescendants(p)
}

// IsDir reports whether p behaves as a directory: the root, a directory
// marker, or any path that has descendants.
func (s *Snapshot) IsDir(p string) bool {
	if p == Root {
		return true
	}
	if e, ok := s.entries[p]; ok && e.Dir {
		return true
	}
	return s.hasDescendants(p)
}

func (s *Snapshot) hasDescendants(p string) bool {
	prefix := childPrefix(p)
	i := sort.SearchStrings(s.paths, prefix)
	return i < len(s.paths) && strings.HasPrefix(s.paths[i], prefix)
}

// Children returns the sorted, deduplicated names lying directly under p.
// Names of implied directories are included even when the archive has no
// marker entry for them. A file or unknown path has no children.
func (s *Snapshot) Children(p string) []string {
	prefix := childPrefix(p)
	seen := make(map[string]struct{})

	// keys sharing the prefix form one contiguous run in sorted order
	for i := sort.SearchStrings(s.paths, prefix); i < len(s.paths); i++ {
		candidate := s.paths[i]
		if !strings.HasPrefix(candidate, prefix) {
			break
		}
		if candidate == p {
			continue
		}
		head, _, _ := strings.Cut(strings.TrimPrefix(candidate, prefix), "/")
		seen[head] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	snapLogger.Trace("Children of %q: %v", p, names)
	return names
}
