// Package state holds the per-session state of the virtual filesystem: who
// is logged in, which snapshot is mounted and where the cursor points.
package state

import (
	"time"

	"zipsh/internal/fs"
	"zipsh/internal/logging"
)

var (
	logger = logging.GetLogger().WithPrefix("session")
)

// Session bundles the snapshot with the mutable cursor. It is owned by a
// single shell loop and is not safe for concurrent use.
type Session struct {
	username string
	snap     *fs.Snapshot
	cursor   string
	started  time.Time
}

// New starts a session at the root of snap.
func New(username string, snap *fs.Snapshot) *Session {
	logger.Debug("Starting session for %q over %d entries", username, snap.Len())
	return &Session{
		username: username,
		snap:     snap,
		cursor:   fs.Root,
		started:  snap.LoadedAt(),
	}
}

// Snapshot returns the read-only snapshot the session navigates.
func (s *Session) Snapshot() *fs.Snapshot {
	return s.snap
}

// Cwd returns the cursor.
func (s *Session) Cwd() string {
	return s.cursor
}

// Whoami returns the configured username.
func (s *Session) Whoami() string {
	return s.username
}

// Uptime returns the time elapsed since the snapshot was built. The start
// time carries a monotonic clock reading, so the value never goes negative.
func (s *Session) Uptime() time.Duration {
	return time.Since(s.started)
}

// Ls lists the names directly under the cursor.
func (s *Session) Ls() []string {
	return s.snap.Children(s.cursor)
}

// Cd moves the cursor. ".." goes to the parent (a no-op at the root); any
// other target is resolved against the cursor and accepted only if it names
// an entry or an implied directory. On failure the cursor is unchanged.
func (s *Session) Cd(target string) error {
	if target == ".." {
		s.cursor = fs.Parent(s.cursor)
		logger.Trace("Moved to parent %q", s.cursor)
		return nil
	}

	candidate := fs.Resolve(s.cursor, target)
	if !s.snap.Exists(candidate) {
		logger.Debug("Rejected cd to %q (resolved %q)", target, candidate)
		return fs.NewFSError(fs.OpChdir, target, fs.ErrPathNotFound)
	}

	s.cursor = candidate
	logger.Trace("Moved to %q", s.cursor)
	return nil
}

// Cat returns the payload of the file target refers to.
func (s *Session) Cat(target string) ([]byte, error) {
	p := fs.Resolve(s.cursor, target)
	if s.snap.IsDir(p) {
		return nil, fs.NewFSError(fs.OpRead, target, fs.ErrIsDirectory)
	}
	e, ok := s.snap.Lookup(p)
	if !ok {
		return nil, fs.NewFSError(fs.OpRead, target, fs.ErrPathNotFound)
	}
	return e.Data, nil
}
