package fs

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"zipsh/internal/logging"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"golang.org/x/sync/errgroup"
)

var (
	fuseLogger = logging.GetLogger().WithPrefix("fuse")
)

// FS exposes a Snapshot as a read-only FUSE filesystem.
type FS struct {
	snap *Snapshot
	uid  uint32 // User ID reported for every node
	gid  uint32 // Group ID reported for every node
}

// NewFS creates the FUSE view of snap. Ownership defaults to the current
// process and can be overridden with the PUID and PGID environment variables.
func NewFS(snap *Snapshot) *FS {
	return &FS{
		snap: snap,
		uid:  ownerID("PUID", os.Getuid()),
		gid:  ownerID("PGID", os.Getgid()),
	}
}

// ownerID returns the id named by the environment variable env, or the
// process id when it is unset or not a valid uint32.
func ownerID(env string, process int) uint32 {
	if v := os.Getenv(env); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			fuseLogger.Debug("Using %s from environment: %d", env, id)
			return uint32(id)
		}
		fuseLogger.Warn("Ignoring invalid %s %q", env, v)
	}
	if process < 0 {
		// Windows reports -1
		return 0
	}
	return uint32(process)
}

// Root implements the fusefs.FS interface, returning the root directory node.
func (f *FS) Root() (fusefs.Node, error) {
	fuseLogger.Trace("Getting root directory node")
	return &Dir{
		fs:   f,
		path: NewVirtualPath(Root),
	}, nil
}

// Serve mounts the filesystem read-only at mountPoint and serves requests
// until ctx is cancelled, then unmounts.
func (f *FS) Serve(ctx context.Context, mountPoint string, opts ...fuse.MountOption) error {
	fuseLogger.Info("Mounting %s at %s", f.snap.Source(), mountPoint)

	mountOpts := append([]fuse.MountOption{
		fuse.Subtype("zipsh"),
		fuse.ReadOnly(),
		fuse.DefaultPermissions(),
	}, opts...)

	c, err := fuse.Mount(mountPoint, mountOpts...)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	defer c.Close()

	eg, ctx := errgroup.WithContext(ctx)
	served := make(chan struct{})

	eg.Go(func() error {
		defer close(served)
		fuseLogger.Info("Serving filesystem...")
		if err := fusefs.Serve(c, f); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		fuseLogger.Debug("FUSE server stopped")
		return nil
	})

	eg.Go(func() error {
		select {
		case <-served:
			return nil
		case <-ctx.Done():
		}
		fuseLogger.Info("Unmounting filesystem from: %s", mountPoint)
		if err := fuse.Unmount(mountPoint); err != nil {
			return fmt.Errorf("unmount: %w", err)
		}
		return nil
	})

	return eg.Wait()
}
