// Package fs provides the read-only virtual filesystem built from an archive.
//
// This file contains error types and error handling utilities.
package fs

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"zipsh/internal/logging"
)

var (
	errLogger = logging.GetLogger().WithPrefix("error")

	// ErrPathNotFound indicates a virtual path doesn't exist
	ErrPathNotFound = errors.New("no such file or directory")

	// ErrInvalidPath indicates an invalid path format
	ErrInvalidPath = errors.New("invalid path format")

	// ErrReadOnly indicates attempt to modify read-only filesystem
	ErrReadOnly = errors.New("filesystem is read-only")

	// ErrIsDirectory indicates a file operation on a directory
	ErrIsDirectory = errors.New("is a directory")
)

// Error wraps filesystem errors with context about the operation and
// affected path.
type Error struct {
	Op   string // Operation that failed (e.g., "lookup", "chdir")
	Path string // Affected path
	Err  error  // Underlying error
}

// Error implements the error interface, providing a formatted error message
func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("operation %s on %s failed: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for the errors.Is/As functions
func (e *Error) Unwrap() error {
	return e.Err
}

// NewFSError creates a new Error with the given operation, path, and underlying error
func NewFSError(op string, path string, err error) *Error {
	fsErr := &Error{
		Op:   op,
		Path: path,
		Err:  err,
	}
	errLogger.Debug("Created new FSError: %v", fsErr)
	return fsErr
}

// LoadError reports an archive that could not be turned into a snapshot.
// It is fatal to session startup.
type LoadError struct {
	Archive string // Archive file path
	Err     error  // Underlying error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load archive %s: %v", e.Archive, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ToFuseError converts an error to the FUSE error code the kernel expects.
func ToFuseError(err error) error {
	if err == nil {
		return nil
	}

	var fsErr *Error
	if errors.As(err, &fsErr) {
		errLogger.Trace("Converting FSError to FUSE error: %v", fsErr)

		switch {
		case errors.Is(fsErr.Err, ErrPathNotFound):
			return syscall.ENOENT
		case errors.Is(fsErr.Err, ErrInvalidPath):
			return syscall.EINVAL
		case errors.Is(fsErr.Err, ErrReadOnly):
			return syscall.EROFS
		case errors.Is(fsErr.Err, ErrIsDirectory):
			return syscall.EISDIR
		default:
			errLogger.Debug("Unknown FSError type, returning EIO: %v", fsErr)
			return syscall.EIO
		}
	}

	// For non-FSErrors, convert common error types
	errLogger.Trace("Converting standard error to FUSE error: %v", err)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, os.ErrPermission):
		return syscall.EACCES
	default:
		errLogger.Debug("Unknown error type, returning EIO: %v", err)
		return syscall.EIO
	}
}

// Common operation names for consistent logging and error reporting
const (
	OpLookup = "lookup" // Looking up a path
	OpChdir  = "chdir"  // Moving the cursor
	OpOpen   = "open"   // Opening a file
	OpRead   = "read"   // Reading from a file
)
