package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Kind classifies a filesystem node for the scan.
type Kind int

const (
	// KindFile is a regular file with byte content.
	KindFile Kind = iota
	// KindDir is a directory owning a set of child entries.
	KindDir
	// KindSymlink is a symbolic link. Links are never followed or
	// dereferenced; they are recorded and excluded from comparison.
	KindSymlink
	// KindSpecial covers fifos, sockets, devices and other irregular
	// files that have no comparable byte content.
	KindSpecial
	// KindIgnored is a file matching an ignore pattern (.DS_Store etc).
	KindIgnored
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	case KindSpecial:
		return "special"
	case KindIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Entry is one node of the scanned forest: a file with a size, or a
// directory with children. Identity is content-based only; the path is
// carried for reporting and never participates in comparison. Entries
// live for a single scan and are never shared between scans.
type Entry struct {
	Path     string
	Kind     Kind
	Size     int64
	Children []*Entry

	// Err is set when the entry could not be read (stat or readdir
	// failure). An errored entry is indeterminate: it never counts as
	// duplicate or unique, and neither does any ancestor directory.
	Err *PathError
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool { return e.Kind == KindDir }

// Comparable reports whether the entry participates in content
// comparison at all. Symlinks, irregular files and ignored names do not.
func (e *Entry) Comparable() bool {
	return e.Kind == KindFile || e.Kind == KindDir
}

// ErrKind is the category of a path error.
type ErrKind int

const (
	// ErrNotFound means the path vanished before or during the scan.
	ErrNotFound ErrKind = iota
	// ErrPermission means the path was not readable by this process.
	ErrPermission
	// ErrRead is any other I/O failure while reading a path.
	ErrRead
	// ErrCyclicLink means the OS rejected a path with a symlink loop.
	ErrCyclicLink
)

func (k ErrKind) String() string {
	switch k {
	case ErrNotFound:
		return "not found"
	case ErrPermission:
		return "permission denied"
	case ErrCyclicLink:
		return "cyclic link"
	default:
		return "read failure"
	}
}

// PathError is an I/O error tagged with the offending path. The engine
// surfaces these instead of printing; the caller decides fail-fast vs
// collect-and-continue.
type PathError struct {
	Path string
	Kind ErrKind
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// NewPathError wraps err for path, deriving the error kind from the
// underlying OS error.
func NewPathError(path string, err error) *PathError {
	kind := ErrRead
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermission
	case errors.Is(err, syscall.ELOOP):
		kind = ErrCyclicLink
	}
	return &PathError{Path: path, Kind: kind, Err: err}
}
