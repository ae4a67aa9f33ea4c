package stage

import (
	"io"
	"io/fs"
)

// FilesystemManager provides the filesystem operations the stager needs.
// It abstracts file access to enable testing without touching the real filesystem.
type FilesystemManager interface {
	// Mkdir creates exactly one directory level.
	// Errors must be matchable with fs.ErrExist and fs.ErrNotExist.
	Mkdir(path string) error

	// Open opens a file for reading.
	// A missing file must produce an error matchable with fs.ErrNotExist.
	// Like os.Open, opening a directory may succeed; only reads fail.
	Open(path string) (io.ReadCloser, error)

	// Stat returns file info for path, following symlinks.
	Stat(path string) (fs.FileInfo, error)

	// SameFile reports whether a and b, after following symlinks, are the same
	// existing file. A missing path is never the same file.
	SameFile(a, b string) (bool, error)

	// WriteFile writes everything read from r to path, replacing any existing file.
	// Returns the number of bytes written.
	WriteFile(path string, r io.Reader) (int64, error)
}
