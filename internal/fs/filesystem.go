package fs

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"q2stage/internal/stage"
)

// Write modes for OSFilesystemManager.
const (
	// WriteDirect truncates and rewrites the destination in place.
	WriteDirect = "direct"
	// WriteAtomic writes a temp file next to the destination and renames it over.
	WriteAtomic = "atomic"
)

// OSFilesystemManager is the real filesystem implementation of stage.FilesystemManager.
type OSFilesystemManager struct {
	atomic bool
}

// NewOSFilesystemManager creates a filesystem manager that operates on the real filesystem.
// mode is WriteDirect, WriteAtomic, or empty for WriteDirect.
func NewOSFilesystemManager(mode string) (*OSFilesystemManager, error) {
	switch mode {
	case WriteDirect, "":
		return &OSFilesystemManager{}, nil
	case WriteAtomic:
		return &OSFilesystemManager{atomic: true}, nil
	default:
		return nil, fmt.Errorf("unknown write mode: %q", mode)
	}
}

// Mkdir creates a single directory level. The *os.PathError is returned as-is
// so callers can tell an existing directory from a real failure.
func (m *OSFilesystemManager) Mkdir(path string) error {
	return os.Mkdir(path, 0755)
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Stat returns file info for path, following symlinks.
func (m *OSFilesystemManager) Stat(path string) (iofs.FileInfo, error) {
	return os.Stat(path)
}

// SameFile reports whether a and b resolve to the same file on disk.
// A path that does not exist yet is never the same file.
func (m *OSFilesystemManager) SameFile(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if errors.Is(err, iofs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if errors.Is(err, iofs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}

// WriteFile copies r to path, replacing any existing file.
func (m *OSFilesystemManager) WriteFile(path string, r io.Reader) (int64, error) {
	if m.atomic {
		return writeAtomic(path, r)
	}
	return writeDirect(path, r)
}

// writeDirect overwrites path in place, like a plain file copy.
func writeDirect(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return written, fmt.Errorf("failed to write data: %w", err)
	}

	if err := f.Close(); err != nil {
		return written, fmt.Errorf("failed to close file: %w", err)
	}
	return written, nil
}

// writeAtomic writes data from r to path using a temp file + rename, so a failed
// write leaves any existing file untouched.
func writeAtomic(path string, r io.Reader) (int64, error) {
	// Create temp file in the same directory to ensure atomic rename works
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return written, fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Chmod(0644); err != nil {
		tmpFile.Close()
		return written, fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return written, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return written, fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return written, nil
}

// Compile-time check that OSFilesystemManager implements stage.FilesystemManager interface
var _ stage.FilesystemManager = (*OSFilesystemManager)(nil)
