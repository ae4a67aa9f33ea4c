package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"q2stage/internal/stage"
)

// errIsDir mirrors the EISDIR failure the OS reports when a directory is read as a file.
var errIsDir = errors.New("is a directory")

// maxLinkHops bounds symlink resolution, like ELOOP on a real filesystem.
const maxLinkHops = 8

// MockFilesystemManager is an in-memory filesystem for testing.
// Paths are cleaned relative paths; "." always exists.
type MockFilesystemManager struct {
	files map[string][]byte
	dirs  map[string]bool
	links map[string]string

	// MkdirErr, OpenErr and WriteErr, when set, are returned by the matching
	// operation instead of touching the mock filesystem.
	MkdirErr error
	OpenErr  error
	WriteErr error

	// MkdirCalls and WriteCalls count invocations.
	MkdirCalls int
	WriteCalls int
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files: make(map[string][]byte),
		dirs:  map[string]bool{".": true},
		links: make(map[string]string),
	}
}

// AddFile adds a file and all of its parent directories to the mock filesystem.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	path = filepath.Clean(path)
	m.AddDirectory(filepath.Dir(path))
	m.files[path] = append([]byte(nil), content...)
}

// AddDirectory adds a directory and all of its parents to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	for p := filepath.Clean(path); !m.dirs[p]; p = filepath.Dir(p) {
		m.dirs[p] = true
	}
}

// AddSymlink adds a symlink at link pointing to target. A relative target is
// resolved against the link's directory, as the OS does.
func (m *MockFilesystemManager) AddSymlink(link, target string) {
	link = filepath.Clean(link)
	m.AddDirectory(filepath.Dir(link))
	m.links[link] = target
}

// File returns the content stored at path, following symlinks.
func (m *MockFilesystemManager) File(path string) ([]byte, bool) {
	data, ok := m.files[m.resolve(path)]
	return data, ok
}

// IsDir reports whether path is a directory in the mock filesystem.
func (m *MockFilesystemManager) IsDir(path string) bool {
	return m.dirs[m.resolve(path)]
}

// resolve follows symlinks at path and returns the final cleaned path.
func (m *MockFilesystemManager) resolve(path string) string {
	path = filepath.Clean(path)
	for i := 0; i < maxLinkHops; i++ {
		target, ok := m.links[path]
		if !ok {
			return path
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = filepath.Clean(target)
	}
	return path
}

func (m *MockFilesystemManager) Mkdir(path string) error {
	m.MkdirCalls++
	if m.MkdirErr != nil {
		return m.MkdirErr
	}

	path = filepath.Clean(path)
	_, isLink := m.links[path]
	if _, ok := m.files[path]; ok || m.dirs[path] || isLink {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrExist}
	}
	if !m.dirs[filepath.Dir(path)] {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrNotExist}
	}
	m.dirs[path] = true
	return nil
}

// Open behaves like os.Open: a directory opens fine and fails on the first read.
func (m *MockFilesystemManager) Open(path string) (io.ReadCloser, error) {
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}

	resolved := m.resolve(path)
	if m.dirs[resolved] {
		return io.NopCloser(dirReader{path: filepath.Clean(path)}), nil
	}
	data, ok := m.files[resolved]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: filepath.Clean(path), Err: fs.ErrNotExist}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	resolved := m.resolve(path)
	if m.dirs[resolved] {
		return fileInfo{name: filepath.Base(resolved), mode: fs.ModeDir | 0755}, nil
	}
	data, ok := m.files[resolved]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: filepath.Clean(path), Err: fs.ErrNotExist}
	}
	return fileInfo{name: filepath.Base(resolved), size: int64(len(data)), mode: 0644}, nil
}

func (m *MockFilesystemManager) SameFile(a, b string) (bool, error) {
	ra, rb := m.resolve(a), m.resolve(b)
	if !m.exists(ra) || !m.exists(rb) {
		return false, nil
	}
	return ra == rb, nil
}

func (m *MockFilesystemManager) exists(resolved string) bool {
	_, ok := m.files[resolved]
	return ok || m.dirs[resolved]
}

func (m *MockFilesystemManager) WriteFile(path string, r io.Reader) (int64, error) {
	m.WriteCalls++
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}

	path = m.resolve(path)
	if m.dirs[path] {
		return 0, &fs.PathError{Op: "open", Path: path, Err: errIsDir}
	}
	if !m.dirs[filepath.Dir(path)] {
		return 0, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}

	// The destination is truncated before the copy, as O_TRUNC does.
	m.files[path] = nil
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("reading content: %w", err)
	}
	m.files[path] = data
	return int64(len(data)), nil
}

type dirReader struct {
	path string
}

func (d dirReader) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.path, Err: errIsDir}
}

type fileInfo struct {
	name string
	size int64
	mode fs.FileMode
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi fileInfo) Sys() any           { return nil }

// Compile-time check
var _ stage.FilesystemManager = (*MockFilesystemManager)(nil)
