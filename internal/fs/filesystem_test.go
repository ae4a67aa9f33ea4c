package fs

import (
	"bytes"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// failingReader returns some data and then an error.
type failingReader struct {
	data []byte
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("read interrupted")
	}
	r.done = true
	return copy(p, r.data), nil
}

func newManager(t *testing.T, mode string) *OSFilesystemManager {
	t.Helper()
	m, err := NewOSFilesystemManager(mode)
	if err != nil {
		t.Fatalf("NewOSFilesystemManager(%q) error = %v", mode, err)
	}
	return m
}

func TestNewOSFilesystemManager(t *testing.T) {
	tests := []struct {
		mode       string
		wantAtomic bool
		wantErr    bool
	}{
		{mode: "", wantAtomic: false},
		{mode: WriteDirect, wantAtomic: false},
		{mode: WriteAtomic, wantAtomic: true},
		{mode: "rsync", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			m, err := NewOSFilesystemManager(tt.mode)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewOSFilesystemManager() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewOSFilesystemManager() error = %v", err)
			}
			if m.atomic != tt.wantAtomic {
				t.Errorf("atomic = %v, want %v", m.atomic, tt.wantAtomic)
			}
		})
	}
}

func TestOSFilesystemManager_Mkdir(t *testing.T) {
	m := newManager(t, WriteDirect)

	t.Run("creates directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "baseq2")

		if err := m.Mkdir(dir); err != nil {
			t.Fatalf("Mkdir() error = %v", err)
		}
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("created path is not a directory")
		}
	})

	t.Run("existing directory reports ErrExist", func(t *testing.T) {
		dir := t.TempDir()

		err := m.Mkdir(dir)
		if !errors.Is(err, iofs.ErrExist) {
			t.Errorf("Mkdir() error = %v, want fs.ErrExist", err)
		}
	})

	t.Run("does not create missing parents", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "missing", "baseq2")

		err := m.Mkdir(dir)
		if !errors.Is(err, iofs.ErrNotExist) {
			t.Errorf("Mkdir() error = %v, want fs.ErrNotExist", err)
		}
	})
}

func TestOSFilesystemManager_Open(t *testing.T) {
	m := newManager(t, WriteDirect)

	t.Run("missing file reports ErrNotExist", func(t *testing.T) {
		_, err := m.Open(filepath.Join(t.TempDir(), "game.dll"))
		if !errors.Is(err, iofs.ErrNotExist) {
			t.Errorf("Open() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "game.dll")
		if err := os.WriteFile(path, []byte("module"), 0644); err != nil {
			t.Fatal(err)
		}

		rc, err := m.Open(path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer rc.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			t.Fatalf("reading: %v", err)
		}
		if buf.String() != "module" {
			t.Errorf("content = %q, want %q", buf.String(), "module")
		}
	})
}

func TestOSFilesystemManager_Stat(t *testing.T) {
	m := newManager(t, WriteDirect)
	dir := t.TempDir()

	info, err := m.Stat(dir)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().IsRegular() {
		t.Error("directory reported as regular file")
	}

	path := filepath.Join(dir, "game.dll")
	if err := os.WriteFile(path, []byte("module"), 0644); err != nil {
		t.Fatal(err)
	}
	info, err = m.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.Mode().IsRegular() {
		t.Errorf("Mode() = %v, want regular file", info.Mode())
	}
}

func TestOSFilesystemManager_SameFile(t *testing.T) {
	m := newManager(t, WriteDirect)
	dir := t.TempDir()
	source := filepath.Join(dir, "game.dll")
	if err := os.WriteFile(source, []byte("module"), 0644); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(dir, "other.dll")
	if err := os.WriteFile(other, []byte("module"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.dll")
	if err := os.Symlink("game.dll", link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	tests := []struct {
		name string
		b    string
		want bool
	}{
		{"symlink to source", link, true},
		{"same path", source, true},
		{"different file with same content", other, false},
		{"missing destination", filepath.Join(dir, "missing.dll"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.SameFile(source, tt.b)
			if err != nil {
				t.Fatalf("SameFile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SameFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOSFilesystemManager_WriteFile(t *testing.T) {
	for _, mode := range []string{WriteDirect, WriteAtomic} {
		t.Run(mode, func(t *testing.T) {
			m := newManager(t, mode)

			t.Run("writes new file", func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "game.dll")

				n, err := m.WriteFile(path, bytes.NewReader([]byte{0xDE, 0xAD, 0xBE, 0xEF}))
				if err != nil {
					t.Fatalf("WriteFile() error = %v", err)
				}
				if n != 4 {
					t.Errorf("WriteFile() = %d, want 4", n)
				}
				got, err := os.ReadFile(path)
				if err != nil {
					t.Fatalf("reading result: %v", err)
				}
				if !bytes.Equal(got, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
					t.Errorf("content = %x, want deadbeef", got)
				}
			})

			t.Run("overwrites existing file", func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "game.dll")
				if err := os.WriteFile(path, []byte("a much longer previous build"), 0644); err != nil {
					t.Fatal(err)
				}

				if _, err := m.WriteFile(path, strings.NewReader("new")); err != nil {
					t.Fatalf("WriteFile() error = %v", err)
				}
				got, _ := os.ReadFile(path)
				if string(got) != "new" {
					t.Errorf("content = %q, want %q", got, "new")
				}
			})

			t.Run("fails when destination is a directory", func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "game.dll")
				if err := os.Mkdir(path, 0755); err != nil {
					t.Fatal(err)
				}

				if _, err := m.WriteFile(path, strings.NewReader("new")); err == nil {
					t.Fatal("WriteFile() expected error")
				}
				info, err := os.Stat(path)
				if err != nil || !info.IsDir() {
					t.Errorf("destination directory was replaced: %v", err)
				}
			})

			t.Run("fails when parent is missing", func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "baseq2", "game.dll")

				if _, err := m.WriteFile(path, strings.NewReader("new")); err == nil {
					t.Fatal("WriteFile() expected error")
				}
			})
		})
	}
}

func TestOSFilesystemManager_WriteFile_atomicKeepsOldContentOnFailure(t *testing.T) {
	m := newManager(t, WriteAtomic)
	dir := t.TempDir()
	path := filepath.Join(dir, "game.dll")
	if err := os.WriteFile(path, []byte("previous"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := m.WriteFile(path, &failingReader{data: []byte("partial")})
	if err == nil {
		t.Fatal("WriteFile() expected error")
	}

	got, _ := os.ReadFile(path)
	if string(got) != "previous" {
		t.Errorf("content = %q, want %q", got, "previous")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (temp file not cleaned up)", len(entries))
	}
}
