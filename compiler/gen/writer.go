package gen

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WriteFile replaces path with data as a whole: the content is written to a
// temporary sibling and renamed over the destination, so readers never see
// a partially written file. Parent directories are created as needed.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewIOError("mkdir", dir, err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return NewIOError("write", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return NewIOError("rename", path, err)
	}
	return nil
}

// Write writes the module to disk atomically.
func (m *Module) Write() error {
	return WriteFile(m.Path, m.Source)
}

// UpToDate reports whether the file on disk already holds the module source.
// A missing file is reported as stale, other read failures are returned.
func (m *Module) UpToDate() (bool, error) {
	current, err := os.ReadFile(m.Path)
	switch {
	case os.IsNotExist(err):
		return false, nil
	case err != nil:
		return false, NewIOError("read", m.Path, err)
	default:
		return bytes.Equal(current, m.Source), nil
	}
}
