// Package file implements dialect.BatchBackend as an in-memory map persisted
// to a single msgpack file.
//
// Every mutation rewrites the whole file through a temporary sibling and an
// atomic rename, so a crash never leaves a partially written store. Batch
// operations are applied under one lock with a single flush.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/accessgen/dialect"
)

// formatVersion is written into every store file.
const formatVersion = 1

// snapshot is the on-disk layout of a store file.
type snapshot struct {
	Version int               `msgpack:"v"`
	Items   map[string]string `msgpack:"items"`
}

// Backend is a file backed key/value store. It is safe for concurrent use
// within one process.
type Backend struct {
	path string
	perm fs.FileMode

	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithPerm sets the permission bits of the store file. Default is 0600.
func WithPerm(perm fs.FileMode) Option {
	return func(b *Backend) {
		b.perm = perm
	}
}

// Open loads the store at path, creating parent directories when needed. A
// missing file is an empty store; the file is created on the first write.
func Open(path string, opts ...Option) (*Backend, error) {
	b := &Backend{path: path, perm: 0o600, data: make(map[string]string)}
	for _, opt := range opts {
		opt(b)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("dialect/file: create directory: %w", err)
	}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return b, nil
	case err != nil:
		return nil, fmt.Errorf("dialect/file: read %s: %w", path, err)
	case len(raw) == 0:
		return b, nil
	}
	var snap snapshot
	if err := msgpack.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("dialect/file: decode %s: %w", path, err)
	}
	if snap.Version > formatVersion {
		return nil, fmt.Errorf("dialect/file: %s has unsupported format version %d", path, snap.Version)
	}
	if snap.Items != nil {
		b.data = snap.Items
	}
	return b, nil
}

// Path returns the location of the store file.
func (b *Backend) Path() string { return b.path }

// Len returns the number of stored keys.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Close releases the backend. Subsequent calls fail with dialect.ErrClosed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Read implements dialect.Backend.
func (b *Backend) Read(_ context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return "", false, dialect.ErrClosed
	}
	text, ok := b.data[key]
	return text, ok, nil
}

// ReadMany implements dialect.BatchBackend.
func (b *Backend) ReadMany(_ context.Context, keys []string) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, dialect.ErrClosed
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if text, ok := b.data[k]; ok {
			out[k] = text
		}
	}
	return out, nil
}

// Write implements dialect.Backend.
func (b *Backend) Write(ctx context.Context, key, text string) error {
	return b.WriteMany(ctx, []dialect.Item{{Key: key, Text: text}})
}

// WriteMany implements dialect.BatchBackend.
func (b *Backend) WriteMany(ctx context.Context, items []dialect.Item) error {
	return b.update(ctx, func(m map[string]string) bool {
		changed := false
		for _, it := range items {
			if old, ok := m[it.Key]; !ok || old != it.Text {
				m[it.Key] = it.Text
				changed = true
			}
		}
		return changed
	})
}

// Delete implements dialect.Backend.
func (b *Backend) Delete(ctx context.Context, key string) error {
	return b.DeleteMany(ctx, []string{key})
}

// DeleteMany implements dialect.BatchBackend.
func (b *Backend) DeleteMany(ctx context.Context, keys []string) error {
	return b.update(ctx, func(m map[string]string) bool {
		changed := false
		for _, k := range keys {
			if _, ok := m[k]; ok {
				delete(m, k)
				changed = true
			}
		}
		return changed
	})
}

// Clear implements dialect.Backend.
func (b *Backend) Clear(ctx context.Context) error {
	return b.update(ctx, func(m map[string]string) bool {
		clear(m)
		return true
	})
}

// update applies fn to a copy of the data and persists it. The in-memory
// state only changes once the file has been replaced.
func (b *Backend) update(ctx context.Context, fn func(map[string]string) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return dialect.ErrClosed
	}
	next := maps.Clone(b.data)
	if !fn(next) {
		return nil
	}
	if err := b.flush(next); err != nil {
		return err
	}
	b.data = next
	return nil
}

func (b *Backend) flush(data map[string]string) error {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(snapshot{Version: formatVersion, Items: data}); err != nil {
		return fmt.Errorf("dialect/file: encode: %w", err)
	}
	dir := filepath.Dir(b.path)
	tmp := filepath.Join(dir, "."+filepath.Base(b.path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), b.perm); err != nil {
		return fmt.Errorf("dialect/file: write %s: %w", b.path, err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return errors.Join(fmt.Errorf("dialect/file: replace %s: %w", b.path, err), os.Remove(tmp))
	}
	return nil
}

var _ dialect.BatchBackend = (*Backend)(nil)
