package dialect

import (
	"context"
	"errors"
)

// Dialect names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
	File     = "file"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("dialect: backend is closed")

// Backend is the minimal capability set a storage backend provides. Values
// are opaque encoded texts; encoding is the caller's concern.
type Backend interface {
	// Read returns the text stored under key and whether it exists.
	Read(ctx context.Context, key string) (string, bool, error)
	// Write stores text under key, replacing any previous value.
	Write(ctx context.Context, key, text string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes every key of the backend.
	Clear(ctx context.Context) error
}

// Item is one key/text pair of a batch write.
type Item struct {
	Key  string
	Text string
}

// BatchBackend is implemented by backends with native multi-key operations.
// Batch writes and deletes are applied as a whole or not at all.
type BatchBackend interface {
	Backend
	// ReadMany returns the texts of the keys that exist. Missing keys are
	// absent from the result.
	ReadMany(ctx context.Context, keys []string) (map[string]string, error)
	// WriteMany stores every item.
	WriteMany(ctx context.Context, items []Item) error
	// DeleteMany removes every key.
	DeleteMany(ctx context.Context, keys []string) error
}
