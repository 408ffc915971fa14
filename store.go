package accessgen

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"reflect"

	"github.com/syssam/accessgen/dialect"
)

// Item is one encoded key/value pair of a batch write.
type Item = dialect.Item

// ErrorHandler is called with every *StoreError after it has been logged.
type ErrorHandler func(ctx context.Context, err *StoreError)

// Store is the fail-soft runtime behind generated storage services. Values
// are encoded as JSON texts. Backend and codec failures never reach the
// caller: they are logged, passed to the optional ErrorHandler and turned
// into neutral results (nil values, empty maps, false).
//
// A Store is safe for concurrent use if its backend is.
type Store struct {
	backend dialect.Backend
	logger  *slog.Logger
	onError ErrorHandler
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger failures are reported to. Default is
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithErrorHandler registers a callback invoked for every failure.
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Store) {
		s.onError = h
	}
}

// NewStore returns a Store over the given backend.
func NewStore(b dialect.Backend, opts ...Option) *Store {
	s := &Store{backend: b, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying backend.
func (s *Store) Backend() dialect.Backend {
	return s.backend
}

// Close closes the backend when it implements io.Closer.
func (s *Store) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) fail(ctx context.Context, op, key string, err error) {
	e := NewStoreError(op, key, err)
	s.logger.ErrorContext(ctx, "accessgen: storage operation failed", "op", op, "key", key, "error", err)
	if s.onError != nil {
		s.onError(ctx, e)
	}
}

// Get returns the value stored under key, or nil when the key is missing or
// cannot be read. A stored JSON null yields a pointer to the zero value.
func Get[T any](ctx context.Context, s *Store, key string) *T {
	text, ok, err := s.backend.Read(ctx, key)
	if err != nil {
		s.fail(ctx, OpGet, key, err)
		return nil
	}
	if !ok {
		return nil
	}
	return Decode[T](ctx, s, OpGet, key, text)
}

// Decode parses a stored text into a T. Failures are reported under op and
// yield nil.
func Decode[T any](ctx context.Context, s *Store, op, key, text string) *T {
	v := new(T)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		s.fail(ctx, op, key, &CodecError{Type: typeName[T](), Err: err})
		return nil
	}
	return v
}

// Set stores v under key. The value is always written, including values
// that encode to JSON null.
func Set[T any](ctx context.Context, s *Store, key string, v T) {
	item, ok := Encode(ctx, s, OpSet, key, v)
	if !ok {
		return
	}
	if err := s.backend.Write(ctx, key, item.Text); err != nil {
		s.fail(ctx, OpSet, key, err)
	}
}

// Encode serializes v for key. Failures are reported under op and yield
// false.
func Encode[T any](ctx context.Context, s *Store, op, key string, v T) (Item, bool) {
	text, err := json.Marshal(v)
	if err != nil {
		s.fail(ctx, op, key, &CodecError{Type: typeName[T](), Err: err})
		return Item{}, false
	}
	return Item{Key: key, Text: string(text)}, true
}

// AppendItem encodes v and appends it to items. Values that cannot be
// encoded are reported and skipped.
func AppendItem[T any](ctx context.Context, s *Store, items []Item, key string, v T) []Item {
	if item, ok := Encode(ctx, s, OpSetMany, key, v); ok {
		items = append(items, item)
	}
	return items
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.fail(ctx, OpRemove, key, err)
	}
}

// Has reports whether a value is stored under key. Read failures report
// false.
func (s *Store) Has(ctx context.Context, key string) bool {
	_, ok, err := s.backend.Read(ctx, key)
	if err != nil {
		s.fail(ctx, OpHas, key, err)
		return false
	}
	return ok
}

// ReadMany returns the stored texts of the keys that exist. With a
// dialect.BatchBackend a failure yields an empty map; otherwise keys are
// read one by one and a failing key is skipped.
func (s *Store) ReadMany(ctx context.Context, keys []string) map[string]string {
	if len(keys) == 0 {
		return map[string]string{}
	}
	if bb, ok := s.backend.(dialect.BatchBackend); ok {
		texts, err := bb.ReadMany(ctx, keys)
		if err != nil {
			s.fail(ctx, OpGetMany, "", err)
			return map[string]string{}
		}
		return texts
	}
	texts := make(map[string]string, len(keys))
	for _, k := range keys {
		text, ok, err := s.backend.Read(ctx, k)
		switch {
		case err != nil:
			s.fail(ctx, OpGetMany, k, err)
		case ok:
			texts[k] = text
		}
	}
	return texts
}

// WriteMany stores every item. A dialect.BatchBackend applies the batch as
// a whole; other backends are written key by key.
func (s *Store) WriteMany(ctx context.Context, items []Item) {
	if len(items) == 0 {
		return
	}
	if bb, ok := s.backend.(dialect.BatchBackend); ok {
		if err := bb.WriteMany(ctx, items); err != nil {
			s.fail(ctx, OpSetMany, "", err)
		}
		return
	}
	for _, it := range items {
		if err := s.backend.Write(ctx, it.Key, it.Text); err != nil {
			s.fail(ctx, OpSetMany, it.Key, err)
		}
	}
}

// RemoveMany deletes every key.
func (s *Store) RemoveMany(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if bb, ok := s.backend.(dialect.BatchBackend); ok {
		if err := bb.DeleteMany(ctx, keys); err != nil {
			s.fail(ctx, OpRemoveMany, "", err)
		}
		return
	}
	for _, k := range keys {
		if err := s.backend.Delete(ctx, k); err != nil {
			s.fail(ctx, OpRemoveMany, k, err)
		}
	}
}

// Clear deletes every key of the backend.
func (s *Store) Clear(ctx context.Context) {
	if err := s.backend.Clear(ctx); err != nil {
		s.fail(ctx, OpClear, "", err)
	}
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
