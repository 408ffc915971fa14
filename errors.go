package accessgen

import (
	"errors"
	"fmt"
)

// Standard sentinel errors reported to error handlers.
var (
	// ErrBackend is matched by every failure of the underlying backend.
	ErrBackend = errors.New("accessgen: backend failure")

	// ErrCodec is matched by value encoding and decoding failures.
	ErrCodec = errors.New("accessgen: codec failure")
)

// Operations reported by StoreError.
const (
	OpGet        = "get"
	OpSet        = "set"
	OpRemove     = "remove"
	OpHas        = "has"
	OpGetMany    = "get-many"
	OpSetMany    = "set-many"
	OpRemoveMany = "remove-many"
	OpClear      = "clear"
)

// StoreError describes a failed storage operation. Store never returns it to
// callers of the data path; it is logged and passed to the ErrorHandler.
type StoreError struct {
	Op  string
	Key string // empty for whole-store operations
	Err error
}

// Error returns the error string.
func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("accessgen: %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("accessgen: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ErrBackend. Codec failures
// match ErrCodec through the wrapped CodecError instead.
func (e *StoreError) Is(err error) bool {
	var ce *CodecError
	return err == ErrBackend && !errors.As(e.Err, &ce)
}

// NewStoreError returns a new StoreError.
func NewStoreError(op, key string, err error) *StoreError {
	return &StoreError{Op: op, Key: key, Err: err}
}

// IsStoreError returns true if the error is a StoreError.
func IsStoreError(err error) bool {
	if err == nil {
		return false
	}
	var e *StoreError
	return errors.As(err, &e)
}

// CodecError represents a value that could not be encoded, or a stored text
// that could not be decoded into the declared type.
type CodecError struct {
	Type string
	Err  error
}

// Error returns the error string.
func (e *CodecError) Error() string {
	return fmt.Sprintf("accessgen: codec %s: %v", e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *CodecError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ErrCodec.
func (e *CodecError) Is(err error) bool {
	return err == ErrCodec
}

// IsCodecError returns true if the error is a CodecError.
func IsCodecError(err error) bool {
	if err == nil {
		return false
	}
	var e *CodecError
	return errors.As(err, &e) || errors.Is(err, ErrCodec)
}
