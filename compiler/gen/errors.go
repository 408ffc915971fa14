package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Every typed error below matches one of these through errors.Is.
var (
	ErrIO               = errors.New("accessgen: io failure")
	ErrSchemaFormat     = errors.New("accessgen: invalid schema format")
	ErrDuplicateKey     = errors.New("accessgen: duplicate key")
	ErrMissingConfig    = errors.New("accessgen: missing configuration")
	ErrGenerationFailed = errors.New("accessgen: code generation failed")
)

// Causes carried by SchemaFormatError.
var (
	// ErrBlockNotFound means the schema file lacks its declaration block.
	ErrBlockNotFound = errors.New("declaration block not found")
	// ErrMalformedEntry means an entry of the block could not be parsed.
	ErrMalformedEntry = errors.New("malformed entry")
)

// message assembles "accessgen: <head>" followed by the non-empty parts,
// each prefixed by its separator.
type message struct{ strings.Builder }

func newMessage(head string) *message {
	m := &message{}
	m.WriteString("accessgen: ")
	m.WriteString(head)
	return m
}

func (m *message) add(sep, s string) *message {
	if s != "" {
		m.WriteString(sep)
		m.WriteString(s)
	}
	return m
}

func (m *message) cause(err error) *message {
	if err != nil {
		m.add(": ", err.Error())
	}
	return m
}

// IOError is a failed filesystem operation. It aborts the run.
type IOError struct {
	Op    string // mkdir, read, write, rename
	Path  string
	Cause error
}

// NewIOError returns an IOError for op on path.
func NewIOError(op, path string, cause error) *IOError {
	return &IOError{Op: op, Path: path, Cause: cause}
}

func (e *IOError) Error() string {
	return newMessage("io error").add(" during ", e.Op).add(" of ", e.Path).cause(e.Cause).String()
}

func (e *IOError) Unwrap() error        { return e.Cause }
func (e *IOError) Is(target error) bool { return target == ErrIO }

// SchemaFormatError reports a schema file whose content does not follow
// the expected layout. Line and Column are 1-based and zero when the
// position is unknown.
type SchemaFormatError struct {
	File    string
	Line    int
	Column  int
	Message string
	Cause   error
}

// NewSchemaFormatError returns a SchemaFormatError with no position.
func NewSchemaFormatError(file, msg string, cause error) *SchemaFormatError {
	return &SchemaFormatError{File: file, Message: msg, Cause: cause}
}

func (e *SchemaFormatError) Error() string {
	where := e.File
	if where != "" && e.Line > 0 {
		where = fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
	}
	return newMessage("schema format error").add(" in ", where).cause(e.Cause).add(": ", e.Message).String()
}

func (e *SchemaFormatError) Unwrap() error        { return e.Cause }
func (e *SchemaFormatError) Is(target error) bool { return target == ErrSchemaFormat }

// DuplicateKeyError reports two schema entries of the same Kind (key, code,
// asset or mode) whose names or Go identifiers collide. Other is the
// earlier entry when its spelling differs from Name.
type DuplicateKeyError struct {
	Kind  string
	Name  string
	Other string
}

// NewDuplicateKeyError returns a DuplicateKeyError.
func NewDuplicateKeyError(kind, name, other string) *DuplicateKeyError {
	return &DuplicateKeyError{Kind: kind, Name: name, Other: other}
}

func (e *DuplicateKeyError) Error() string {
	s := fmt.Sprintf("accessgen: duplicate %s %q", e.Kind, e.Name)
	if e.Other != "" && e.Other != e.Name {
		s += fmt.Sprintf(" (collides with %q)", e.Other)
	}
	return s
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// ConfigError reports an option that is missing or carries an unusable
// value.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// NewConfigError returns a ConfigError for option.
func NewConfigError(option string, value any, msg string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: msg}
}

func (e *ConfigError) Error() string {
	subject := fmt.Sprintf("%q", e.Option)
	if e.Value != nil {
		subject += fmt.Sprintf(" (value: %v)", e.Value)
	}
	return fmt.Sprintf("accessgen: config error for %s: %s", subject, e.Message)
}

func (e *ConfigError) Is(target error) bool { return target == ErrMissingConfig }

// GenerationError wraps a failure of an emitter or of rendering one of its
// files.
type GenerationError struct {
	Emitter string
	File    string
	Message string
	Cause   error
}

// NewGenerationError returns a GenerationError.
func NewGenerationError(emitter, file, msg string, cause error) *GenerationError {
	return &GenerationError{Emitter: emitter, File: file, Message: msg, Cause: cause}
}

func (e *GenerationError) Error() string {
	m := newMessage("generation error").add(" in emitter ", e.Emitter)
	if e.File != "" {
		m.add(" (file: ", e.File).WriteString(")")
	}
	return m.add(": ", e.Message).cause(e.Cause).String()
}

func (e *GenerationError) Unwrap() error        { return e.Cause }
func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

func isA[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// IsIOError reports whether err wraps an *IOError.
func IsIOError(err error) bool { return isA[*IOError](err) }

// IsSchemaFormatError reports whether err wraps a *SchemaFormatError.
func IsSchemaFormatError(err error) bool { return isA[*SchemaFormatError](err) }

// IsDuplicateKeyError reports whether err wraps a *DuplicateKeyError.
func IsDuplicateKeyError(err error) bool { return isA[*DuplicateKeyError](err) }

// IsConfigError reports whether err wraps a *ConfigError.
func IsConfigError(err error) bool { return isA[*ConfigError](err) }

// IsGenerationError reports whether err wraps a *GenerationError.
func IsGenerationError(err error) bool { return isA[*GenerationError](err) }
