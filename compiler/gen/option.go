package gen

import (
	"errors"
	"strings"
)

// DefaultHeader is the header comment written at the top of generated files.
const DefaultHeader = "Code generated by accessgen. DO NOT EDIT."

// Backends is the set of storage backends selected for one invocation.
// The flags are not exclusive: zero, one or many may be set.
type Backends uint

const (
	// BackendSQL selects the database/sql backed storage module.
	BackendSQL Backends = 1 << iota
	// BackendFile selects the single-file storage module.
	BackendFile
)

// Has reports whether b selects every backend in o.
func (b Backends) Has(o Backends) bool { return o != 0 && b&o == o }

func (b Backends) String() string {
	var names []string
	if b.Has(BackendSQL) {
		names = append(names, "sql")
	}
	if b.Has(BackendFile) {
		names = append(names, "file")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParseBackend returns the backend flag for the given name.
func ParseBackend(name string) (Backends, error) {
	switch strings.ToLower(name) {
	case "sql", "sqlite", "database":
		return BackendSQL, nil
	case "file", "mmkv":
		return BackendFile, nil
	default:
		return 0, NewConfigError("Backend", name, "unsupported backend; use sql or file")
	}
}

// Config holds the options of one generation run.
type Config struct {
	// Target is the output directory. Schema and generated files live there.
	Target string
	// Package is the Go package name of generated files. When empty it is
	// taken from the schema file or derived from Target.
	Package string
	// Header is the comment written at the top of every generated file.
	Header string
	// Backends selects the storage modules to generate.
	Backends Backends
	// Block is the name of the struct declaring storage keys.
	Block string
	// DefaultLocale is the locale NewErrorService falls back to when called
	// with an empty locale.
	DefaultLocale string
	// Modes lists the theme modes, the first one being the default.
	Modes []string
}

// Option sets one field of a Config, validating its value.
type Option func(*Config) error

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithPackage sets the package name of generated files.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg != "" && !IsIdentifier(pkg) {
			return NewConfigError("Package", pkg, "package name must be a valid Go identifier")
		}
		c.Package = pkg
		return nil
	}
}

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithBackends adds storage backends to the selection.
func WithBackends(b Backends) Option {
	return func(c *Config) error {
		c.Backends |= b
		return nil
	}
}

// WithBlock sets the name of the struct that declares the storage keys.
func WithBlock(name string) Option {
	return func(c *Config) error {
		if !IsIdentifier(name) {
			return NewConfigError("Block", name, "block name must be a valid Go identifier")
		}
		c.Block = name
		return nil
	}
}

// WithDefaultLocale sets the locale used by NewErrorService("").
func WithDefaultLocale(locale string) Option {
	return func(c *Config) error {
		if locale == "" {
			return NewConfigError("DefaultLocale", nil, "locale cannot be empty")
		}
		c.DefaultLocale = locale
		return nil
	}
}

// WithModes appends theme modes.
func WithModes(modes ...string) Option {
	return func(c *Config) error {
		for _, m := range modes {
			m = strings.TrimPrefix(m, "--")
			if !IsIdentifier(m) {
				return NewConfigError("Modes", m, "theme mode must be a valid Go identifier")
			}
			c.Modes = append(c.Modes, m)
		}
		return nil
	}
}

// Apply runs opts in order and stops at the first failing one.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll runs every option and joins their errors, so that all invalid
// flags are reported at once.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig returns a Config with the default header, block and locale,
// then applies opts.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Header:        DefaultHeader,
		Block:         "Storage",
		DefaultLocale: "en",
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig is like NewConfig but panics on an invalid option.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
