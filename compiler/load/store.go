// Package load locates, bootstraps and parses accessgen schema files.
package load

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/syssam/accessgen/compiler/gen"
)

// Kind identifies the schema shape of a pipeline.
type Kind uint8

const (
	// KindStorage is the typed key schema (keys.go).
	KindStorage Kind = iota + 1
	// KindMessages is the message catalog (errors.json or errors.yaml).
	KindMessages
)

// Canonical schema file names.
const (
	StorageFile  = "keys.go"
	MessagesFile = "errors.json"
)

// candidates lists, per kind, the file names searched in order. The first
// one is the file a missing schema is bootstrapped to.
var candidates = map[Kind][]string{
	KindStorage:  {StorageFile},
	KindMessages: {MessagesFile, "errors.yaml", "errors.yml"},
}

// SchemaFiles returns the file names searched for a schema of the given
// kind, in lookup order.
func SchemaFiles(kind Kind) []string {
	return slices.Clone(candidates[kind])
}

// SchemaFile is a schema read from, or bootstrapped into, a target directory.
type SchemaFile struct {
	Kind Kind
	Path string
	Text []byte
	// Created reports whether the file was synthesized by this call.
	Created bool
}

// StoreOptions tunes the defaults written for a missing schema.
type StoreOptions struct {
	// Package is the package clause of a bootstrapped storage schema.
	Package string
	// Block is the struct name of a bootstrapped storage schema.
	Block string
	// DryRun synthesizes missing schemas without touching the filesystem.
	DryRun bool
}

// EnsureSchema returns the schema of the given kind stored in dir. An
// existing file is returned unchanged and is never rewritten; a missing one
// is synthesized with illustrative defaults and persisted at the canonical
// path. The directory is created when it does not exist.
func EnsureSchema(dir string, kind Kind, opts StoreOptions) (*SchemaFile, error) {
	names, ok := candidates[kind]
	if !ok {
		return nil, gen.NewConfigError("Kind", kind, "unknown schema kind")
	}
	if !opts.DryRun {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, gen.NewIOError("mkdir", dir, err)
		}
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		text, err := os.ReadFile(path)
		switch {
		case err == nil:
			return &SchemaFile{Kind: kind, Path: path, Text: text}, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, gen.NewIOError("read", path, err)
		}
	}
	path := filepath.Join(dir, names[0])
	text, err := defaultSchema(kind, path, opts)
	if err != nil {
		return nil, err
	}
	if !opts.DryRun {
		if err := gen.WriteFile(path, text); err != nil {
			return nil, err
		}
	}
	return &SchemaFile{Kind: kind, Path: path, Text: text, Created: true}, nil
}

// IsJSON reports whether the schema file uses the JSON encoding.
func (s *SchemaFile) IsJSON() bool {
	return filepath.Ext(s.Path) == ".json"
}

var storageTmpl = template.Must(template.New("keys").Parse(`// Storage keys of the generated StorageService.
//
// Add new keys and their value types to the {{ .Block }} struct, then run
// accessgen generate-storage again. This file is never overwritten.

package {{ .Package }}

// {{ .Block }} declares every persisted key and the type of its value.
type {{ .Block }} struct {
	UserName              string
	RefetchIntervalConfig int
}
`))

// defaultMessages mirrors the catalog written for a missing errors.json.
var defaultMessages = []struct {
	Code string
	En   string
	Vi   string
}{
	{"UNKNOWN_ERROR", "Unknown error occurred", "Đã xảy ra lỗi không xác định"},
	{"NETWORK_ERROR", "Network connection failed", "Kết nối mạng thất bại"},
}

func defaultSchema(kind Kind, path string, opts StoreOptions) ([]byte, error) {
	switch kind {
	case KindStorage:
		data := StoreOptions{Package: opts.Package, Block: opts.Block}
		if data.Package == "" {
			data.Package = gen.PackageName(filepath.Dir(path))
		}
		if data.Block == "" {
			data.Block = "Storage"
		}
		var buf bytes.Buffer
		if err := storageTmpl.Execute(&buf, data); err != nil {
			return nil, gen.NewGenerationError("schema", path, "execute default schema template", err)
		}
		out, err := imports.Process(path, buf.Bytes(), nil)
		if err != nil {
			return nil, gen.NewGenerationError("schema", path, "format default schema", err)
		}
		return out, nil
	case KindMessages:
		return defaultMessagesJSON()
	default:
		return nil, gen.NewConfigError("Kind", kind, "unknown schema kind")
	}
}

// defaultMessagesJSON renders the default catalog with stable key order and
// 4-space indentation.
func defaultMessagesJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, m := range defaultMessages {
		code, _ := json.Marshal(m.Code)
		en, _ := json.Marshal(m.En)
		vi, _ := json.Marshal(m.Vi)
		fmt.Fprintf(&buf, "    %s: {\n        \"en\": %s,\n        \"vi\": %s\n    }", code, en, vi)
		if i < len(defaultMessages)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
