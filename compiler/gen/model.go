package gen

import (
	"fmt"

	"github.com/syssam/accessgen/schema"
)

// The following types and their exported methods are used by the emitters.
type (
	// Model is the backend-agnostic description that emitters render.
	// It is built once per invocation and never mutated afterwards.
	Model struct {
		*Config
		// Package is the resolved package name of generated files.
		Package string
		// Keys holds the storage keys, in declaration order.
		Keys []*Key
		// Messages holds the catalog codes, in declaration order.
		Messages []*Message
		// Locales is every locale used by Messages, in first-use order.
		Locales []string
		// Assets holds the embedded assets, sorted by file name.
		Assets []*Asset
		// Modes holds the theme modes, the first one being the default.
		Modes []*Mode
	}

	// Key is one storage key of the model.
	Key struct {
		// Name is the key as persisted by the backends.
		Name string
		// Ident is the exported Go form of Name.
		Ident string
		Type  *schema.TypeExpr
		Doc   []string
	}

	// Message is one catalog code of the model.
	Message struct {
		Code         string
		Ident        string
		Translations []schema.Translation
	}

	// Asset is one embedded file of the model.
	Asset struct {
		Name  string
		Ident string
		File  string
	}

	// Mode is one theme mode of the model.
	Mode struct {
		Name  string
		Ident string
		File  string
	}

	// Input groups the parsed schema entries of one pipeline. Only the
	// fields relevant to the pipeline are set.
	Input struct {
		Keys     *schema.KeySchema
		Messages []*schema.Message
		Assets   []*schema.Asset
		Modes    []*schema.Mode
	}
)

// Const returns the name of the StorageKey constant.
func (k *Key) Const() string { return "StorageKey" + k.Ident }

// Getter returns the name of the single-item read accessor.
func (k *Key) Getter() string { return "Get" + k.Ident }

// Setter returns the name of the single-item write accessor.
func (k *Key) Setter() string { return "Set" + k.Ident }

// Remover returns the name of the single-item remove accessor.
func (k *Key) Remover() string { return "Remove" + k.Ident }

// Const returns the name of the ErrorCode constant.
func (m *Message) Const() string { return "ErrorCode" + m.Ident }

// NewModel validates the parsed entries and builds the model. It performs no
// I/O; the only failure modes are duplicate or unrepresentable names.
func NewModel(c *Config, in Input) (*Model, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "config cannot be nil")
	}
	m := &Model{Config: c}
	pkg, err := resolvePackage(c, in.Keys)
	if err != nil {
		return nil, err
	}
	m.Package = pkg
	if in.Keys != nil {
		if m.Keys, err = buildKeys(in.Keys); err != nil {
			return nil, err
		}
	}
	if in.Messages != nil {
		if m.Messages, m.Locales, err = buildMessages(in.Messages); err != nil {
			return nil, err
		}
	}
	if in.Assets != nil {
		if m.Assets, err = buildAssets(in.Assets); err != nil {
			return nil, err
		}
	}
	if in.Modes != nil {
		if m.Modes, err = buildModes(in.Modes); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func resolvePackage(c *Config, ks *schema.KeySchema) (string, error) {
	switch {
	case ks != nil && ks.Package != "" && c.Package != "" && ks.Package != c.Package:
		return "", NewConfigError("Package", c.Package, fmt.Sprintf("schema declares package %q", ks.Package))
	case ks != nil && ks.Package != "":
		return ks.Package, nil
	case c.Package != "":
		return c.Package, nil
	default:
		return PackageName(c.Target), nil
	}
}

// namer tracks the names and Go identifiers already taken in one model
// section.
type namer struct {
	kind   string
	names  map[string]struct{}
	idents map[string]string
}

func newNamer(kind string) *namer {
	return &namer{kind: kind, names: make(map[string]struct{}), idents: make(map[string]string)}
}

func (n *namer) add(name, ident string) error {
	if _, ok := n.names[name]; ok {
		return NewDuplicateKeyError(n.kind, name, "")
	}
	if other, ok := n.idents[ident]; ok {
		return NewDuplicateKeyError(n.kind, name, other)
	}
	n.names[name] = struct{}{}
	n.idents[ident] = name
	return nil
}

func buildKeys(ks *schema.KeySchema) ([]*Key, error) {
	n := newNamer("key")
	keys := make([]*Key, 0, len(ks.Keys))
	for _, k := range ks.Keys {
		ident := Pascal(k.Name)
		if !IsIdentifier(ident) {
			return nil, &SchemaFormatError{Line: k.Pos.Line, Column: k.Pos.Column, Message: fmt.Sprintf("key %q has no Go identifier form", k.Name), Cause: ErrMalformedEntry}
		}
		if err := n.add(k.Name, ident); err != nil {
			return nil, err
		}
		for _, method := range []string{"Get" + ident, "Set" + ident, "Remove" + ident} {
			if _, ok := storageMethods[method]; ok {
				return nil, &SchemaFormatError{Line: k.Pos.Line, Column: k.Pos.Column, Message: fmt.Sprintf("key %q clashes with the %s method", k.Name, method), Cause: ErrMalformedEntry}
			}
		}
		keys = append(keys, &Key{Name: k.Name, Ident: ident, Type: k.Type, Doc: k.Doc})
	}
	return keys, nil
}

func buildMessages(msgs []*schema.Message) ([]*Message, []string, error) {
	n := newNamer("code")
	var (
		out     = make([]*Message, 0, len(msgs))
		locales []string
		seen    = make(map[string]bool)
	)
	for _, msg := range msgs {
		ident := Pascal(msg.Code)
		if !IsIdentifier(ident) {
			return nil, nil, &SchemaFormatError{Line: msg.Pos.Line, Column: msg.Pos.Column, Message: fmt.Sprintf("code %q has no Go identifier form", msg.Code), Cause: ErrMalformedEntry}
		}
		if len(msg.Translations) == 0 {
			return nil, nil, &SchemaFormatError{Line: msg.Pos.Line, Column: msg.Pos.Column, Message: fmt.Sprintf("code %q has no translations", msg.Code), Cause: ErrMalformedEntry}
		}
		if err := n.add(msg.Code, ident); err != nil {
			return nil, nil, err
		}
		for _, t := range msg.Translations {
			if !seen[t.Locale] {
				seen[t.Locale] = true
				locales = append(locales, t.Locale)
			}
		}
		out = append(out, &Message{Code: msg.Code, Ident: ident, Translations: msg.Translations})
	}
	return out, locales, nil
}

func buildAssets(assets []*schema.Asset) ([]*Asset, error) {
	n := newNamer("asset")
	out := make([]*Asset, 0, len(assets))
	for _, a := range assets {
		ident := Pascal(a.Name)
		if !IsIdentifier(ident) {
			return nil, NewSchemaFormatError(a.File, "asset name has no Go identifier form", ErrMalformedEntry)
		}
		if err := n.add(a.Name, ident); err != nil {
			return nil, err
		}
		out = append(out, &Asset{Name: a.Name, Ident: ident, File: a.File})
	}
	return out, nil
}

func buildModes(modes []*schema.Mode) ([]*Mode, error) {
	n := newNamer("mode")
	out := make([]*Mode, 0, len(modes))
	for _, md := range modes {
		ident := Pascal(md.Name)
		if !IsIdentifier(md.Name) || !IsIdentifier(ident) {
			return nil, NewSchemaFormatError(md.File, fmt.Sprintf("theme mode %q is not a Go identifier", md.Name), ErrMalformedEntry)
		}
		if err := n.add(md.Name, ident); err != nil {
			return nil, err
		}
		out = append(out, &Mode{Name: md.Name, Ident: ident, File: md.File})
	}
	return out, nil
}
