package schema

import "strings"

// Pos is a 1-based position inside a schema file.
type Pos struct {
	Line   int
	Column int
}

// Import is one import spec of a storage schema file.
type Import struct {
	Name string // explicit alias, empty when none
	Path string
}

// Key is one declared storage key and the type of its value.
type Key struct {
	Name string
	Type *TypeExpr
	// Doc holds the comment lines written directly above the key.
	Doc []string
	// Tag is the unquoted struct tag of an inline struct field.
	Tag string
	Pos Pos
}

// KeySchema is the parsed form of a storage schema file.
type KeySchema struct {
	Package string
	Block   string
	Imports []Import
	Keys    []*Key
}

// ImportPath returns the import path bound to the given package
// qualifier, and whether it exists.
func (s *KeySchema) ImportPath(qualifier string) (string, bool) {
	for _, imp := range s.Imports {
		if imp.Name == qualifier || (imp.Name == "" && lastElem(imp.Path) == qualifier) {
			return imp.Path, true
		}
	}
	return "", false
}

// Translation is the text of a message in one locale.
type Translation struct {
	Locale string
	Text   string
}

// Message is one error/message code with its per-locale texts, in the
// order they were declared.
type Message struct {
	Code         string
	Translations []Translation
	Pos          Pos
}

// Text returns the translation for the given locale.
func (m *Message) Text(locale string) (string, bool) {
	for _, t := range m.Translations {
		if t.Locale == locale {
			return t.Text, true
		}
	}
	return "", false
}

// Asset is one embeddable file found in an asset directory.
type Asset struct {
	// Name is the file name without its extension.
	Name string
	// File is the file name relative to the asset directory.
	File string
}

// Mode is one theme mode and its palette file.
type Mode struct {
	Name string
	File string
	// Created reports whether the palette file was scaffolded by this run.
	Created bool
}

func lastElem(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// Color is one named entry of a theme palette.
type Color struct {
	Name string
	Hex  string
}

// DefaultPalette lists the palette fields, in declaration order, with the
// colors written into a newly scaffolded mode file.
var DefaultPalette = []Color{
	{"Background", "#FFFFFF"},
	{"Surface", "#F9FAFB"},
	{"Primary", "#2563EB"},
	{"PrimaryLight", "#60A5FA"},
	{"PrimaryDark", "#1E40AF"},
	{"Secondary", "#9333EA"},
	{"Text", "#111827"},
	{"TextSecondary", "#6B7280"},
	{"Border", "#E5E7EB"},
	{"Card", "#FFFFFF"},
	{"Error", "#DC2626"},
	{"Success", "#16A34A"},
	{"Warning", "#D97706"},
}

// PaletteVar returns the name of the package-level palette variable
// declared by the file of the given mode.
func PaletteVar(mode string) string {
	if mode == "" {
		return "palette"
	}
	return strings.ToLower(mode[:1]) + mode[1:] + "Palette"
}
