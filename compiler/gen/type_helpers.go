package gen

import (
	"go/token"
	"path/filepath"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/accessgen/schema"
)

var titleCaser = cases.Title(language.Und)

// IsIdentifier reports whether s is a valid, non-keyword Go identifier.
func IsIdentifier(s string) bool {
	return token.IsIdentifier(s)
}

// FieldIdent returns the exported Go name of an inline struct field, or ""
// when the name has no exported form. Exported names are kept as written.
func FieldIdent(name string) string {
	if token.IsExported(name) {
		return name
	}
	if id := Pascal(name); token.IsExported(id) && IsIdentifier(id) {
		return id
	}
	return ""
}

// FieldJSONName is the JSON name an inline struct field is stored under
// when it must be spelled out in a tag: the json key of its own tag, or
// the schema name when the field had to be exported.
func FieldJSONName(f *schema.Key) string {
	if v, ok := reflect.StructTag(f.Tag).Lookup("json"); ok {
		return v
	}
	if FieldIdent(f.Name) != f.Name {
		return f.Name
	}
	return ""
}

// Pascal converts a schema name (UserName, NETWORK_ERROR, arrow-left) into
// an exported Go identifier (UserName, NetworkError, ArrowLeft).
// Words that are entirely upper case are title-cased, other words keep
// their inner casing.
func Pascal(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, w := range words {
		if isUpperWord(w) {
			w = titleCaser.String(strings.ToLower(w))
		}
		b.WriteString(inflect.Capitalize(w))
	}
	out := b.String()
	if out != "" && unicode.IsDigit(rune(out[0])) {
		out = "N" + out
	}
	return out
}

func isUpperWord(w string) bool {
	letters := 0
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 1
}

// PackageName derives a package name from an output directory.
func PackageName(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || unicode.IsDigit(rune(name[0])) || !IsIdentifier(name) {
		return "generated"
	}
	return name
}

// storageMethods are the batch and key-generic methods of the generated
// StorageService. Per-key accessors must not collide with them.
var storageMethods = names(
	"GetItems",
	"SetItems",
	"RemoveItems",
	"Clear",
	"Remove",
	"Has",
	"Keys",
)

func names(ids ...string) map[string]struct{} {
	m := make(map[string]struct{})
	for i := range ids {
		m[ids[i]] = struct{}{}
	}
	return m
}
