package schema

import (
	"strconv"
	"strings"
)

// TypeKind enumerates the supported type expression shapes.
type TypeKind uint8

const (
	// KindIdent is a predeclared or package-local identifier (string, int, Config).
	KindIdent TypeKind = iota + 1
	// KindQualified is a package-qualified identifier (time.Time).
	KindQualified
	// KindPointer is *Elem.
	KindPointer
	// KindSlice is []Elem.
	KindSlice
	// KindArray is [Len]Elem.
	KindArray
	// KindMap is map[Key]Elem.
	KindMap
	// KindStruct is an inline struct literal type.
	KindStruct
)

// TypeExpr is the type of a storage key, kept as a small tree so that it can
// be re-rendered with correct imports.
type TypeExpr struct {
	Kind TypeKind
	// Name is set for KindIdent and KindQualified.
	Name string
	// Pkg is the qualifier for KindQualified and PkgPath its resolved import path.
	Pkg     string
	PkgPath string
	// Len is the array length for KindArray.
	Len int
	// Key is the map key type for KindMap.
	Key *TypeExpr
	// Elem is the element type for pointers, slices, arrays and maps.
	Elem *TypeExpr
	// Fields are the members of an inline struct.
	Fields []*Key
}

// Ident returns a TypeExpr for a plain identifier.
func Ident(name string) *TypeExpr {
	return &TypeExpr{Kind: KindIdent, Name: name}
}

// Qualified returns a TypeExpr for pkg.Name resolved to path.
func Qualified(pkg, path, name string) *TypeExpr {
	return &TypeExpr{Kind: KindQualified, Pkg: pkg, PkgPath: path, Name: name}
}

// PointerTo returns *elem.
func PointerTo(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindPointer, Elem: elem}
}

// SliceOf returns []elem.
func SliceOf(elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindSlice, Elem: elem}
}

// MapOf returns map[key]elem.
func MapOf(key, elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindMap, Key: key, Elem: elem}
}

// String renders the expression in Go syntax on a single line.
func (t *TypeExpr) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *TypeExpr) write(b *strings.Builder) {
	if t == nil {
		b.WriteString("any")
		return
	}
	switch t.Kind {
	case KindIdent:
		b.WriteString(t.Name)
	case KindQualified:
		b.WriteString(t.Pkg)
		b.WriteByte('.')
		b.WriteString(t.Name)
	case KindPointer:
		b.WriteByte('*')
		t.Elem.write(b)
	case KindSlice:
		b.WriteString("[]")
		t.Elem.write(b)
	case KindArray:
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(t.Len))
		b.WriteByte(']')
		t.Elem.write(b)
	case KindMap:
		b.WriteString("map[")
		t.Key.write(b)
		b.WriteByte(']')
		t.Elem.write(b)
	case KindStruct:
		b.WriteString("struct{")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(f.Name)
			b.WriteByte(' ')
			f.Type.write(b)
			if f.Tag != "" {
				b.WriteString(" `" + f.Tag + "`")
			}
		}
		b.WriteByte('}')
	}
}

// Imports returns the import paths referenced by the expression, in
// first-use order.
func (t *TypeExpr) Imports() []string {
	var paths []string
	seen := make(map[string]bool)
	t.walk(func(e *TypeExpr) {
		if e.Kind == KindQualified && e.PkgPath != "" && !seen[e.PkgPath] {
			seen[e.PkgPath] = true
			paths = append(paths, e.PkgPath)
		}
	})
	return paths
}

func (t *TypeExpr) walk(fn func(*TypeExpr)) {
	if t == nil {
		return
	}
	fn(t)
	t.Key.walk(fn)
	t.Elem.walk(fn)
	for _, f := range t.Fields {
		f.Type.walk(fn)
	}
}
