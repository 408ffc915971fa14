package gen

import (
	"bytes"
	"path/filepath"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/accessgen/schema"
)

// File is one generated Go file, named relative to the target directory.
type File struct {
	*jen.File
	Name string
}

// Emitter renders the model into one or more files for a single backend or
// pipeline. Emit must be a pure function of the model: two calls with equal
// models produce byte-identical files.
type Emitter interface {
	// Name returns the emitter name (e.g., "storage", "sql", "catalog").
	Name() string
	// Emit renders the model.
	Emit(m *Model) ([]*File, error)
}

// Module is the rendered output of an emitter.
type Module struct {
	// Path is the absolute or target-relative path of the file.
	Path   string
	Source []byte
}

// NewFile creates a new Jennifer file with the header comment and the
// model's package.
func (m *Model) NewFile(name string) *File {
	f := jen.NewFile(m.Package)
	if m.Header != "" {
		f.HeaderComment(m.Header)
	}
	return &File{File: f, Name: name}
}

// Render runs the emitter and renders every file it returns. No file is
// written: callers decide when the modules reach the disk.
func Render(e Emitter, m *Model) ([]*Module, error) {
	files, err := e.Emit(m)
	if err != nil {
		if IsSchemaFormatError(err) || IsDuplicateKeyError(err) || IsConfigError(err) {
			return nil, err
		}
		return nil, NewGenerationError(e.Name(), "", "emit", err)
	}
	modules := make([]*Module, 0, len(files))
	for _, f := range files {
		var buf bytes.Buffer
		// Jennifer renders with correct imports and formatting
		if err := f.Render(&buf); err != nil {
			return nil, NewGenerationError(e.Name(), f.Name, "render", err)
		}
		modules = append(modules, &Module{
			Path:   filepath.Join(m.Target, f.Name),
			Source: buf.Bytes(),
		})
	}
	return modules, nil
}

// TypeCode returns the Jennifer code for a schema type expression. Qualified
// identifiers are rendered with jen.Qual so the import is tracked.
func TypeCode(t *schema.TypeExpr) jen.Code {
	if t == nil {
		return jen.Any()
	}
	switch t.Kind {
	case schema.KindIdent:
		return jen.Id(t.Name)
	case schema.KindQualified:
		return jen.Qual(t.PkgPath, t.Name)
	case schema.KindPointer:
		return jen.Op("*").Add(TypeCode(t.Elem))
	case schema.KindSlice:
		return jen.Index().Add(TypeCode(t.Elem))
	case schema.KindArray:
		return jen.Index(jen.Lit(t.Len)).Add(TypeCode(t.Elem))
	case schema.KindMap:
		return jen.Map(TypeCode(t.Key)).Add(TypeCode(t.Elem))
	case schema.KindStruct:
		return jen.StructFunc(func(g *jen.Group) {
			for _, f := range t.Fields {
				field := g.Id(FieldIdent(f.Name)).Add(TypeCode(f.Type))
				if name := FieldJSONName(f); name != "" {
					field.Tag(map[string]string{"json": name})
				}
			}
		})
	default:
		return jen.Any()
	}
}

// Import paths of the runtime packages referenced by generated code.
const (
	RuntimePkg = "github.com/syssam/accessgen"
	SQLPkg     = RuntimePkg + "/dialect/sql"
	FilePkg    = RuntimePkg + "/dialect/file"
	I18nPkg    = RuntimePkg + "/i18n"
)
