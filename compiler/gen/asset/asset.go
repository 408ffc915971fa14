// Package asset renders typed indexes over the image and SVG files of an
// asset directory. The files are embedded into the generated package.
package asset

import (
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/accessgen/compiler/gen"
)

// Emitter renders one asset index.
type Emitter struct {
	name string
	file string
	typ  string // constant type, also the constant prefix
	list string // listing function
	fs   string // embed.FS variable
}

// Asset emitters.
var (
	Images = Emitter{name: "images", file: "images.go", typ: "Image", list: "Images", fs: "imageFS"}
	SVGs   = Emitter{name: "svgs", file: "svgs.go", typ: "SVG", list: "SVGs", fs: "svgFS"}
)

// Name implements gen.Emitter.
func (e Emitter) Name() string { return e.name }

// File returns the name of the generated file.
func (e Emitter) File() string { return e.file }

// Emit implements gen.Emitter. An empty directory yields an index without
// constants.
func (e Emitter) Emit(m *gen.Model) ([]*gen.File, error) {
	return []*gen.File{e.gen(m)}, nil
}

func (e Emitter) constName(a *gen.Asset) string { return e.typ + a.Ident }

func (e Emitter) gen(m *gen.Model) *gen.File {
	f := m.NewFile(e.file)

	if len(m.Assets) > 0 {
		patterns := make([]string, len(m.Assets))
		for i, a := range m.Assets {
			patterns[i] = embedPattern(a.File)
		}
		f.Comment("//go:embed " + strings.Join(patterns, " "))
	}
	f.Var().Id(e.fs).Qual("embed", "FS")

	f.Commentf("%s names one embedded file.", e.typ)
	f.Type().Id(e.typ).String()
	if len(m.Assets) > 0 {
		f.Comment("Embedded files, sorted by file name.")
		f.Const().DefsFunc(func(g *jen.Group) {
			for _, a := range m.Assets {
				g.Id(e.constName(a)).Id(e.typ).Op("=").Lit(a.File)
			}
		})
	}

	f.Commentf("%s returns every embedded file, sorted by file name.", e.list)
	f.Func().Id(e.list).Params().Index().Id(e.typ).Block(
		jen.Return(jen.Index().Id(e.typ).CustomFunc(jen.Options{Open: "{", Close: "}", Separator: ",", Multi: true}, func(g *jen.Group) {
			for _, a := range m.Assets {
				g.Id(e.constName(a))
			}
		})),
	)

	f.Commentf("%sFS returns the file system holding the embedded files.", e.typ)
	f.Func().Id(e.typ+"FS").Params().Qual("io/fs", "FS").Block(
		jen.Return(jen.Id(e.fs)),
	)

	f.Comment("Bytes returns the content of the file, or nil when it cannot be read.")
	f.Func().Params(jen.Id("a").Id(e.typ)).Id("Bytes").Params().Index().Byte().Block(
		jen.List(jen.Id("data"), jen.Err()).Op(":=").Id(e.fs).Dot("ReadFile").Call(jen.String().Call(jen.Id("a"))),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Qual("log/slog", "Error").Call(jen.Lit(e.name+": read embedded file"), jen.Lit("file"), jen.String().Call(jen.Id("a")), jen.Lit("error"), jen.Err()),
			jen.Return(jen.Nil()),
		),
		jen.Return(jen.Id("data")),
	)

	f.Comment("String implements the fmt.Stringer interface.")
	f.Func().Params(jen.Id("a").Id(e.typ)).Id("String").Params().String().Block(
		jen.Return(jen.String().Call(jen.Id("a"))),
	)
	return f
}

// embedPattern quotes names that the go:embed directive would split.
func embedPattern(name string) string {
	if strings.ContainsAny(name, " \t\"`") {
		return strconv.Quote(name)
	}
	return name
}
