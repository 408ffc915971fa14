// Package theme renders the palette provider of a set of theme modes. Each
// mode is backed by a hand-edited <mode>.go file declaring its palette
// variable; theme.go ties them together.
package theme

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/accessgen/compiler/gen"
	"github.com/syssam/accessgen/schema"
)

// ThemeFile is the name of the generated theme file.
const ThemeFile = "theme.go"

// Emitter renders the theme pipeline.
type Emitter struct{}

// Name implements gen.Emitter.
func (Emitter) Name() string { return "theme" }

// Emit implements gen.Emitter.
func (Emitter) Emit(m *gen.Model) ([]*gen.File, error) {
	if len(m.Modes) == 0 {
		return nil, gen.NewConfigError("Modes", nil, "provide at least one theme mode, e.g. --light --dark")
	}
	return []*gen.File{genTheme(m)}, nil
}

func modeConst(md *gen.Mode) string { return "Mode" + md.Ident }

func genTheme(m *gen.Model) *gen.File {
	f := m.NewFile(ThemeFile)
	genPalette(f)
	genModes(f, m)
	genProvider(f)
	return f
}

func genPalette(f *gen.File) {
	f.Comment("Palette holds the colors of one theme mode as hex strings.")
	f.Type().Id("Palette").StructFunc(func(g *jen.Group) {
		for _, c := range schema.DefaultPalette {
			g.Id(c.Name).String()
		}
	})
}

func genModes(f *gen.File, m *gen.Model) {
	f.Comment("Mode names one theme mode.")
	f.Type().Id("Mode").String()

	f.Comment("Theme modes.")
	f.Const().DefsFunc(func(g *jen.Group) {
		for _, md := range m.Modes {
			g.Id(modeConst(md)).Id("Mode").Op("=").Lit(md.Name)
		}
	})

	f.Comment("DefaultMode is the mode selected when no valid mode is given.")
	f.Const().Id("DefaultMode").Op("=").Id(modeConst(m.Modes[0]))

	f.Comment("Palettes maps every mode to its palette.")
	f.Var().Id("Palettes").Op("=").Map(jen.Id("Mode")).Id("Palette").CustomFunc(jen.Options{Open: "{", Close: "}", Separator: ",", Multi: true}, func(g *jen.Group) {
		for _, md := range m.Modes {
			g.Id(modeConst(md)).Op(":").Id(schema.PaletteVar(md.Name))
		}
	})

	f.Comment("Modes returns every theme mode, the default first.")
	f.Func().Id("Modes").Params().Index().Id("Mode").Block(
		jen.Return(jen.Index().Id("Mode").ValuesFunc(func(g *jen.Group) {
			for _, md := range m.Modes {
				g.Id(modeConst(md))
			}
		})),
	)

	f.Comment("Valid reports whether md is a declared mode.")
	f.Func().Params(jen.Id("md").Id("Mode")).Id("Valid").Params().Bool().Block(
		jen.List(jen.Id("_"), jen.Id("ok")).Op(":=").Id("Palettes").Index(jen.Id("md")),
		jen.Return(jen.Id("ok")),
	)
}

func genProvider(f *gen.File) {
	p := jen.Id("p").Op("*").Id("Provider")
	lock := func(method string) []jen.Code {
		unlock := "Unlock"
		if method == "RLock" {
			unlock = "RUnlock"
		}
		return []jen.Code{
			jen.Id("p").Dot("mu").Dot(method).Call(),
			jen.Defer().Id("p").Dot("mu").Dot(unlock).Call(),
		}
	}

	f.Comment("Provider holds the current theme mode. It is safe for concurrent use.")
	f.Type().Id("Provider").Struct(
		jen.Id("mu").Qual("sync", "RWMutex"),
		jen.Id("mode").Id("Mode"),
		jen.Id("listeners").Index().Func().Params(jen.Id("Mode")),
	)

	f.Comment("NewProvider returns a Provider starting in the initial mode, or in")
	f.Comment("DefaultMode when initial is not a declared mode.")
	f.Func().Id("NewProvider").Params(jen.Id("initial").Id("Mode")).Op("*").Id("Provider").Block(
		jen.If(jen.Op("!").Id("initial").Dot("Valid").Call()).Block(
			jen.Id("initial").Op("=").Id("DefaultMode"),
		),
		jen.Return(jen.Op("&").Id("Provider").Values(jen.Dict{jen.Id("mode"): jen.Id("initial")})),
	)

	f.Comment("Mode returns the current mode.")
	f.Func().Params(p.Clone()).Id("Mode").Params().Id("Mode").Block(
		append(lock("RLock"), jen.Return(jen.Id("p").Dot("mode")))...,
	)

	f.Comment("Colors returns the palette of the current mode.")
	f.Func().Params(p.Clone()).Id("Colors").Params().Id("Palette").Block(
		append(lock("RLock"), jen.Return(jen.Id("Palettes").Index(jen.Id("p").Dot("mode"))))...,
	)

	f.Comment("SetMode switches to md and notifies the listeners when the mode")
	f.Comment("changed. An undeclared mode is an error and keeps the current one.")
	f.Func().Params(p.Clone()).Id("SetMode").Params(jen.Id("md").Id("Mode")).Error().Block(
		jen.If(jen.Op("!").Id("md").Dot("Valid").Call()).Block(
			jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit("theme: unknown mode %q"), jen.Id("md"))),
		),
		jen.Id("p").Dot("mu").Dot("Lock").Call(),
		jen.If(jen.Id("p").Dot("mode").Op("==").Id("md")).Block(
			jen.Id("p").Dot("mu").Dot("Unlock").Call(),
			jen.Return(jen.Nil()),
		),
		jen.Id("p").Dot("mode").Op("=").Id("md"),
		jen.Id("listeners").Op(":=").Qual("slices", "Clone").Call(jen.Id("p").Dot("listeners")),
		jen.Id("p").Dot("mu").Dot("Unlock").Call(),
		jen.For(jen.List(jen.Id("_"), jen.Id("fn")).Op(":=").Range().Id("listeners")).Block(
			jen.Id("fn").Call(jen.Id("md")),
		),
		jen.Return(jen.Nil()),
	)

	f.Comment("OnChange registers fn to be called after every mode change.")
	f.Func().Params(p.Clone()).Id("OnChange").Params(jen.Id("fn").Func().Params(jen.Id("Mode"))).Block(
		append(lock("Lock"), jen.Id("p").Dot("listeners").Op("=").Append(jen.Id("p").Dot("listeners"), jen.Id("fn")))...,
	)
}
