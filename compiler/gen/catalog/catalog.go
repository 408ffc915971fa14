// Package catalog renders the localized error catalog of a message schema.
package catalog

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/accessgen/compiler/gen"
)

// ServiceFile is the name of the generated catalog file.
const ServiceFile = "error_service.go"

// Emitter renders the error catalog pipeline.
type Emitter struct{}

// Name implements gen.Emitter.
func (Emitter) Name() string { return "catalog" }

// Emit implements gen.Emitter.
func (Emitter) Emit(m *gen.Model) ([]*gen.File, error) {
	if m.DefaultLocale == "" {
		return nil, gen.NewConfigError("DefaultLocale", nil, "locale cannot be empty")
	}
	return []*gen.File{genCatalog(m)}, nil
}

func genCatalog(m *gen.Model) *gen.File {
	f := m.NewFile(ServiceFile)

	f.Comment("ErrorCode identifies one message of the error catalog.")
	f.Type().Id("ErrorCode").String()
	if len(m.Messages) > 0 {
		f.Comment("Error codes, in declaration order.")
		f.Const().DefsFunc(func(g *jen.Group) {
			for _, msg := range m.Messages {
				g.Id(msg.Const()).Id("ErrorCode").Op("=").Lit(msg.Code)
			}
		})
	}
	f.Comment("String implements the fmt.Stringer interface.")
	f.Func().Params(jen.Id("c").Id("ErrorCode")).Id("String").Params().String().Block(
		jen.Return(jen.String().Call(jen.Id("c"))),
	)

	f.Comment("DefaultLocale is the locale selected by NewErrorService(\"\").")
	f.Const().Id("DefaultLocale").Op("=").Lit(m.DefaultLocale)

	entry := jen.Qual(gen.I18nPkg, "Entry").Types(jen.Id("ErrorCode"))
	f.Var().Id("errorCatalog").Op("=").Index().Add(entry).CustomFunc(multiline(), func(g *jen.Group) {
		for _, msg := range m.Messages {
			g.Values(jen.Dict{
				jen.Id("Code"): jen.Id(msg.Const()),
				jen.Id("Translations"): jen.Map(jen.String()).String().CustomFunc(multiline(), func(g *jen.Group) {
					for _, t := range msg.Translations {
						g.Lit(t.Locale).Op(":").Lit(t.Text)
					}
				}),
			})
		}
	})

	f.Comment("ErrorService resolves error codes to messages in its current locale,")
	f.Comment("falling back to \"en\" and then to \"Unknown error\".")
	f.Type().Id("ErrorService").Op("=").Qual(gen.I18nPkg, "Service").Types(jen.Id("ErrorCode"))

	f.Comment("NewErrorService returns an ErrorService over the catalog. An empty")
	f.Comment("locale selects DefaultLocale.")
	f.Func().Id("NewErrorService").Params(jen.Id("locale").String()).Op("*").Id("ErrorService").Block(
		jen.If(jen.Id("locale").Op("==").Lit("")).Block(
			jen.Id("locale").Op("=").Id("DefaultLocale"),
		),
		jen.Return(jen.Qual(gen.I18nPkg, "NewService").Call(jen.Id("errorCatalog"), jen.Id("locale"))),
	)

	f.Comment("ErrorLocales returns the locales used by the catalog, in first-use")
	f.Comment("order.")
	f.Func().Id("ErrorLocales").Params().Index().String().Block(
		jen.Return(jen.Index().String().CustomFunc(multiline(), func(g *jen.Group) {
			for _, loc := range m.Locales {
				g.Lit(loc)
			}
		})),
	)
	return f
}

func multiline() jen.Options {
	return jen.Options{Open: "{", Close: "}", Separator: ",", Multi: true}
}
