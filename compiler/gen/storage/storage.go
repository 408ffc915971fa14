// Package storage renders the typed storage service of a key schema and the
// constructors of its backends.
//
// Generated code structure:
//
//	{target}/
//	├── keys.go          # key schema (hand-edited)
//	├── storage.go       # StorageKey, StorageValues, StorageService
//	├── sql_storage.go   # NewSQLStorage, OpenSQLStorage (--sql)
//	└── file_storage.go  # OpenFileStorage (--file)
package storage

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/accessgen/compiler/gen"
)

// Generated file names.
const (
	StorageFile = "storage.go"
	SQLFile     = "sql_storage.go"
	FileFile    = "file_storage.go"
)

// reserved are the identifiers declared by storage.go.
var reserved = map[string]bool{
	"StorageKey":        true,
	"StorageKeys":       true,
	"StorageValues":     true,
	"StorageService":    true,
	"NewStorageService": true,
	"NewSQLStorage":     true,
	"OpenSQLStorage":    true,
	"OpenFileStorage":   true,
}

// Emitter renders the storage pipeline.
type Emitter struct{}

// Name implements gen.Emitter.
func (Emitter) Name() string { return "storage" }

// Emit implements gen.Emitter. The shared surface is always rendered; one
// constructor file is added per selected backend.
func (Emitter) Emit(m *gen.Model) ([]*gen.File, error) {
	if m.Backends == 0 {
		return nil, gen.NewConfigError("Backends", m.Backends, "select at least one storage backend")
	}
	if reserved[m.Block] {
		return nil, gen.NewConfigError("Block", m.Block, fmt.Sprintf("%s is declared by the generated %s", m.Block, StorageFile))
	}
	files := []*gen.File{genStorage(m)}
	if m.Backends.Has(gen.BackendSQL) {
		files = append(files, genSQLStorage(m))
	}
	if m.Backends.Has(gen.BackendFile) {
		files = append(files, genFileStorage(m))
	}
	return files, nil
}

var (
	ctxParam  = jen.Id("ctx").Qual("context", "Context")
	storeExpr = jen.Id("s").Dot("store")
	recv      = jen.Id("s").Op("*").Id("StorageService")
)

func keyString(k *gen.Key) jen.Code {
	return jen.String().Call(jen.Id(k.Const()))
}

func multi() jen.Options {
	return jen.Options{Open: "{", Close: "}", Separator: ",", Multi: true}
}

// genStorage renders storage.go: the key space, the values struct and the
// service with its single-item, key-generic and batch operations.
func genStorage(m *gen.Model) *gen.File {
	f := m.NewFile(StorageFile)
	genKeys(f, m)
	genValues(f, m)
	genService(f, m)
	for _, k := range m.Keys {
		genAccessors(f, k)
	}
	genBatch(f, m)
	return f
}

func genKeys(f *gen.File, m *gen.Model) {
	f.Comment("StorageKey identifies one persisted key.")
	f.Type().Id("StorageKey").String()

	if len(m.Keys) > 0 {
		f.Comment("Storage keys, in declaration order.")
		f.Const().DefsFunc(func(g *jen.Group) {
			for _, k := range m.Keys {
				for _, line := range k.Doc {
					g.Comment(line)
				}
				g.Id(k.Const()).Id("StorageKey").Op("=").Lit(k.Name)
			}
		})
	}

	f.Var().Id("storageKeys").Op("=").Index().Id("StorageKey").CustomFunc(multi(), func(g *jen.Group) {
		for _, k := range m.Keys {
			g.Id(k.Const())
		}
	})

	f.Comment("StorageKeys returns every storage key in declaration order.")
	f.Func().Id("StorageKeys").Params().Index().Id("StorageKey").Block(
		jen.Return(jen.Append(jen.Index().Id("StorageKey").Call(jen.Nil()), jen.Id("storageKeys").Op("..."))),
	)

	f.Comment("Valid reports whether k is a declared storage key.")
	f.Func().Params(jen.Id("k").Id("StorageKey")).Id("Valid").Params().Bool().BlockFunc(func(g *jen.Group) {
		if len(m.Keys) == 0 {
			g.Return(jen.False())
			return
		}
		g.Switch(jen.Id("k")).Block(
			jen.CaseFunc(func(g *jen.Group) {
				for _, k := range m.Keys {
					g.Id(k.Const())
				}
			}).Block(jen.Return(jen.True())),
		)
		g.Return(jen.False())
	})

	f.Comment("String implements the fmt.Stringer interface.")
	f.Func().Params(jen.Id("k").Id("StorageKey")).Id("String").Params().String().Block(
		jen.Return(jen.String().Call(jen.Id("k"))),
	)
}

func genValues(f *gen.File, m *gen.Model) {
	f.Comment("StorageValues holds a subset of the storage values. A nil field is")
	f.Comment("absent: GetItems leaves it nil when nothing is stored and SetItems")
	f.Comment("skips it.")
	f.Type().Id("StorageValues").StructFunc(func(g *jen.Group) {
		for _, k := range m.Keys {
			g.Id(k.Ident).Op("*").Add(gen.TypeCode(k.Type)).Tag(map[string]string{"json": k.Name + ",omitempty"})
		}
	})
}

func genService(f *gen.File, m *gen.Model) {
	f.Comment("StorageService provides typed access to the storage keys. Every")
	f.Comment("operation is fail-soft: failures are reported by the underlying")
	f.Comment("store and turn into nil or false results.")
	f.Type().Id("StorageService").Struct(
		jen.Id("store").Op("*").Qual(gen.RuntimePkg, "Store"),
	)

	f.Comment("NewStorageService returns a StorageService over store.")
	f.Func().Id("NewStorageService").Params(jen.Id("store").Op("*").Qual(gen.RuntimePkg, "Store")).Op("*").Id("StorageService").Block(
		jen.Return(jen.Op("&").Id("StorageService").Values(jen.Dict{jen.Id("store"): jen.Id("store")})),
	)

	f.Comment("Store returns the underlying store.")
	f.Func().Params(recv).Id("Store").Params().Op("*").Qual(gen.RuntimePkg, "Store").Block(
		jen.Return(storeExpr),
	)

	f.Comment("Close releases the underlying backend.")
	f.Func().Params(recv).Id("Close").Params().Error().Block(
		jen.Return(storeExpr.Clone().Dot("Close").Call()),
	)

	f.Comment("Keys returns every storage key in declaration order.")
	f.Func().Params(recv).Id("Keys").Params().Index().Id("StorageKey").Block(
		jen.Return(jen.Id("StorageKeys").Call()),
	)

	f.Comment("Remove deletes the value stored under key.")
	f.Func().Params(recv).Id("Remove").Params(ctxParam, jen.Id("key").Id("StorageKey")).Block(
		storeExpr.Clone().Dot("Remove").Call(jen.Id("ctx"), jen.String().Call(jen.Id("key"))),
	)

	f.Comment("Has reports whether a value is stored under key.")
	f.Func().Params(recv).Id("Has").Params(ctxParam, jen.Id("key").Id("StorageKey")).Bool().Block(
		jen.Return(storeExpr.Clone().Dot("Has").Call(jen.Id("ctx"), jen.String().Call(jen.Id("key")))),
	)
}

func genAccessors(f *gen.File, k *gen.Key) {
	typ := gen.TypeCode(k.Type)

	f.Commentf("%s returns the stored %s, or nil when it is missing.", k.Getter(), k.Name)
	for _, line := range k.Doc {
		f.Comment(line)
	}
	f.Func().Params(recv).Id(k.Getter()).Params(ctxParam).Op("*").Add(typ).Block(
		jen.Return(jen.Qual(gen.RuntimePkg, "Get").Types(typ).Call(jen.Id("ctx"), storeExpr, keyString(k))),
	)

	f.Commentf("%s stores v under %s.", k.Setter(), k.Name)
	f.Func().Params(recv).Id(k.Setter()).Params(ctxParam, jen.Id("v").Add(typ)).Block(
		jen.Qual(gen.RuntimePkg, "Set").Call(jen.Id("ctx"), storeExpr, keyString(k), jen.Id("v")),
	)

	f.Commentf("%s deletes the stored %s.", k.Remover(), k.Name)
	f.Func().Params(recv).Id(k.Remover()).Params(ctxParam).Block(
		storeExpr.Clone().Dot("Remove").Call(jen.Id("ctx"), keyString(k)),
	)
}

func genBatch(f *gen.File, m *gen.Model) {
	f.Comment("GetItems returns the stored values of keys. Keys without a stored")
	f.Comment("value are left nil.")
	if len(m.Keys) == 0 {
		f.Func().Params(recv).Id("GetItems").Params(jen.Id("_").Qual("context", "Context"), jen.Id("_").Op("...").Id("StorageKey")).Id("StorageValues").Block(
			jen.Return(jen.Id("StorageValues").Values()),
		)
	} else {
		f.Func().Params(recv).Id("GetItems").Params(ctxParam, jen.Id("keys").Op("...").Id("StorageKey")).Id("StorageValues").Block(
			jen.Var().Id("v").Id("StorageValues"),
			jen.Id("texts").Op(":=").Add(storeExpr).Dot("ReadMany").Call(jen.Id("ctx"), jen.Id("storageKeyNames").Call(jen.Id("keys"))),
			jen.For(jen.List(jen.Id("_"), jen.Id("key")).Op(":=").Range().Id("keys")).Block(
				jen.List(jen.Id("text"), jen.Id("ok")).Op(":=").Id("texts").Index(jen.String().Call(jen.Id("key"))),
				jen.If(jen.Op("!").Id("ok")).Block(jen.Continue()),
				jen.Switch(jen.Id("key")).BlockFunc(func(g *jen.Group) {
					for _, k := range m.Keys {
						g.Case(jen.Id(k.Const())).Block(
							jen.Id("v").Dot(k.Ident).Op("=").Qual(gen.RuntimePkg, "Decode").Types(gen.TypeCode(k.Type)).Call(
								jen.Id("ctx"), storeExpr, jen.Qual(gen.RuntimePkg, "OpGetMany"), jen.String().Call(jen.Id("key")), jen.Id("text"),
							),
						)
					}
				}),
			),
			jen.Return(jen.Id("v")),
		)
	}

	f.Comment("SetItems stores every non-nil field of v in one batch. Nil fields")
	f.Comment("are skipped; a present value is always written.")
	f.Func().Params(recv).Id("SetItems").Params(ctxParam, jen.Id("v").Id("StorageValues")).BlockFunc(func(g *jen.Group) {
		g.Id("items").Op(":=").Make(jen.Index().Qual(gen.RuntimePkg, "Item"), jen.Lit(0), jen.Lit(len(m.Keys)))
		for _, k := range m.Keys {
			g.If(jen.Id("v").Dot(k.Ident).Op("!=").Nil()).Block(
				jen.Id("items").Op("=").Qual(gen.RuntimePkg, "AppendItem").Call(
					jen.Id("ctx"), storeExpr, jen.Id("items"), keyString(k), jen.Op("*").Id("v").Dot(k.Ident),
				),
			)
		}
		g.Add(storeExpr).Dot("WriteMany").Call(jen.Id("ctx"), jen.Id("items"))
	})

	f.Comment("RemoveItems deletes the values of keys in one batch.")
	f.Func().Params(recv).Id("RemoveItems").Params(ctxParam, jen.Id("keys").Op("...").Id("StorageKey")).Block(
		storeExpr.Clone().Dot("RemoveMany").Call(jen.Id("ctx"), jen.Id("storageKeyNames").Call(jen.Id("keys"))),
	)

	f.Comment("Clear deletes every stored value, including keys unknown to this")
	f.Comment("service.")
	f.Func().Params(recv).Id("Clear").Params(ctxParam).Block(
		storeExpr.Clone().Dot("Clear").Call(jen.Id("ctx")),
	)

	f.Func().Id("storageKeyNames").Params(jen.Id("keys").Index().Id("StorageKey")).Index().String().Block(
		jen.Id("names").Op(":=").Make(jen.Index().String(), jen.Len(jen.Id("keys"))),
		jen.For(jen.List(jen.Id("i"), jen.Id("k")).Op(":=").Range().Id("keys")).Block(
			jen.Id("names").Index(jen.Id("i")).Op("=").String().Call(jen.Id("k")),
		),
		jen.Return(jen.Id("names")),
	)
}

// genSQLStorage renders sql_storage.go.
func genSQLStorage(m *gen.Model) *gen.File {
	f := m.NewFile(SQLFile)
	f.ImportAlias(gen.SQLPkg, "sqlbackend")
	opts := jen.Id("opts").Op("...").Qual(gen.RuntimePkg, "Option")
	ret := []jen.Code{jen.Op("*").Id("StorageService"), jen.Error()}

	f.Comment("NewSQLStorage returns a StorageService backed by a key/value table of")
	f.Comment("db. The dialect is one of \"sqlite\", \"postgres\" or \"mysql\". The table")
	f.Comment("is created when it does not exist.")
	f.Func().Id("NewSQLStorage").Params(ctxParam, jen.Id("db").Op("*").Qual("database/sql", "DB"), jen.Id("dialect").String(), opts).Params(ret...).Block(
		jen.List(jen.Id("b"), jen.Err()).Op(":=").Qual(gen.SQLPkg, "OpenDB").Call(jen.Id("dialect"), jen.Id("db")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.If(jen.Err().Op(":=").Id("b").Dot("Migrate").Call(jen.Id("ctx")), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(jen.Id("NewStorageService").Call(jen.Qual(gen.RuntimePkg, "NewStore").Call(jen.Id("b"), jen.Id("opts").Op("..."))), jen.Nil()),
	)

	f.Comment("OpenSQLStorage opens the database identified by dialect and dsn and")
	f.Comment("returns a StorageService backed by it. Close the service to release")
	f.Comment("the database.")
	f.Func().Id("OpenSQLStorage").Params(ctxParam, jen.List(jen.Id("dialect"), jen.Id("dsn")).String(), opts).Params(ret...).Block(
		jen.List(jen.Id("b"), jen.Err()).Op(":=").Qual(gen.SQLPkg, "Open").Call(jen.Id("dialect"), jen.Id("dsn")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.If(jen.Err().Op(":=").Id("b").Dot("Migrate").Call(jen.Id("ctx")), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Qual("errors", "Join").Call(jen.Err(), jen.Id("b").Dot("Close").Call())),
		),
		jen.Return(jen.Id("NewStorageService").Call(jen.Qual(gen.RuntimePkg, "NewStore").Call(jen.Id("b"), jen.Id("opts").Op("..."))), jen.Nil()),
	)
	return f
}

// genFileStorage renders file_storage.go.
func genFileStorage(m *gen.Model) *gen.File {
	f := m.NewFile(FileFile)
	f.Comment("OpenFileStorage returns a StorageService persisted to the msgpack file")
	f.Comment("at path. A missing file is an empty store.")
	f.Func().Id("OpenFileStorage").Params(
		jen.Id("path").String(),
		jen.Id("opts").Op("...").Qual(gen.RuntimePkg, "Option"),
	).Params(jen.Op("*").Id("StorageService"), jen.Error()).Block(
		jen.List(jen.Id("b"), jen.Err()).Op(":=").Qual(gen.FilePkg, "Open").Call(jen.Id("path")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(jen.Id("NewStorageService").Call(jen.Qual(gen.RuntimePkg, "NewStore").Call(jen.Id("b"), jen.Id("opts").Op("..."))), jen.Nil()),
	)
	return f
}
