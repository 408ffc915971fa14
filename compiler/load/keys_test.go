package load

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/accessgen/compiler/gen"
	"github.com/syssam/accessgen/schema"
)

const keysSrc = `package storage

import (
	"time"

	str "strings"
)

// Storage declares keys.
type Storage struct {
	// UserName is the signed-in user.
	UserName string
	Retry, Limit int ` + "`json:\"retry\"`" + `
	LastSeen time.Time // trailing comment
	Builder  *str.Builder
	Profile  struct {
		Name string
		Age  int
	}
	Tags     []string
	Matrix   [3]float64
	Settings map[string]any
	Extra    interface{}
}

func (Storage) Ignored() {
	type Storage struct{ Nope int }
}
`

func TestParseKeys(t *testing.T) {
	t.Run("parses entries in declaration order", func(t *testing.T) {
		ks, err := ParseKeys("keys.go", []byte(keysSrc), "")
		require.NoError(t, err)
		assert.Equal(t, "storage", ks.Package)
		assert.Equal(t, "Storage", ks.Block)
		var names []string
		for _, k := range ks.Keys {
			names = append(names, k.Name)
		}
		assert.Equal(t, []string{"UserName", "Retry", "Limit", "LastSeen", "Builder", "Profile", "Tags", "Matrix", "Settings", "Extra"}, names)
	})

	t.Run("parses type expressions", func(t *testing.T) {
		ks, err := ParseKeys("keys.go", []byte(keysSrc), "Storage")
		require.NoError(t, err)
		types := make(map[string]string)
		for _, k := range ks.Keys {
			types[k.Name] = k.Type.String()
		}
		assert.Equal(t, "string", types["UserName"])
		assert.Equal(t, "int", types["Retry"])
		assert.Equal(t, "int", types["Limit"])
		assert.Equal(t, "time.Time", types["LastSeen"])
		assert.Equal(t, "*str.Builder", types["Builder"])
		assert.Equal(t, "struct{Name string; Age int}", types["Profile"])
		assert.Equal(t, "[]string", types["Tags"])
		assert.Equal(t, "[3]float64", types["Matrix"])
		assert.Equal(t, "map[string]any", types["Settings"])
		assert.Equal(t, "any", types["Extra"])
	})

	t.Run("resolves qualifiers against imports", func(t *testing.T) {
		ks, err := ParseKeys("keys.go", []byte(keysSrc), "")
		require.NoError(t, err)
		assert.Equal(t, schema.Qualified("time", "time", "Time"), ks.Keys[3].Type)
		assert.Equal(t, "strings", ks.Keys[4].Type.Elem.PkgPath)
		assert.Equal(t, []string{"time", "strings"}, []string{ks.Imports[0].Path, ks.Imports[1].Path})
	})

	t.Run("keeps leading doc comments only", func(t *testing.T) {
		ks, err := ParseKeys("keys.go", []byte(keysSrc), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"UserName is the signed-in user."}, ks.Keys[0].Doc)
		assert.Empty(t, ks.Keys[1].Doc)
		assert.Empty(t, ks.Keys[4].Doc, "trailing comment must not become the next key doc")
	})

	t.Run("records positions", func(t *testing.T) {
		ks, err := ParseKeys("keys.go", []byte(keysSrc), "")
		require.NoError(t, err)
		assert.Equal(t, schema.Pos{Line: 12, Column: 2}, ks.Keys[0].Pos)
	})

	t.Run("keeps nested field tags", func(t *testing.T) {
		src := "package p\ntype Storage struct {\n\tProfile struct {\n\t\tname string\n\t\tAge  int `json:\"age\"`\n\t}\n}\n"
		ks, err := ParseKeys("keys.go", []byte(src), "")
		require.NoError(t, err)
		fields := ks.Keys[0].Type.Fields
		require.Len(t, fields, 2)
		assert.Equal(t, "name", fields[0].Name)
		assert.Empty(t, fields[0].Tag)
		assert.Equal(t, `json:"age"`, fields[1].Tag)
		assert.Equal(t, "struct{name string; Age int `json:\"age\"`}", ks.Keys[0].Type.String())
	})

	t.Run("finds the block inside a type group", func(t *testing.T) {
		src := "package p\n\ntype (\n\tOther int\n\tKV struct {\n\t\tA bool\n\t}\n)\n"
		ks, err := ParseKeys("keys.go", []byte(src), "KV")
		require.NoError(t, err)
		require.Len(t, ks.Keys, 1)
		assert.Equal(t, "A", ks.Keys[0].Name)
		assert.Equal(t, "bool", ks.Keys[0].Type.String())
	})

	t.Run("accepts an empty block", func(t *testing.T) {
		ks, err := ParseKeys("keys.go", []byte("package p\ntype Storage struct{}\n"), "")
		require.NoError(t, err)
		assert.Empty(t, ks.Keys)
	})

	t.Run("skips unrelated declarations", func(t *testing.T) {
		src := `package p

var defaults = map[string]int{"a": 1}

const x = 1

type Config struct {
	Endpoint string
}

type Storage struct {
	Config Config
}
`
		ks, err := ParseKeys("keys.go", []byte(src), "")
		require.NoError(t, err)
		require.Len(t, ks.Keys, 1)
		assert.Equal(t, "Config", ks.Keys[0].Type.String())
	})
}

func TestParseKeysErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		cause error
		line  int
	}{
		{name: "missing block", src: "package p\ntype Other struct{ A int }\n", cause: gen.ErrBlockNotFound},
		{name: "missing package clause", src: "type Storage struct{}\n", cause: gen.ErrMalformedEntry, line: 1},
		{name: "embedded field", src: "package p\ntype Storage struct {\n\tOther\n}\n", cause: gen.ErrMalformedEntry, line: 3},
		{name: "func value", src: "package p\ntype Storage struct {\n\tF func()\n}\n", cause: gen.ErrMalformedEntry, line: 3},
		{name: "unknown qualifier", src: "package p\ntype Storage struct {\n\tT time.Time\n}\n", cause: gen.ErrMalformedEntry, line: 3},
		{name: "not a struct", src: "package p\ntype Storage map[string]int\n", cause: gen.ErrMalformedEntry, line: 2},
		{name: "unterminated", src: "package p\ntype Storage struct {\n\tA int\n", cause: gen.ErrMalformedEntry},
		{name: "two fields on one line", src: "package p\ntype Storage struct {\n\tA int B int\n}\n", cause: gen.ErrMalformedEntry, line: 3},
		{name: "illegal character", src: "package p\ntype Storage struct {\n\tA # int\n}\n", cause: gen.ErrMalformedEntry, line: 3},
		{name: "blank nested field", src: "package p\ntype Storage struct {\n\tP struct {\n\t\tA int\n\t\t_ int\n\t}\n}\n", cause: gen.ErrMalformedEntry, line: 5},
		{name: "nested fields stored alike", src: "package p\ntype Storage struct {\n\tP struct{ name string; Name string }\n}\n", cause: gen.ErrMalformedEntry, line: 3},
		{name: "bad tag", src: "package p\ntype Storage struct {\n\tP struct{ A int \"x }\n}\n", cause: gen.ErrMalformedEntry, line: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKeys("keys.go", []byte(tt.src), "")
			require.Error(t, err)
			assert.True(t, gen.IsSchemaFormatError(err))
			assert.True(t, errors.Is(err, tt.cause))
			var sfe *gen.SchemaFormatError
			require.True(t, errors.As(err, &sfe))
			assert.Equal(t, "keys.go", sfe.File)
			if tt.line > 0 {
				assert.Equal(t, tt.line, sfe.Line)
			}
		})
	}
}
