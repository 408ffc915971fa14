package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/accessgen/schema"
)

func testConfig(t *testing.T, opts ...Option) *Config {
	t.Helper()
	c, err := NewConfig(append([]Option{WithTarget("/tmp/project/storage")}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewModel_Keys(t *testing.T) {
	ks := &schema.KeySchema{
		Package: "prefs",
		Keys: []*schema.Key{
			{Name: "userName", Type: schema.Ident("string"), Doc: []string{"userName is the display name."}},
			{Name: "LastSync", Type: schema.Qualified("time", "time", "Time")},
		},
	}
	m, err := NewModel(testConfig(t), Input{Keys: ks})
	require.NoError(t, err)

	assert.Equal(t, "prefs", m.Package)
	require.Len(t, m.Keys, 2)
	k := m.Keys[0]
	assert.Equal(t, "userName", k.Name)
	assert.Equal(t, "UserName", k.Ident)
	assert.Equal(t, "StorageKeyUserName", k.Const())
	assert.Equal(t, "GetUserName", k.Getter())
	assert.Equal(t, "SetUserName", k.Setter())
	assert.Equal(t, "RemoveUserName", k.Remover())
	assert.Equal(t, []string{"userName is the display name."}, k.Doc)
	assert.Equal(t, "LastSync", m.Keys[1].Ident)
	assert.Nil(t, m.Messages)
	assert.Nil(t, m.Modes)
}

func TestNewModel_DuplicateKeys(t *testing.T) {
	t.Run("same name", func(t *testing.T) {
		ks := &schema.KeySchema{Keys: []*schema.Key{
			{Name: "token", Type: schema.Ident("string")},
			{Name: "token", Type: schema.Ident("int")},
		}}
		_, err := NewModel(testConfig(t), Input{Keys: ks})
		require.Error(t, err)
		var dup *DuplicateKeyError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "key", dup.Kind)
		assert.Equal(t, "token", dup.Name)
	})

	t.Run("same identifier", func(t *testing.T) {
		ks := &schema.KeySchema{Keys: []*schema.Key{
			{Name: "userName", Type: schema.Ident("string")},
			{Name: "UserName", Type: schema.Ident("string")},
		}}
		_, err := NewModel(testConfig(t), Input{Keys: ks})
		var dup *DuplicateKeyError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "UserName", dup.Name)
		assert.Equal(t, "userName", dup.Other)
	})

	t.Run("accessor clash", func(t *testing.T) {
		ks := &schema.KeySchema{Keys: []*schema.Key{
			{Name: "Items", Type: schema.Ident("string"), Pos: schema.Pos{Line: 4, Column: 2}},
		}}
		_, err := NewModel(testConfig(t), Input{Keys: ks})
		var sfe *SchemaFormatError
		require.True(t, errors.As(err, &sfe))
		assert.Equal(t, 4, sfe.Line)
		assert.True(t, errors.Is(err, ErrMalformedEntry))
	})
}

func TestNewModel_Package(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		config  string
		want    string
		wantErr bool
	}{
		{name: "from schema", schema: "prefs", want: "prefs"},
		{name: "from config", config: "kv", want: "kv"},
		{name: "agreeing", schema: "kv", config: "kv", want: "kv"},
		{name: "from target", want: "storage"},
		{name: "conflict", schema: "prefs", config: "kv", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewModel(testConfig(t, WithPackage(tt.config)), Input{Keys: &schema.KeySchema{Package: tt.schema}})
			if tt.wantErr {
				assert.True(t, IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Package)
		})
	}
}

func TestNewModel_Messages(t *testing.T) {
	msgs := []*schema.Message{
		{Code: "NETWORK_ERROR", Translations: []schema.Translation{{Locale: "en", Text: "Network error"}, {Locale: "vi", Text: "Lỗi mạng"}}},
		{Code: "timeout", Translations: []schema.Translation{{Locale: "fr", Text: "Délai dépassé"}, {Locale: "en", Text: "Timed out"}}},
	}
	m, err := NewModel(testConfig(t), Input{Messages: msgs})
	require.NoError(t, err)
	require.Len(t, m.Messages, 2)
	assert.Equal(t, "ErrorCodeNetworkError", m.Messages[0].Const())
	assert.Equal(t, "ErrorCodeTimeout", m.Messages[1].Const())
	assert.Equal(t, []string{"en", "vi", "fr"}, m.Locales)

	t.Run("collision", func(t *testing.T) {
		_, err := NewModel(testConfig(t), Input{Messages: []*schema.Message{
			{Code: "NETWORK_ERROR", Translations: []schema.Translation{{Locale: "en", Text: "a"}}},
			{Code: "network-error", Translations: []schema.Translation{{Locale: "en", Text: "b"}}},
		}})
		assert.True(t, IsDuplicateKeyError(err))
	})

	t.Run("no translations", func(t *testing.T) {
		_, err := NewModel(testConfig(t), Input{Messages: []*schema.Message{{Code: "EMPTY", Pos: schema.Pos{Line: 2, Column: 3}}}})
		assert.True(t, errors.Is(err, ErrMalformedEntry))
	})

	t.Run("no identifier form", func(t *testing.T) {
		_, err := NewModel(testConfig(t), Input{Messages: []*schema.Message{
			{Code: "---", Translations: []schema.Translation{{Locale: "en", Text: "a"}}},
		}})
		assert.True(t, IsSchemaFormatError(err))
	})
}

func TestNewModel_AssetsAndModes(t *testing.T) {
	m, err := NewModel(testConfig(t), Input{
		Assets: []*schema.Asset{{Name: "arrow-left", File: "arrow-left.svg"}, {Name: "logo", File: "logo.png"}},
		Modes:  []*schema.Mode{{Name: "light", File: "light.go"}, {Name: "dark", File: "dark.go"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ArrowLeft", m.Assets[0].Ident)
	assert.Equal(t, "logo.png", m.Assets[1].File)
	assert.Equal(t, "Light", m.Modes[0].Ident)
	assert.Equal(t, "dark.go", m.Modes[1].File)

	_, err = NewModel(testConfig(t), Input{Assets: []*schema.Asset{
		{Name: "arrow-left", File: "arrow-left.svg"},
		{Name: "arrow_left", File: "arrow_left.svg"},
	}})
	assert.True(t, IsDuplicateKeyError(err))

	_, err = NewModel(testConfig(t), Input{Modes: []*schema.Mode{{Name: "dark"}, {Name: "dark"}}})
	assert.True(t, IsDuplicateKeyError(err))
}

func TestNewModel_NilConfig(t *testing.T) {
	_, err := NewModel(nil, Input{})
	assert.True(t, IsConfigError(err))
}
