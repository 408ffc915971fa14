package load

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/accessgen/compiler/gen"
)

func TestEnsureSchema(t *testing.T) {
	t.Run("bootstraps a storage schema", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "internal", "storage")
		sf, err := EnsureSchema(dir, KindStorage, StoreOptions{})
		require.NoError(t, err)
		assert.True(t, sf.Created)
		assert.Equal(t, filepath.Join(dir, StorageFile), sf.Path)

		onDisk, err := os.ReadFile(sf.Path)
		require.NoError(t, err)
		assert.Equal(t, sf.Text, onDisk)

		ks, err := ParseKeys(sf.Path, sf.Text, "")
		require.NoError(t, err)
		assert.Equal(t, "storage", ks.Package)
		require.Len(t, ks.Keys, 2)
		assert.Equal(t, "UserName", ks.Keys[0].Name)
		assert.Equal(t, "string", ks.Keys[0].Type.String())
		assert.Equal(t, "RefetchIntervalConfig", ks.Keys[1].Name)
		assert.Equal(t, "int", ks.Keys[1].Type.String())
	})

	t.Run("honors package and block options", func(t *testing.T) {
		dir := t.TempDir()
		sf, err := EnsureSchema(dir, KindStorage, StoreOptions{Package: "prefs", Block: "Keys"})
		require.NoError(t, err)
		ks, err := ParseKeys(sf.Path, sf.Text, "Keys")
		require.NoError(t, err)
		assert.Equal(t, "prefs", ks.Package)
		assert.Len(t, ks.Keys, 2)
	})

	t.Run("bootstraps a message catalog", func(t *testing.T) {
		dir := t.TempDir()
		sf, err := EnsureSchema(dir, KindMessages, StoreOptions{})
		require.NoError(t, err)
		assert.True(t, sf.Created)
		assert.True(t, sf.IsJSON())
		assert.Contains(t, string(sf.Text), "    \"UNKNOWN_ERROR\": {\n        \"en\": \"Unknown error occurred\",")
	})

	t.Run("returns an existing schema unchanged", func(t *testing.T) {
		dir := t.TempDir()
		custom := []byte("package custom\n\ntype Storage struct {\n\tToken string\n}\n")
		require.NoError(t, os.WriteFile(filepath.Join(dir, StorageFile), custom, 0o644))

		sf, err := EnsureSchema(dir, KindStorage, StoreOptions{})
		require.NoError(t, err)
		assert.False(t, sf.Created)
		assert.Equal(t, custom, sf.Text)
	})

	t.Run("prefers json over yaml catalogs", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "errors.yaml"), []byte("A:\n  en: a\n"), 0o644))
		sf, err := EnsureSchema(dir, KindMessages, StoreOptions{})
		require.NoError(t, err)
		assert.False(t, sf.Created)
		assert.Equal(t, filepath.Join(dir, "errors.yaml"), sf.Path)
		assert.False(t, sf.IsJSON())

		require.NoError(t, os.WriteFile(filepath.Join(dir, MessagesFile), []byte(`{"B": {"en": "b"}}`), 0o644))
		sf, err = EnsureSchema(dir, KindMessages, StoreOptions{})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, MessagesFile), sf.Path)
	})

	t.Run("is idempotent", func(t *testing.T) {
		dir := t.TempDir()
		first, err := EnsureSchema(dir, KindMessages, StoreOptions{})
		require.NoError(t, err)
		second, err := EnsureSchema(dir, KindMessages, StoreOptions{})
		require.NoError(t, err)
		assert.False(t, second.Created)
		assert.Equal(t, first.Text, second.Text)
	})

	t.Run("reports io errors", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("file-as-directory semantics differ on windows")
		}
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		_, err := EnsureSchema(filepath.Join(file, "sub"), KindStorage, StoreOptions{})
		require.Error(t, err)
		assert.True(t, gen.IsIOError(err))
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "storage")
		sf, err := EnsureSchema(dir, KindStorage, StoreOptions{DryRun: true})
		require.NoError(t, err)
		assert.True(t, sf.Created)
		assert.Contains(t, string(sf.Text), "type Storage struct")
		assert.NoDirExists(t, dir)
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		_, err := EnsureSchema(t.TempDir(), Kind(42), StoreOptions{})
		assert.True(t, gen.IsConfigError(err))
	})
}
