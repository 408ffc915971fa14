package asset

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/accessgen/compiler/gen"
	"github.com/syssam/accessgen/schema"
)

func newModel(t *testing.T, files ...string) *gen.Model {
	t.Helper()
	cfg, err := gen.NewConfig(gen.WithTarget("assets/images"))
	require.NoError(t, err)
	in := gen.Input{Assets: []*schema.Asset{}}
	for _, name := range files {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		in.Assets = append(in.Assets, &schema.Asset{Name: stem, File: name})
	}
	m, err := gen.NewModel(cfg, in)
	require.NoError(t, err)
	return m
}

func TestImages(t *testing.T) {
	files, err := Images.Emit(newModel(t, "arrow-left.png", "logo.jpg"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "images.go", files[0].Name)
	assert.Equal(t, "images", Images.Name())

	code := files[0].GoString()
	assert.Contains(t, code, "package images")
	assert.Contains(t, code, "//go:embed arrow-left.png logo.jpg\nvar imageFS embed.FS")
	assert.Contains(t, code, "type Image string")
	assert.Contains(t, code, `ImageArrowLeft Image = "arrow-left.png"`)
	assert.Contains(t, code, `ImageLogo      Image = "logo.jpg"`)
	assert.Contains(t, code, "func Images() []Image")
	assert.Contains(t, code, "func ImageFS() fs.FS")
	assert.Contains(t, code, "func (a Image) Bytes() []byte")
	assert.Contains(t, code, `slog.Error("images: read embedded file", "file", string(a), "error", err)`)
}

func TestSVGs(t *testing.T) {
	files, err := SVGs.Emit(newModel(t, "check mark.svg"))
	require.NoError(t, err)
	assert.Equal(t, "svgs.go", SVGs.File())

	code := files[0].GoString()
	assert.Contains(t, code, `//go:embed "check mark.svg"`)
	assert.Contains(t, code, `SVGCheckMark SVG = "check mark.svg"`)
	assert.Contains(t, code, "func SVGs() []SVG")
	assert.Contains(t, code, "svgFS.ReadFile(string(a))")
}

func TestEmpty(t *testing.T) {
	files, err := Images.Emit(newModel(t))
	require.NoError(t, err)
	code := files[0].GoString()
	assert.NotContains(t, code, "go:embed")
	assert.Contains(t, code, "var imageFS embed.FS")
	assert.NotContains(t, code, "const (")
}
