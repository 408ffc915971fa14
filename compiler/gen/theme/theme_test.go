package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/accessgen/compiler/gen"
	"github.com/syssam/accessgen/schema"
)

func newModel(t *testing.T, modes ...string) *gen.Model {
	t.Helper()
	cfg, err := gen.NewConfig(gen.WithTarget("ui/theme"), gen.WithModes(modes...))
	require.NoError(t, err)
	in := gen.Input{Modes: []*schema.Mode{}}
	for _, md := range modes {
		in.Modes = append(in.Modes, &schema.Mode{Name: md, File: md + ".go"})
	}
	m, err := gen.NewModel(cfg, in)
	require.NoError(t, err)
	return m
}

func TestEmit(t *testing.T) {
	files, err := Emitter{}.Emit(newModel(t, "light", "dark"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, ThemeFile, files[0].Name)

	_, err = Emitter{}.Emit(newModel(t))
	require.Error(t, err)
	assert.True(t, gen.IsConfigError(err))
}

func TestGenTheme(t *testing.T) {
	code := genTheme(newModel(t, "light", "dark")).GoString()

	t.Run("palette", func(t *testing.T) {
		assert.Contains(t, code, "package theme")
		assert.Contains(t, code, "type Palette struct")
		for _, c := range schema.DefaultPalette {
			assert.Contains(t, code, c.Name+" ")
		}
	})

	t.Run("modes", func(t *testing.T) {
		assert.Contains(t, code, "type Mode string")
		assert.Contains(t, code, `ModeLight Mode = "light"`)
		assert.Contains(t, code, `ModeDark  Mode = "dark"`)
		assert.Contains(t, code, "const DefaultMode = ModeLight")
		assert.Contains(t, code, "var Palettes = map[Mode]Palette{")
		assert.Contains(t, code, "ModeLight: lightPalette,")
		assert.Contains(t, code, "ModeDark:  darkPalette,")
		assert.Contains(t, code, "return []Mode{ModeLight, ModeDark}")
	})

	t.Run("provider", func(t *testing.T) {
		assert.Contains(t, code, "type Provider struct")
		assert.Contains(t, code, "func NewProvider(initial Mode) *Provider")
		assert.Contains(t, code, "func (p *Provider) Mode() Mode")
		assert.Contains(t, code, "func (p *Provider) SetMode(md Mode) error")
		assert.Contains(t, code, `fmt.Errorf("theme: unknown mode %q", md)`)
		assert.Contains(t, code, "func (p *Provider) Colors() Palette")
		assert.Contains(t, code, "func (p *Provider) OnChange(fn func(Mode))")
		assert.Contains(t, code, "slices.Clone(p.listeners)")
	})
}

func TestGenTheme_SingleMode(t *testing.T) {
	code := genTheme(newModel(t, "highContrast")).GoString()
	assert.Contains(t, code, `ModeHighContrast Mode = "highContrast"`)
	assert.Contains(t, code, "ModeHighContrast: highContrastPalette,")
	assert.Contains(t, code, "const DefaultMode = ModeHighContrast")
}
