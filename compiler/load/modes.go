package load

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/syssam/accessgen/compiler/gen"
	"github.com/syssam/accessgen/compiler/gen/theme"
	"github.com/syssam/accessgen/schema"
)

var paletteTmpl = template.Must(template.New("palette").Parse(`package {{ .Package }}

// {{ .Var }} holds the colors of the {{ printf "%q" .Mode }} theme mode.
// Adjust the values as needed; accessgen never overwrites this file.
var {{ .Var }} = Palette{
{{- range .Colors }}
	{{ .Name }}: {{ printf "%q" .Hex }},
{{- end }}
}
`))

// EnsureModes makes sure every theme mode has its palette file in dir,
// scaffolding missing ones with the default colors. Existing files are
// treated as hand-edited schemas and left untouched. Modes are returned in
// the order given. Only opts.Package and opts.DryRun are used.
func EnsureModes(dir string, modes []string, opts StoreOptions) ([]*schema.Mode, error) {
	if len(modes) == 0 {
		return nil, gen.NewConfigError("Modes", nil, "at least one theme mode is required")
	}
	for _, name := range modes {
		if !gen.IsIdentifier(name) {
			return nil, gen.NewConfigError("Modes", name, "theme mode must be a Go identifier")
		}
		// On case-insensitive filesystems Theme.go is theme.go too.
		if strings.EqualFold(name+".go", theme.ThemeFile) {
			return nil, gen.NewConfigError("Modes", name, "theme mode collides with the generated "+theme.ThemeFile)
		}
	}
	if !opts.DryRun {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, gen.NewIOError("mkdir", dir, err)
		}
	}
	pkg := opts.Package
	if pkg == "" {
		pkg = gen.PackageName(dir)
	}
	out := make([]*schema.Mode, 0, len(modes))
	for _, name := range modes {
		file := name + ".go"
		path := filepath.Join(dir, file)
		_, err := os.Stat(path)
		switch {
		case err == nil:
			out = append(out, &schema.Mode{Name: name, File: file})
			continue
		case !errors.Is(err, fs.ErrNotExist):
			return nil, gen.NewIOError("stat", path, err)
		}
		text, err := scaffoldPalette(path, pkg, name)
		if err != nil {
			return nil, err
		}
		if opts.DryRun {
			out = append(out, &schema.Mode{Name: name, File: file, Created: true})
			continue
		}
		if err := gen.WriteFile(path, text); err != nil {
			return nil, err
		}
		out = append(out, &schema.Mode{Name: name, File: file, Created: true})
	}
	return out, nil
}

func scaffoldPalette(path, pkg, mode string) ([]byte, error) {
	var buf bytes.Buffer
	err := paletteTmpl.Execute(&buf, struct {
		Package, Mode, Var string
		Colors             []schema.Color
	}{pkg, mode, schema.PaletteVar(mode), schema.DefaultPalette})
	if err != nil {
		return nil, gen.NewGenerationError("theme", path, "execute palette template", err)
	}
	out, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		return nil, gen.NewGenerationError("theme", path, "format palette", err)
	}
	return out, nil
}
