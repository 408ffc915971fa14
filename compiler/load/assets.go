package load

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/syssam/accessgen/compiler/gen"
	"github.com/syssam/accessgen/schema"
)

// File extensions collected by the asset pipelines.
var (
	ImageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
	SVGExts   = []string{".svg"}
)

// unembeddable holds the characters that go:embed reads as glob syntax or
// refuses in file names.
const unembeddable = "*?[]\\\"'`<>|:"

// ScanAssets lists the files of dir whose extension is one of exts. The scan
// is not recursive and hidden files are ignored. Results are sorted by file
// name; the asset name is the file name without its extension. A name that
// go:embed cannot match literally is a SchemaFormatError.
func ScanAssets(dir string, exts []string) ([]*schema.Asset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, gen.NewIOError("read", dir, err)
	}
	assets := make([]*schema.Asset, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		ext := filepath.Ext(name)
		if !hasExt(exts, ext) {
			continue
		}
		if strings.ContainsAny(name, unembeddable) {
			return nil, gen.NewSchemaFormatError(filepath.Join(dir, name),
				fmt.Sprintf("asset file name cannot contain any of %s; rename it", unembeddable), gen.ErrMalformedEntry)
		}
		assets = append(assets, &schema.Asset{Name: strings.TrimSuffix(name, ext), File: name})
	}
	return assets, nil
}

func hasExt(exts []string, ext string) bool {
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
