// Package compiler runs the accessgen pipelines: it locates or bootstraps the
// schema of a target directory, parses it, builds the model, renders the
// emitters of the pipeline and writes the generated files.
//
// A run fails fast. Every file is rendered in memory before the first write,
// so a schema error leaves previously generated files untouched:
//
//	cfg, _ := gen.NewConfig(gen.WithTarget("internal/storage"), gen.WithBackends(gen.BackendSQL))
//	report, err := compiler.Generate(ctx, cfg, compiler.PipelineStorage)
package compiler

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/accessgen/compiler/gen"
	"github.com/syssam/accessgen/compiler/gen/asset"
	"github.com/syssam/accessgen/compiler/gen/catalog"
	"github.com/syssam/accessgen/compiler/gen/storage"
	"github.com/syssam/accessgen/compiler/gen/theme"
	"github.com/syssam/accessgen/compiler/load"
	"github.com/syssam/accessgen/schema"
)

// Pipeline identifies one generation pipeline.
type Pipeline uint8

// Pipelines.
const (
	PipelineStorage Pipeline = iota + 1
	PipelineErrors
	PipelineTheme
	PipelineImages
	PipelineSVGs
)

var pipelineNames = [...]string{
	PipelineStorage: "storage",
	PipelineErrors:  "errors",
	PipelineTheme:   "theme",
	PipelineImages:  "images",
	PipelineSVGs:    "svgs",
}

// String implements the fmt.Stringer interface.
func (p Pipeline) String() string {
	if int(p) < len(pipelineNames) && pipelineNames[p] != "" {
		return pipelineNames[p]
	}
	return "pipeline(" + strconv.Itoa(int(p)) + ")"
}

// Pipelines returns every pipeline.
func Pipelines() []Pipeline {
	return []Pipeline{PipelineStorage, PipelineErrors, PipelineTheme, PipelineImages, PipelineSVGs}
}

// ParsePipeline returns the pipeline with the given name.
func ParsePipeline(name string) (Pipeline, error) {
	for _, p := range Pipelines() {
		if strings.EqualFold(name, p.String()) {
			return p, nil
		}
	}
	return 0, gen.NewConfigError("Pipeline", name, "unknown pipeline; use storage, errors, theme, images or svgs")
}

func (p Pipeline) emitters() []gen.Emitter {
	switch p {
	case PipelineStorage:
		return []gen.Emitter{storage.Emitter{}}
	case PipelineErrors:
		return []gen.Emitter{catalog.Emitter{}}
	case PipelineTheme:
		return []gen.Emitter{theme.Emitter{}}
	case PipelineImages:
		return []gen.Emitter{asset.Images}
	case PipelineSVGs:
		return []gen.Emitter{asset.SVGs}
	default:
		return nil
	}
}

// ErrStale is reported by Check when a generated file differs from what the
// schema produces.
var ErrStale = errors.New("accessgen: generated files are out of date")

// Report describes the outcome of one run.
type Report struct {
	Pipeline Pipeline
	// Schema is the schema file, or the scanned directory of asset pipelines.
	Schema string
	// Created lists the schema files bootstrapped by the run.
	Created []string
	// Written lists the generated files whose content changed.
	Written []string
	// Unchanged lists the generated files already up to date.
	Unchanged []string
	// Stale lists, for Check, the generated files that would change.
	Stale []string
}

// Generator runs pipelines over one configuration.
type Generator struct {
	cfg      *gen.Config
	log      *zap.Logger
	workers  int
	debounce time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// WithWorkers sets the number of emitters rendered in parallel.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithDebounce sets how long Watch waits for the filesystem to settle
// before regenerating.
func WithDebounce(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.debounce = d
		}
	}
}

// New returns a Generator for cfg.
func New(cfg *gen.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		return nil, gen.NewConfigError("Config", nil, "config cannot be nil")
	}
	if cfg.Target == "" {
		return nil, gen.NewConfigError("Target", nil, "missing target directory in config")
	}
	g := &Generator{
		cfg:      cfg,
		log:      zap.NewNop(),
		workers:  runtime.GOMAXPROCS(0),
		debounce: 300 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Config returns the configuration of the generator.
func (g *Generator) Config() *gen.Config { return g.cfg }

// Generate runs the pipeline and writes the generated files. Nothing is
// written unless every file rendered successfully.
func Generate(ctx context.Context, cfg *gen.Config, p Pipeline, opts ...Option) (*Report, error) {
	g, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, p)
}

// Check renders the pipeline in memory and reports, through ErrStale, the
// generated files that differ from the disk. It never writes.
func Check(ctx context.Context, cfg *gen.Config, p Pipeline, opts ...Option) (*Report, error) {
	g, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return g.Check(ctx, p)
}

// Generate runs the pipeline and writes the generated files.
func (g *Generator) Generate(ctx context.Context, p Pipeline) (*Report, error) {
	r, modules, err := g.run(ctx, p, false)
	if err != nil {
		return nil, err
	}
	for _, mod := range modules {
		ok, err := mod.UpToDate()
		if err != nil {
			return nil, wrap(p, err)
		}
		if ok {
			r.Unchanged = append(r.Unchanged, mod.Path)
			g.log.Debug("file up to date", zap.String("path", mod.Path))
			continue
		}
		if err := mod.Write(); err != nil {
			return nil, wrap(p, err)
		}
		r.Written = append(r.Written, mod.Path)
		g.log.Info("file written", zap.String("path", mod.Path), zap.Int("bytes", len(mod.Source)))
	}
	return r, nil
}

// Check renders the pipeline and compares the result with the disk. A
// schema that does not exist yet makes every output stale.
func (g *Generator) Check(ctx context.Context, p Pipeline) (*Report, error) {
	r, modules, err := g.run(ctx, p, true)
	if err != nil {
		return nil, err
	}
	r.Stale = append(r.Stale, r.Created...)
	for _, mod := range modules {
		ok, err := mod.UpToDate()
		if err != nil {
			return nil, wrap(p, err)
		}
		if ok {
			r.Unchanged = append(r.Unchanged, mod.Path)
			continue
		}
		r.Stale = append(r.Stale, mod.Path)
	}
	if len(r.Stale) > 0 {
		err := errors.Wrapf(ErrStale, "%s: %s", p, strings.Join(r.Stale, ", "))
		return r, errors.WithHint(err, "run the command again without --check")
	}
	return r, nil
}

// run loads the schema, builds the model and renders every emitter of the
// pipeline. With dry set, missing schemas are synthesized in memory only.
func (g *Generator) run(ctx context.Context, p Pipeline, dry bool) (*Report, []*gen.Module, error) {
	emitters := p.emitters()
	if emitters == nil {
		return nil, nil, gen.NewConfigError("Pipeline", p, "unknown pipeline")
	}
	if err := g.validate(p); err != nil {
		return nil, nil, wrap(p, err)
	}
	r := &Report{Pipeline: p}
	in, err := g.load(p, r, dry)
	if err != nil {
		return nil, nil, wrap(p, err)
	}
	m, err := gen.NewModel(g.cfg, in)
	if err != nil {
		var sfe *gen.SchemaFormatError
		if errors.As(err, &sfe) && sfe.File == "" {
			sfe.File = r.Schema
		}
		return nil, nil, wrap(p, err)
	}
	g.log.Debug("model built",
		zap.Stringer("pipeline", p),
		zap.String("package", m.Package),
		zap.Int("keys", len(m.Keys)),
		zap.Int("messages", len(m.Messages)),
		zap.Int("assets", len(m.Assets)),
		zap.Int("modes", len(m.Modes)),
	)
	modules, err := g.render(ctx, m, emitters)
	if err != nil {
		return nil, nil, wrap(p, err)
	}
	return r, modules, nil
}

// validate rejects configurations that cannot succeed before the
// filesystem is touched.
func (g *Generator) validate(p Pipeline) error {
	switch {
	case p == PipelineStorage && g.cfg.Backends == 0:
		return gen.NewConfigError("Backends", nil, "select at least one storage backend (--sql, --file)")
	case p == PipelineTheme && len(g.cfg.Modes) == 0:
		return gen.NewConfigError("Modes", nil, "provide at least one theme mode, e.g. --light --dark")
	case p == PipelineErrors && g.cfg.DefaultLocale == "":
		return gen.NewConfigError("DefaultLocale", nil, "locale cannot be empty")
	}
	return nil
}

func (g *Generator) load(p Pipeline, r *Report, dry bool) (gen.Input, error) {
	dir := g.cfg.Target
	opts := load.StoreOptions{Package: g.cfg.Package, Block: g.cfg.Block, DryRun: dry}
	switch p {
	case PipelineStorage, PipelineErrors:
		kind := load.KindStorage
		if p == PipelineErrors {
			kind = load.KindMessages
		}
		sf, err := load.EnsureSchema(dir, kind, opts)
		if err != nil {
			return gen.Input{}, err
		}
		r.Schema = sf.Path
		if sf.Created {
			r.Created = append(r.Created, sf.Path)
			g.log.Info("schema bootstrapped", zap.String("path", sf.Path), zap.Bool("dry_run", dry))
		}
		if kind == load.KindStorage {
			ks, err := load.ParseKeys(sf.Path, sf.Text, g.cfg.Block)
			if err != nil {
				return gen.Input{}, err
			}
			return gen.Input{Keys: ks}, nil
		}
		msgs, err := load.ParseMessages(sf.Path, sf.Text)
		if err != nil {
			return gen.Input{}, err
		}
		return gen.Input{Messages: msgs}, nil
	case PipelineTheme:
		modes, err := load.EnsureModes(dir, g.cfg.Modes, opts)
		if err != nil {
			return gen.Input{}, err
		}
		r.Schema = dir
		for _, md := range modes {
			if md.Created {
				path := filepath.Join(dir, md.File)
				r.Created = append(r.Created, path)
				g.log.Info("palette scaffolded", zap.String("path", path), zap.Bool("dry_run", dry))
			}
		}
		return gen.Input{Modes: modes}, nil
	default:
		exts := load.ImageExts
		if p == PipelineSVGs {
			exts = load.SVGExts
		}
		r.Schema = dir
		assets, err := g.scan(dir, exts, dry)
		if err != nil {
			return gen.Input{}, err
		}
		return gen.Input{Assets: assets}, nil
	}
}

// scan lists the assets of dir, creating it on a real run.
func (g *Generator) scan(dir string, exts []string, dry bool) ([]*schema.Asset, error) {
	if dry {
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			return []*schema.Asset{}, nil
		}
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, gen.NewIOError("mkdir", dir, err)
	}
	return load.ScanAssets(dir, exts)
}

// render runs the emitters in parallel. Modules keep emitter order.
func (g *Generator) render(ctx context.Context, m *gen.Model, emitters []gen.Emitter) ([]*gen.Module, error) {
	results := make([][]*gen.Module, len(emitters))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, e := range emitters {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			modules, err := gen.Render(e, m)
			if err != nil {
				return err
			}
			results[i] = modules
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	var out []*gen.Module
	for _, modules := range results {
		out = append(out, modules...)
	}
	return out, nil
}

// wrap adds the pipeline name and a user hint to a pipeline error.
func wrap(p Pipeline, err error) error {
	err = errors.Wrapf(err, "generate %s", p)
	switch {
	case gen.IsSchemaFormatError(err):
		return errors.WithHint(err, "fix the schema file and run the command again; generated files were left untouched")
	case gen.IsDuplicateKeyError(err):
		return errors.WithHint(err, "every entry needs a unique name and a unique Go identifier")
	case gen.IsConfigError(err):
		return errors.WithHint(err, "see accessgen --help for the available flags")
	case gen.IsIOError(err):
		return errors.WithHint(err, "check that the target directory is writable")
	}
	return err
}
