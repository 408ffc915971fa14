package compiler

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/syssam/accessgen/compiler/gen"
	"github.com/syssam/accessgen/compiler/load"
)

// Watch is like Generate, but keeps running: it regenerates every time the
// schema files of the pipeline change, until ctx is done.
func Watch(ctx context.Context, cfg *gen.Config, p Pipeline, fn func(*Report, error), opts ...Option) error {
	g, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	return g.Watch(ctx, p, fn)
}

// Watch runs the pipeline once, then again after every change of its schema
// files. Every run is reported to fn, failed ones included, except a first
// run failing for a reason other than the schema, which is returned. Changes
// closer than the debounce period are coalesced into one run. Watch returns
// nil when ctx is canceled.
func (g *Generator) Watch(ctx context.Context, p Pipeline, fn func(*Report, error)) error {
	if fn == nil {
		fn = func(*Report, error) {}
	}
	r, err := g.Generate(ctx, p)
	if err != nil && !gen.IsSchemaFormatError(err) && !gen.IsDuplicateKeyError(err) {
		return err
	}
	fn(r, err)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create fsnotify watcher")
	}
	defer w.Close()
	// Schema files are replaced by rename, so the directory is watched.
	if err := w.Add(g.cfg.Target); err != nil {
		return errors.Wrapf(err, "watch %s", g.cfg.Target)
	}
	g.log.Info("watching for schema changes", zap.Stringer("pipeline", p), zap.String("dir", g.cfg.Target))

	timer := time.NewTimer(g.debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if !g.watched(p, filepath.Base(event.Name)) {
				continue
			}
			g.log.Debug("schema changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(g.debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			g.log.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			r, err := g.Generate(ctx, p)
			if err != nil {
				g.log.Error("regeneration failed", zap.Error(err))
			}
			fn(r, err)
		}
	}
}

// watched reports whether a change of the named file in the target
// directory affects the pipeline. Generated files are never watched.
func (g *Generator) watched(p Pipeline, name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch p {
	case PipelineStorage:
		return slices.Contains(load.SchemaFiles(load.KindStorage), name)
	case PipelineErrors:
		return slices.Contains(load.SchemaFiles(load.KindMessages), name)
	case PipelineTheme:
		return slices.Contains(g.cfg.Modes, strings.TrimSuffix(name, ".go")) && filepath.Ext(name) == ".go"
	case PipelineImages:
		return hasExt(load.ImageExts, name)
	case PipelineSVGs:
		return hasExt(load.SVGExts, name)
	default:
		return false
	}
}

func hasExt(exts []string, name string) bool {
	ext := filepath.Ext(name)
	return slices.ContainsFunc(exts, func(e string) bool { return strings.EqualFold(e, ext) })
}
