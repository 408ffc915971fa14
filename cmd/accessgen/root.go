package main

import (
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/syssam/accessgen/compiler"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	// exitStale reports a --check run that found out-of-date files.
	exitStale = 2
)

// app carries the output streams of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
}

// Execute runs the accessgen command line and returns the exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(expandModeFlags(root, args))
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, compiler.ErrStale):
		a.printError(err)
		return exitStale
	case strings.HasPrefix(err.Error(), "unknown command"):
		a.printError(err)
		_ = root.Usage()
		return exitError
	default:
		a.printError(err)
		return exitError
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "accessgen",
		Short: "Generate typed Go accessors from declarative schemas",
		Long: `accessgen turns small declarative schemas into typed Go packages.

Every command works on one directory (--dir). The schema lives next to the
generated files and is created with illustrative defaults when missing. It is
never overwritten; generated files always are.

A leading "@" in --dir stands for the project root (the working directory).
Settings are also read from accessgen.yaml (or .toml, .json) and from
ACCESSGEN_* environment variables; flags take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.String("dir", ".", "target directory (@ = project root)")
	pf.String("package", "", "package name of generated files (default: from schema or directory)")
	pf.String("header", "", "header comment of generated files")
	pf.String("config", "", "config file (default: ./accessgen.yaml)")
	pf.CountP("verbose", "v", "increase log verbosity (-v, -vv)")
	pf.Bool("json-logs", false, "write logs as JSON")
	pf.Bool("check", false, "report out-of-date files without writing")
	pf.Bool("watch", false, "regenerate whenever the schema changes")
	root.MarkFlagsMutuallyExclusive("check", "watch")

	root.AddCommand(
		a.storageCmd(),
		a.errorsCmd(),
		a.themeCmd(),
		a.assetCmd(compiler.PipelineImages, "generate-images", "gen:images", "Generate an embedded index of image files (png, jpg, gif, webp)"),
		a.assetCmd(compiler.PipelineSVGs, "generate-svgs", "gen:svgs", "Generate an embedded index of SVG files"),
	)
	return root
}

func (a *app) storageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate-storage",
		Aliases: []string{"gen:storage"},
		Short:   "Generate a typed storage service from keys.go",
		Long: `Generate a typed storage service from the Storage struct of keys.go.

At least one backend must be selected:
  --sql   database/sql key/value table (sqlite, postgres, mysql)
  --file  single msgpack file`,
		Example: "  accessgen generate-storage --dir=@/internal/storage --sql --file",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, compiler.PipelineStorage)
		},
	}
	cmd.Flags().Bool("sql", false, "generate the SQL backed constructors")
	cmd.Flags().Bool("file", false, "generate the file backed constructor")
	cmd.Flags().String("block", "Storage", "name of the struct declaring the keys")
	return cmd
}

func (a *app) errorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate-errors",
		Aliases: []string{"gen:errors"},
		Short:   "Generate a localized error catalog from errors.json",
		Example: "  accessgen generate-errors --dir=@/internal/errs --locale=vi",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, compiler.PipelineErrors)
		},
	}
	cmd.Flags().String("locale", "en", "locale selected by NewErrorService(\"\")")
	return cmd
}

func (a *app) themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate-theme",
		Aliases: []string{"gen:theme"},
		Short:   "Generate a theme palette provider",
		Long: `Generate a theme palette provider. Every mode gets a hand-edited
<mode>.go palette file, scaffolded once; theme.go is regenerated.

Modes are given as flags of their own (--light --dark) or with --mode.
The first mode is the default one.`,
		Example: "  accessgen generate-theme --dir=@/ui/theme --light --dark",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, compiler.PipelineTheme)
		},
	}
	cmd.Flags().StringSlice("mode", nil, "theme modes, the first one being the default")
	return cmd
}

func (a *app) assetCmd(p compiler.Pipeline, use, alias, short string) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Aliases: []string{alias},
		Short:   short,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, p)
		},
	}
}

// expandModeFlags rewrites the free-form mode flags of generate-theme
// (--light) into --mode=light. Other commands are left alone, so unknown
// flags still fail there.
func expandModeFlags(root *cobra.Command, args []string) []string {
	cmd, _, err := root.Find(args)
	if err != nil || cmd.Name() != "generate-theme" {
		return args
	}
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		name, ok := strings.CutPrefix(arg, "--")
		if !ok || name == "" || name == "help" || strings.Contains(name, "=") ||
			cmd.Flags().Lookup(name) != nil || cmd.InheritedFlags().Lookup(name) != nil {
			out = append(out, arg)
			continue
		}
		out = append(out, "--mode="+name)
	}
	return out
}

// run executes pipeline p with the settings of cmd.
func (a *app) run(cmd *cobra.Command, p compiler.Pipeline) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log := newLogger(a.stderr, s.Verbose, s.JSONLogs)
	defer func() { _ = log.Sync() }()

	cfg, err := s.genConfig(p)
	if err != nil {
		return errors.WithHint(err, "see accessgen "+cmd.Name()+" --help")
	}
	g, err := compiler.New(cfg, compiler.WithLogger(log))
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	switch {
	case s.Check:
		r, err := g.Check(ctx, p)
		if r != nil && err == nil {
			a.printReport(r, false)
		}
		return err
	case s.Watch:
		a.info("watching %s (Ctrl+C to stop)", cfg.Target)
		return g.Watch(ctx, p, func(r *compiler.Report, err error) {
			if err != nil {
				a.printError(err)
				return
			}
			a.printReport(r, true)
		})
	default:
		r, err := g.Generate(ctx, p)
		if err != nil {
			return err
		}
		a.printReport(r, true)
		return nil
	}
}

// newLogger mirrors the verbosity convention of the CLI: warnings by
// default, -v for info, -vv for debug.
func newLogger(w io.Writer, verbosity int, json bool) *zap.Logger {
	level := zapcore.WarnLevel
	switch {
	case verbosity >= 2:
		level = zapcore.DebugLevel
	case verbosity == 1:
		level = zapcore.InfoLevel
	}
	var enc zapcore.Encoder
	if json {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}
