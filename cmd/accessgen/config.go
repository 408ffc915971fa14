package main

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syssam/accessgen/compiler"
	"github.com/syssam/accessgen/compiler/gen"
)

// envPrefix prefixes the environment variables read by accessgen
// (e.g. ACCESSGEN_DIR, ACCESSGEN_STORAGE_BLOCK).
const envPrefix = "ACCESSGEN"

// settings is the merged view of flags, environment and config file.
// Flags win over the environment, which wins over the file.
type settings struct {
	Dir      string `mapstructure:"dir"`
	Package  string `mapstructure:"package"`
	Header   string `mapstructure:"header"`
	Verbose  int    `mapstructure:"verbose"`
	JSONLogs bool   `mapstructure:"json_logs"`
	Check    bool   `mapstructure:"check"`
	Watch    bool   `mapstructure:"watch"`
	Storage  struct {
		Block string `mapstructure:"block"`
		SQL   bool   `mapstructure:"sql"`
		File  bool   `mapstructure:"file"`
	} `mapstructure:"storage"`
	Errors struct {
		Locale string `mapstructure:"locale"`
	} `mapstructure:"errors"`
	Theme struct {
		Modes []string `mapstructure:"modes"`
	} `mapstructure:"theme"`
}

// flagKeys maps flag names to their configuration keys.
var flagKeys = map[string]string{
	"dir":       "dir",
	"package":   "package",
	"header":    "header",
	"verbose":   "verbose",
	"json-logs": "json_logs",
	"check":     "check",
	"watch":     "watch",
	"block":     "storage.block",
	"sql":       "storage.sql",
	"file":      "storage.file",
	"locale":    "errors.locale",
	"mode":      "theme.modes",
}

// loadSettings reads accessgen.{yaml,toml,json} from the working directory,
// or the file named by --config, and merges the environment and the flags
// of cmd on top of it.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("dir", ".")
	v.SetDefault("header", gen.DefaultHeader)
	v.SetDefault("storage.block", "Storage")
	v.SetDefault("errors.locale", "en")
	v.SetDefault("theme.modes", []string{})

	file, _ := cmd.Flags().GetString("config")
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("accessgen")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.WithHint(errors.Wrap(err, "read config"), "check the --config path and its syntax")
		}
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Wrapf(err, "bind flag %s", name)
			}
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	// Mode lists from the environment arrive space or comma separated.
	var modes []string
	for _, m := range s.Theme.Modes {
		modes = append(modes, strings.FieldsFunc(m, func(r rune) bool { return r == ',' || r == ' ' })...)
	}
	s.Theme.Modes = modes
	return &s, nil
}

// resolveDir turns a --dir value into an absolute path. A leading "@"
// stands for the project root, the current working directory.
func resolveDir(dir string) (string, error) {
	if rest, ok := strings.CutPrefix(dir, "@"); ok {
		dir = "." + rest
	}
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", gen.NewIOError("resolve", dir, err)
	}
	return abs, nil
}

// genConfig builds the generator configuration of pipeline p. Every invalid
// setting is reported, not only the first.
func (s *settings) genConfig(p compiler.Pipeline) (*gen.Config, error) {
	dir, err := resolveDir(s.Dir)
	if err != nil {
		return nil, err
	}
	opts := []gen.Option{
		gen.WithTarget(dir),
		gen.WithPackage(s.Package),
		gen.WithHeader(s.Header),
	}
	switch p {
	case compiler.PipelineStorage:
		opts = append(opts, gen.WithBlock(s.Storage.Block))
		if s.Storage.SQL {
			opts = append(opts, gen.WithBackends(gen.BackendSQL))
		}
		if s.Storage.File {
			opts = append(opts, gen.WithBackends(gen.BackendFile))
		}
	case compiler.PipelineErrors:
		opts = append(opts, gen.WithDefaultLocale(s.Errors.Locale))
	case compiler.PipelineTheme:
		opts = append(opts, gen.WithModes(s.Theme.Modes...))
	}
	cfg, err := gen.NewConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyAll(opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
