package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"meterc/internal/cache"
	"meterc/internal/diagfmt"
	"meterc/internal/driver"
	"meterc/internal/model"
	"meterc/internal/observ"
	"meterc/internal/project"
	"meterc/internal/version"
)

// runEnv is everything a pipeline command needs, assembled from persistent
// flags, command flags and meterc.toml (flags win).
type runEnv struct {
	log      zerolog.Logger
	manifest *project.Manifest
	color    bool
	quiet    bool
	timings  bool
	timer    *observ.Timer
	opts     driver.Options
	output   string // pretty|json|short
	pathMode diagfmt.PathMode
	notes    bool

	closers []func()
}

func (e *runEnv) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// addParserFlags registers the options shared by translate, glinter, check
// and dump.
func addParserFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("allow-reserved", false, "allow reserved categories, pings and extra keys")
	cmd.Flags().Bool("allow-missing-files", false, "treat missing input files as empty")
	cmd.Flags().Bool("require-tags", false, "require every metric and ping to carry tags")
	cmd.Flags().Int("expire-by-version", 0, "expire by major version instead of date (0 = date based)")
	cmd.Flags().Bool("do-not-disable-expired", false, "keep expired metrics enabled")
	cmd.Flags().StringSlice("interesting", nil, "restrict enabled objects to those defined in these files")
	cmd.Flags().String("format", "pretty", "diagnostics output format (pretty|json|short)")
	cmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Int("jobs", 0, "max parallel document loads (0=auto)")
	cmd.Flags().Bool("no-cache", false, "disable the validation cache")
}

func setupEnv(cmd *cobra.Command, args []string) (*runEnv, error) {
	root := cmd.Root().PersistentFlags()
	env := &runEnv{}

	configPath, _ := root.GetString("config")
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		env.manifest, err = project.DecodeManifest(configPath)
	} else {
		env.manifest, _, err = project.LoadManifest(wd)
	}
	if err != nil {
		return nil, err
	}
	var cfg project.Config
	baseDir := wd
	if env.manifest != nil {
		cfg = env.manifest.Config
		baseDir = env.manifest.Root
	}

	logLevel, _ := root.GetString("log-level")
	if logLevel == "" {
		logLevel = cfg.Log.Level
	}
	if logLevel == "" {
		logLevel = "warn"
	}
	logFile, _ := root.GetString("log-file")
	if logFile == "" {
		logFile = cfg.Log.File
	}
	env.log = observ.InitLogger(logLevel, logFile)
	if env.manifest != nil {
		env.log.Debug().Str("manifest", env.manifest.Path).Msg("project manifest loaded")
	}

	colorMode, _ := root.GetString("color")
	if env.color, err = resolveColor(colorMode); err != nil {
		return nil, err
	}
	env.quiet, _ = root.GetBool("quiet")
	env.timings, _ = root.GetBool("timings")
	if env.timings {
		env.timer = observ.NewTimer()
	}
	maxDiagnostics, _ := root.GetInt("max-diagnostics")

	modelCfg, err := parserConfig(cmd, &cfg)
	if err != nil {
		return nil, err
	}

	inputs := args
	if len(inputs) == 0 {
		inputs = cfg.Inputs
	}
	if len(inputs) == 0 {
		return nil, project.ErrNoInputs
	}

	env.output, _ = cmd.Flags().GetString("format")
	switch env.output {
	case "pretty", "json", "short":
	default:
		return nil, fmt.Errorf("unknown diagnostics format %q (expected pretty|json|short)", env.output)
	}
	pm, _ := cmd.Flags().GetString("path-mode")
	mode, ok := diagfmt.ParsePathMode(pm)
	if !ok {
		return nil, fmt.Errorf("unknown path mode %q", pm)
	}
	env.pathMode = mode
	env.notes, _ = cmd.Flags().GetBool("with-notes")
	jobs, _ := cmd.Flags().GetInt("jobs")

	shutdown, err := observ.InitTracer(cmd.Context(), observ.TracerConfig{
		ServiceVersion: version.Version,
		Endpoint:       cfg.Trace.Endpoint,
		Protocol:       cfg.Trace.Protocol,
		Enabled:        cfg.Trace.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	env.closers = append(env.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			env.log.Warn().Err(err).Msg("tracer shutdown failed")
		}
	})

	store := openCache(cmd, &cfg, env)

	env.opts = driver.Options{
		Inputs:         inputs,
		Config:         modelCfg,
		Cache:          store,
		Log:            env.log,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		Timer:          env.timer,
		BaseDir:        baseDir,
	}
	return env, nil
}

// parserConfig overlays the command-line parser flags on the [parser] section.
func parserConfig(cmd *cobra.Command, cfg *project.Config) (*model.Config, error) {
	fl := cmd.Flags()
	p := &cfg.Parser
	if fl.Changed("allow-reserved") {
		p.AllowReserved, _ = fl.GetBool("allow-reserved")
	}
	if fl.Changed("allow-missing-files") {
		p.AllowMissingFiles, _ = fl.GetBool("allow-missing-files")
	}
	if fl.Changed("require-tags") {
		p.RequireTags, _ = fl.GetBool("require-tags")
	}
	if fl.Changed("expire-by-version") {
		p.ExpireByVersion, _ = fl.GetInt("expire-by-version")
	}
	if fl.Changed("do-not-disable-expired") {
		p.DoNotDisableExpired, _ = fl.GetBool("do-not-disable-expired")
	}
	if fl.Changed("interesting") {
		p.Interesting, _ = fl.GetStringSlice("interesting")
	}
	if p.ExpireByVersion < 0 {
		return nil, fmt.Errorf("--expire-by-version must not be negative")
	}
	return cfg.ModelConfig(), nil
}

// openCache opens the validation cache when enabled. Failure to open only
// costs speed, so it is logged and the run continues without it.
func openCache(cmd *cobra.Command, cfg *project.Config, env *runEnv) *cache.Store {
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache || !cfg.Cache.Enabled {
		return nil
	}
	path := cfg.Cache.Path
	if path == "" {
		var err error
		if path, err = cache.DefaultPath("meterc"); err != nil {
			env.log.Warn().Err(err).Msg("validation cache disabled")
			return nil
		}
	} else if !filepath.IsAbs(path) && env.manifest != nil {
		path = filepath.Join(env.manifest.Root, path)
	}
	store, err := cache.Open(path, env.log)
	if err != nil {
		env.log.Warn().Err(err).Str("path", path).Msg("validation cache disabled")
		return nil
	}
	env.closers = append(env.closers, func() {
		if err := store.Close(); err != nil {
			env.log.Warn().Err(err).Msg("validation cache close failed")
		}
	})
	return store
}

func resolveColor(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "", nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}
