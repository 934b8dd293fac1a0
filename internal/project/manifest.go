package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"meterc/internal/model"
)

// Manifest is a decoded meterc.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the sections of meterc.toml.
type Config struct {
	Inputs []string      `toml:"inputs"`
	Parser ParserSection `toml:"parser"`
	Output OutputSection `toml:"output"`
	Cache  CacheSection  `toml:"cache"`
	Log    LogSection    `toml:"log"`
	Trace  TraceSection  `toml:"trace"`
}

type ParserSection struct {
	AllowReserved       bool     `toml:"allow_reserved"`
	AllowMissingFiles   bool     `toml:"allow_missing_files"`
	RequireTags         bool     `toml:"require_tags"`
	ExpireByVersion     int      `toml:"expire_by_version"`
	DoNotDisableExpired bool     `toml:"do_not_disable_expired"`
	Interesting         []string `toml:"interesting"`
}

type OutputSection struct {
	Format        string            `toml:"format"`
	Dir           string            `toml:"dir"`
	ClearPatterns []string          `toml:"clear_patterns"`
	Options       map[string]string `toml:"options"`
}

type CacheSection struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type LogSection struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type TraceSection struct {
	Enabled  bool   `toml:"enabled"`
	Protocol string `toml:"protocol"` // grpc | http
	Endpoint string `toml:"endpoint"`
}

// ErrNoInputs is returned when neither the manifest nor the command line
// names an input.
var ErrNoInputs = errors.New("no input files: pass them as arguments or set inputs in " + ManifestName)

// LoadManifest locates meterc.toml from startDir upwards and decodes it.
// ok is false when no manifest exists.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := DecodeManifest(manifestPath)
	return m, true, err
}

// DecodeManifest reads one manifest file. Relative paths inside it are
// resolved against the manifest's directory.
func DecodeManifest(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Parser.ExpireByVersion < 0 {
		return nil, fmt.Errorf("%s: [parser].expire_by_version must not be negative", path)
	}
	switch cfg.Trace.Protocol {
	case "", "grpc", "http":
	default:
		return nil, fmt.Errorf("%s: [trace].protocol must be grpc or http, got %q", path, cfg.Trace.Protocol)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	m := &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}
	for i, in := range m.Config.Inputs {
		if m.Config.Inputs[i], err = m.resolve(in); err != nil {
			return nil, err
		}
	}
	for i, in := range m.Config.Parser.Interesting {
		if m.Config.Parser.Interesting[i], err = m.resolve(in); err != nil {
			return nil, err
		}
	}
	if m.Config.Output.Dir != "" {
		if m.Config.Output.Dir, err = m.resolve(m.Config.Output.Dir); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// resolve makes p absolute relative to the manifest root; paths must stay
// inside the project.
func (m *Manifest) resolve(p string) (string, error) {
	p = strings.TrimSpace(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	full := filepath.Join(m.Root, filepath.FromSlash(p))
	if !pathWithin(m.Root, full) {
		return "", fmt.Errorf("%s: path %q escapes the project root", m.Path, p)
	}
	return full, nil
}

// ModelConfig converts the [parser] section.
func (c *Config) ModelConfig() *model.Config {
	return &model.Config{
		AllowReserved:       c.Parser.AllowReserved,
		AllowMissingFiles:   c.Parser.AllowMissingFiles,
		RequireTags:         c.Parser.RequireTags,
		ExpireByVersion:     c.Parser.ExpireByVersion,
		DoNotDisableExpired: c.Parser.DoNotDisableExpired,
		Interesting:         append([]string(nil), c.Parser.Interesting...),
	}
}
