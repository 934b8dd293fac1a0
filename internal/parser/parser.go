package parser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"meterc/internal/cache"
	"meterc/internal/diag"
	"meterc/internal/model"
	"meterc/internal/schema"
	"meterc/internal/source"
	"meterc/internal/validate"
)

// Options configures a parse run.
type Options struct {
	Config   *model.Config
	Registry *schema.Registry
	// Cache is optional; nil disables the validation cache.
	Cache *cache.Store
	Log   zerolog.Logger
	// Jobs bounds parallel load/validate; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the collected diagnostics; <= 0 means unlimited.
	MaxDiagnostics int
	// OnFile is called after every document is loaded and validated.
	OnFile func(path string, err error)
	// OnMerge is called once, when every document is loaded and merging starts.
	OnMerge func()
}

// Source is an in-memory input document.
type Source struct {
	Name    string
	Content []byte
}

// Result is the merged graph plus every diagnostic collected on the way.
type Result struct {
	Tree  *model.Tree
	Files *source.FileSet
	Bag   *diag.Bag
}

// Diagnostics returns the sorted diagnostics.
func (r *Result) Diagnostics() []diag.Diagnostic { return r.Bag.Items() }

// HasErrors reports whether any error-severity diagnostic was produced.
func (r *Result) HasErrors() bool { return r.Bag.HasErrors() }

// Parser loads, validates and merges definition files.
type Parser struct {
	opts      Options
	validator *validate.Validator
}

// New builds a Parser. A nil Registry is replaced by the embedded catalogue.
func New(opts Options) (*Parser, error) {
	if opts.Registry == nil {
		reg, err := schema.NewRegistry()
		if err != nil {
			return nil, err
		}
		opts.Registry = reg
	}
	if opts.Config == nil {
		opts.Config = &model.Config{}
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	return &Parser{opts: opts, validator: validate.New(opts.Registry)}, nil
}

// Parse reads the given files and directories (directories are walked for
// *.yaml, *.yml and *.json). The returned error is always fatal: a missing
// input without AllowMissingFiles, an unknown schema identifier, an
// expiry-regime conflict.
func (p *Parser) Parse(ctx context.Context, paths []string) (*Result, error) {
	files, err := ExpandInputs(paths)
	if err != nil {
		return nil, err
	}
	fileSet := source.NewFileSet()
	ids := make([]source.FileID, 0, len(files))
	for _, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, &diag.FatalError{Code: diag.IOLoadFileError, Path: path, Msg: err.Error(), Err: err}
			}
			if !p.opts.Config.AllowMissingFiles {
				return nil, &diag.FatalError{Code: diag.IOMissingFile, Path: path, Msg: "File not found", Err: err}
			}
			p.opts.Log.Debug().Str("path", path).Msg("missing input treated as empty")
			id = fileSet.AddMissing(path)
		}
		ids = append(ids, id)
	}
	return p.run(ctx, fileSet, ids)
}

// ParseSources parses in-memory documents; names select the decoder by extension.
func (p *Parser) ParseSources(ctx context.Context, sources []Source) (*Result, error) {
	fileSet := source.NewFileSet()
	ids := make([]source.FileID, 0, len(sources))
	for _, s := range sources {
		ids = append(ids, fileSet.AddVirtual(s.Name, s.Content))
	}
	return p.run(ctx, fileSet, ids)
}

func (p *Parser) run(ctx context.Context, fileSet *source.FileSet, ids []source.FileID) (*Result, error) {
	// канонический порядок слияния: по пути, независимо от порядка аргументов
	sort.SliceStable(ids, func(i, j int) bool {
		return fileSet.Get(ids[i]).Path < fileSet.Get(ids[j]).Path
	})

	loaded, err := p.loadAll(ctx, fileSet, ids)
	if err != nil {
		return nil, err
	}

	res := &Result{Tree: model.NewTree(), Files: fileSet, Bag: diag.NewBag(p.opts.MaxDiagnostics)}
	m := newMerger(res.Tree, p.opts.Config, diag.BagReporter{Bag: res.Bag})
	if p.opts.OnMerge != nil {
		p.opts.OnMerge()
	}
	for _, l := range loaded {
		for _, d := range l.diags {
			res.Bag.Add(d)
		}
		if l.doc == nil || l.invalid {
			continue
		}
		if err := m.merge(l); err != nil {
			return nil, err
		}
	}

	if len(p.opts.Config.Interesting) > 0 {
		if err := p.applyInteresting(res); err != nil {
			return nil, err
		}
	}

	res.Bag.Dedup()
	res.Bag.Sort()
	nm, np, nt := res.Tree.Len()
	p.opts.Log.Debug().
		Int("files", len(ids)).
		Int("metrics", nm).
		Int("pings", np).
		Int("tags", nt).
		Int("diagnostics", res.Bag.Len()).
		Msg("parse finished")
	return res, nil
}

// ExpandInputs turns the command-line inputs into a sorted, de-duplicated
// file list. Paths that do not exist are kept so the caller can diagnose them.
func ExpandInputs(paths []string) ([]string, error) {
	seen := make(map[string]struct{}, len(paths))
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".yaml", ".yml", ".json":
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	sort.Strings(out)
	return out, nil
}
