package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"meterc/internal/diag"
	"meterc/internal/generate"
	"meterc/internal/outwrite"
	"meterc/internal/pipeline"
)

// TranslateOptions select the generator and the output directory.
type TranslateOptions struct {
	Format  string
	OutDir  string
	Options generate.Options
	// ClearPatterns are removed from OutDir before promotion; nil means the
	// generator's own patterns.
	ClearPatterns []string
	// Generators is optional; nil means the built-in formats.
	Generators *generate.Registry
}

// Translate runs Glinter and, when nothing failed, renders the tree with
// the selected generator and promotes the files into OutDir. Generator
// warnings and unexpected leftovers become warning diagnostics.
func Translate(ctx context.Context, opts Options, topts TranslateOptions) (*Result, error) {
	if topts.Generators == nil {
		topts.Generators = generate.NewRegistry()
	}
	gen, err := topts.Generators.Lookup(topts.Format)
	if err != nil {
		return nil, &diag.FatalError{Code: diag.GenUnknownFormat, Msg: err.Error(), Err: err}
	}
	if topts.OutDir == "" {
		return nil, diag.Fatalf(diag.GenWriteFailed, "", "Output directory is not set")
	}

	r, err := newRun(opts)
	if err != nil {
		return nil, err
	}
	defer r.finish(pipeline.StageWrite)
	if err := r.lintedTree(ctx); err != nil || r.res.Stopped != "" {
		return r.res, err
	}
	if err := r.write(ctx, gen, topts); err != nil {
		return r.res, err
	}
	return r.res, nil
}

func (r *run) write(ctx context.Context, gen generate.Generator, topts TranslateOptions) error {
	bag := r.res.Parse.Bag
	clearPatterns := topts.ClearPatterns
	if clearPatterns == nil {
		clearPatterns = gen.Patterns()
	}
	wopts := outwrite.Options{
		ClearPatterns: clearPatterns,
		OwnedPatterns: gen.Patterns(),
		Log:           r.opts.Log,
	}

	var genElapsed time.Duration
	render := func(ctx context.Context, dir string) error {
		start := time.Now()
		defer func() { genElapsed = time.Since(start) }()
		return r.stage(ctx, pipeline.StageGenerate, func(ctx context.Context) (string, error) {
			warnings, err := gen.Generate(ctx, r.res.Parse.Tree, dir, topts.Options)
			for _, w := range warnings {
				bag.Add(diag.NewWarning(diag.GenInfo, "", gen.Name(), w))
			}
			if err != nil {
				return "", &diag.FatalError{Code: diag.GenFailed, Msg: fmt.Sprintf("Generator '%s' failed: %v", gen.Name(), err), Err: err}
			}
			return fmt.Sprintf("format=%s warnings=%d", gen.Name(), len(warnings)), nil
		})
	}

	err := r.stage(ctx, pipeline.StageWrite, func(ctx context.Context) (string, error) {
		res, err := outwrite.Write(ctx, topts.OutDir, wopts, render)
		r.res.Output = res
		if err != nil {
			if _, ok := diag.AsFatal(err); ok {
				return "", err
			}
			return "", &diag.FatalError{Code: diag.GenWriteFailed, Path: topts.OutDir, Msg: err.Error(), Err: err}
		}
		for _, name := range res.Leftovers {
			bag.Add(diag.NewWarning(diag.GenLeftover, filepath.ToSlash(filepath.Join(topts.OutDir, name)), "",
				fmt.Sprintf("File '%s' looks generated but was not produced by this run", name)))
		}
		return fmt.Sprintf("written=%d removed=%d leftovers=%d", len(res.Written), len(res.Removed), len(res.Leftovers)), nil
	})
	// генерация вложена в запись; в таймингах стадии не пересекаются
	if r.res.Timings.Has(pipeline.StageWrite) {
		r.res.Timings.Set(pipeline.StageWrite, max(r.res.Timings.Duration(pipeline.StageWrite)-genElapsed, 0))
	}
	bag.Sort()
	return err
}
