// Package driver composes loading, merging, transforming, linting and
// generation into the runs offered by the command line.
package driver

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"meterc/internal/cache"
	"meterc/internal/diag"
	"meterc/internal/lint"
	"meterc/internal/model"
	"meterc/internal/observ"
	"meterc/internal/outwrite"
	"meterc/internal/parser"
	"meterc/internal/pipeline"
	"meterc/internal/schema"
	"meterc/internal/transform"
)

// Options describe the inputs and environment shared by every run.
type Options struct {
	Inputs []string
	Config *model.Config
	// Registry is optional; nil means the embedded schema catalogue.
	Registry *schema.Registry
	Cache    *cache.Store
	Log      zerolog.Logger
	// Jobs bounds parallel document loading; <= 0 means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	// Timer is optional; phases are recorded when set.
	Timer    *observ.Timer
	Progress pipeline.ProgressSink
	// BaseDir shortens the file names reported to Progress.
	BaseDir string
}

// Result is everything a run produced. Fields past the stage the run
// stopped at stay zero.
type Result struct {
	Parse   *parser.Result
	Nits    []lint.Nit
	Output  *outwrite.Result
	Timings pipeline.Timings
	// Stopped is the stage after which the run did not continue because of
	// error diagnostics; empty when every requested stage ran.
	Stopped pipeline.Stage
}

// Diagnostics returns the collected diagnostics (lint nits excluded).
func (r *Result) Diagnostics() []diag.Diagnostic {
	if r == nil || r.Parse == nil {
		return nil
	}
	return r.Parse.Diagnostics()
}

// Failed reports whether the run must exit with a non-zero status: any
// error diagnostic or any error-severity lint nit. Warnings never fail.
func (r *Result) Failed() bool {
	if r == nil || r.Parse == nil {
		return true
	}
	return r.Parse.HasErrors() || lint.HasErrors(r.Nits)
}

// Files returns the display names of the documents a run over inputs reads.
func Files(inputs []string, baseDir string) ([]string, error) {
	files, err := parser.ExpandInputs(inputs)
	if err != nil {
		return nil, err
	}
	return pipeline.NormalizeFiles(files, baseDir), nil
}

// run holds the per-invocation state threaded through the stages.
type run struct {
	opts  Options
	res   *Result
	files []string
}

func newRun(opts Options) (*run, error) {
	if opts.Config == nil {
		opts.Config = &model.Config{}
	}
	if opts.BaseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.BaseDir = wd
		}
	}
	files, err := Files(opts.Inputs, opts.BaseDir)
	if err != nil {
		return nil, err
	}
	return &run{opts: opts, res: &Result{}, files: files}, nil
}

// stage wraps one phase into a tracing span, a timer phase, run-level
// progress events and a Timings entry.
func (r *run) stage(ctx context.Context, stage pipeline.Stage, fn func(ctx context.Context) (string, error)) error {
	ctx, end := r.opts.Timer.Span(ctx, string(stage), attribute.Int("files", len(r.files)))
	pipeline.EmitStage(r.opts.Progress, nil, stage, pipeline.StatusWorking, nil, 0)
	start := time.Now()
	note, err := fn(ctx)
	elapsed := time.Since(start)
	end(note)
	r.res.Timings.Set(stage, elapsed)

	status := pipeline.StatusDone
	if err != nil {
		status = pipeline.StatusError
	}
	pipeline.EmitStage(r.opts.Progress, nil, stage, status, err, elapsed)
	r.opts.Log.Debug().Str("stage", string(stage)).Dur("elapsed", elapsed).Str("note", note).Msg("stage finished")
	return err
}

func (r *run) parse(ctx context.Context) error {
	pipeline.EmitQueued(r.opts.Progress, r.files)
	pipeline.EmitStage(r.opts.Progress, r.files, pipeline.StageLoad, pipeline.StatusWorking, nil, 0)

	var mergeStart time.Time
	p, err := parser.New(parser.Options{
		Config:         r.opts.Config,
		Registry:       r.opts.Registry,
		Cache:          r.opts.Cache,
		Log:            r.opts.Log,
		Jobs:           r.opts.Jobs,
		MaxDiagnostics: r.opts.MaxDiagnostics,
		OnFile: func(path string, err error) {
			if r.opts.Progress == nil {
				return
			}
			status := pipeline.StatusDone
			if err != nil {
				status = pipeline.StatusError
			}
			r.opts.Progress.OnEvent(pipeline.Event{
				File:   pipeline.DisplayPath(path, r.opts.BaseDir),
				Stage:  pipeline.StageLoad,
				Status: status,
				Err:    err,
			})
		},
		OnMerge: func() {
			mergeStart = time.Now()
			pipeline.EmitStage(r.opts.Progress, nil, pipeline.StageMerge, pipeline.StatusWorking, nil, 0)
		},
	})
	if err != nil {
		return err
	}

	return r.stage(ctx, pipeline.StageLoad, func(ctx context.Context) (string, error) {
		res, err := p.Parse(ctx, r.opts.Inputs)
		if err != nil {
			return "", err
		}
		if !mergeStart.IsZero() {
			r.res.Timings.Set(pipeline.StageMerge, time.Since(mergeStart))
		}
		r.res.Parse = res
		nm, np, nt := res.Tree.Len()
		return fmt.Sprintf("metrics=%d pings=%d tags=%d diags=%d", nm, np, nt, res.Bag.Len()), nil
	})
}

func (r *run) transform(ctx context.Context) error {
	return r.stage(ctx, pipeline.StageTransform, func(context.Context) (string, error) {
		bag := r.res.Parse.Bag
		before := bag.Len()
		reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
		if err := transform.Run(r.res.Parse.Tree, r.opts.Config, reporter); err != nil {
			return "", err
		}
		bag.Sort()
		return fmt.Sprintf("diags=%d", bag.Len()-before), nil
	})
}

func (r *run) lint(ctx context.Context) error {
	return r.stage(ctx, pipeline.StageLint, func(context.Context) (string, error) {
		r.res.Nits = lint.Run(r.res.Parse.Tree, r.opts.Config)
		return fmt.Sprintf("nits=%d", len(r.res.Nits)), nil
	})
}

// stopIfFailed marks the run as stopped after stage when it already failed.
func (r *run) stopIfFailed(stage pipeline.Stage) bool {
	if !r.res.Failed() {
		return false
	}
	r.res.Stopped = stage
	return true
}

// finish reports the terminal per-file status: error for files owning an
// error diagnostic or nit, done for the rest.
func (r *run) finish(final pipeline.Stage) {
	if r.opts.Progress == nil {
		return
	}
	failed := make(map[string]bool)
	if r.res.Parse != nil {
		for _, d := range r.res.Parse.Diagnostics() {
			if d.Severity >= diag.SevError && d.Path != "" {
				failed[pipeline.DisplayPath(d.Path, r.opts.BaseDir)] = true
			}
		}
	}
	for _, n := range r.res.Nits {
		if n.Severity >= diag.SevError && n.Where.Path != "" {
			failed[pipeline.DisplayPath(n.Where.Path, r.opts.BaseDir)] = true
		}
	}
	for _, file := range r.files {
		status := pipeline.StatusDone
		if failed[file] {
			status = pipeline.StatusError
		}
		r.opts.Progress.OnEvent(pipeline.Event{File: file, Stage: final, Status: status})
	}
}

// Check loads, validates and merges the inputs. Nothing is linted.
func Check(ctx context.Context, opts Options) (*Result, error) {
	r, err := newRun(opts)
	if err != nil {
		return nil, err
	}
	defer r.finish(pipeline.StageMerge)
	if err := r.parse(ctx); err != nil {
		return r.res, err
	}
	return r.res, nil
}

// Glinter runs Check, then transform and lint. A tree carrying error
// diagnostics is not transformed or linted.
func Glinter(ctx context.Context, opts Options) (*Result, error) {
	r, err := newRun(opts)
	if err != nil {
		return nil, err
	}
	defer r.finish(pipeline.StageLint)
	if err := r.lintedTree(ctx); err != nil {
		return r.res, err
	}
	return r.res, nil
}

func (r *run) lintedTree(ctx context.Context) error {
	if err := r.transformedTree(ctx); err != nil || r.res.Stopped != "" {
		return err
	}
	if err := r.lint(ctx); err != nil {
		return err
	}
	r.stopIfFailed(pipeline.StageLint)
	return nil
}

func (r *run) transformedTree(ctx context.Context) error {
	if err := r.parse(ctx); err != nil {
		return err
	}
	if r.stopIfFailed(pipeline.StageLoad) {
		return nil
	}
	if err := r.transform(ctx); err != nil {
		return err
	}
	r.stopIfFailed(pipeline.StageTransform)
	return nil
}
