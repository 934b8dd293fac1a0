package main

import (
	"fmt"
	"io"

	"meterc/internal/diag"
	"meterc/internal/diagfmt"
	"meterc/internal/driver"
	"meterc/internal/lint"
	"meterc/internal/pipeline"
	"meterc/internal/source"
)

// report prints the outcome of a run and converts it into the command
// error: errFailed when anything failed, the raw error when it is not a
// diagnosable fatal condition.
func (e *runEnv) report(out, errOut io.Writer, res *driver.Result, runErr error, withNits bool) error {
	fe, fatal := diag.AsFatal(runErr)
	if runErr != nil && !fatal {
		return runErr
	}

	var (
		diags []diag.Diagnostic
		nits  []lint.Nit
		fs    *source.FileSet
	)
	if res != nil {
		diags = res.Diagnostics()
		nits = res.Nits
		if res.Parse != nil {
			fs = res.Parse.Files
		}
	}
	if fatal {
		diags = append(diags, fe.Diagnostic())
	}
	linted := withNits && !fatal && res != nil && res.Timings.Has(pipeline.StageLint)

	switch e.output {
	case "json":
		if !linted {
			nits = nil
		}
		if err := diagfmt.JSON(out, diags, nits, fs, diagfmt.JSONOpts{PathMode: e.pathMode, BaseDir: e.opts.BaseDir, IncludeNotes: e.notes}); err != nil {
			return err
		}
	case "short":
		diagfmt.Short(errOut, diags, e.notes)
		if linted {
			for _, n := range nits {
				fmt.Fprintln(errOut, n.String())
			}
		}
	default:
		diagfmt.Pretty(errOut, diags, fs, diagfmt.PrettyOpts{
			Color:     e.color,
			PathMode:  e.pathMode,
			BaseDir:   e.opts.BaseDir,
			Context:   true,
			ShowNotes: e.notes,
		})
		if linted && (len(nits) > 0 || !e.quiet) {
			if len(diags) > 0 {
				fmt.Fprintln(errOut)
			}
			diagfmt.Nits(errOut, nits, e.color)
		}
	}

	if e.timings && e.timer != nil {
		fmt.Fprint(errOut, e.timer.Summary())
	}
	if fatal || res.Failed() {
		return errFailed
	}
	return nil
}
