// Package outwrite promotes generated files into an output directory as one
// step: everything is rendered into a scratch directory next to the
// destination first, so a failing generator leaves the destination untouched.
package outwrite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options controls one promotion.
type Options struct {
	// ClearPatterns are globs (matched against base names) of files from a
	// previous run to delete before promotion. Other files are preserved.
	ClearPatterns []string
	// OwnedPatterns describe what the generator writes; a file matching them
	// that this run did not produce is reported as a leftover.
	OwnedPatterns []string
	Log           zerolog.Logger
}

// Result lists what happened in the output directory, base names sorted.
type Result struct {
	Written   []string
	Removed   []string
	Leftovers []string
}

// RenderFunc writes the generated files into dir.
type RenderFunc func(ctx context.Context, dir string) error

// Write renders into a scratch directory and promotes the result into outDir.
func Write(ctx context.Context, outDir string, opts Options, render RenderFunc) (*Result, error) {
	for _, p := range slices.Concat(opts.ClearPatterns, opts.OwnedPatterns) {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil { // #nosec G301
		return nil, err
	}
	// рядом с назначением, чтобы Rename не пересекал файловые системы
	scratch := filepath.Join(filepath.Dir(filepath.Clean(outDir)), ".meterc-"+uuid.NewString())
	if err := os.Mkdir(scratch, 0o755); err != nil { // #nosec G301
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			opts.Log.Warn().Err(err).Str("dir", scratch).Msg("failed to remove scratch directory")
		}
	}()

	if err := render(ctx, scratch); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(scratch)
	if err != nil {
		return nil, err
	}
	// генераторы пишут плоский список файлов; проверяем до очистки назначения
	for _, e := range entries {
		if e.IsDir() {
			return nil, fmt.Errorf("generator produced a directory %q", e.Name())
		}
	}

	res := &Result{}
	removed, err := clearStale(outDir, opts.ClearPatterns)
	res.Removed = removed
	if err != nil {
		return res, err
	}
	for _, e := range entries {
		if err := os.Rename(filepath.Join(scratch, e.Name()), filepath.Join(outDir, e.Name())); err != nil {
			return res, err
		}
		res.Written = append(res.Written, e.Name())
	}

	res.Leftovers, err = leftovers(outDir, opts.OwnedPatterns, res.Written)
	if err != nil {
		return res, err
	}
	opts.Log.Info().
		Str("dir", outDir).
		Int("written", len(res.Written)).
		Int("removed", len(res.Removed)).
		Int("leftovers", len(res.Leftovers)).
		Msg("output promoted")
	return res, nil
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

func clearStale(dir string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var removed []string
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !matchAny(patterns, e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, e.Name())
	}
	sort.Strings(removed)
	return removed, errors.Join(errs...)
}

func leftovers(dir string, patterns, written []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fresh := make(map[string]struct{}, len(written))
	for _, w := range written {
		fresh[w] = struct{}{}
	}
	var out []string
	for _, e := range entries {
		if _, ok := fresh[e.Name()]; ok || e.IsDir() {
			continue
		}
		if matchAny(patterns, e.Name()) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
