// Package generate holds the Generator contract and the built-in exporters
// of the merged tree.
package generate

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"sync"

	"meterc/internal/model"
)

// Options are generator-specific key/value settings.
type Options map[string]string

// Bool reads a boolean option; a missing key yields def.
func (o Options) Bool(key string, def bool) (bool, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("option %s: %w", key, err)
	}
	return b, nil
}

// Generator renders the tree into files under dir. The tree is read-only.
// Warnings are reported back to the caller and never fail the run.
type Generator interface {
	Name() string
	// Patterns are the base-name globs of the files this generator owns.
	Patterns() []string
	// KnownOptions lists the option keys the generator understands.
	KnownOptions() []string
	Generate(ctx context.Context, tree *model.Tree, dir string, opts Options) (warnings []string, err error)
}

// Registry maps format names to generators.
type Registry struct {
	mu   sync.RWMutex
	gens map[string]Generator
}

// NewRegistry returns a registry with the built-in generators.
func NewRegistry() *Registry {
	r := &Registry{gens: make(map[string]Generator)}
	r.Register(JSON{})
	r.Register(Msgpack{})
	r.Register(CBOR{})
	return r
}

// Register adds or replaces a generator.
func (r *Registry) Register(g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens[g.Name()] = g
}

// UnknownFormatError is returned by Lookup.
type UnknownFormatError struct {
	Name  string
	Known []string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("Unknown output format '%s'. Known formats: %v", e.Name, e.Known)
}

// Lookup returns the generator registered under name.
func (r *Registry) Lookup(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gens[name]
	if !ok {
		return nil, &UnknownFormatError{Name: name, Known: r.namesLocked()}
	}
	return g, nil
}

// Names returns the registered formats, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := slices.Collect(maps.Keys(r.gens))
	sort.Strings(names)
	return names
}

// CheckOptions returns one warning per option the generator does not know.
func CheckOptions(g Generator, opts Options) []string {
	var warnings []string
	for _, k := range slices.Sorted(maps.Keys(opts)) {
		if !slices.Contains(g.KnownOptions(), k) && !slices.Contains(commonOptions, k) {
			warnings = append(warnings, fmt.Sprintf("Unknown option '%s' for format '%s'", k, g.Name()))
		}
	}
	return warnings
}

// Общие для всех встроенных генераторов опции.
const (
	OptOmitDisabled = "omit_disabled"
	OptFilename     = "filename"
)

var commonOptions = []string{OptOmitDisabled, OptFilename}

// exportTree builds the serialisable view of the tree honouring the common
// options.
func exportTree(tree *model.Tree, opts Options) (map[string]any, error) {
	omit, err := opts.Bool(OptOmitDisabled, false)
	if err != nil {
		return nil, err
	}
	if !omit {
		return tree.Serialize(), nil
	}
	filtered := model.NewTree()
	for _, m := range tree.AllMetrics() {
		if !m.Disabled {
			filtered.AddMetric(m)
		}
	}
	for name, p := range tree.Pings {
		if p.Enabled {
			filtered.Pings[name] = p
		}
	}
	maps.Copy(filtered.Tags, tree.Tags)
	return filtered.Serialize(), nil
}

func filename(opts Options, def string) string {
	if f := opts[OptFilename]; f != "" {
		return f
	}
	return def
}
