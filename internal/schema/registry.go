package schema

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.yaml
var embedded embed.FS

// Идентификаторы встроенных схем.
const (
	MetricsID = "moz://mozilla.org/schemas/glean/metrics/2-0-0"
	PingsID   = "moz://mozilla.org/schemas/glean/pings/2-0-0"
	TagsID    = "moz://mozilla.org/schemas/glean/tags/1-0-0"
)

const idPrefix = "moz://mozilla.org/schemas/glean/"

// Family is the document grammar selected by a schema identifier.
type Family uint8

const (
	FamilyUnknown Family = iota
	FamilyMetrics
	FamilyPings
	FamilyTags
)

func (f Family) String() string {
	switch f {
	case FamilyMetrics:
		return "metrics"
	case FamilyPings:
		return "pings"
	case FamilyTags:
		return "tags"
	}
	return "unknown"
}

// ParseID splits a schema identifier into family and version ("2-0-0").
func ParseID(id string) (Family, string, bool) {
	rest, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return FamilyUnknown, "", false
	}
	name, version, ok := strings.Cut(rest, "/")
	if !ok || version == "" || strings.Contains(version, "/") {
		return FamilyUnknown, "", false
	}
	switch name {
	case "metrics":
		return FamilyMetrics, version, true
	case "pings":
		return FamilyPings, version, true
	case "tags":
		return FamilyTags, version, true
	}
	return FamilyUnknown, "", false
}

// Bundle is an immutable pair of schema document and compiled validator.
type Bundle struct {
	ID      string
	Family  Family
	Version string
	Doc     map[string]any
	Schema  *jsonschema.Schema
}

// UnknownSchemaError is returned by Get for identifiers outside the catalogue.
type UnknownSchemaError struct {
	ID    string
	Known []string
}

func (e *UnknownSchemaError) Error() string {
	return fmt.Sprintf("unknown schema identifier '%s'. Known schemas: %s", e.ID, strings.Join(e.Known, ", "))
}

// Registry loads embedded schema documents and memoizes compiled bundles.
// Один экземпляр на процесс, передаётся стадиям явно.
type Registry struct {
	mu      sync.RWMutex
	sources map[string][]byte // id -> JSON form of the schema document
	raw     map[string][]byte // id -> исходный YAML
	docs    map[string]map[string]any
	bundles map[string]*Bundle
}

// NewRegistry indexes every embedded schema by its $id.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		sources: make(map[string][]byte),
		raw:     make(map[string][]byte),
		docs:    make(map[string]map[string]any),
		bundles: make(map[string]*Bundle),
	}
	entries, err := embedded.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read embedded schemas: %w", err)
	}
	for _, e := range entries {
		data, err := embedded.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		if err := r.add(e.Name(), data); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(name string, data []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	id, _ := doc["$id"].(string)
	if id == "" {
		return fmt.Errorf("%s: schema without $id", name)
	}
	if _, _, ok := ParseID(id); !ok {
		return fmt.Errorf("%s: unsupported schema id %q", name, id)
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	r.sources[id] = js
	r.raw[id] = data
	r.docs[id] = doc
	return nil
}

// Known returns all known schema identifiers in sorted order.
func (r *Registry) Known() []string {
	out := make([]string, 0, len(r.sources))
	for id := range r.sources {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Source returns the schema document as it is embedded (YAML).
func (r *Registry) Source(id string) ([]byte, error) {
	data, ok := r.raw[id]
	if !ok {
		return nil, &UnknownSchemaError{ID: id, Known: r.Known()}
	}
	return data, nil
}

// Get returns the compiled bundle for id, compiling it on first use.
func (r *Registry) Get(id string) (*Bundle, error) {
	r.mu.RLock()
	b, ok := r.bundles[id]
	r.mu.RUnlock()
	if ok {
		return b, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bundles[id]; ok {
		return b, nil
	}
	src, ok := r.sources[id]
	if !ok {
		return nil, &UnknownSchemaError{ID: id, Known: r.Known()}
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	// внешние ссылки никогда не качаем: любая неизвестная ссылка — пустая схема
	c.LoadURL = func(string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("{}")), nil
	}
	if err := c.AddResource(id, bytes.NewReader(src)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", id, err)
	}
	compiled, err := c.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", id, err)
	}
	family, version, _ := ParseID(id)
	b = &Bundle{
		ID:      id,
		Family:  family,
		Version: version,
		Doc:     r.docs[id],
		Schema:  compiled,
	}
	r.bundles[id] = b
	return b, nil
}

// IDFor returns the newest known identifier of the given family.
func (r *Registry) IDFor(f Family) (string, bool) {
	best := ""
	for id := range r.sources {
		if fam, _, _ := ParseID(id); fam == f && id > best {
			best = id
		}
	}
	return best, best != ""
}
