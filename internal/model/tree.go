package model

import (
	"sort"
	"strings"
)

// Зарезервированные имена категорий в дереве.
const (
	PingsCategory = "pings"
	TagsCategory  = "tags"
)

// Tree is the merged object graph of one run.
type Tree struct {
	Metrics map[string]map[string]*Metric // category -> name -> metric
	Pings   map[string]*Ping
	Tags    map[string]*Tag
}

func NewTree() *Tree {
	return &Tree{
		Metrics: make(map[string]map[string]*Metric),
		Pings:   make(map[string]*Ping),
		Tags:    make(map[string]*Tag),
	}
}

// Categories returns metric categories in lexicographic order.
func (t *Tree) Categories() []string {
	out := make([]string, 0, len(t.Metrics))
	for c := range t.Metrics {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Category returns the metrics of one category ordered by name.
func (t *Tree) Category(name string) []*Metric {
	cat := t.Metrics[name]
	out := make([]*Metric, 0, len(cat))
	for _, m := range cat {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AllMetrics returns every metric ordered by category then name.
func (t *Tree) AllMetrics() []*Metric {
	var out []*Metric
	for _, c := range t.Categories() {
		out = append(out, t.Category(c)...)
	}
	return out
}

// AddMetric inserts m; the caller checks duplicates.
func (t *Tree) AddMetric(m *Metric) {
	cat, ok := t.Metrics[m.Category]
	if !ok {
		cat = make(map[string]*Metric)
		t.Metrics[m.Category] = cat
	}
	cat[m.Name] = m
}

// Lookup finds a metric by fully-qualified identifier. The category is
// everything before the last dot.
func (t *Tree) Lookup(identifier string) (*Metric, bool) {
	cat, name := "", identifier
	if i := strings.LastIndex(identifier, "."); i >= 0 {
		cat, name = identifier[:i], identifier[i+1:]
	}
	m, ok := t.Metrics[cat][name]
	return m, ok
}

// SortedPings returns pings ordered by name.
func (t *Tree) SortedPings() []*Ping {
	out := make([]*Ping, 0, len(t.Pings))
	for _, p := range t.Pings {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SortedTags returns tags ordered by name.
func (t *Tree) SortedTags() []*Tag {
	out := make([]*Tag, 0, len(t.Tags))
	for _, tg := range t.Tags {
		out = append(out, tg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of metrics, pings and tags.
func (t *Tree) Len() (metrics, pings, tags int) {
	for _, c := range t.Metrics {
		metrics += len(c)
	}
	return metrics, len(t.Pings), len(t.Tags)
}
