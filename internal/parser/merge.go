package parser

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"meterc/internal/diag"
	"meterc/internal/document"
	"meterc/internal/model"
	"meterc/internal/schema"
)

// merger folds loaded documents into one Tree. Documents must be merged in
// canonical path order: the first definition of an identifier wins.
type merger struct {
	tree *model.Tree
	cfg  *model.Config
	r    diag.Reporter

	// identifier -> путь файла первого определения (включая неудачные)
	seenMetrics map[string]string
	seenPings   map[string]string
	seenTags    map[string]string
}

func newMerger(tree *model.Tree, cfg *model.Config, r diag.Reporter) *merger {
	return &merger{
		tree:        tree,
		cfg:         cfg,
		r:           r,
		seenMetrics: make(map[string]string),
		seenPings:   make(map[string]string),
		seenTags:    make(map[string]string),
	}
}

func (m *merger) merge(l loaded) error {
	switch l.family {
	case schema.FamilyMetrics:
		return m.mergeMetrics(l.doc)
	case schema.FamilyPings:
		return m.mergePings(l.doc)
	case schema.FamilyTags:
		return m.mergeTags(l.doc)
	case schema.FamilyUnknown:
		if len(l.doc.Root) == 0 {
			return nil
		}
	}
	diag.ReportError(m.r, diag.MrgUnknownFamily, l.doc.Path,
		fmt.Sprintf("Unknown document family for schema '%s'", l.schemaID)).Emit()
	return nil
}

// isMetaKey reports keys that carry document metadata instead of objects.
func isMetaKey(k string) bool {
	return strings.HasPrefix(k, "$") || k == "no_lint"
}

func sortedKeys(mp map[string]any) []string {
	keys := make([]string, 0, len(mp))
	for k := range mp {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (m *merger) mergeMetrics(doc *document.Document) error {
	fileNoLint := stringList(doc.Root["no_lint"])
	fileTags := stringList(doc.Root["$tags"])

	for _, category := range sortedKeys(doc.Root) {
		if isMetaKey(category) {
			continue
		}
		if category == model.PingsCategory || category == model.TagsCategory {
			m.report(diag.MrgReservedCategory, doc, category,
				fmt.Sprintf("'%s' is reserved as a category name.", category), category)
			continue
		}
		objects, ok := doc.Root[category].(map[string]any)
		if !ok {
			continue
		}
		for _, name := range sortedKeys(objects) {
			identifier := name
			if category != "" {
				identifier = category + "." + name
			}
			pos, _ := doc.Pos(category, name)
			if first, dup := m.seenMetrics[identifier]; dup {
				m.report(diag.MrgDuplicate, doc, identifier,
					fmt.Sprintf("Duplicate metric name '%s' already defined in '%s'", identifier, first),
					category, name)
				continue
			}
			m.seenMetrics[identifier] = doc.Path

			fields, _ := objects[name].(map[string]any)
			metric, err := model.NewMetric(category, name, fields, m.cfg)
			if err != nil {
				if _, fatal := diag.AsFatal(err); fatal {
					return withPath(err, doc.Path)
				}
				m.report(model.CodeOf(err), doc, identifier, err.Error(), category, name)
				continue
			}
			metric.FileNoLint = fileNoLint
			if len(fileTags) > 0 {
				metric.Tags = mergeTags(metric.Tags, fileTags)
			}
			metric.DefinedIn = model.Provenance{Path: doc.Path, Line: pos.Line, Col: pos.Col}
			m.tree.AddMetric(metric)
		}
	}
	return nil
}

func (m *merger) mergePings(doc *document.Document) error {
	fileNoLint := stringList(doc.Root["no_lint"])
	for _, name := range sortedKeys(doc.Root) {
		if isMetaKey(name) {
			continue
		}
		if first, dup := m.seenPings[name]; dup {
			m.report(diag.MrgDuplicate, doc, name,
				fmt.Sprintf("Duplicate ping name '%s' already defined in '%s'", name, first), name)
			continue
		}
		m.seenPings[name] = doc.Path

		if model.IsReservedPing(name) && !m.cfg.AllowReserved {
			m.report(diag.MrgReservedPing, doc, name,
				fmt.Sprintf("Ping uses a reserved name: '%s'", name), name)
			continue
		}
		fields, _ := doc.Root[name].(map[string]any)
		ping, err := model.NewPing(name, fields, m.cfg)
		if err != nil {
			m.report(model.CodeOf(err), doc, name, err.Error(), name)
			continue
		}
		if slices.Contains(ping.Schedule, name) {
			m.report(diag.MrgSelfSchedule, doc, name,
				fmt.Sprintf("Ping '%s' cannot be scheduled on itself", name), name, "metadata", "ping_schedule")
			continue
		}
		pos, _ := doc.Pos(name)
		ping.FileNoLint = fileNoLint
		ping.DefinedIn = model.Provenance{Path: doc.Path, Line: pos.Line, Col: pos.Col}
		m.tree.Pings[name] = ping
	}
	return nil
}

func (m *merger) mergeTags(doc *document.Document) error {
	for _, name := range sortedKeys(doc.Root) {
		if isMetaKey(name) {
			continue
		}
		if first, dup := m.seenTags[name]; dup {
			m.report(diag.MrgDuplicate, doc, name,
				fmt.Sprintf("Duplicate tag name '%s' already defined in '%s'", name, first), name)
			continue
		}
		m.seenTags[name] = doc.Path

		fields, _ := doc.Root[name].(map[string]any)
		tag, err := model.NewTag(name, fields, m.cfg)
		if err != nil {
			m.report(model.CodeOf(err), doc, name, err.Error(), name)
			continue
		}
		pos, _ := doc.Pos(name)
		tag.DefinedIn = model.Provenance{Path: doc.Path, Line: pos.Line, Col: pos.Col}
		m.tree.Tags[name] = tag
	}
	return nil
}

// report emits an error positioned at the deepest recorded key of keys.
func (m *merger) report(code diag.Code, doc *document.Document, header, msg string, keys ...string) {
	b := diag.ReportError(m.r, code, doc.Path, msg).WithHeader(header)
	for n := len(keys); n > 0; n-- {
		if pos, ok := doc.Pos(keys[:n]...); ok {
			b = b.At(pos.Line, pos.Col)
			break
		}
	}
	b.Emit()
}

func mergeTags(own, file []string) []string {
	out := append(slices.Clone(own), file...)
	sort.Strings(out)
	return slices.Compact(out)
}

func withPath(err error, path string) error {
	if fe, ok := diag.AsFatal(err); ok && fe.Path == "" {
		cp := *fe
		cp.Path = path
		return &cp
	}
	return err
}
