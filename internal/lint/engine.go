package lint

import (
	"slices"
	"sort"

	"meterc/internal/model"
)

// Run lints tree and returns the nits in a stable order: categories in
// lexicographic order (category checks first, then each metric by name),
// then pings by name, then tags by name.
func Run(tree *model.Tree, cfg *model.Config) []Nit {
	if cfg == nil {
		cfg = &model.Config{}
	}
	e := env{cfg: cfg, tree: tree}
	var nits []Nit

	for _, category := range tree.Categories() {
		metrics := tree.Category(category)
		for _, c := range categoryChecks {
			if slices.ContainsFunc(metrics, func(m *model.Metric) bool { return m.Suppressed(c.Name) }) {
				continue
			}
			for _, msg := range c.run(e, category, metrics) {
				nits = append(nits, Nit{
					Check:    c.Name,
					Code:     c.Code,
					Severity: c.Severity,
					Target:   category,
					Message:  msg,
					Where:    metrics[0].DefinedIn,
				})
			}
		}
		for _, m := range metrics {
			var fired []string
			for _, c := range metricChecks {
				msgs := c.run(e, m)
				if len(msgs) == 0 {
					continue
				}
				fired = append(fired, c.Name)
				if m.Suppressed(c.Name) {
					continue
				}
				for _, msg := range msgs {
					nits = append(nits, Nit{c.Name, c.Code, c.Severity, m.Identifier(), msg, m.DefinedIn})
				}
			}
			nits = append(nits, superfluous(m.Identifier(), m.NoLint, fired, m.DefinedIn)...)
		}
	}

	for _, p := range tree.SortedPings() {
		var fired []string
		for _, c := range pingChecks {
			msgs := c.run(e, p)
			if len(msgs) == 0 {
				continue
			}
			fired = append(fired, c.Name)
			if p.Suppressed(c.Name) {
				continue
			}
			for _, msg := range msgs {
				nits = append(nits, Nit{c.Name, c.Code, c.Severity, p.Name, msg, p.DefinedIn})
			}
		}
		nits = append(nits, superfluous(p.Name, p.NoLint, fired, p.DefinedIn)...)
	}

	// у тегов нет своих проверок: любой no_lint на теге лишний
	for _, t := range tree.SortedTags() {
		nits = append(nits, superfluous(t.Name, t.NoLint, nil, t.DefinedIn)...)
	}
	return nits
}

// superfluous reports the object's own no_lint entries that silenced nothing.
// Category checks are never superfluous on a metric: they act on the category.
func superfluous(target string, noLint, fired []string, where model.Provenance) []Nit {
	var out []Nit
	entries := slices.Clone(noLint)
	sort.Strings(entries)
	for _, check := range slices.Compact(entries) {
		if slices.Contains(fired, check) || isCategoryCheck(check) {
			continue
		}
		out = append(out, Nit{
			Check:    SuperfluousNoLint,
			Code:     superfluousInfo.Code,
			Severity: superfluousInfo.Severity,
			Target:   target,
			Message:  "Superfluous no_lint entry '" + check + "'. Please remove it.",
			Where:    where,
		})
	}
	return out
}

func isCategoryCheck(name string) bool {
	for _, c := range categoryChecks {
		if c.Name == name {
			return true
		}
	}
	return false
}
