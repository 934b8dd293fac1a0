package parser

import (
	"os"

	"meterc/internal/diag"
	"meterc/internal/document"
	"meterc/internal/schema"
	"meterc/internal/source"
)

// applyInteresting disables every metric and ping that is not also defined
// in one of the Config.Interesting documents. Unreadable interesting files
// are reported and contribute nothing.
func (p *Parser) applyInteresting(res *Result) error {
	metrics := make(map[string]struct{})
	pings := make(map[string]struct{})

	for _, path := range p.opts.Config.Interesting {
		// #nosec G304 -- path comes from configuration
		content, err := os.ReadFile(path)
		if err != nil {
			res.Bag.Add(diag.NewError(diag.IOInterestingFile, path, "", err.Error()))
			continue
		}
		content, _ = source.Normalize(content)
		doc, err := document.Decode(path, content)
		if err != nil {
			res.Bag.Add(diag.NewError(diag.IOInterestingFile, path, "", err.Error()))
			continue
		}
		id, _ := doc.Root["$schema"].(string)
		family, _, _ := schema.ParseID(id)
		switch family {
		case schema.FamilyMetrics:
			for _, category := range sortedKeys(doc.Root) {
				objects, ok := doc.Root[category].(map[string]any)
				if isMetaKey(category) || !ok {
					continue
				}
				for name := range objects {
					if category == "" {
						metrics[name] = struct{}{}
					} else {
						metrics[category+"."+name] = struct{}{}
					}
				}
			}
		case schema.FamilyPings:
			for name := range doc.Root {
				if !isMetaKey(name) {
					pings[name] = struct{}{}
				}
			}
		}
	}

	disabled := 0
	for _, m := range res.Tree.AllMetrics() {
		if _, ok := metrics[m.Identifier()]; !ok && !m.Disabled {
			m.Disabled = true
			disabled++
		}
	}
	for name, ping := range res.Tree.Pings {
		if _, ok := pings[name]; !ok && ping.Enabled {
			ping.Enabled = false
			disabled++
		}
	}
	p.opts.Log.Debug().Int("files", len(p.opts.Config.Interesting)).Int("disabled", disabled).Msg("interesting filter applied")
	return nil
}
