package validate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"meterc/internal/diag"
	"meterc/internal/document"
	"meterc/internal/schema"
)

// Validator runs schema validation and renders every violation as a diagnostic.
type Validator struct {
	reg *schema.Registry
}

func New(reg *schema.Registry) *Validator {
	return &Validator{reg: reg}
}

// Validate checks content against schemaID. It never fails: every problem,
// including an unresolvable identifier, comes back as a diagnostic.
func (v *Validator) Validate(content map[string]any, schemaID, label string) []diag.Diagnostic {
	return v.validate(content, schemaID, label, nil)
}

// ValidateDocument is Validate plus key positions taken from the decoded document.
func (v *Validator) ValidateDocument(doc *document.Document, schemaID string) []diag.Diagnostic {
	return v.validate(doc.Root, schemaID, doc.Path, doc)
}

func (v *Validator) validate(content map[string]any, schemaID, label string, doc *document.Document) []diag.Diagnostic {
	bag := diag.NewBag(0)

	if declared, ok := content["$schema"]; ok && declared != schemaID {
		d := diag.NewError(diag.SchMismatch, label, "", fmt.Sprintf("$schema key must be set to %s", schemaID))
		if p, ok := doc.Pos("$schema"); ok {
			d.Pos.Line, d.Pos.Col = uint32(p.Line), uint32(p.Col) // #nosec G115
		}
		bag.Add(d)
	}

	bundle, err := v.reg.Get(schemaID)
	if err != nil {
		bag.Add(diag.NewError(diag.SchUnknownID, label, "", err.Error()))
		return bag.Items()
	}

	err = bundle.Validate(content)
	if err == nil {
		return bag.Items()
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		bag.Add(diag.NewError(diag.SchViolation, label, "", err.Error()))
		return bag.Items()
	}

	for _, l := range leaves(ve) {
		tokens := pointerTokens(l.err.InstanceLocation)
		d := diag.NewError(diag.SchViolation, label, strings.Join(tokens, "."), render(bundle, content, l))
		if p, ok := position(doc, tokens); ok {
			d.Pos.Line, d.Pos.Col = uint32(p.Line), uint32(p.Col) // #nosec G115
		}
		bag.Add(d)
	}
	bag.Dedup()
	bag.Sort()
	return bag.Items()
}

// leaf — конечное нарушение; для anyOf/oneOf context хранит провалы веток.
type leaf struct {
	err     *jsonschema.ValidationError
	context []string
}

func leaves(ve *jsonschema.ValidationError) []leaf {
	var out []leaf
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if isBranching(e.KeywordLocation) && len(e.Causes) > 0 {
			l := leaf{err: e}
			for _, c := range e.Causes {
				for _, sub := range leaves(c) {
					l.context = append(l.context, sub.err.Message)
				}
			}
			out = append(out, l)
			return
		}
		if len(e.Causes) == 0 {
			out = append(out, leaf{err: e})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}

func isBranching(keywordLocation string) bool {
	return strings.HasSuffix(keywordLocation, "/anyOf") || strings.HasSuffix(keywordLocation, "/oneOf")
}

func pointerTokens(ptr string) []string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return nil
	}
	toks := strings.Split(ptr, "/")
	for i, t := range toks {
		toks[i] = strings.ReplaceAll(strings.ReplaceAll(t, "~1", "/"), "~0", "~")
	}
	return toks
}

// instanceAt walks the decoded document along tokens.
func instanceAt(root any, tokens []string) any {
	cur := root
	for _, tok := range tokens {
		switch node := cur.(type) {
		case map[string]any:
			cur = node[tok]
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
	}
	return cur
}

func position(doc *document.Document, tokens []string) (document.Position, bool) {
	if doc == nil {
		return document.Position{}, false
	}
	// позиции известны только для ключей словарей; поднимаемся до ближайшего
	for n := len(tokens); n > 0; n-- {
		if p, ok := doc.Pos(tokens[:n]...); ok {
			return p, true
		}
	}
	return document.Position{}, false
}

func quote(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
