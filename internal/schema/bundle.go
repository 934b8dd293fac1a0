package schema

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Validate runs the compiled schema over a decoded document. Values are
// re-encoded so that numbers reach the validator as json.Number.
func (b *Bundle) Validate(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return b.Schema.Validate(doc)
}

// Node resolves a JSON pointer (without the leading '#') inside the schema
// document.
func (b *Bundle) Node(pointer string) (any, bool) {
	var cur any = b.Doc
	if pointer == "" || pointer == "/" {
		return cur, true
	}
	for _, tok := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[tok]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Describe returns the description of the schema node owning the keyword at
// an absolute keyword location ("<id>#/definitions/metric/required").
func (b *Bundle) Describe(absKeywordLocation string) string {
	_, pointer, ok := strings.Cut(absKeywordLocation, "#")
	if !ok {
		return ""
	}
	// последний токен — сам keyword
	if i := strings.LastIndex(pointer, "/"); i >= 0 {
		pointer = pointer[:i]
	}
	node, ok := b.Node(pointer)
	if !ok {
		return ""
	}
	m, ok := node.(map[string]any)
	if !ok {
		return ""
	}
	desc, _ := m["description"].(string)
	return desc
}
