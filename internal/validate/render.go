package validate

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"gopkg.in/yaml.v3"

	"meterc/internal/schema"
)

const wrapWidth = 70

// render builds the body of a schema-violation diagnostic:
//
//	```
//	<fragment>
//	```
//
//	<message>
//	    <failed branches>
//
//	Documentation for this node:
//	    <description>
func render(bundle *schema.Bundle, content map[string]any, l leaf) string {
	tokens := pointerTokens(l.err.InstanceLocation)
	var instance any
	if strings.Contains(l.err.KeywordLocation, "/propertyNames") && len(tokens) > 0 {
		// нарушено имя ключа, а не значение: показываем само имя
		instance = tokens[len(tokens)-1]
		tokens = tokens[:len(tokens)-1]
	} else {
		instance = instanceAt(content, tokens)
	}

	parts := []string{
		"```",
		strings.TrimRight(fragment(content, instance, tokens), "\n"),
		"```",
		"",
		wordwrap.String(message(l, instance), wrapWidth),
	}
	for _, c := range l.context {
		parts = append(parts, indent.String(wordwrap.String(c, wrapWidth-4), 4))
	}
	if desc := strings.TrimSpace(bundle.Describe(l.err.AbsoluteKeywordLocation)); desc != "" {
		parts = append(parts, "", "Documentation for this node:", indent.String(desc, 4))
	}
	return strings.Join(parts, "\n")
}

func message(l leaf, instance any) string {
	msg := l.err.Message
	if isBranching(l.err.KeywordLocation) && strings.HasSuffix(msg, "failed") {
		return quote(instance) + " is not valid under any of the given schemas"
	}
	return msg
}

// fragment reconstructs the minimal YAML document leading to instance.
func fragment(content map[string]any, instance any, tokens []string) string {
	// какие уровни пути — списки
	isList := make([]bool, len(tokens))
	var cur any = content
	for i, tok := range tokens {
		switch node := cur.(type) {
		case []any:
			isList[i] = true
			if n, err := strconv.Atoi(tok); err == nil && n >= 0 && n < len(node) {
				cur = node[n]
			} else {
				cur = nil
			}
		case map[string]any:
			cur = node[tok]
		default:
			cur = nil
		}
	}

	v := instance
	for i := len(tokens) - 1; i >= 0; i-- {
		if isList[i] {
			v = []any{v}
			continue
		}
		v = map[string]any{tokens[i]: v}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return quote(instance)
	}
	_ = enc.Close()
	return buf.String()
}
