package document

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// глубина, до которой запоминаем позиции ключей: файл / категория / объект / поле
const maxTrackedDepth = 4

type yamlReader struct {
	dec       *yaml.Decoder
	positions map[string]Position
}

func newYAMLReader(r io.Reader) *yamlReader {
	return &yamlReader{dec: yaml.NewDecoder(r), positions: make(map[string]Position)}
}

// readSingle decodes exactly one YAML document. An empty stream yields nil.
func (s *yamlReader) readSingle() (any, error) {
	var root yaml.Node
	if err := s.dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	var extra yaml.Node
	if err := s.dec.Decode(&extra); err == nil {
		return nil, errors.New("expected a single YAML document, found several")
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	return s.node(root.Content[0], nil)
}

func (s *yamlReader) node(n *yaml.Node, keys []string) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return s.node(n.Content[0], keys)
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		return s.node(n.Alias, keys)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			v := n.Content[i+1]
			// merge key `<<: *anchor`
			if k.Tag == "!!merge" {
				merged, err := s.node(v, keys)
				if err != nil {
					return nil, err
				}
				if mm, ok := merged.(map[string]any); ok {
					for mk, mv := range mm {
						if _, exists := m[mk]; !exists {
							m[mk] = mv
						}
					}
				}
				continue
			}
			key := k.Value
			if pos, dup := first[key]; dup {
				return nil, &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[key] = [2]int{k.Line, k.Column}
			path := append(keys[:len(keys):len(keys)], key)
			if len(path) <= maxTrackedDepth {
				s.positions[pathKey(path)] = Position{Line: k.Line, Col: k.Column}
			}
			val, err := s.node(v, path)
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := s.node(c, keys)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalar(n), nil
	default:
		return nil, nil
	}
}

func scalar(n *yaml.Node) any {
	switch n.Tag {
	case "!!str", "!", "":
		return n.Value
	case "!!null":
		return nil
	case "!!bool":
		switch strings.ToLower(n.Value) {
		case "true":
			return true
		case "false":
			return false
		}
		return n.Value
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return i
		}
		return n.Value
	case "!!float":
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return f
		}
		return n.Value
	default:
		// !!timestamp и прочее оставляем строкой: схемы сравнивают даты как строки
		return n.Value
	}
}

func pathKey(keys []string) string {
	return strings.Join(keys, "\x1f")
}
