package document

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/jsonc"
)

// Format is the markup language of an input document.
type Format uint8

const (
	FormatYAML Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "yaml"
}

// UnknownExtensionError is returned for files that are neither YAML nor JSON.
type UnknownExtensionError struct {
	Ext string
}

func (e *UnknownExtensionError) Error() string {
	return fmt.Sprintf("Unknown file extension %s", e.Ext)
}

// ErrNotAMapping: корень документа не словарь.
var ErrNotAMapping = errors.New("document root must be a mapping")

// Position is a 1-based key position inside a YAML document.
type Position struct {
	Line int
	Col  int
}

// Document is a decoded input file.
type Document struct {
	Path      string
	Format    Format
	Root      map[string]any
	positions map[string]Position
}

// FormatFor picks the decoder from the file extension.
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return 0, &UnknownExtensionError{Ext: ext}
	}
}

// Decode parses content according to the extension of path.
func Decode(path string, content []byte) (*Document, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	return DecodeAs(path, format, content)
}

// DecodeAs parses content with an explicit format; used for in-memory inputs.
func DecodeAs(path string, format Format, content []byte) (*Document, error) {
	doc := &Document{Path: path, Format: format, positions: map[string]Position{}}

	var root any
	switch format {
	case FormatJSON:
		v, err := decodeJSON(content)
		if err != nil {
			return nil, err
		}
		root = v
	default:
		r := newYAMLReader(bytes.NewReader(content))
		v, err := r.readSingle()
		if err != nil {
			return nil, err
		}
		root = v
		doc.positions = r.positions
	}

	switch v := root.(type) {
	case nil:
		doc.Root = map[string]any{}
	case map[string]any:
		doc.Root = v
	default:
		return nil, ErrNotAMapping
	}
	return doc, nil
}

// Pos returns the position of the key addressed by keys, if it was recorded.
func (d *Document) Pos(keys ...string) (Position, bool) {
	if d == nil || len(keys) == 0 {
		return Position{}, false
	}
	p, ok := d.positions[pathKey(keys)]
	return p, ok
}

func decodeJSON(content []byte) (any, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(content)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return fromJSON(v), nil
}

// fromJSON приводит json.Number к int64/float64, как у YAML-ридера.
func fromJSON(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = fromJSON(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = fromJSON(e)
		}
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		return v
	}
}
