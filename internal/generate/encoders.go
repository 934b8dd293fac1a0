package generate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"

	"meterc/internal/model"
)

// JSON writes metrics.json with sorted keys.
type JSON struct{}

func (JSON) Name() string           { return "json" }
func (JSON) Patterns() []string     { return []string{"*.json"} }
func (JSON) KnownOptions() []string { return []string{"indent"} }

func (g JSON) Generate(ctx context.Context, tree *model.Tree, dir string, opts Options) ([]string, error) {
	warnings := CheckOptions(g, opts)
	view, err := exportTree(tree, opts)
	if err != nil {
		return warnings, err
	}
	indent := 2
	if v, ok := opts["indent"]; ok {
		if indent, err = strconv.Atoi(v); err != nil || indent < 0 {
			warnings = append(warnings, "Option 'indent' must be a non-negative integer; using 2")
			indent = 2
		}
	}
	var data []byte
	if indent == 0 {
		data, err = json.Marshal(view)
	} else {
		data, err = json.MarshalIndent(view, "", string(bytes.Repeat([]byte{' '}, indent)))
	}
	if err != nil {
		return warnings, err
	}
	return warnings, writeFile(ctx, dir, filename(opts, "metrics.json"), append(data, '\n'))
}

// Msgpack writes metrics.msgpack; map keys are sorted for stable output.
type Msgpack struct{}

func (Msgpack) Name() string           { return "msgpack" }
func (Msgpack) Patterns() []string     { return []string{"*.msgpack"} }
func (Msgpack) KnownOptions() []string { return nil }

func (g Msgpack) Generate(ctx context.Context, tree *model.Tree, dir string, opts Options) ([]string, error) {
	warnings := CheckOptions(g, opts)
	view, err := exportTree(tree, opts)
	if err != nil {
		return warnings, err
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(view); err != nil {
		return warnings, err
	}
	return warnings, writeFile(ctx, dir, filename(opts, "metrics.msgpack"), buf.Bytes())
}

// CBOR writes metrics.cbor in core deterministic encoding.
type CBOR struct{}

func (CBOR) Name() string           { return "cbor" }
func (CBOR) Patterns() []string     { return []string{"*.cbor"} }
func (CBOR) KnownOptions() []string { return nil }

func (g CBOR) Generate(ctx context.Context, tree *model.Tree, dir string, opts Options) ([]string, error) {
	warnings := CheckOptions(g, opts)
	view, err := exportTree(tree, opts)
	if err != nil {
		return warnings, err
	}
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return warnings, err
	}
	data, err := em.Marshal(view)
	if err != nil {
		return warnings, err
	}
	return warnings, writeFile(ctx, dir, filename(opts, "metrics.cbor"), data)
}

func writeFile(ctx context.Context, dir, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, filepath.Base(name)), data, 0o644) // #nosec G306
}
