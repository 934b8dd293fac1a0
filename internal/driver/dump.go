package driver

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"meterc/internal/model"
	"meterc/internal/pipeline"
)

// DumpFormats lists the encodings EncodeTree understands.
var DumpFormats = []string{"json", "yaml"}

// Dump loads the inputs and applies the transform without linting, so the
// tree shows exactly what generators would receive.
func Dump(ctx context.Context, opts Options) (*Result, error) {
	r, err := newRun(opts)
	if err != nil {
		return nil, err
	}
	defer r.finish(pipeline.StageTransform)
	if err := r.transformedTree(ctx); err != nil {
		return r.res, err
	}
	return r.res, nil
}

// EncodeTree writes the serialised tree to w. Map keys come out sorted in
// both formats.
func EncodeTree(w io.Writer, tree *model.Tree, format string) error {
	view := tree.Serialize()
	switch format {
	case "", "json":
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown dump format %q (expected one of %v)", format, DumpFormats)
	}
}
