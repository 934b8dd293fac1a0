package generate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"meterc/internal/model"
)

func sampleTree() *model.Tree {
	t := model.NewTree()
	t.AddMetric(&model.Metric{Type: model.TypeCounter, Category: "browser", Name: "loads", SendInPings: []string{"metrics"}})
	t.AddMetric(&model.Metric{Type: model.TypeCounter, Category: "browser", Name: "old", Disabled: true})
	t.Pings["launch"] = &model.Ping{Name: "launch", Enabled: true}
	return t
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"cbor", "json", "msgpack"}, r.Names())

	_, err := r.Lookup("kotlin")
	var unknown *UnknownFormatError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "kotlin", unknown.Name)
}

func TestJSONGenerator(t *testing.T) {
	dir := t.TempDir()
	warnings, err := JSON{}.Generate(context.Background(), sampleTree(), dir, Options{"bogus": "1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Unknown option 'bogus' for format 'json'"}, warnings)

	data, err := os.ReadFile(filepath.Join(dir, "metrics.json"))
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Contains(t, got, "browser")
	assert.Contains(t, got, "pings")
	assert.Contains(t, got["browser"], "old")
}

func TestOmitDisabled(t *testing.T) {
	dir := t.TempDir()
	_, err := JSON{}.Generate(context.Background(), sampleTree(), dir, Options{OptOmitDisabled: "true", "indent": "0"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "metrics.json"))
	require.NoError(t, err)
	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Contains(t, got["browser"], "loads")
	assert.NotContains(t, got["browser"], "old")

	_, err = JSON{}.Generate(context.Background(), sampleTree(), dir, Options{OptOmitDisabled: "maybe"})
	require.Error(t, err)
}

func TestBinaryGeneratorsAreDeterministic(t *testing.T) {
	for _, g := range []Generator{Msgpack{}, CBOR{}} {
		t.Run(g.Name(), func(t *testing.T) {
			a, b := t.TempDir(), t.TempDir()
			_, err := g.Generate(context.Background(), sampleTree(), a, nil)
			require.NoError(t, err)
			_, err = g.Generate(context.Background(), sampleTree(), b, Options{OptFilename: "out." + g.Name()})
			require.NoError(t, err)

			first, err := os.ReadFile(filepath.Join(a, "metrics."+g.Name()))
			require.NoError(t, err)
			second, err := os.ReadFile(filepath.Join(b, "out."+g.Name()))
			require.NoError(t, err)
			assert.True(t, bytes.Equal(first, second))

			var decoded map[string]any
			if g.Name() == "cbor" {
				require.NoError(t, cbor.Unmarshal(first, &decoded))
			} else {
				require.NoError(t, msgpack.Unmarshal(first, &decoded))
			}
			assert.Contains(t, decoded, "browser")
		})
	}
}
