package document

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeYAMLKeepsDatesAsStrings(t *testing.T) {
	doc, err := Decode("metrics.yaml", []byte("cat:\n  m:\n    expires: 2000-01-01\n    version: 2\n    ratio: 0.5\n    on: true\n"))
	require.NoError(t, err)

	m := doc.Root["cat"].(map[string]any)["m"].(map[string]any)
	assert.Equal(t, "2000-01-01", m["expires"])
	assert.Equal(t, int64(2), m["version"])
	assert.Equal(t, 0.5, m["ratio"])
	assert.Equal(t, true, m["on"])

	pos, ok := doc.Pos("cat", "m")
	require.True(t, ok)
	assert.Equal(t, Position{Line: 2, Col: 3}, pos)
}

func TestDecodeYAMLDuplicateKey(t *testing.T) {
	_, err := Decode("m.yaml", []byte("cat:\n  m: 1\n  m: 2\n"))
	var de *DuplicateKeyError
	require.True(t, errors.As(err, &de), "got %v", err)
	assert.Equal(t, "m", de.Key)
	assert.Equal(t, 2, de.FirstLine)
	assert.Equal(t, 3, de.Line)
}

func TestDecodeYAMLMergeKey(t *testing.T) {
	src := "base: &b\n  description: x\ncat:\n  m:\n    <<: *b\n    type: counter\n"
	doc, err := Decode("m.yaml", []byte(src))
	require.NoError(t, err)
	m := doc.Root["cat"].(map[string]any)["m"].(map[string]any)
	assert.Equal(t, "x", m["description"])
	assert.Equal(t, "counter", m["type"])
}

func TestDecodeEmptyAndNonMapping(t *testing.T) {
	doc, err := Decode("empty.yml", nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Root)

	_, err = Decode("list.yaml", []byte("- a\n- b\n"))
	assert.ErrorIs(t, err, ErrNotAMapping)

	_, err = Decode("multi.yaml", []byte("a: 1\n---\nb: 2\n"))
	assert.Error(t, err)
}

func TestDecodeJSONWithComments(t *testing.T) {
	src := `{
  // category
  "cat": {"m": {"version": 3, "ratio": 1.5, "bugs": [12],},},
}`
	doc, err := Decode("metrics.json", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, doc.Format)
	m := doc.Root["cat"].(map[string]any)["m"].(map[string]any)
	assert.Equal(t, int64(3), m["version"])
	assert.Equal(t, 1.5, m["ratio"])
	assert.Equal(t, []any{int64(12)}, m["bugs"])

	_, ok := doc.Pos("cat")
	assert.False(t, ok)
}

func TestUnknownExtension(t *testing.T) {
	_, err := Decode("metrics.txt", []byte("a: 1"))
	var ue *UnknownExtensionError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "Unknown file extension .txt", err.Error())
}
