package schema

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	fam, ver, ok := ParseID(MetricsID)
	require.True(t, ok)
	assert.Equal(t, FamilyMetrics, fam)
	assert.Equal(t, "2-0-0", ver)

	fam, _, ok = ParseID(TagsID)
	require.True(t, ok)
	assert.Equal(t, FamilyTags, fam)

	for _, bad := range []string{"", "moz://mozilla.org/schemas/glean/metrics", "http://example.com/x/1", idPrefix + "probes/1-0-0"} {
		_, _, ok := ParseID(bad)
		assert.False(t, ok, bad)
	}
}

func TestRegistryKnown(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{MetricsID, PingsID, TagsID}, r.Known())

	id, ok := r.IDFor(FamilyPings)
	require.True(t, ok)
	assert.Equal(t, PingsID, id)
}

func TestRegistryGetMemoizes(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	var wg sync.WaitGroup
	got := make([]*Bundle, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := r.Get(MetricsID)
			assert.NoError(t, err)
			got[i] = b
		}(i)
	}
	wg.Wait()
	for _, b := range got {
		assert.Same(t, got[0], b)
	}
	assert.Equal(t, FamilyMetrics, got[0].Family)
}

func TestRegistryUnknown(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Get("moz://mozilla.org/schemas/glean/metrics/9-9-9")
	var use *UnknownSchemaError
	require.True(t, errors.As(err, &use))
	assert.Equal(t, r.Known(), use.Known)
	assert.Contains(t, err.Error(), MetricsID)
}

func TestBundleValidate(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	b, err := r.Get(TagsID)
	require.NoError(t, err)

	ok := map[string]any{
		"$schema":            TagsID,
		"Testing :: General": map[string]any{"description": "testing"},
	}
	assert.NoError(t, b.Validate(ok))

	bad := map[string]any{
		"$schema": TagsID,
		"Tag":     map[string]any{"extra": 1},
	}
	assert.Error(t, b.Validate(bad))
}

func TestBundleDescribe(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	b, err := r.Get(MetricsID)
	require.NoError(t, err)

	desc := b.Describe(MetricsID + "#/definitions/metric/properties/lifetime/enum")
	assert.Contains(t, desc, "Defines the lifetime of the metric")
	assert.Empty(t, b.Describe(MetricsID+"#/nope/type"))
	assert.Empty(t, b.Describe("no-fragment"))
}
