package cache

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meterc/internal/diag"
	"meterc/internal/source"
)

func TestStoreRoundTrip(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "c", "validation.db"), zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.yaml", []byte("a: 1\n")))
	key := KeyFor("moz://x/metrics/2-0-0", file.Hash)

	_, ok, err := s.Get(key, "a.yaml")
	require.NoError(t, err)
	assert.False(t, ok)

	d := diag.NewError(diag.SchViolation, "a.yaml", "a", "bad")
	d.Pos = source.LineCol{Line: 1, Col: 1}
	require.NoError(t, s.Put(key, "moz://x/metrics/2-0-0", []diag.Diagnostic{d}))

	got, ok, err := s.Get(key, "copy.yaml")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "copy.yaml", got[0].Path)
	assert.Equal(t, diag.SchViolation, got[0].Code)
	assert.Equal(t, uint32(1), got[0].Pos.Line)

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.DropAll())
	n, err = s.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestKeyDependsOnSchema(t *testing.T) {
	var h source.Hash
	assert.NotEqual(t, KeyFor("a", h), KeyFor("b", h))
	assert.Len(t, KeyFor("a", h).String(), 64)
}

func TestNilStore(t *testing.T) {
	var s *Store
	_, ok, err := s.Get(Key{}, "x")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, s.Put(Key{}, "", nil))
	assert.NoError(t, s.Close())
}
