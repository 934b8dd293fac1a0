package outwrite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func renderFiles(files map[string]string) RenderFunc {
	return func(_ context.Context, dir string) error {
		for name, content := range files {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestWritePromotesAndClears(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gen")
	require.NoError(t, os.MkdirAll(out, 0o755))
	write(t, filepath.Join(out, "old.json"), "{}")
	write(t, filepath.Join(out, "README.md"), "hand written")

	res, err := Write(context.Background(), out, Options{
		ClearPatterns: []string{"*.json"},
		OwnedPatterns: []string{"*.json"},
		Log:           zerolog.Nop(),
	}, renderFiles(map[string]string{"metrics.json": `{"a":1}`}))
	require.NoError(t, err)

	assert.Equal(t, []string{"metrics.json"}, res.Written)
	assert.Equal(t, []string{"old.json"}, res.Removed)
	assert.Empty(t, res.Leftovers)

	got, err := os.ReadFile(filepath.Join(out, "metrics.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
	assert.FileExists(t, filepath.Join(out, "README.md"))
	assert.NoFileExists(t, filepath.Join(out, "old.json"))

	// scratch-каталог не остаётся рядом с назначением
	siblings, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, siblings, 1)
}

func TestWriteFailureLeavesDestination(t *testing.T) {
	out := t.TempDir()
	write(t, filepath.Join(out, "metrics.json"), "previous")

	_, err := Write(context.Background(), out, Options{ClearPatterns: []string{"*"}, Log: zerolog.Nop()},
		func(_ context.Context, dir string) error {
			write(t, filepath.Join(dir, "metrics.json"), "partial")
			return errors.New("generator exploded")
		})
	require.EqualError(t, err, "generator exploded")

	got, err := os.ReadFile(filepath.Join(out, "metrics.json"))
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))
}

func TestWriteRejectsDirectoryBeforeClearing(t *testing.T) {
	out := t.TempDir()
	write(t, filepath.Join(out, "metrics.json"), "previous")

	res, err := Write(context.Background(), out, Options{ClearPatterns: []string{"*.json"}, Log: zerolog.Nop()},
		func(_ context.Context, dir string) error {
			write(t, filepath.Join(dir, "metrics.json"), "new")
			return os.Mkdir(filepath.Join(dir, "nested"), 0o755)
		})
	require.ErrorContains(t, err, `generator produced a directory "nested"`)
	assert.Nil(t, res)

	got, err := os.ReadFile(filepath.Join(out, "metrics.json"))
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))
}

func TestWriteReportsLeftovers(t *testing.T) {
	out := t.TempDir()
	write(t, filepath.Join(out, "stale.msgpack"), "x")

	res, err := Write(context.Background(), out, Options{
		ClearPatterns: []string{"*.json"},
		OwnedPatterns: []string{"*.json", "*.msgpack"},
		Log:           zerolog.Nop(),
	}, renderFiles(map[string]string{"metrics.json": "{}"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"stale.msgpack"}, res.Leftovers)
}

func TestWriteRejectsBadPattern(t *testing.T) {
	_, err := Write(context.Background(), t.TempDir(), Options{ClearPatterns: []string{"[x"}},
		renderFiles(nil))
	require.Error(t, err)
}

func TestWriteCancelled(t *testing.T) {
	out := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	_, err := Write(ctx, out, Options{Log: zerolog.Nop()}, func(_ context.Context, dir string) error {
		cancel()
		write(t, filepath.Join(dir, "metrics.json"), "{}")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(out, "metrics.json"))
}
