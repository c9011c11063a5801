package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newStore(t *testing.T) (*DataStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	cfg := DefaultConfig(path)
	cfg.AutoSaveInterval = 0
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)
	return ds, path
}

func TestCreatesEmptyFile(t *testing.T) {
	ds, path := newStore(t)
	defer ds.Close()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}

func TestPersistAndReload(t *testing.T) {
	ds, path := newStore(t)
	require.NoError(t, ds.Add("a", entry{Name: "x", Count: 2}))
	require.NoError(t, ds.Add("b", entry{Name: "y"}))
	ds.Delete("b")
	require.NoError(t, ds.Close())

	cfg := DefaultConfig(path)
	cfg.AutoSaveInterval = 0
	again, err := NewWithConfig(cfg)
	require.NoError(t, err)
	defer again.Close()

	var got entry
	ok, err := again.Decode("a", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, entry{Name: "x", Count: 2}, got)

	ok, err = again.Decode("b", &got)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	ds, _ := newStore(t)
	defer ds.Close()

	for _, k := range []string{"guild:2", "guild:1", "other"} {
		require.NoError(t, ds.Add(k, 1))
	}
	assert.Equal(t, []string{"guild:1", "guild:2"}, ds.Keys("guild:"))
}

func TestMemoryLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	cfg := DefaultConfig(path)
	cfg.AutoSaveInterval = 0
	cfg.MaxMemorySize = 10
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.Add("k", "short"))
	assert.Error(t, ds.Add("k2", "far too long for the limit"))
	_, ok := ds.Get("k2")
	assert.False(t, ok)
}

func TestClosedStore(t *testing.T) {
	ds, _ := newStore(t)
	require.NoError(t, ds.Close())
	require.NoError(t, ds.Close())

	assert.ErrorIs(t, ds.Add("k", 1), ErrClosed)
	assert.ErrorIs(t, ds.SaveToFile(), ErrClosed)
	_, ok := ds.Get("k")
	assert.False(t, ok)
}

func TestBackupsAreBounded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	cfg := DefaultConfig(path)
	cfg.AutoSaveInterval = 0
	cfg.BackupCount = 2
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)
	defer ds.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, ds.Add("n", i))
		require.NoError(t, ds.SaveToFile())
	}

	matches, err := filepath.Glob(path + ".backup.*")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(matches), 2)
}

func TestInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := New(path)
	assert.Error(t, err)
}
