package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/layermerge/internal/fsops"
)

func TestFileStore_LoadMissing(t *testing.T) {
	store := NewFileStore(fsops.NewRealFS(), filepath.Join(t.TempDir(), "state"))

	_, err := store.Load()
	assert.True(t, errors.Is(err, os.ErrNotExist), "expected os.ErrNotExist, got %v", err)
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	store := NewFileStore(fsops.NewRealFS(), dir)

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewRunManifest(started)
	m.FinishedAt = started.Add(time.Second)
	m.Output = "/out"
	m.Strategy = "symlink"
	m.MergedRoot = "/merged"
	m.Layers = []string{"/layers/B", "/layers/A"}
	m.BaseLinked = true
	m.Linked = 2
	m.Winners["data/item.txt"] = "/layers/B"
	m.Winners["content/a.bin"] = "/layers/A"

	require.NoError(t, store.Save(m))
	assert.FileExists(t, filepath.Join(dir, ManifestFile))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, m.Output, loaded.Output)
	assert.Equal(t, m.Strategy, loaded.Strategy)
	assert.Equal(t, m.Layers, loaded.Layers)
	assert.Equal(t, m.Winners, loaded.Winners)
	assert.True(t, loaded.BaseLinked)
	assert.Equal(t, 2, loaded.Linked)
	assert.Equal(t, time.Second, loaded.Duration())
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	store := NewFileStore(fsops.NewRealFS(), t.TempDir())

	first := NewRunManifest(time.Now())
	first.Output = "/first"
	require.NoError(t, store.Save(first))

	second := NewRunManifest(time.Now())
	second.Output = "/second"
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "/second", loaded.Output)
}

func TestFileStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("{not json"), 0644))

	_, err := NewFileStore(fsops.NewRealFS(), dir).Load()
	require.Error(t, err)
	assert.False(t, errors.Is(err, os.ErrNotExist))
}

func TestFileStore_NewerVersionRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(`{"version": 99}`), 0644))

	_, err := NewFileStore(fsops.NewRealFS(), dir).Load()
	assert.ErrorContains(t, err, "unsupported run manifest version")
}

func TestFileStore_Clear(t *testing.T) {
	store := NewFileStore(fsops.NewRealFS(), t.TempDir())

	require.NoError(t, store.Clear(), "clearing a missing manifest is not an error")
	require.NoError(t, store.Save(NewRunManifest(time.Now())))
	require.NoError(t, store.Clear())

	_, err := store.Load()
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
