package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/layermerge/internal/config"
	"github.com/danieljhkim/layermerge/internal/engine"
	"github.com/danieljhkim/layermerge/internal/lock"
)

// setupTestEnv points LAYERMERGE_ROOT at a fresh directory with an empty layers root.
func setupTestEnv(t *testing.T) *config.Paths {
	t.Helper()

	root := t.TempDir()
	t.Setenv(config.RootEnv, root)
	paths := config.PathsAt(root)
	require.NoError(t, paths.EnsureDirectories())
	return paths
}

func writeLayerFile(t *testing.T, paths *config.Paths, rel, content string) {
	t.Helper()
	path := filepath.Join(paths.Layers, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestPublishCommand_NoOutput(t *testing.T) {
	setupTestEnv(t)

	out, _, err := runCLI(t, "publish", "--skip-base")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to publish")
}

func TestPublishCommand_Copy(t *testing.T) {
	paths := setupTestEnv(t)
	writeLayerFile(t, paths, "A/data/item.txt", "A")
	writeLayerFile(t, paths, "B/data/item.txt", "B")
	output := filepath.Join(paths.Root, "out")

	out, _, err := runCLI(t, "publish", output, "--copy", "--skip-base", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Published 1 file from 2 layers")

	content, err := os.ReadFile(filepath.Join(output, "data", "item.txt"))
	require.NoError(t, err)
	assert.Equal(t, "B", string(content))

	out, _, err = runCLI(t, "status", "--json")
	require.NoError(t, err)

	var status engine.StatusResult
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	require.NotNil(t, status.Manifest)
	assert.Equal(t, output, status.Manifest.Output)
	assert.Equal(t, "copy", status.Manifest.Strategy)
	assert.True(t, status.OutputPresent)
}

func TestPublishCommand_ClearingNotice(t *testing.T) {
	paths := setupTestEnv(t)
	writeLayerFile(t, paths, "A/data/item.txt", "A")
	output := filepath.Join(paths.Root, "out")
	require.NoError(t, os.MkdirAll(filepath.Join(output, "stale"), 0755))

	_, errOut, err := runCLI(t, "publish", output, "--copy", "--skip-base")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Clearing output folder at "+output)
}

func TestPublishCommand_Empty(t *testing.T) {
	paths := setupTestEnv(t)
	writeLayerFile(t, paths, "C/meta/info.json", "{}")

	_, _, err := runCLI(t, "publish", filepath.Join(paths.Root, "out"), "--copy", "--skip-base")
	require.ErrorIs(t, err, engine.ErrEmptyOutput)
}

func TestPublishCommand_DryRunJSON(t *testing.T) {
	paths := setupTestEnv(t)
	writeLayerFile(t, paths, "A/data/item.txt", "A")
	writeLayerFile(t, paths, "B/data/item.txt", "B")

	out, _, err := runCLI(t, "publish", filepath.Join(paths.Root, "out"), "--dry-run", "--skip-base", "--json")
	require.NoError(t, err)

	var result engine.PublishResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.DryRun)
	require.NotNil(t, result.Plan)
	assert.Len(t, result.Plan.Operations, 1)
	assert.Len(t, result.Plan.Overrides, 1)

	_, err = os.Stat(paths.Merged)
	assert.True(t, os.IsNotExist(err))
}

func TestPublishCommand_Locked(t *testing.T) {
	paths := setupTestEnv(t)
	writeLayerFile(t, paths, "A/data/item.txt", "A")

	held, err := lock.Acquire(paths.Merged)
	require.NoError(t, err)
	defer func() { _ = held.Release() }()

	_, errOut, err := runCLI(t, "publish", filepath.Join(paths.Root, "out"), "--copy", "--skip-base")
	require.ErrorIs(t, err, engine.ErrLocked)
	assert.Contains(t, errOut, "Another publish is running")

	// A separate state dir does not bypass a lock on the same merged root.
	otherState := filepath.Join(paths.Root, "other-state")
	_, _, err = runCLI(t, "publish", filepath.Join(paths.Root, "out"), "--copy", "--skip-base", "--state", otherState)
	require.ErrorIs(t, err, engine.ErrLocked)
	assert.NoDirExists(t, paths.Merged, "a locked run must not touch the merged tree")
}

func TestLayersCommand_JSON(t *testing.T) {
	paths := setupTestEnv(t)
	writeLayerFile(t, paths, "10-base/a.txt", "")
	writeLayerFile(t, paths, "90-patch/a.txt", "")
	writeLayerFile(t, paths, "90-patch/options/hd/a.txt", "")
	writeLayerFile(t, paths, "50-off/.disabled", "")

	out, _, err := runCLI(t, "layers", "--json")
	require.NoError(t, err)

	var result engine.LayersResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Layers, 3)
	assert.Equal(t, filepath.Join(paths.Layers, "90-patch", "options", "hd"), result.Layers[0].Path)
	assert.Equal(t, filepath.Join(paths.Layers, "90-patch"), result.Layers[0].Parent)
	assert.Equal(t, "90-patch", result.Layers[1].Name)
	assert.Equal(t, "10-base", result.Layers[2].Name)
	assert.Equal(t, []string{filepath.Join(paths.Layers, "50-off")}, result.Disabled)
}

func TestLayersCommand_Table(t *testing.T) {
	paths := setupTestEnv(t)
	writeLayerFile(t, paths, "A/a.txt", "")

	out, _, err := runCLI(t, "layers")
	require.NoError(t, err)
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, filepath.Join(paths.Layers, "A"))
}

func TestPlanCommand(t *testing.T) {
	paths := setupTestEnv(t)
	writeLayerFile(t, paths, "A/data/item.txt", "A")
	writeLayerFile(t, paths, "B/data/item.txt", "B")

	out, _, err := runCLI(t, "plan", "--files")
	require.NoError(t, err)
	assert.Contains(t, out, "Merge Plan")
	assert.Contains(t, out, "is missing", "base file is expected by default")
	assert.Contains(t, out, filepath.Join(paths.Layers, "B")+" shadows "+filepath.Join(paths.Layers, "A"))
	assert.Contains(t, out, filepath.Join("data", "item.txt")+" ← "+filepath.Join(paths.Layers, "B"))
}

func TestStatusCommand_NoRun(t *testing.T) {
	setupTestEnv(t)

	out, _, err := runCLI(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No publish run recorded yet")
}

func TestLoadSettings_Precedence(t *testing.T) {
	paths := setupTestEnv(t)
	require.NoError(t, os.WriteFile(paths.Config, []byte("workers: 4\nuse_copy: true\n"), 0644))

	resetFlags(rootCmd)
	s, err := loadSettings(layersCmd)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Workers)
	assert.True(t, s.UseCopy)
	assert.Equal(t, paths.Layers, s.LayersRoot)

	t.Setenv("LAYERMERGE_WORKERS", "6")
	s, err = loadSettings(layersCmd)
	require.NoError(t, err)
	assert.Equal(t, 6, s.Workers)

	require.NoError(t, layersCmd.ParseFlags([]string{"--workers", "8", "--copy=false", "--layers", "rel-layers"}))
	defer resetFlags(rootCmd)
	s, err = loadSettings(layersCmd)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Workers)
	assert.False(t, s.UseCopy)
	assert.True(t, filepath.IsAbs(s.LayersRoot))
	assert.Equal(t, "rel-layers", filepath.Base(s.LayersRoot))
}

func TestInitCommand(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	t.Setenv(config.RootEnv, root)

	out, _, err := runCLI(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized "+root)

	paths := config.PathsAt(root)
	assert.DirExists(t, paths.Layers)
	assert.DirExists(t, paths.State)
	assert.NoDirExists(t, paths.Merged)

	_, _, err = runCLI(t, "init")
	require.NoError(t, err, "init should be repeatable")
}
