package planner

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/layermerge/internal/layers"
)

func writeOSFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func skipWithoutSymlinks(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}
}

func TestBuildLayerPlan_FollowsSymlinkedDirectories(t *testing.T) {
	skipWithoutSymlinks(t)

	dir := t.TempDir()
	fs := afero.NewOsFs()
	merged := filepath.Join(dir, "merged")
	external := filepath.Join(dir, "external")
	writeOSFile(t, filepath.Join(external, "data", "item.txt"), "B")
	writeOSFile(t, filepath.Join(dir, "shared", "x.txt"), "x")

	layersRoot := filepath.Join(dir, "layers")
	require.NoError(t, os.MkdirAll(layersRoot, 0o755))
	linked := filepath.Join(layersRoot, "B")
	require.NoError(t, os.Symlink(external, linked))
	require.NoError(t, os.Symlink(filepath.Join(dir, "shared"), filepath.Join(external, "content")))

	plan, err := BuildLayerPlan(fs, NewFilter(fs, merged), layers.Layer{Path: linked}, merged)
	require.NoError(t, err)

	assert.Equal(t, []string{"content/x.txt", "data/item.txt"}, relPaths(plan.Operations))
	assert.Equal(t, filepath.Join(linked, "data", "item.txt"), plan.Operations[1].SourcePath)
}

func TestBuildLayerPlan_SkipsSymlinkCycles(t *testing.T) {
	skipWithoutSymlinks(t)

	dir := t.TempDir()
	fs := afero.NewOsFs()
	layer := filepath.Join(dir, "layers", "A")
	writeOSFile(t, filepath.Join(layer, "data", "item.txt"), "A")
	require.NoError(t, os.Symlink(layer, filepath.Join(layer, "data", "loop")))
	require.NoError(t, os.Symlink(filepath.Join(layer, "data"), filepath.Join(layer, "data", "self")))

	plan, err := BuildLayerPlan(fs, NewFilter(fs, filepath.Join(dir, "merged")), layers.Layer{Path: layer}, filepath.Join(dir, "merged"))
	require.NoError(t, err)

	assert.Equal(t, []string{"data/item.txt"}, relPaths(plan.Operations))
}

func TestBuildMergePlan_SymlinkedLayerKeepsItsRank(t *testing.T) {
	skipWithoutSymlinks(t)

	dir := t.TempDir()
	fs := afero.NewOsFs()
	layersRoot := filepath.Join(dir, "layers")
	writeOSFile(t, filepath.Join(layersRoot, "A", "data", "item.txt"), "A")
	writeOSFile(t, filepath.Join(dir, "external", "data", "item.txt"), "B")
	require.NoError(t, os.Symlink(filepath.Join(dir, "external"), filepath.Join(layersRoot, "B")))

	set, err := layers.Enumerate(fs, layersRoot)
	require.NoError(t, err)
	require.Len(t, set.Layers, 2)

	plan, err := BuildMergePlan(fs, set.Layers, filepath.Join(dir, "merged"), "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(layersRoot, "B"), plan.Winners()[filepath.Join("data", "item.txt")])
	require.Len(t, plan.Overrides, 1)
	assert.Equal(t, filepath.Join(layersRoot, "A"), plan.Overrides[0].Shadowed)
}
