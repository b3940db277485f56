package planner

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcluded(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name  string
		rel   string
		isDir bool
		want  bool
	}{
		{"nested text file", "data/item.txt", false, false},
		{"nested binary file", "content/Actor/Pack/link.sbactorpack", false, false},
		{"top-level text file", "rules.txt", false, false},
		{"directory", "data", true, true},
		{"nested directory", "data/deep", true, true},
		{"json anywhere", "data/deep/info.json", false, true},
		{"top-level json", "info.json", false, true},
		{"dotfile named json has no extension", "data/.json", false, false},
		{"uppercase JSON is not json", "data/INFO.JSON", false, false},
		{"logs subtree", "logs/rstb.log", false, true},
		{"options subtree", "options/x/skin.txt", false, true},
		{"meta subtree", "meta/preview.png", false, true},
		{"logs prefix is not logs component", "logsx/a.txt", false, false},
		{"meta deeper is fine", "data/meta/a.txt", false, false},
		{"top-level non-text", "preview.png", false, true},
		{"top-level without extension", "README", false, true},
		{"top-level dotfile", ".disabled", false, true},
		{"top-level trailing dot", "notes.", false, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Excluded(filepath.FromSlash(tt.rel), tt.isDir))
		})
	}
}

func TestFilterIsMergeable(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	layer := filepath.FromSlash("/layers/A")
	merged := filepath.FromSlash("/merged")

	write := func(path string) {
		require.NoError(t, afero.WriteFile(fs, path, []byte("x"), 0o644))
	}
	write(filepath.Join(layer, "data", "item.txt"))
	write(filepath.Join(layer, "data", "taken.txt"))
	write(filepath.Join(layer, "meta", "info.json"))
	require.NoError(t, fs.MkdirAll(filepath.Join(layer, "data", "sub"), 0o755))
	write(filepath.Join(merged, "data", "taken.txt"))

	f := NewFilter(fs, merged)

	check := func(rel string) bool {
		rel = filepath.FromSlash(rel)
		return f.IsMergeable(filepath.Join(layer, rel), rel)
	}

	assert.True(t, check("data/item.txt"))
	assert.False(t, check("data/taken.txt"), "existing merged path must win")
	assert.False(t, check("meta/info.json"))
	assert.False(t, check("data/sub"), "directories are never linked")

	// The existence check is live, not a snapshot.
	write(filepath.Join(merged, "data", "item.txt"))
	assert.False(t, check("data/item.txt"))
}
