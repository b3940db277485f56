// Package layers discovers the layer directories that feed a merge and puts
// them in priority order.
//
// A layer is an immediate subdirectory of the layers root that does not carry
// a .disabled marker. Each enabled layer may also provide option sub-layers
// under options/<name>; those are ranked alongside the top-level layers as
// independent entries.
//
// Priority follows path order: the layer whose path sorts last has rank 0 and
// wins every conflict, the layer whose path sorts first is applied last and
// only fills gaps. Numeric prefixes such as 10-base and 90-patch therefore
// let the higher number win.
package layers

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

const (
	// DisabledMarker inside a layer directory excludes it from enumeration.
	DisabledMarker = ".disabled"

	// OptionsDir holds a layer's option sub-layers.
	OptionsDir = "options"
)

// Layer is one source tree contributing files to the merge.
type Layer struct {
	// Path is the absolute layer directory.
	Path string `json:"path"`

	// Rank is the position in priority order; 0 wins all conflicts.
	Rank int `json:"rank"`

	// Name is the directory name of the layer.
	Name string `json:"name"`

	// Parent is the owning layer for option sub-layers, empty otherwise.
	Parent string `json:"parent,omitempty"`
}

// IsOption reports whether the layer is an option sub-layer.
func (l Layer) IsOption() bool {
	return l.Parent != ""
}

// Set is the result of enumerating a layers root.
type Set struct {
	// Layers in descending priority, Layers[i].Rank == i.
	Layers []Layer

	// Disabled lists layer directories skipped because of the marker.
	Disabled []string
}

// Enumerate discovers the layers under root and ranks them.
//
// Enumeration is best effort: entries that cannot be read or vanish during the
// scan are skipped, and a missing root yields an empty set.
func Enumerate(fsys afero.Fs, root string) (Set, error) {
	root = filepath.Clean(root)
	iofs := afero.NewIOFS(afero.NewBasePathFs(fsys, root))

	tops, err := doublestar.Glob(iofs, "*")
	if err != nil {
		return Set{}, fmt.Errorf("failed to list layers in %s: %w", root, err)
	}

	var set Set
	enabled := make(map[string]bool, len(tops))
	var paths []string
	for _, name := range tops {
		dir := filepath.Join(root, filepath.FromSlash(name))
		if isDir, _ := afero.IsDir(fsys, dir); !isDir {
			continue
		}
		if disabled, _ := afero.Exists(fsys, filepath.Join(dir, DisabledMarker)); disabled {
			set.Disabled = append(set.Disabled, dir)
			continue
		}
		enabled[name] = true
		paths = append(paths, dir)
	}

	options, err := doublestar.Glob(iofs, path.Join("*", OptionsDir, "*"))
	if err != nil {
		return Set{}, fmt.Errorf("failed to list option layers in %s: %w", root, err)
	}

	parents := make(map[string]string, len(options))
	for _, match := range options {
		owner, _, _ := strings.Cut(match, "/")
		if !enabled[owner] {
			continue
		}
		dir := filepath.Join(root, filepath.FromSlash(match))
		if isDir, _ := afero.IsDir(fsys, dir); !isDir {
			continue
		}
		parents[dir] = filepath.Join(root, owner)
		paths = append(paths, dir)
	}

	set.Layers = Rank(paths)
	for i := range set.Layers {
		set.Layers[i].Parent = parents[set.Layers[i].Path]
	}
	slices.SortFunc(set.Disabled, ComparePaths)

	return set, nil
}

// Rank deduplicates paths and orders them by descending priority.
//
// Priority is the reverse of ascending path order: the lexically greatest
// path gets rank 0 and is merged first, the lexically smallest is merged last.
func Rank(paths []string) []Layer {
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		cleaned = append(cleaned, filepath.Clean(p))
	}

	slices.SortFunc(cleaned, func(a, b string) int {
		return ComparePaths(b, a)
	})
	cleaned = slices.Compact(cleaned)

	ranked := make([]Layer, len(cleaned))
	for i, p := range cleaned {
		ranked[i] = Layer{
			Path: p,
			Rank: i,
			Name: filepath.Base(p),
		}
	}
	return ranked
}

// ComparePaths orders paths component by component, so a directory sorts
// directly before its own children and "a/b" sorts before "a-b".
func ComparePaths(a, b string) int {
	ac := strings.Split(filepath.ToSlash(filepath.Clean(a)), "/")
	bc := strings.Split(filepath.ToSlash(filepath.Clean(b)), "/")
	return slices.Compare(ac, bc)
}
