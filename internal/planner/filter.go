package planner

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Top-level directories that never reach the merged tree: layer management
// metadata, logs, and option sub-layers (which are merged as layers of their own).
var excludedRoots = map[string]bool{
	"logs":    true,
	"options": true,
	"meta":    true,
}

// Excluded reports whether the structural rules keep relPath out of the merged tree.
func Excluded(relPath string, isDir bool) bool {
	if isDir {
		return true
	}

	if extension(relPath) == "json" {
		return true
	}

	parts := strings.Split(filepath.ToSlash(filepath.Clean(relPath)), "/")
	if excludedRoots[parts[0]] {
		return true
	}

	// Loose top-level files are only taken when they are text.
	return len(parts) == 1 && extension(relPath) != "txt"
}

// extension returns the final extension without the dot. A leading dot is
// part of the name, so ".json" has no extension.
func extension(p string) string {
	base := filepath.Base(p)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}

// Filter decides whether a layer file is merged. It checks the merged tree
// on every call, so it sees everything linked by earlier layers.
type Filter struct {
	fs         afero.Fs
	mergedRoot string
}

// NewFilter creates a Filter that checks existence under mergedRoot.
func NewFilter(fs afero.Fs, mergedRoot string) *Filter {
	return &Filter{
		fs:         fs,
		mergedRoot: mergedRoot,
	}
}

// IsMergeable reports whether the file at absPath, found at relPath inside
// its layer, should be linked into the merged tree.
func (f *Filter) IsMergeable(absPath, relPath string) bool {
	if f.Claimed(relPath) {
		return false
	}
	return f.Admits(absPath, relPath)
}

// Admits applies the structural rules only, ignoring the merged tree.
func (f *Filter) Admits(absPath, relPath string) bool {
	// A stat failure is treated as "not a directory", like a vanished entry;
	// linking it will then report the real error.
	isDir, _ := afero.IsDir(f.fs, absPath)
	return !Excluded(relPath, isDir)
}

// Claimed reports whether relPath already exists in the merged tree.
func (f *Filter) Claimed(relPath string) bool {
	exists, _ := afero.Exists(f.fs, filepath.Join(f.mergedRoot, relPath))
	return exists
}
