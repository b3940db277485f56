package planner

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/danieljhkim/layermerge/internal/layers"
)

// walkLayer calls fn for every file under the layer that passes the
// structural rules, in lexical order. Unreadable entries are skipped.
//
// Symbolic links to directories are followed, including a layer directory
// that is itself a link. A link back to one of its own ancestors is skipped.
func walkLayer(fs afero.Fs, filter *Filter, layer layers.Layer, fn func(absPath, relPath string)) error {
	root, err := fs.Stat(layer.Path)
	if err != nil || !root.IsDir() {
		return nil
	}

	w := &layerWalker{fs: fs, filter: filter, fn: fn}
	w.walk(layer.Path, "", []os.FileInfo{root})
	return nil
}

type layerWalker struct {
	fs     afero.Fs
	filter *Filter
	fn     func(absPath, relPath string)
}

// walk visits dir, found at rel inside the layer. ancestors holds the
// resolved directories from the layer root down to dir.
func (w *layerWalker) walk(dir, rel string, ancestors []os.FileInfo) {
	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		relPath := entry.Name()
		if rel != "" {
			relPath = filepath.Join(rel, entry.Name())
		}

		info := entry
		if entry.Mode()&os.ModeSymlink != 0 {
			// A dangling link stays a file; linking it reports the real error.
			if target, err := w.fs.Stat(path); err == nil {
				info = target
			}
		}

		if !info.IsDir() {
			if w.filter.Admits(path, relPath) {
				w.fn(path, relPath)
			}
			continue
		}

		// Nothing below an excluded root can qualify.
		if rel == "" && excludedRoots[entry.Name()] {
			continue
		}
		if isAncestor(info, ancestors) {
			continue
		}
		w.walk(path, relPath, append(ancestors, info))
	}
}

func isAncestor(info os.FileInfo, ancestors []os.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(info, a) {
			return true
		}
	}
	return false
}
