package engine

import (
	"fmt"
	"path/filepath"
)

// resolveOutput resolves a user-provided output path (absolute or relative to
// cwd) to a clean absolute path. The filesystem root is never a valid output.
func resolveOutput(userPath, cwd string) (string, error) {
	var absPath string
	if filepath.IsAbs(userPath) {
		absPath = userPath
	} else {
		absPath = filepath.Join(cwd, userPath)
	}
	absPath = filepath.Clean(absPath)

	if !filepath.IsAbs(absPath) {
		return "", fmt.Errorf("output %q does not resolve to an absolute path", userPath)
	}
	if filepath.Dir(absPath) == absPath {
		return "", fmt.Errorf("output %q resolves to the filesystem root", userPath)
	}

	return absPath, nil
}
