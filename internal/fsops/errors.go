package fsops

import (
	"errors"
	"fmt"
)

var (
	// ErrFilesystem marks failures to remove, create or list a directory.
	ErrFilesystem = errors.New("filesystem error")

	// ErrLink marks failures to create a hard link, symlink, junction or copy.
	ErrLink = errors.New("link error")
)

// PathError describes a failed operation and the paths involved.
// errors.Is matches both its Kind and the underlying error.
type PathError struct {
	// Kind is ErrFilesystem or ErrLink
	Kind error

	// Op is a verb phrase such as "hard link" or "clear output folder"
	Op string

	// Source is the relative or source path, empty for single-path operations
	Source string

	// Path is the destination or affected path
	Path string

	Err error
}

func (e *PathError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("failed to %s %s to %s: %v", e.Op, e.Source, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// FilesystemError wraps err as a structural failure on path.
func FilesystemError(op, path string, err error) error {
	return &PathError{Kind: ErrFilesystem, Op: op, Path: path, Err: err}
}

// LinkError wraps err as a failure to link source to path.
func LinkError(op, source, path string, err error) error {
	return &PathError{Kind: ErrLink, Op: op, Source: source, Path: path, Err: err}
}
