package engine

import (
	"errors"

	"github.com/danieljhkim/layermerge/internal/config"
	"github.com/danieljhkim/layermerge/internal/fsops"
	"github.com/danieljhkim/layermerge/internal/lock"
	"github.com/danieljhkim/layermerge/internal/publish"
)

var (
	// ErrFilesystem indicates a directory could not be removed, created or listed.
	ErrFilesystem = fsops.ErrFilesystem

	// ErrLink indicates a hard link, symlink, junction or copy failed.
	ErrLink = fsops.ErrLink

	// ErrEmptyOutput indicates the output had no entries after publishing.
	ErrEmptyOutput = publish.ErrEmptyOutput

	// ErrInvalidSettings indicates the settings or output path were rejected.
	ErrInvalidSettings = config.ErrInvalid

	// ErrLocked indicates another run holds the run lock.
	ErrLocked = lock.ErrLocked

	// ErrNoRun indicates no run has been recorded yet.
	ErrNoRun = errors.New("no recorded run")
)
