// Package publish exposes a finished merged tree at an output path.
//
// The output is cleared when it is a directory (or a link to one), then
// recreated with the configured Strategy. Anything else already sitting at
// the output path is left alone. A run only succeeds if the output ends up
// with at least one entry.
package publish

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/danieljhkim/layermerge/internal/fsops"
)

// ErrEmptyOutput means the output has no entries after publishing.
var ErrEmptyOutput = errors.New("output folder is empty")

// Result describes what a publish did.
type Result struct {
	// Dest is the output path
	Dest string `json:"dest"`

	// Strategy is the strategy name used, empty when the output was left untouched
	Strategy string `json:"strategy,omitempty"`

	// Cleared is set when an existing output directory was removed first
	Cleared bool `json:"cleared"`

	// Entries is the number of top-level entries found in the output
	Entries int `json:"entries"`
}

// Publisher clears and recreates the output.
type Publisher struct {
	fs       fsops.FS
	strategy Strategy
	logger   *slog.Logger
}

// New creates a Publisher. A nil logger discards.
func New(fs fsops.FS, strategy Strategy, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{
		fs:       fs,
		strategy: strategy,
		logger:   logger,
	}
}

// Publish exposes mergedRoot at dest.
//
// A directory at dest, or a link resolving to one, is removed first; the
// link itself is removed, never its target. A file or dangling link at dest
// is left untouched and then fails the emptiness check, since a non-directory
// has no entries.
func (p *Publisher) Publish(mergedRoot, dest string) (*Result, error) {
	result := &Result{Dest: dest}

	info, err := p.fs.Stat(dest)
	switch {
	case err == nil && info.IsDir():
		p.logger.Info("Clearing output folder at "+dest, slog.String("path", dest))
		if err := p.fs.RemoveAll(dest); err != nil {
			return nil, fsops.FilesystemError("clear out output folder", dest, err)
		}
		result.Cleared = true
	case err != nil && !os.IsNotExist(err):
		return nil, fsops.FilesystemError("inspect output folder", dest, err)
	}

	_, err = p.fs.Lstat(dest)
	if err != nil && !os.IsNotExist(err) {
		return nil, fsops.FilesystemError("inspect output folder", dest, err)
	}

	if os.IsNotExist(err) {
		if err := p.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, fsops.FilesystemError("prepare parent of output directory", filepath.Dir(dest), err)
		}
		if err := p.strategy.Publish(mergedRoot, dest); err != nil {
			return nil, err
		}
		result.Strategy = p.strategy.Name()
		p.logger.Debug("published merged tree",
			slog.String("strategy", result.Strategy),
			slog.String("source", mergedRoot),
			slog.String("dest", dest),
		)
	} else {
		p.logger.Debug("output exists and is not a directory, leaving it untouched", slog.String("dest", dest))
	}

	result.Entries = p.countEntries(dest)
	if result.Entries == 0 {
		return result, fmt.Errorf("%w: %s", ErrEmptyOutput, dest)
	}

	return result, nil
}

// countEntries lists dest's immediate entries. Anything that cannot be
// listed as a directory counts as empty.
func (p *Publisher) countEntries(dest string) int {
	entries, err := p.fs.ReadDir(dest)
	if err != nil {
		p.logger.Debug("cannot list output", slog.String("dest", dest), slog.Any("error", err))
		return 0
	}
	return len(entries)
}
