// Package engine provides the core pipeline for layermerge runs.
//
// The engine package acts as the orchestration layer between CLI commands and
// lower-level operations. It enumerates layers, rebuilds the merged tree,
// publishes it at the output and records the run.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Merge: Rebuilds the merged tree from ranked layers with hard links
//   - PublishMergedTree: The full enumerate, merge and publish pipeline
//   - Plan/Layers/Status: Read-only views for inspection commands
package engine

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"

	"github.com/danieljhkim/layermerge/internal/clock"
	"github.com/danieljhkim/layermerge/internal/fsops"
	"github.com/danieljhkim/layermerge/internal/hash"
	"github.com/danieljhkim/layermerge/internal/planner"
	"github.com/danieljhkim/layermerge/internal/state"
)

// Engine orchestrates all layermerge operations.
// It is the main API surface called by the CLI.
type Engine struct {
	fs         fsops.FS
	afs        afero.Fs
	stateStore state.Store
	hasher     hash.Hasher
	clock      clock.Clock
	logger     *slog.Logger
	goos       string
}

// New creates a new Engine with the given dependencies.
//
// fs performs every mutation; afs is the read-side view used to enumerate
// and walk layers and must observe the same filesystem. A nil stateStore
// disables the run manifest and a nil logger discards.
func New(
	fs fsops.FS,
	afs afero.Fs,
	stateStore state.Store,
	hasher hash.Hasher,
	clk clock.Clock,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		fs:         fs,
		afs:        afs,
		stateStore: stateStore,
		hasher:     hasher,
		clock:      clk,
		logger:     logger,
		goos:       runtime.GOOS,
	}
}

// executeOperation executes a single operation.
func (e *Engine) executeOperation(op planner.Operation) error {
	switch op.Type {
	case planner.OpHardlink:
		return e.executeHardlink(op)
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

// executeHardlink links one layer file into the merged tree.
func (e *Engine) executeHardlink(op planner.Operation) error {
	if err := e.fs.ValidateRelPath(op.RelPath); err != nil {
		return fsops.LinkError("hard link", op.RelPath, op.DestPath, err)
	}

	parentDir := filepath.Dir(op.DestPath)
	if err := e.fs.MkdirAll(parentDir, 0755); err != nil {
		return fsops.FilesystemError("create parent directory for "+op.RelPath+" at", parentDir, err)
	}
	if err := e.fs.Link(op.SourcePath, op.DestPath); err != nil {
		return fsops.LinkError("hard link", op.RelPath, op.DestPath, err)
	}

	return nil
}
