package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/danieljhkim/layermerge/internal/config"
	"github.com/danieljhkim/layermerge/internal/fsops"
	"github.com/danieljhkim/layermerge/internal/layers"
	"github.com/danieljhkim/layermerge/internal/planner"
)

// Merge rebuilds the merged tree from ranked layers.
//
// Algorithm steps:
// 1. Recreate the merged root from scratch
// 2. Link the base rules file unless skipped or already present
// 3. For each layer in rank order, plan against the live merged tree
// 4. Link the layer's files on a bounded pool and drain it before the next layer
//
// The first failure aborts the merge and leaves the merged tree invalid.
func (e *Engine) Merge(ctx context.Context, s config.Settings, ranked []layers.Layer) (*MergeResult, error) {
	result := &MergeResult{
		Layers:  ranked,
		Winners: make(map[string]string),
	}

	if err := e.fs.RemoveAll(s.MergedRoot); err != nil {
		return nil, fsops.FilesystemError("remove merged tree", s.MergedRoot, err)
	}
	if err := e.fs.MkdirAll(s.MergedRoot, 0755); err != nil {
		return nil, fsops.FilesystemError("create merged tree", s.MergedRoot, err)
	}

	if !s.SkipBaseFile {
		linked, err := e.linkBaseFile(s)
		if err != nil {
			return nil, err
		}
		if linked {
			result.BaseLinked = true
			result.Winners[config.BaseFileName] = s.BaseLayerRoot
		}
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	filter := planner.NewFilter(e.afs, s.MergedRoot)
	for _, layer := range ranked {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		plan, err := planner.BuildLayerPlan(e.afs, filter, layer, s.MergedRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to plan layer %s: %w", layer.Path, err)
		}
		if err := e.linkLayer(ctx, plan, workers); err != nil {
			return nil, err
		}

		for _, op := range plan.Operations {
			result.Winners[op.RelPath] = op.Layer
		}
		result.Linked += len(plan.Operations)

		e.logger.Debug("merged layer",
			slog.Int("rank", layer.Rank),
			slog.String("layer", layer.Path),
			slog.Int("linked", len(plan.Operations)),
		)
	}

	return result, nil
}

// linkBaseFile links rules.txt from the base layer into the merged root.
// It reports false when the target already exists.
func (e *Engine) linkBaseFile(s config.Settings) (bool, error) {
	target := filepath.Join(s.MergedRoot, config.BaseFileName)

	exists, err := e.fs.Exists(target)
	if err != nil {
		return false, fsops.FilesystemError("inspect", target, err)
	}
	if exists {
		return false, nil
	}

	if err := e.fs.Link(s.BaseFile(), target); err != nil {
		return false, fsops.LinkError("hard link base file", s.BaseFile(), target, err)
	}
	return true, nil
}

// linkLayer executes one layer's operations on at most workers goroutines.
// It returns only after every started operation has finished.
func (e *Engine) linkLayer(ctx context.Context, plan *planner.LayerPlan, workers int) error {
	if len(plan.Operations) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, op := range plan.Operations {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return e.executeOperation(op)
		})
	}

	return g.Wait()
}
