package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/danieljhkim/layermerge/internal/config"
	"github.com/danieljhkim/layermerge/internal/layers"
	"github.com/danieljhkim/layermerge/internal/planner"
)

// Plan simulates a merge without touching the filesystem.
func (e *Engine) Plan(ctx context.Context, req *PlanRequest) (*PlanResult, error) {
	s := req.Settings
	if err := s.Validate(); err != nil {
		return nil, err
	}

	set, err := layers.Enumerate(e.afs, s.LayersRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate layers: %w", err)
	}

	return e.plan(s, set)
}

func (e *Engine) plan(s config.Settings, set layers.Set) (*PlanResult, error) {
	result := &PlanResult{Disabled: set.Disabled}

	if !s.SkipBaseFile {
		result.BaseFile = s.BaseFile()
		exists, err := afero.Exists(e.afs, result.BaseFile)
		if err != nil {
			return nil, fmt.Errorf("failed to check base file: %w", err)
		}
		if !exists {
			result.BaseMissing = true
			e.logger.Warn("base file is missing, a real run will fail", slog.String("path", result.BaseFile))
		}
	}

	plan, err := planner.BuildMergePlan(e.afs, set.Layers, s.MergedRoot, result.BaseFile)
	if err != nil {
		return nil, fmt.Errorf("failed to build merge plan: %w", err)
	}
	result.Plan = plan

	return result, nil
}

// Layers enumerates and ranks the layers without merging them.
func (e *Engine) Layers(ctx context.Context, req *LayersRequest) (*LayersResult, error) {
	root := req.Settings.LayersRoot
	if root == "" {
		return nil, fmt.Errorf("%w: layers_root is required", ErrInvalidSettings)
	}

	set, err := layers.Enumerate(e.afs, root)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate layers: %w", err)
	}

	result := &LayersResult{
		Root:     root,
		Layers:   set.Layers,
		Disabled: set.Disabled,
	}
	if result.Layers == nil {
		result.Layers = []layers.Layer{}
	}
	if result.Disabled == nil {
		result.Disabled = []string{}
	}
	return result, nil
}
