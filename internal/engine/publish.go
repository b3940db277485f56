package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/danieljhkim/layermerge/internal/hash"
	"github.com/danieljhkim/layermerge/internal/layers"
	"github.com/danieljhkim/layermerge/internal/publish"
	"github.com/danieljhkim/layermerge/internal/state"
)

// PublishMergedTree rebuilds the merged tree and exposes it at the output.
//
// Algorithm steps:
// 1. Resolve the output (request override, then export dir); none is a no-op
// 2. Validate settings and output
// 3. Enumerate and rank layers
// 4. Dry run: plan only and return
// 5. Rebuild the merged tree
// 6. Publish it at the output
// 7. Record the run manifest
func (e *Engine) PublishMergedTree(ctx context.Context, req *PublishRequest) (*PublishResult, error) {
	s := req.Settings

	output := req.Output
	if output == "" {
		output = s.ExportDir
	}
	if output == "" {
		e.logger.Debug("no output configured, nothing to publish")
		return &PublishResult{Skipped: true}, nil
	}

	cwd := req.CWD
	if cwd == "" {
		var err error
		if cwd, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	output, err := resolveOutput(output, cwd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := s.ValidateOutput(output); err != nil {
		return nil, err
	}

	started := e.clock.Now()

	set, err := layers.Enumerate(e.afs, s.LayersRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate layers: %w", err)
	}
	e.logger.Debug("enumerated layers",
		slog.String("root", s.LayersRoot),
		slog.Int("layers", len(set.Layers)),
		slog.Int("disabled", len(set.Disabled)),
	)

	result := &PublishResult{
		Output:   output,
		Disabled: set.Disabled,
	}

	if req.DryRun {
		planned, err := e.plan(s, set)
		if err != nil {
			return nil, err
		}
		result.DryRun = true
		result.Plan = planned.Plan
		result.Duration = e.clock.Now().Sub(started)
		return result, nil
	}

	merged, err := e.Merge(ctx, s, set.Layers)
	if err != nil {
		return nil, fmt.Errorf("failed to merge layers: %w", err)
	}
	result.Merge = merged

	publisher := publish.New(e.fs, publish.Select(e.goos, s.UseCopy, e.fs), e.logger)
	published, err := publisher.Publish(s.MergedRoot, output)
	if err != nil {
		return nil, fmt.Errorf("failed to publish merged tree: %w", err)
	}
	result.Publish = published

	if req.Digest {
		digest, err := hash.TreeDigest(e.hashFunc(), output)
		if err != nil {
			return nil, fmt.Errorf("failed to compute output digest: %w", err)
		}
		result.Digest = digest
	}

	finished := e.clock.Now()
	result.Duration = finished.Sub(started)

	if e.stateStore != nil {
		m := state.NewRunManifest(started)
		m.FinishedAt = finished
		m.Output = output
		m.Strategy = published.Strategy
		m.MergedRoot = s.MergedRoot
		for _, l := range set.Layers {
			m.Layers = append(m.Layers, l.Path)
		}
		m.BaseLinked = merged.BaseLinked
		m.Linked = merged.Linked
		m.Winners = merged.Winners
		m.Digest = result.Digest

		if err := e.stateStore.Save(m); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	return result, nil
}

func (e *Engine) hashFunc() hash.Hasher {
	if e.hasher == nil {
		return hash.NewSHA256Hasher()
	}
	return e.hasher
}
