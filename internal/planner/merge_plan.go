package planner

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/danieljhkim/layermerge/internal/layers"
)

// BuildMergePlan simulates a full merge without touching the filesystem.
//
// The merged tree is assumed empty, as it is right after a run clears it.
// baseFile is linked first when non-empty and present; layers are then
// applied in rank order and every path a lower layer loses is recorded as an
// Override.
func BuildMergePlan(fs afero.Fs, ranked []layers.Layer, mergedRoot, baseFile string) (*MergePlan, error) {
	plan := NewMergePlan(ranked)
	filter := NewFilter(fs, mergedRoot)
	claimed := make(map[string]string)

	if baseFile != "" {
		exists, err := afero.Exists(fs, baseFile)
		if err != nil {
			return nil, fmt.Errorf("failed to check base file %s: %w", baseFile, err)
		}
		if exists {
			relPath := filepath.Base(baseFile)
			baseLayer := filepath.Dir(baseFile)
			plan.AddOperation(Operation{
				Type:       OpHardlink,
				SourcePath: baseFile,
				DestPath:   filepath.Join(mergedRoot, relPath),
				RelPath:    relPath,
				Layer:      baseLayer,
			})
			claimed[relPath] = baseLayer
		}
	}

	for _, layer := range ranked {
		var ops []Operation
		err := walkLayer(fs, filter, layer, func(absPath, relPath string) {
			if winner, taken := claimed[relPath]; taken {
				plan.AddOverride(Override{
					RelPath:  relPath,
					Winner:   winner,
					Shadowed: layer.Path,
				})
				return
			}
			ops = append(ops, Operation{
				Type:       OpHardlink,
				SourcePath: absPath,
				DestPath:   filepath.Join(mergedRoot, relPath),
				RelPath:    relPath,
				Layer:      layer.Path,
			})
		})
		if err != nil {
			return nil, fmt.Errorf("failed to plan layer %s: %w", layer.Path, err)
		}

		// Claim after the walk: paths inside one layer never collide.
		for _, op := range ops {
			claimed[op.RelPath] = layer.Path
			plan.AddOperation(op)
		}
	}

	return plan, nil
}
