package planner

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/danieljhkim/layermerge/internal/layers"
)

// BuildLayerPlan plans the hard links one layer contributes to the merged tree.
//
// The filter is consulted against the live merged tree, so the plan is only
// valid until the next layer is linked. Operations are sorted by RelPath.
func BuildLayerPlan(fs afero.Fs, filter *Filter, layer layers.Layer, mergedRoot string) (*LayerPlan, error) {
	plan := &LayerPlan{
		Layer:      layer,
		Operations: []Operation{},
	}

	err := walkLayer(fs, filter, layer, func(absPath, relPath string) {
		if filter.Claimed(relPath) {
			return
		}
		plan.Operations = append(plan.Operations, Operation{
			Type:       OpHardlink,
			SourcePath: absPath,
			DestPath:   filepath.Join(mergedRoot, relPath),
			RelPath:    relPath,
			Layer:      layer.Path,
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(plan.Operations, func(a, b Operation) int {
		return strings.Compare(a.RelPath, b.RelPath)
	})
	return plan, nil
}
