package planner

import (
	"github.com/danieljhkim/layermerge/internal/layers"
)

// Operation represents a single filesystem operation to execute.
type Operation struct {
	// Type is the operation type, currently always "hardlink"
	Type string `json:"type"`

	// SourcePath is the file inside the layer (absolute)
	SourcePath string `json:"source"`

	// DestPath is the path inside the merged tree (absolute)
	DestPath string `json:"dest"`

	// RelPath is the path relative to both the layer and the merged tree
	RelPath string `json:"rel"`

	// Layer is the path of the layer contributing this operation
	Layer string `json:"layer"`
}

// Operation type constants
const (
	OpHardlink = "hardlink"
)

// LayerPlan is the set of operations contributed by a single layer.
// Relative paths within one plan are unique, so its operations may run in any order.
type LayerPlan struct {
	Layer      layers.Layer
	Operations []Operation
}

// Override records a path that a higher-priority layer took from a lower one.
type Override struct {
	// RelPath is the contested path relative to the merged tree
	RelPath string `json:"rel"`

	// Winner is the layer whose file is linked
	Winner string `json:"winner"`

	// Shadowed is the layer whose file is ignored
	Shadowed string `json:"shadowed"`
}

// MergePlan is a simulated merge across all layers.
type MergePlan struct {
	// Layers is the ranked list of layers, highest priority first
	Layers []layers.Layer `json:"layers"`

	// Operations is every link the merge would create, in execution order
	Operations []Operation `json:"operations"`

	// Overrides lists every path claimed by more than one layer
	Overrides []Override `json:"overrides"`
}

// NewMergePlan creates a new empty MergePlan.
func NewMergePlan(ranked []layers.Layer) *MergePlan {
	return &MergePlan{
		Layers:     ranked,
		Operations: []Operation{},
		Overrides:  []Override{},
	}
}

// AddOperation adds an operation to the plan.
func (p *MergePlan) AddOperation(op Operation) {
	p.Operations = append(p.Operations, op)
}

// AddOverride adds an override to the plan.
func (p *MergePlan) AddOverride(o Override) {
	p.Overrides = append(p.Overrides, o)
}

// Winners maps every planned relative path to the layer that provides it.
func (p *MergePlan) Winners() map[string]string {
	winners := make(map[string]string, len(p.Operations))
	for _, op := range p.Operations {
		winners[op.RelPath] = op.Layer
	}
	return winners
}
