package engine

import (
	"time"

	"github.com/danieljhkim/layermerge/internal/layers"
	"github.com/danieljhkim/layermerge/internal/planner"
	"github.com/danieljhkim/layermerge/internal/publish"
	"github.com/danieljhkim/layermerge/internal/state"
)

// MergeResult represents the result of rebuilding the merged tree.
type MergeResult struct {
	// Layers is the ranked layer list that was merged
	Layers []layers.Layer `json:"layers"`

	// Linked is the number of layer files linked, excluding the base file
	Linked int `json:"linked"`

	// BaseLinked indicates the base rules file was linked
	BaseLinked bool `json:"baseLinked"`

	// Winners maps each merged relative path to the layer that supplied it
	Winners map[string]string `json:"winners"`
}

// PublishResult represents the result of a publish run.
type PublishResult struct {
	// Skipped is set when no output was configured and nothing ran
	Skipped bool `json:"skipped"`

	// DryRun is set when only a plan was produced
	DryRun bool `json:"dryRun"`

	// Output is the resolved output path
	Output string `json:"output,omitempty"`

	// Disabled lists layers skipped because of the disabled marker
	Disabled []string `json:"disabled,omitempty"`

	// Plan is the simulated merge (dry run only)
	Plan *planner.MergePlan `json:"plan,omitempty"`

	// Merge is the merge outcome (nil for dry runs)
	Merge *MergeResult `json:"merge,omitempty"`

	// Publish is the publish outcome (nil for dry runs)
	Publish *publish.Result `json:"publish,omitempty"`

	// Digest is the output tree digest, when requested
	Digest string `json:"digest,omitempty"`

	// Duration is how long the run took
	Duration time.Duration `json:"duration"`
}

// PlanResult represents a simulated merge.
type PlanResult struct {
	// Plan is the simulated merge
	Plan *planner.MergePlan `json:"plan"`

	// Disabled lists layers skipped because of the disabled marker
	Disabled []string `json:"disabled"`

	// BaseFile is the base rules file the run would link, empty when skipped
	BaseFile string `json:"baseFile,omitempty"`

	// BaseMissing is set when the base file is expected but absent;
	// a real run fails in that case
	BaseMissing bool `json:"baseMissing"`
}

// LayersResult represents the enumerated layers.
type LayersResult struct {
	// Root is the layers root that was enumerated
	Root string `json:"root"`

	// Layers is the ranked layer list
	Layers []layers.Layer `json:"layers"`

	// Disabled lists layers skipped because of the disabled marker
	Disabled []string `json:"disabled"`
}

// StatusResult represents the last recorded run.
type StatusResult struct {
	// Manifest is the last run manifest
	Manifest *state.RunManifest `json:"manifest"`

	// OutputPresent indicates the recorded output still exists
	OutputPresent bool `json:"outputPresent"`

	// Digest is the freshly computed output digest, when requested
	Digest string `json:"digest,omitempty"`

	// DigestMatches compares Digest with the recorded digest; nil when either is unknown
	DigestMatches *bool `json:"digestMatches,omitempty"`
}
