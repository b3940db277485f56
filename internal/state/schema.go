package state

import "time"

// ManifestVersion is the schema version written into every run manifest.
const ManifestVersion = 1

// RunManifest records the outcome of the last successful publish.
// It is informational: a run never reads it back to decide what to merge.
type RunManifest struct {
	// Version is the manifest schema version
	Version int `json:"version"`

	// StartedAt is when the run began
	StartedAt time.Time `json:"startedAt"`

	// FinishedAt is when the output was published
	FinishedAt time.Time `json:"finishedAt"`

	// Output is the published destination path
	Output string `json:"output"`

	// Strategy is the publish strategy name ("copy", "symlink" or "junction")
	Strategy string `json:"strategy"`

	// MergedRoot is the merged tree the output was published from
	MergedRoot string `json:"mergedRoot"`

	// Layers lists the layer paths in rank order, highest priority first
	Layers []string `json:"layers"`

	// BaseLinked indicates whether the base rules file was linked
	BaseLinked bool `json:"baseLinked"`

	// Linked is the number of files linked into the merged tree
	Linked int `json:"linked"`

	// Winners maps each merged relative path to the layer that supplied it
	Winners map[string]string `json:"winners"`

	// Digest is the tree digest of the published output, when computed
	Digest string `json:"digest,omitempty"`
}

// NewRunManifest creates a manifest for a run that started at startedAt.
func NewRunManifest(startedAt time.Time) *RunManifest {
	return &RunManifest{
		Version:   ManifestVersion,
		StartedAt: startedAt,
		Layers:    []string{},
		Winners:   make(map[string]string),
	}
}

// Duration returns how long the run took.
func (m *RunManifest) Duration() time.Duration {
	if m.FinishedAt.IsZero() {
		return 0
	}
	return m.FinishedAt.Sub(m.StartedAt)
}
