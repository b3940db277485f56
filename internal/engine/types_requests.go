package engine

import "github.com/danieljhkim/layermerge/internal/config"

// PublishRequest represents a request to rebuild and publish the merged tree.
type PublishRequest struct {
	// Settings describes the layer layout and publishing options
	Settings config.Settings

	// Output overrides Settings.ExportDir when non-empty
	Output string

	// CWD resolves a relative Output; the process working directory when empty
	CWD string

	// DryRun performs planning only without making changes
	DryRun bool

	// Digest computes the output tree digest after publishing
	Digest bool
}

// PlanRequest represents a request to simulate a merge.
type PlanRequest struct {
	Settings config.Settings
}

// LayersRequest represents a request to list ranked layers.
type LayersRequest struct {
	Settings config.Settings
}

// StatusRequest represents a request for the last recorded run.
type StatusRequest struct {
	// Digest recomputes the output digest and compares it with the recorded one
	Digest bool
}
