// Package planner decides which layer files end up in the merged tree.
//
// The planner walks one layer at a time and produces an ordered list of hard
// link operations for the files that pass the path filter. Filtering is
// first-writer-wins: a file is only planned if nothing exists at its relative
// path in the merged tree yet, so plans must be built against the merged tree
// as it stands after every higher-priority layer has been linked.
//
// Key responsibilities:
//   - Structural path rules (directories, JSON, logs/options/meta, loose top-level files)
//   - Per-layer LayerPlan built against the live merged tree
//   - Whole-run MergePlan that simulates the merge for dry runs and reports overrides
package planner
