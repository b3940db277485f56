// Package state persists the record of the last publish run.
//
// After a successful publish the engine writes a RunManifest to
// <state>/last-run.json: the ranked layers, which layer won each merged
// path, the strategy used and the output location. The status command
// reads it back. Merging never consults it, so a missing or stale
// manifest cannot change what a run produces.
package state
