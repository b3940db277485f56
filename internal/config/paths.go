// Package config manages layermerge configuration and filesystem paths.
//
// The default root is ~/.layermerge (or $LAYERMERGE_ROOT) containing layers/,
// merged/, base/, state/ and an optional config.yaml. Settings are loaded
// from that file, then from LAYERMERGE_* environment variables, and are
// passed explicitly to the engine; there is no process-wide settings value.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// RootEnv overrides the default data root.
const RootEnv = "LAYERMERGE_ROOT"

// Paths contains all the filesystem paths used by layermerge.
type Paths struct {
	// Root is the base directory for all layermerge data (default: ~/.layermerge)
	Root string

	// Layers is the directory whose immediate subdirectories are layers
	Layers string

	// Merged is the internal merged tree, rebuilt on every run
	Merged string

	// Base is the base layer holding the mandatory rules.txt
	Base string

	// State holds the run manifest
	State string

	// Config is the path to the settings file
	Config string
}

// DefaultPaths returns the default paths for layermerge.
// Paths can be overridden with environment variables:
// - LAYERMERGE_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv(RootEnv)
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".layermerge")
	}

	return PathsAt(root), nil
}

// PathsAt lays out the standard directories under root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:   root,
		Layers: filepath.Join(root, "layers"),
		Merged: filepath.Join(root, "merged"),
		Base:   filepath.Join(root, "base"),
		State:  filepath.Join(root, "state"),
		Config: filepath.Join(root, "config.yaml"),
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
// The merged tree is not created here; the engine owns its lifecycle.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.Root,
		p.Layers,
		p.State,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
