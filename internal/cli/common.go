package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/layermerge/internal/clock"
	"github.com/danieljhkim/layermerge/internal/config"
	"github.com/danieljhkim/layermerge/internal/engine"
	"github.com/danieljhkim/layermerge/internal/fsops"
	"github.com/danieljhkim/layermerge/internal/hash"
	"github.com/danieljhkim/layermerge/internal/state"
)

// loadSettings resolves settings with precedence flags > env > file > defaults.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to get config paths: %w", err)
	}

	configPath := paths.Config
	if settingsFlags.configPath != "" {
		configPath = settingsFlags.configPath
	}

	s, err := config.Load(paths, configPath)
	if err != nil {
		return config.Settings{}, err
	}

	flags := cmd.Flags()
	dirs := []struct {
		name string
		src  string
		dst  *string
	}{
		{"layers", settingsFlags.layersRoot, &s.LayersRoot},
		{"merged", settingsFlags.mergedRoot, &s.MergedRoot},
		{"base", settingsFlags.baseRoot, &s.BaseLayerRoot},
		{"export", settingsFlags.exportDir, &s.ExportDir},
		{"state", settingsFlags.stateDir, &s.StateDir},
	}
	for _, d := range dirs {
		if !flags.Changed(d.name) {
			continue
		}
		abs, err := filepath.Abs(d.src)
		if err != nil {
			return config.Settings{}, fmt.Errorf("failed to resolve --%s: %w", d.name, err)
		}
		*d.dst = abs
	}
	if flags.Changed("copy") {
		s.UseCopy = settingsFlags.useCopy
	}
	if flags.Changed("skip-base") {
		s.SkipBaseFile = settingsFlags.skipBase
	}
	if flags.Changed("workers") {
		s.Workers = settingsFlags.workers
	}

	return s, nil
}

// newLogger builds the stderr logger; --verbose enables debug records.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine(s config.Settings) *engine.Engine {
	fs := fsops.NewRealFS()
	stateStore := state.NewFileStore(fs, s.StateDir)

	return engine.New(fs, afero.NewOsFs(), stateStore, hash.NewSHA256Hasher(), &clock.RealClock{}, newLogger())
}

// formatJSON formats a value as JSON.
func formatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// formatError formats an error for display.
func formatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
