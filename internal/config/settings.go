package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ErrInvalid is wrapped by every settings validation failure.
var ErrInvalid = errors.New("invalid settings")

const envPrefix = "LAYERMERGE_"

// Settings is everything a merge run reads from its environment.
type Settings struct {
	// LayersRoot holds one directory per layer.
	LayersRoot string `yaml:"layers_root"`

	// MergedRoot is the internal merged tree, destroyed and rebuilt every run.
	MergedRoot string `yaml:"merged_root"`

	// ExportDir is the default output location. Empty means no output is configured.
	ExportDir string `yaml:"export_dir"`

	// BaseLayerRoot is the layer the mandatory rules.txt is linked from.
	BaseLayerRoot string `yaml:"base_layer_root"`

	// SkipBaseFile disables linking rules.txt from the base layer.
	SkipBaseFile bool `yaml:"skip_base_file"`

	// UseCopy publishes a full copy of the merged tree instead of a link.
	UseCopy bool `yaml:"use_copy"`

	// Workers bounds the per-layer linking pool. Zero or less means one per CPU.
	Workers int `yaml:"workers"`

	// StateDir holds the run manifest. The run lock sits beside MergedRoot.
	StateDir string `yaml:"state_dir"`
}

// Defaults returns the settings implied by a path layout.
func Defaults(p *Paths) Settings {
	return Settings{
		LayersRoot:    p.Layers,
		MergedRoot:    p.Merged,
		BaseLayerRoot: p.Base,
		StateDir:      p.State,
	}
}

// Load reads settings from the YAML file at path over the defaults for p, then
// applies LAYERMERGE_* environment overrides. A missing file is not an error.
func Load(p *Paths, path string) (Settings, error) {
	s := Defaults(p)

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return Settings{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := s.applyEnv(os.LookupEnv); err != nil {
		return Settings{}, err
	}

	return s, nil
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LAYERS_ROOT":     &s.LayersRoot,
		"MERGED_ROOT":     &s.MergedRoot,
		"EXPORT_DIR":      &s.ExportDir,
		"BASE_LAYER_ROOT": &s.BaseLayerRoot,
		"STATE_DIR":       &s.StateDir,
	}
	for key, dst := range strs {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"SKIP_BASE_FILE": &s.SkipBaseFile,
		"USE_COPY":       &s.UseCopy,
	}
	for key, dst := range bools {
		v, ok := lookup(envPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalid, envPrefix, key, v)
		}
		*dst = b
	}

	if v, ok := lookup(envPrefix + "WORKERS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sWORKERS=%q is not an integer", ErrInvalid, envPrefix, v)
		}
		s.Workers = n
	}

	return nil
}

// BaseFile is the path of rules.txt inside the base layer.
func (s Settings) BaseFile() string {
	return filepath.Join(s.BaseLayerRoot, BaseFileName)
}

// BaseFileName is the file always linked from the base layer.
const BaseFileName = "rules.txt"

// Validate checks that the settings describe a usable layout.
func (s Settings) Validate() error {
	required := []struct {
		name, value string
	}{
		{"layers_root", s.LayersRoot},
		{"merged_root", s.MergedRoot},
		{"base_layer_root", s.BaseLayerRoot},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalid, r.name)
		}
		if !filepath.IsAbs(r.value) {
			return fmt.Errorf("%w: %s must be absolute, got %q", ErrInvalid, r.name, r.value)
		}
	}

	merged := filepath.Clean(s.MergedRoot)
	if within(merged, filepath.Clean(s.LayersRoot)) {
		return fmt.Errorf("%w: merged_root %q must not be inside layers_root", ErrInvalid, s.MergedRoot)
	}
	if s.ExportDir != "" && filepath.Clean(s.ExportDir) == merged {
		return fmt.Errorf("%w: export_dir must differ from merged_root", ErrInvalid)
	}

	return nil
}

// within reports whether path equals root or lies beneath it.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// ValidateOutput checks that output can be cleared and replaced without
// destroying the merged tree or any layer.
func (s Settings) ValidateOutput(output string) error {
	if !filepath.IsAbs(output) {
		return fmt.Errorf("%w: output %q must be absolute", ErrInvalid, output)
	}
	output = filepath.Clean(output)
	if within(output, filepath.Clean(s.MergedRoot)) || within(filepath.Clean(s.MergedRoot), output) {
		return fmt.Errorf("%w: output %q overlaps merged_root", ErrInvalid, output)
	}
	if within(output, filepath.Clean(s.LayersRoot)) || within(filepath.Clean(s.LayersRoot), output) {
		return fmt.Errorf("%w: output %q overlaps layers_root", ErrInvalid, output)
	}
	return nil
}
