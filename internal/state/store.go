package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danieljhkim/layermerge/internal/fsops"
)

// ManifestFile is the file name of the last-run manifest inside the state directory.
const ManifestFile = "last-run.json"

// Store persists run manifests.
type Store interface {
	// Load loads the last run manifest.
	// Returns os.ErrNotExist if no run has been recorded.
	Load() (*RunManifest, error)

	// Save saves the run manifest atomically.
	Save(m *RunManifest) error

	// Clear removes the recorded manifest.
	Clear() error
}

// FileStore implements Store using a JSON file on disk.
type FileStore struct {
	fs  fsops.FS
	dir string
}

// NewFileStore creates a new FileStore rooted at dir.
func NewFileStore(fs fsops.FS, dir string) *FileStore {
	return &FileStore{
		fs:  fs,
		dir: dir,
	}
}

// Path returns the manifest file path.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, ManifestFile)
}

// Load loads the last run manifest.
func (s *FileStore) Load() (*RunManifest, error) {
	data, err := s.fs.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read run manifest: %w", err)
	}

	var m RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run manifest: %w", err)
	}
	if m.Version > ManifestVersion {
		return nil, fmt.Errorf("unsupported run manifest version %d", m.Version)
	}
	if m.Winners == nil {
		m.Winners = make(map[string]string)
	}

	return &m, nil
}

// Save saves the run manifest atomically.
func (s *FileStore) Save(m *RunManifest) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run manifest: %w", err)
	}

	if err := s.fs.AtomicWrite(s.Path(), data, 0644); err != nil {
		return fmt.Errorf("failed to write run manifest: %w", err)
	}

	return nil
}

// Clear removes the recorded manifest.
func (s *FileStore) Clear() error {
	if err := s.fs.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete run manifest: %w", err)
	}
	return nil
}
