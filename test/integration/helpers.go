package integration

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/danieljhkim/layermerge/internal/clock"
	"github.com/danieljhkim/layermerge/internal/config"
	"github.com/danieljhkim/layermerge/internal/engine"
	"github.com/danieljhkim/layermerge/internal/fsops"
	"github.com/danieljhkim/layermerge/internal/hash"
	"github.com/danieljhkim/layermerge/internal/state"
)

// recordingFS is a real filesystem that remembers every hard link it creates,
// in the order the links completed.
type recordingFS struct {
	*fsops.RealFS

	mu    sync.Mutex
	links []linkEvent
}

type linkEvent struct {
	source string
	dest   string
}

func newRecordingFS() *recordingFS {
	return &recordingFS{RealFS: fsops.NewRealFS()}
}

func (fs *recordingFS) Link(oldname, newname string) error {
	if err := fs.RealFS.Link(oldname, newname); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.links = append(fs.links, linkEvent{source: oldname, dest: newname})
	return nil
}

func (fs *recordingFS) events() []linkEvent {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]linkEvent(nil), fs.links...)
}

func (fs *recordingFS) reset() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.links = nil
}

// testStateStore keeps the run manifest in memory.
type testStateStore struct {
	mu       sync.Mutex
	manifest *state.RunManifest
	saves    int
}

func (s *testStateStore) Load() (*state.RunManifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.manifest == nil {
		return nil, os.ErrNotExist
	}
	return s.manifest, nil
}

func (s *testStateStore) Save(m *state.RunManifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest = m
	s.saves++
	return nil
}

func (s *testStateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest = nil
	return nil
}

type testEnv struct {
	root     string
	settings config.Settings
	fs       *recordingFS
	store    *testStateStore
	engine   *engine.Engine
}

func setupTestEngine(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	settings := config.Defaults(config.PathsAt(root))
	settings.ExportDir = filepath.Join(root, "game", "mods")
	settings.SkipBaseFile = true
	settings.Workers = 4
	if err := os.MkdirAll(settings.LayersRoot, 0755); err != nil {
		t.Fatal(err)
	}

	fs := newRecordingFS()
	store := &testStateStore{}
	clk := clock.NewSteppingClock(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), time.Millisecond)
	eng := engine.New(fs, afero.NewOsFs(), store, hash.NewSHA256Hasher(), clk, nil)

	return &testEnv{root: root, settings: settings, fs: fs, store: store, engine: eng}
}

// write creates a file under the layers root and returns its path.
func (e *testEnv) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(e.settings.LayersRoot, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (e *testEnv) layer(name string) string {
	return filepath.Join(e.settings.LayersRoot, filepath.FromSlash(name))
}

// mergedFiles lists every file in the merged tree, slash-separated.
func (e *testEnv) mergedFiles(t *testing.T) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(e.settings.MergedRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(e.settings.MergedRoot, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk merged tree: %v", err)
	}
	return files
}

// layerOf returns which of the given layer roots contains path.
// Longer roots are tried first so option sub-layers win over their owner.
func layerOf(path string, roots []string) string {
	best := ""
	for _, root := range roots {
		if strings.HasPrefix(path, root+string(filepath.Separator)) && len(root) > len(best) {
			best = root
		}
	}
	return best
}

func sameFile(t *testing.T, a, b string) bool {
	t.Helper()
	ai, err := os.Stat(a)
	if err != nil {
		t.Fatal(err)
	}
	bi, err := os.Stat(b)
	if err != nil {
		t.Fatal(err)
	}
	return os.SameFile(ai, bi)
}
