package cache

import (
	"errors"
	"io/fs"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/randalmurphal/code-chunker/internal/fsutil"
)

// Entry records the last chunking of one file.
type Entry struct {
	Hash      string    `json:"hash"`
	Output    string    `json:"output"`
	Chunks    int       `json:"chunks"`
	Lines     int       `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Manifest maps repository-relative paths to their last chunking. It is
// persisted as JSON and is safe for concurrent use.
type Manifest struct {
	mu    sync.RWMutex
	path  string
	files map[string]Entry
}

type manifestFile struct {
	Version int              `json:"version"`
	Files   map[string]Entry `json:"files"`
}

const manifestVersion = 1

// LoadManifest reads the manifest at path. A missing file yields an empty
// manifest.
func LoadManifest(path string) (*Manifest, error) {
	m := &Manifest{path: path, files: make(map[string]Entry)}

	var data manifestFile
	if err := fsutil.LoadJSON(path, "manifest", &data); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m, nil
		}
		return nil, err
	}
	if data.Files != nil {
		m.files = data.Files
	}
	return m, nil
}

// Path returns where the manifest is saved.
func (m *Manifest) Path() string {
	return m.path
}

func (m *Manifest) Get(rel string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.files[rel]
	return e, ok
}

func (m *Manifest) Set(rel string, e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[rel] = e
}

// Delete removes rel and reports whether it was present.
func (m *Manifest) Delete(rel string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[rel]
	delete(m.files, rel)
	return ok
}

// Prune drops every entry not in seen and returns the dropped paths, sorted.
func (m *Manifest) Prune(seen map[string]bool) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string
	for rel := range m.files {
		if !seen[rel] {
			removed = append(removed, rel)
			delete(m.files, rel)
		}
	}
	slices.Sort(removed)
	return removed
}

// Paths returns the tracked paths, sorted.
func (m *Manifest) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.files))
}

func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// Save writes the manifest atomically.
func (m *Manifest) Save() error {
	m.mu.RLock()
	data := manifestFile{Version: manifestVersion, Files: maps.Clone(m.files)}
	m.mu.RUnlock()

	return fsutil.SaveJSON(data, m.path, "manifest")
}
