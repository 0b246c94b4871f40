package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/alnah/go-mdview/internal/yamlutil"
)

// DefaultStateDir is the directory under the user config dir holding state.
const DefaultStateDir = "go-mdview"

// DefaultStateFile is the name of the preference file.
const DefaultStateFile = "state.yaml"

// Store persists the mode preference.
type Store interface {
	// Load returns the saved mode; ok is false when nothing was saved yet.
	Load() (mode Mode, ok bool, err error)
	Save(mode Mode) error
}

// stateDocument is the on-disk format of FileStore.
type stateDocument struct {
	Theme Mode `yaml:"theme"`
}

// FileStore keeps the preference in a small YAML document.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore at path, or at DefaultStatePath when
// path is empty.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultStatePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &FileStore{Path: path}, nil
}

// DefaultStatePath returns <user config dir>/go-mdview/state.yaml.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, DefaultStateDir, DefaultStateFile), nil
}

func (f *FileStore) Load() (Mode, bool, error) {
	var doc stateDocument
	if err := yamlutil.ReadFile(f.Path, &doc, false); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	if doc.Theme == "" {
		return "", false, nil
	}
	return doc.Theme, true, nil
}

func (f *FileStore) Save(mode Mode) error {
	return yamlutil.WriteFile(f.Path, stateDocument{Theme: mode})
}

// MemoryStore keeps the preference in memory. Err, when set, is returned
// by every Save.
type MemoryStore struct {
	mu    sync.Mutex
	mode  Mode
	saved bool
	Err   error
}

// NewMemoryStore returns a store holding mode, or an empty store for "".
func NewMemoryStore(mode Mode) *MemoryStore {
	return &MemoryStore{mode: mode, saved: mode != ""}
}

func (m *MemoryStore) Load() (Mode, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode, m.saved, nil
}

func (m *MemoryStore) Save(mode Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.mode, m.saved = mode, true
	return nil
}

// Compile-time interface checks.
var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
