package registry

import (
	"errors"
	"fmt"
	"os"
)

// ErrModelNotFound is returned by GetModel for unknown names.
var ErrModelNotFound = errors.New("model not found")

// ModelManager provides lookups over the local models directory.
type ModelManager struct {
	store *Store
}

// NewModelManager creates a ModelManager for baseDir. The directory does
// not need to exist.
func NewModelManager(baseDir string) *ModelManager {
	return &ModelManager{store: NewStore(baseDir)}
}

// Dir returns the models directory being scanned.
func (m *ModelManager) Dir() string { return m.store.Dir() }

// ListModels returns all discovered models.
func (m *ModelManager) ListModels() ([]Model, error) {
	return m.store.Scan()
}

// GetModel looks a model up by name.
func (m *ModelManager) GetModel(name string) (*Model, error) {
	models, err := m.store.Scan()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", m.store.Dir(), err)
	}
	for i := range models {
		if models[i].Name == name {
			return &models[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
}

// ResolveModelPath maps a model name to its file. An existing path, or a
// name that matches nothing, is returned unchanged with ok=false; the
// inference binary reports bad paths itself.
func (m *ModelManager) ResolveModelPath(nameOrPath string) (path string, ok bool) {
	if _, err := os.Stat(nameOrPath); err == nil {
		return nameOrPath, false
	}
	model, err := m.GetModel(nameOrPath)
	if err != nil {
		return nameOrPath, false
	}
	return model.Path, true
}
