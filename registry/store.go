package registry

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const ggufExt = ".gguf"

// Store reads GGUF files from a models directory laid out as
// <dir>/<model>/<file>.gguf or <dir>/<file>.gguf. It never writes.
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Dir returns the models directory.
func (s *Store) Dir() string { return s.baseDir }

// Scan returns every model in the directory, sorted by name. A missing
// directory yields no models.
func (s *Store) Scan() ([]Model, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var models []Model
	for _, e := range entries {
		path := filepath.Join(s.baseDir, e.Name())
		if !e.IsDir() {
			if m, ok := load(path, stem(e.Name())); ok {
				models = append(models, m)
			}
			continue
		}

		files, err := ggufFiles(path)
		if err != nil {
			continue
		}
		for _, f := range files {
			name := e.Name()
			if len(files) > 1 {
				name += "/" + stem(filepath.Base(f))
			}
			if m, ok := load(f, name); ok {
				models = append(models, m)
			}
		}
	}

	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

func ggufFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ggufExt) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

func load(path, name string) (Model, bool) {
	if !strings.EqualFold(filepath.Ext(path), ggufExt) {
		return Model{}, false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Model{}, false
	}
	return Model{
		Name:         name,
		Path:         path,
		Size:         info.Size(),
		Quantization: quantization(path),
		ModifiedAt:   info.ModTime(),
	}, true
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
