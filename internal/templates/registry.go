// Package templates holds the layout templates offered to the composer:
// the built-in set plus JSON files from a directory that can change while
// the server runs.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"moodboard/internal/domain"
)

// Registry is safe for concurrent use. A file template with the id of a
// built-in one takes its place. When several files declare the same id the
// one with the lowest path wins.
type Registry struct {
	mu      sync.RWMutex
	builtin []domain.Template
	files   map[string]domain.Template // abs path -> template
	log     *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		builtin: Builtin(),
		files:   make(map[string]domain.Template),
		log:     log,
	}
}

// Get returns the template with id.
func (r *Registry) Get(id string) (domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.fileTemplates() {
		if t.ID == id {
			return t, nil
		}
	}
	for _, t := range r.builtin {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Template{}, fmt.Errorf("template %q: %w", id, domain.ErrUnknownTemplate)
}

// List returns built-in templates in display order followed by file
// templates sorted by id.
func (r *Registry) List() []domain.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fromFiles := r.fileTemplates()
	overridden := make(map[string]bool, len(fromFiles))
	for _, t := range fromFiles {
		overridden[t.ID] = true
	}

	out := make([]domain.Template, 0, len(r.builtin)+len(fromFiles))
	for _, t := range r.builtin {
		if !overridden[t.ID] {
			out = append(out, t)
		}
	}
	return append(out, fromFiles...)
}

// fileTemplates returns one template per id, taken from the lowest path,
// sorted by id. Callers hold r.mu.
func (r *Registry) fileTemplates() []domain.Template {
	paths := make([]string, 0, len(r.files))
	for p := range r.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	seen := make(map[string]bool, len(paths))
	out := make([]domain.Template, 0, len(paths))
	for _, p := range paths {
		t := r.files[p]
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDir reads every *.json file in dir. Invalid files are logged and
// skipped. A missing dir is not an error.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read templates dir: %w", err)
	}
	loaded := 0
	for _, e := range entries {
		if e.IsDir() || !isTemplateFile(e.Name()) {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, e.Name())); err != nil {
			r.log.Warn("skip template file", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		loaded++
	}
	return loaded, nil
}

// LoadFile parses one template file and registers it under its path.
func (r *Registry) LoadFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(abs), err)
	}
	r.mu.Lock()
	r.files[abs] = t
	var shadowing []string
	for p, other := range r.files {
		if p != abs && other.ID == t.ID {
			shadowing = append(shadowing, p)
		}
	}
	r.mu.Unlock()
	if len(shadowing) > 0 {
		sort.Strings(shadowing)
		r.log.Warn("duplicate template id", zap.String("id", t.ID), zap.String("file", abs), zap.Strings("others", shadowing))
	}
	r.log.Debug("template loaded", zap.String("id", t.ID), zap.String("file", abs))
	return nil
}

// Forget drops the template loaded from path.
func (r *Registry) Forget(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[abs]; !ok {
		return false
	}
	delete(r.files, abs)
	return true
}

// isTemplateFile accepts a bare file name or a full path.
func isTemplateFile(name string) bool {
	base := filepath.Base(name)
	return strings.EqualFold(filepath.Ext(base), ".json") && !strings.HasPrefix(base, ".")
}
