// Package catalog pulls catalog items from external sources (files or an
// HTTP endpoint) so they can be placed on a moodboard.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config is an opaque configuration map parsed per source type.
type Config map[string]any

func (c Config) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// ConfigField describes one configuration input of a source.
type ConfigField struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
	Default  string   `json:"default,omitempty"`
	Help     string   `json:"help,omitempty"`
}

// SourceSpec describes a source type and its configuration.
type SourceSpec struct {
	Type         string        `json:"type"`
	Label        string        `json:"label"`
	ConfigFields []ConfigField `json:"configFields"`
}

// Record is one raw row before it is mapped to a catalog item.
type Record map[string]any

// Source streams raw records. The record channel closes when the source is
// exhausted or ctx is done; at most one error is sent.
type Source interface {
	Spec() SourceSpec
	Read(ctx context.Context, cfg Config) (<-chan Record, <-chan error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Source{}
)

// Register adds a source under its spec type. Sources register from init.
func Register(s Source) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Spec().Type] = s
}

func Get(typ string) (Source, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[typ]
	if !ok {
		return nil, fmt.Errorf("unknown catalog source: %q", typ)
	}
	return s, nil
}

// List returns every registered source spec ordered by type.
func List() []SourceSpec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	specs := make([]SourceSpec, 0, len(registry))
	for _, s := range registry {
		specs = append(specs, s.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Type < specs[j].Type })
	return specs
}

// emit sends records on a fresh channel pair, honouring ctx.
func emit(ctx context.Context, load func() ([]Record, error)) (<-chan Record, <-chan error) {
	out := make(chan Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		records, err := load()
		if err != nil {
			errCh <- err
			return
		}
		for _, rec := range records {
			select {
			case out <- rec:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()

	return out, errCh
}
