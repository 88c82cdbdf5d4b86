package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ── JSON File Source ────────────────────────────────────────

type jsonFileSource struct{}

func init() { Register(&jsonFileSource{}) }

func (s *jsonFileSource) Spec() SourceSpec {
	return SourceSpec{
		Type:  "json_file",
		Label: "JSON File",
		ConfigFields: []ConfigField{
			{Key: "filePath", Label: "File Path", Required: true, Help: "Path to the JSON file"},
			{Key: "dataPath", Label: "Data Path", Help: "Dot-separated path to the item array (e.g. 'data.items'). Empty when the root is an array."},
		},
	}
}

func (s *jsonFileSource) Read(ctx context.Context, cfg Config) (<-chan Record, <-chan error) {
	return emit(ctx, func() ([]Record, error) {
		filePath := cfg.String("filePath")
		if filePath == "" {
			return nil, errors.New("filePath is required")
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return decodeRecords(data, cfg.String("dataPath"))
	})
}

// decodeRecords parses a JSON document and returns the objects found at
// dataPath. A single object yields one record.
func decodeRecords(data []byte, dataPath string) ([]Record, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if dataPath != "" {
		raw = navigatePath(raw, dataPath)
	}

	switch v := raw.(type) {
	case []any:
		records := make([]Record, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				records = append(records, Record(m))
			}
		}
		return records, nil
	case map[string]any:
		return []Record{v}, nil
	default:
		return nil, fmt.Errorf("no objects at %q", dataPath)
	}
}

// navigatePath walks a dot-separated path into nested objects.
func navigatePath(obj any, path string) any {
	current := obj
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}
