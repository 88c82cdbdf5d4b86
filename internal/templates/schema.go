package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"moodboard/internal/domain"
)

// ErrInvalidTemplate wraps schema violations in a template file.
var ErrInvalidTemplate = errors.New("invalid template")

const templateSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "cells"],
  "properties": {
    "id":          {"type": "string", "pattern": "^[a-z0-9][a-z0-9-]*$"},
    "name":        {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "cells": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["x", "y", "width", "height"],
        "properties": {
          "x":      {"type": "number", "minimum": 0, "maximum": 100},
          "y":      {"type": "number", "minimum": 0, "maximum": 100},
          "width":  {"type": "number", "exclusiveMinimum": 0, "maximum": 100},
          "height": {"type": "number", "exclusiveMinimum": 0, "maximum": 100}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(templateSchema)

// Parse validates data against the template schema and decodes it.
func Parse(data []byte) (domain.Template, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return domain.Template{}, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return domain.Template{}, fmt.Errorf("%w: %s", ErrInvalidTemplate, strings.Join(errs, "; "))
	}

	var t domain.Template
	if err := json.Unmarshal(data, &t); err != nil {
		return domain.Template{}, fmt.Errorf("decode template: %w", err)
	}
	return t, nil
}
