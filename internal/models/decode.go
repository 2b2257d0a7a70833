package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeWorkout parses a workout document. JSON is decoded directly; anything
// else is treated as YAML and converted through a generic tree so the same
// JSON normalization (repeat counts, position locks) applies to both.
func DecodeWorkout(data []byte) (*Workout, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty workout document")
	}

	if trimmed[0] != '{' {
		converted, err := yamlToJSON(trimmed)
		if err != nil {
			return nil, err
		}
		trimmed = converted
	}

	var w Workout
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return nil, fmt.Errorf("decoding workout: %w", err)
	}
	return &w, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parsing workout yaml: %w", err)
	}
	out, err := json.Marshal(normalizeYAML(tree))
	if err != nil {
		return nil, fmt.Errorf("converting workout yaml: %w", err)
	}
	return out, nil
}

// normalizeYAML rewrites map[any]any nodes (non-string keys) so the tree can
// be marshaled as JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}
