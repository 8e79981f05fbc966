/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package params

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Extract returns the named argument converted to T, or an error when it is
// missing or has an incompatible type.
func Extract[T any](args map[string]any, name string) (T, error) {
	var zero T
	value, ok := args[name]
	if !ok {
		return zero, fmt.Errorf("%s parameter is required", name)
	}
	return convert[T](name, value)
}

// ExtractOptional is like Extract but returns defaultValue when the argument
// is absent or null.
func ExtractOptional[T any](args map[string]any, name string, defaultValue T) (T, error) {
	value, ok := args[name]
	if !ok || value == nil {
		return defaultValue, nil
	}
	return convert[T](name, value)
}

// Decode maps the whole argument object onto a struct through its JSON tags.
func Decode[T any](args map[string]any) (T, error) {
	var out T
	b, err := json.Marshal(args)
	if err != nil {
		return out, fmt.Errorf("encoding arguments: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decoding arguments into %T: %w", out, err)
	}
	return out, nil
}

// Parse decodes a JSON-encoded argument object as produced by the chat
// completion APIs. An empty payload yields an empty map.
func Parse(raw string) (map[string]any, error) {
	args := map[string]any{}
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("parsing tool arguments: %w", err)
	}
	return args, nil
}

func convert[T any](name string, value any) (T, error) {
	if v, ok := value.(T); ok {
		return v, nil
	}
	if v, ok := convertNumeric[T](value); ok {
		return v, nil
	}
	if v, ok := convertSlice[T](value); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%s parameter must be of type %T, got %T", name, zero, value)
}

// convertNumeric narrows JSON numbers (always float64) to integer types.
func convertNumeric[T any](value any) (T, bool) {
	var zero T
	f, ok := value.(float64)
	if !ok {
		return zero, false
	}
	switch any(zero).(type) {
	case int:
		return any(int(f)).(T), true
	case int32:
		return any(int32(f)).(T), true
	case int64:
		return any(int64(f)).(T), true
	}
	return zero, false
}

// convertSlice turns a decoded JSON array into a typed slice.
func convertSlice[T any](value any) (T, bool) {
	var zero T
	items, ok := value.([]any)
	if !ok {
		return zero, false
	}
	switch any(zero).(type) {
	case []string:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return zero, false
			}
			out = append(out, s)
		}
		return any(out).(T), true
	case []float64:
		out := make([]float64, 0, len(items))
		for _, item := range items {
			f, ok := item.(float64)
			if !ok {
				return zero, false
			}
			out = append(out, f)
		}
		return any(out).(T), true
	}
	return zero, false
}

// Error creates an error response map.
func Error(format string, args ...any) map[string]any {
	return map[string]any{"error": fmt.Sprintf(format, args...)}
}

// ErrorWithContext creates an error response carrying extra fields.
func ErrorWithContext(err error, context map[string]any) map[string]any {
	response := map[string]any{"error": err.Error()}
	maps.Copy(response, context)
	return response
}
