/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package benchmark

import "strings"

// toolName maps a function name onto the characters tool-calling APIs
// accept. Dotted names such as "math.factorial" become "math_factorial".
func toolName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

// typeNames maps the type names of the test data to JSON Schema. Types
// mapped to "" are dropped.
var typeNames = map[string]string{
	"dict":  "object",
	"float": "number",
	"tuple": "array",
	"any":   "",
}

// jsonSchema converts a parameter schema of the test data into JSON Schema.
func jsonSchema(schema map[string]any) map[string]any {
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		switch k {
		case "type":
			s, ok := v.(string)
			if !ok {
				out[k] = v
				continue
			}
			if mapped, ok := typeNames[s]; ok {
				if mapped != "" {
					out[k] = mapped
				}
				continue
			}
			out[k] = s
		case "properties":
			props, ok := v.(map[string]any)
			if !ok {
				out[k] = v
				continue
			}
			converted := make(map[string]any, len(props))
			for name, p := range props {
				if pm, ok := p.(map[string]any); ok {
					converted[name] = jsonSchema(pm)
				} else {
					converted[name] = p
				}
			}
			out[k] = converted
		case "items", "additionalProperties":
			if m, ok := v.(map[string]any); ok {
				out[k] = jsonSchema(m)
			} else {
				out[k] = v
			}
		default:
			out[k] = v
		}
	}
	if out["type"] == "object" {
		if _, ok := out["properties"]; !ok {
			out["properties"] = map[string]any{}
		}
	}
	return out
}
