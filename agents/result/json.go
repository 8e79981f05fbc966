/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the JSON payload out of a model response. In order it
// tries a ```json fenced block, a bare ``` fenced block, and finally the
// span from the first '{' or '[' to the last matching closer. The trimmed
// response is returned when none apply.
func ExtractJSON(responseText string) string {
	text := strings.TrimSpace(responseText)

	if body, ok := fenced(text, "```json"); ok {
		return body
	}
	if body, ok := fenced(text, "```"); ok && looksLikeJSON(body) {
		return body
	}
	if looksLikeJSON(text) {
		return text
	}

	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return text
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(text, closer); end > start {
		return text[start : end+1]
	}
	return text
}

// fenced returns the body of the first block opened by a line equal to open.
func fenced(text, open string) (string, bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != open {
			continue
		}
		var body []string
		for _, l := range lines[i+1:] {
			if strings.TrimSpace(l) == "```" {
				break
			}
			body = append(body, l)
		}
		return strings.TrimSpace(strings.Join(body, "\n")), true
	}
	// Single line form: ```json {...} ```
	if strings.HasPrefix(text, open) && strings.HasSuffix(text, "```") && len(text) > len(open)+3 {
		return strings.TrimSpace(text[len(open) : len(text)-3]), true
	}
	return "", false
}

func looksLikeJSON(s string) bool {
	return (strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")) ||
		(strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"))
}

// ExtractText returns a free text response with surrounding whitespace and
// any enclosing code fence removed.
func ExtractText(responseText string) string {
	text := strings.TrimSpace(responseText)
	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") && len(text) >= 6 {
		text = text[3 : len(text)-3]
		// Drop a language tag on the opening line.
		if nl := strings.IndexByte(text, '\n'); nl != -1 && !strings.ContainsAny(text[:nl], " \t") {
			text = text[nl+1:]
		}
	}
	return strings.TrimSpace(text)
}

// Extract parses a model response into T. When T is string the response is
// treated as free text (see ExtractText); otherwise the JSON payload is
// located with ExtractJSON and unmarshaled.
func Extract[T any](responseText string) (T, error) {
	var out T
	if s, ok := any(&out).(*string); ok {
		*s = ExtractText(responseText)
		return out, nil
	}

	payload := ExtractJSON(responseText)
	if payload == "" {
		return out, fmt.Errorf("no JSON found in response")
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return out, fmt.Errorf("unmarshal response: %w", err)
	}
	return out, nil
}
