/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package benchmark

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Category is a group of test entries sharing a shape of expected answer.
type Category string

const (
	// CategorySimple expects one call to the single offered function.
	CategorySimple Category = "simple"
	// CategoryMultiple expects one call chosen among several functions.
	CategoryMultiple Category = "multiple"
	// CategoryParallel expects several calls to the single function.
	CategoryParallel Category = "parallel"
	// CategoryParallelMultiple expects several calls among several functions.
	CategoryParallelMultiple Category = "parallel_multiple"
	// CategoryIrrelevance expects no call at all.
	CategoryIrrelevance Category = "irrelevance"
)

// Categories lists every category in run order.
var Categories = []Category{
	CategorySimple,
	CategoryMultiple,
	CategoryParallel,
	CategoryParallelMultiple,
	CategoryIrrelevance,
}

// ParseCategories accepts "all" or a comma separated list of categories.
func ParseCategories(s string) ([]Category, error) {
	if s == "" || s == "all" {
		return slices.Clone(Categories), nil
	}
	var out []Category
	for _, part := range strings.Split(s, ",") {
		c := Category(strings.TrimSpace(part))
		if !slices.Contains(Categories, c) {
			return nil, fmt.Errorf("unknown test category %q", c)
		}
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// HasAnswers reports whether entries of c have possible answers on disk.
func (c Category) HasAnswers() bool {
	return c != CategoryIrrelevance
}

// Message is one chat message of a question.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Function documents a function offered to the model. Parameters is a
// JSON schema that may use the "dict", "float", "tuple" and "any" type
// names of the test data.
type Function struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Entry is one test case. Question holds turns of messages; single turn
// categories have exactly one.
type Entry struct {
	ID       string      `json:"id"`
	Question [][]Message `json:"question"`
	Function []Function  `json:"function"`
}

// Messages returns the messages of the first turn.
func (e Entry) Messages() []Message {
	if len(e.Question) == 0 {
		return nil
	}
	return e.Question[0]
}

// Answer holds the accepted calls of an entry. Each element of
// GroundTruth maps one function name to its parameters, and each
// parameter to the list of accepted values.
type Answer struct {
	ID          string                        `json:"id"`
	GroundTruth []map[string]map[string][]any `json:"ground_truth"`
}

// LoadEntries reads <dataDir>/<category>.json.
func LoadEntries(dataDir string, c Category) ([]Entry, error) {
	entries, err := readLines[Entry](filepath.Join(dataDir, string(c)+".json"))
	if err != nil {
		return nil, err
	}
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("%s entry %d: missing id", c, i)
		}
		if len(e.Messages()) == 0 {
			return nil, fmt.Errorf("%s entry %s: no question", c, e.ID)
		}
	}
	return entries, nil
}

// LoadAnswers reads <dataDir>/possible_answer/<category>.json keyed by id.
// Categories without answers return an empty map.
func LoadAnswers(dataDir string, c Category) (map[string]Answer, error) {
	if !c.HasAnswers() {
		return map[string]Answer{}, nil
	}
	answers, err := readLines[Answer](filepath.Join(dataDir, "possible_answer", string(c)+".json"))
	if err != nil {
		return nil, err
	}
	out := make(map[string]Answer, len(answers))
	for _, a := range answers {
		out[a.ID] = a
	}
	return out, nil
}

// readLines decodes a JSON lines file, skipping blank lines.
func readLines[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	out, err := decodeLines[T](f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func decodeLines[T any](r io.Reader) ([]T, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var out []T
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// readLinesIfExists is readLines returning nothing for a missing file.
func readLinesIfExists[T any](path string) ([]T, error) {
	out, err := readLines[T](path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return out, err
}
