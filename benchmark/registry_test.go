/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package benchmark

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistry(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	m, err := r.Lookup("gpt-4o-2024-11-20")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if m.Handler != HandlerFC || !m.FunctionCalling {
		t.Errorf("gpt-4o: got = %+v, wanted a function calling model", m)
	}
	if got, want := m.Cost(1_000_000, 100_000), 3.5; got != want {
		t.Errorf("Cost: got = %v, wanted = %v", got, want)
	}

	prompt, err := r.Lookup("meta-llama/Llama-3.1-8B-Instruct-prompt")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got, want := prompt.APIModel(), "meta-llama/Llama-3.1-8B-Instruct"; got != want {
		t.Errorf("APIModel: got = %s, wanted = %s", got, want)
	}

	if _, err := r.Lookup("gpt-2"); err == nil {
		t.Error("Lookup(gpt-2): got = nil, wanted error")
	}
	if err := r.Register(ModelConfig{Name: "x", Handler: "gorilla"}); err == nil {
		t.Error("Register(unknown handler): got = nil, wanted error")
	}
}

func TestLoadOverlay(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "models.yaml")
	overlay := `
models:
  - name: granite-3.3-8b
    model: ibm-granite/granite-3.3-8b-instruct
    organization: IBM
    license: apache-2.0
    handler: openai-fc
    function_calling: true
  - name: gpt-4o-2024-11-20
    display_name: GPT-4o (discounted)
    handler: openai-fc
    input_price_per_million: 1.25
    output_price_per_million: 5
`
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	before := len(r.Models())
	if err := r.LoadOverlay(path); err != nil {
		t.Fatalf("LoadOverlay: %v", err)
	}
	if got, want := len(r.Models()), before+1; got != want {
		t.Errorf("models: got = %d, wanted = %d", got, want)
	}

	granite, _ := r.Lookup("granite-3.3-8b")
	want := ModelConfig{
		Name:            "granite-3.3-8b",
		Model:           "ibm-granite/granite-3.3-8b-instruct",
		DisplayName:     "granite-3.3-8b",
		Organization:    "IBM",
		License:         "apache-2.0",
		Handler:         HandlerFC,
		FunctionCalling: true,
	}
	if diff := cmp.Diff(want, granite); diff != "" {
		t.Errorf("granite (-want +got):\n%s", diff)
	}
	gpt, _ := r.Lookup("gpt-4o-2024-11-20")
	if gpt.InputPricePerMillion != 1.25 {
		t.Errorf("overridden price: got = %v, wanted = 1.25", gpt.InputPricePerMillion)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("models:\n  - handler: openai-fc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.LoadOverlay(bad); err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Errorf("LoadOverlay(bad): got = %v, wanted missing name error", err)
	}
}

func TestCategories(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    []Category
		wantErr bool
	}{
		{in: "all", want: Categories},
		{in: "", want: Categories},
		{in: "simple", want: []Category{CategorySimple}},
		{in: "parallel, irrelevance,parallel", want: []Category{CategoryParallel, CategoryIrrelevance}},
		{in: "live_simple", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseCategories(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCategories(%q): got = %v, wanted error = %v", tt.in, err, tt.wantErr)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseCategories(%q) (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestLoadTestData(t *testing.T) {
	t.Parallel()
	entries, err := LoadEntries("testdata/data", CategorySimple)
	if err != nil {
		t.Fatalf("LoadEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: got = %d, wanted = 2", len(entries))
	}
	if got := entries[1].Function[0].Name; got != "math.factorial" {
		t.Errorf("function: got = %s, wanted = math.factorial", got)
	}
	if got := entries[0].Messages()[0].Role; got != "user" {
		t.Errorf("role: got = %s, wanted = user", got)
	}

	answers, err := LoadAnswers("testdata/data", CategorySimple)
	if err != nil {
		t.Fatalf("LoadAnswers: %v", err)
	}
	if got := answers["simple_0"].GroundTruth[0]["calculate_triangle_area"]["unit"]; !cmp.Equal(got, []any{"units", ""}) {
		t.Errorf("unit answers: got = %v", got)
	}

	answers, err = LoadAnswers("testdata/data", CategoryIrrelevance)
	if err != nil || len(answers) != 0 {
		t.Errorf("LoadAnswers(irrelevance): got = %v, %v, wanted none", answers, err)
	}
	if _, err := LoadEntries("testdata/data", CategoryMultiple); err == nil {
		t.Error("LoadEntries(missing): got = nil, wanted error")
	}
}

func TestJSONSchema(t *testing.T) {
	t.Parallel()
	in := map[string]any{
		"type": "dict",
		"properties": map[string]any{
			"weight": map[string]any{"type": "float"},
			"point":  map[string]any{"type": "tuple", "items": map[string]any{"type": "float"}},
			"extra":  map[string]any{"type": "any", "description": "anything"},
			"type":   map[string]any{"type": "string", "enum": []any{"a", "b"}},
			"opts":   map[string]any{"type": "dict"},
		},
		"required": []any{"weight"},
	}
	want := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"weight": map[string]any{"type": "number"},
			"point":  map[string]any{"type": "array", "items": map[string]any{"type": "number"}},
			"extra":  map[string]any{"description": "anything"},
			"type":   map[string]any{"type": "string", "enum": []any{"a", "b"}},
			"opts":   map[string]any{"type": "object", "properties": map[string]any{}},
		},
		"required": []any{"weight"},
	}
	if diff := cmp.Diff(want, jsonSchema(in)); diff != "" {
		t.Errorf("jsonSchema (-want +got):\n%s", diff)
	}
	if got := toolName("math.factorial"); got != "math_factorial" {
		t.Errorf("toolName: got = %s, wanted = math_factorial", got)
	}
}
