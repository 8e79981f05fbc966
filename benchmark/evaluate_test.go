/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package benchmark

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type truth = []map[string]map[string][]any

func TestCheckCalls(t *testing.T) {
	t.Parallel()
	area := truth{{"calculate_triangle_area": {"base": {10.0}, "height": {5.0}, "unit": {"units", ""}}}}
	spotify := truth{
		{"spotify.play": {"artist": {"Taylor Swift"}, "duration": {20.0}}},
		{"spotify.play": {"artist": {"Maroon 5"}, "duration": {15.0}}},
	}
	tests := []struct {
		name     string
		category Category
		calls    []Call
		truth    truth
		wantErr  string
	}{{
		name:     "exact",
		category: CategorySimple,
		calls:    []Call{{Name: "calculate_triangle_area", Arguments: map[string]any{"base": 10.0, "height": 5.0}}},
		truth:    area,
	}, {
		name:     "optional given",
		category: CategorySimple,
		calls:    []Call{{Name: "calculate_triangle_area", Arguments: map[string]any{"base": 10.0, "height": 5.0, "unit": "Units"}}},
		truth:    area,
	}, {
		name:     "wrong value",
		category: CategorySimple,
		calls:    []Call{{Name: "calculate_triangle_area", Arguments: map[string]any{"base": 10.0, "height": 6.0}}},
		truth:    area,
		wantErr:  `parameter "height": got = 6`,
	}, {
		name:     "missing required",
		category: CategorySimple,
		calls:    []Call{{Name: "calculate_triangle_area", Arguments: map[string]any{"base": 10.0}}},
		truth:    area,
		wantErr:  `missing required parameter "height"`,
	}, {
		name:     "unexpected parameter",
		category: CategorySimple,
		calls:    []Call{{Name: "calculate_triangle_area", Arguments: map[string]any{"base": 10.0, "height": 5.0, "color": "red"}}},
		truth:    area,
		wantErr:  `unexpected parameter "color"`,
	}, {
		name:     "wrong type",
		category: CategorySimple,
		calls:    []Call{{Name: "calculate_triangle_area", Arguments: map[string]any{"base": "10", "height": 5.0}}},
		truth:    area,
		wantErr:  `parameter "base"`,
	}, {
		name:     "sanitized name",
		category: CategoryMultiple,
		calls:    []Call{{Name: "math_factorial", Arguments: map[string]any{"number": 5.0}}},
		truth:    truth{{"math.factorial": {"number": {5.0}}}},
	}, {
		name:     "wrong function",
		category: CategoryMultiple,
		calls:    []Call{{Name: "math.gcd", Arguments: map[string]any{"number": 5.0}}},
		truth:    truth{{"math.factorial": {"number": {5.0}}}},
		wantErr:  "function: got = math.gcd, wanted = math.factorial",
	}, {
		name:     "too many calls",
		category: CategorySimple,
		calls:    []Call{{Name: "a"}, {Name: "a"}},
		truth:    area,
		wantErr:  "call count: got = 2, wanted = 1",
	}, {
		name:     "parallel any order",
		category: CategoryParallel,
		calls: []Call{
			{Name: "spotify.play", Arguments: map[string]any{"artist": "maroon 5", "duration": 15.0}},
			{Name: "spotify.play", Arguments: map[string]any{"artist": "Taylor Swift", "duration": 20.0}},
		},
		truth: spotify,
	}, {
		name:     "parallel swapped values",
		category: CategoryParallel,
		calls: []Call{
			{Name: "spotify.play", Arguments: map[string]any{"artist": "Maroon 5", "duration": 20.0}},
			{Name: "spotify.play", Arguments: map[string]any{"artist": "Taylor Swift", "duration": 15.0}},
		},
		truth:   spotify,
		wantErr: "do not match",
	}, {
		name:     "parallel missing call",
		category: CategoryParallelMultiple,
		calls:    []Call{{Name: "spotify.play", Arguments: map[string]any{"artist": "Maroon 5", "duration": 15.0}}},
		truth:    spotify,
		wantErr:  "call count: got = 1, wanted = 2",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			errs := checkCalls(tt.category, tt.calls, tt.truth)
			got := strings.Join(errs, "; ")
			switch {
			case tt.wantErr == "" && len(errs) != 0:
				t.Errorf("checkCalls: got = %s, wanted valid", got)
			case tt.wantErr != "" && !strings.Contains(got, tt.wantErr):
				t.Errorf("checkCalls: got = %q, wanted containing %q", got, tt.wantErr)
			}
		})
	}
}

func TestEqualValue(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		v    any
		want any
		ok   bool
	}{
		{name: "string punctuation", v: "New York, NY", want: "new york ny", ok: true},
		{name: "string differs", v: "Boston", want: "New York", ok: false},
		{name: "number", v: 3.0, want: 3.0, ok: true},
		{name: "bool", v: true, want: false, ok: false},
		{name: "list ordered", v: []any{1.0, 2.0}, want: []any{1.0, 2.0}, ok: true},
		{name: "list reordered", v: []any{2.0, 1.0}, want: []any{1.0, 2.0}, ok: false},
		{name: "dict alternatives", v: map[string]any{"city": "SF"}, want: map[string]any{"city": []any{"San Francisco", "SF"}, "zip": []any{""}}, ok: true},
		{name: "dict missing required", v: map[string]any{}, want: map[string]any{"city": []any{"SF"}}, ok: false},
		{name: "dict extra key", v: map[string]any{"city": "SF", "x": 1.0}, want: map[string]any{"city": []any{"SF"}}, ok: false},
	}
	for _, tt := range tests {
		if got := equalValue(tt.v, tt.want); got != tt.ok {
			t.Errorf("%s: equalValue(%v, %v): got = %v, wanted = %v", tt.name, tt.v, tt.want, got, tt.ok)
		}
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()
	entries, err := LoadEntries("testdata/data", CategorySimple)
	if err != nil {
		t.Fatal(err)
	}
	answers, err := LoadAnswers("testdata/data", CategorySimple)
	if err != nil {
		t.Fatal(err)
	}
	m := ModelConfig{Name: "org/model", Handler: HandlerFC, InputPricePerMillion: 1, OutputPricePerMillion: 2}

	results := map[string]Result{
		"simple_0": {ID: "simple_0", Calls: []Call{{Name: "calculate_triangle_area", Arguments: map[string]any{"base": 10.0, "height": 5.0}}}, InputTokens: 100, OutputTokens: 10, Latency: 1},
		"simple_1": {ID: "simple_1", Error: "chat completion: 500", InputTokens: 0, Latency: 3},
	}
	s := Evaluate(m, CategorySimple, entries, results, answers)
	if s.Correct != 1 || s.Total != 2 || s.Accuracy != 0.5 {
		t.Errorf("score: got = %d/%d (%v), wanted = 1/2 (0.5)", s.Correct, s.Total, s.Accuracy)
	}
	if want := 120.0 / 1e6; math.Abs(s.Cost-want) > 1e-12 {
		t.Errorf("cost: got = %v, wanted = %v", s.Cost, want)
	}
	if s.MeanLatency != 2 || s.P95Latency != 3 {
		t.Errorf("latency: got = %v/%v, wanted = 2/3", s.MeanLatency, s.P95Latency)
	}
	if s.Entries[1].Valid || s.Entries[1].Errors[0] != "chat completion: 500" {
		t.Errorf("entry 1: got = %+v, wanted the inference error", s.Entries[1])
	}

	delete(results, "simple_0")
	s = Evaluate(m, CategorySimple, entries, results, answers)
	if s.Correct != 0 || s.Entries[0].Errors[0] != "no result" {
		t.Errorf("missing result: got = %+v", s.Entries[0])
	}

	irr := Evaluate(m, CategoryIrrelevance, []Entry{{ID: "irrelevance_0"}, {ID: "irrelevance_1"}}, map[string]Result{
		"irrelevance_0": {ID: "irrelevance_0", Text: "None of the functions apply."},
		"irrelevance_1": {ID: "irrelevance_1", Calls: []Call{{Name: "determine_body_mass_index"}}},
	}, nil)
	if irr.Correct != 1 {
		t.Errorf("irrelevance: got = %d correct, wanted = 1", irr.Correct)
	}
}

func TestLatencyStats(t *testing.T) {
	t.Parallel()
	var ls []float64
	for i := 1; i <= 20; i++ {
		ls = append(ls, float64(i))
	}
	mean, p95 := latencyStats(ls)
	if mean != 10.5 || p95 != 19 {
		t.Errorf("latencyStats: got = %v/%v, wanted = 10.5/19", mean, p95)
	}
	if mean, p95 := latencyStats(nil); mean != 0 || p95 != 0 {
		t.Errorf("latencyStats(nil): got = %v/%v, wanted = 0/0", mean, p95)
	}
}

func TestReports(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := Score{
		Model: "org/model", Category: CategorySimple, Accuracy: 0.5, Correct: 1, Total: 2,
		Cost: 0.00012, MeanLatency: 2, P95Latency: 3,
		Entries: []EntryScore{{ID: "simple_0", Valid: true}, {ID: "simple_1", Errors: []string{"no result"}}},
	}
	if err := WriteScore(dir, s); err != nil {
		t.Fatalf("WriteScore: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "org_model", "simple_score.json"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], `"accuracy":0.5`) || !strings.Contains(lines[1], `"id":"simple_1"`) {
		t.Errorf("score file: got = %q", lines)
	}

	for range 2 {
		if err := AppendOverall(dir, s); err != nil {
			t.Fatalf("AppendOverall: %v", err)
		}
	}
	b, err = os.ReadFile(filepath.Join(dir, OverallFile))
	if err != nil {
		t.Fatal(err)
	}
	want := "model,category,accuracy,correct,total,cost,mean_latency,p95_latency\n" +
		"org/model,simple,0.5000,1,2,0.000120,2.000,3.000\n" +
		"org/model,simple,0.5000,1,2,0.000120,2.000,3.000\n"
	if got := string(b); got != want {
		t.Errorf("overall csv: got = %q, wanted = %q", got, want)
	}

	var sb strings.Builder
	if err := Summary(&sb, []Score{s}); err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !strings.Contains(sb.String(), "50.00%") || !strings.Contains(sb.String(), "1/2") {
		t.Errorf("Summary: got = %q", sb.String())
	}
}
