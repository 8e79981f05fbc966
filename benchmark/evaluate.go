/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package benchmark

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
)

// EntryScore is the verdict on one entry.
type EntryScore struct {
	ID             string                        `json:"id"`
	Valid          bool                          `json:"valid"`
	Errors         []string                      `json:"error,omitempty"`
	ModelResult    []Call                        `json:"model_result,omitempty"`
	PossibleAnswer []map[string]map[string][]any `json:"possible_answer,omitempty"`
}

// Score aggregates the verdicts of one model on one category.
type Score struct {
	Model        string       `json:"model"`
	Category     Category     `json:"test_category"`
	Accuracy     float64      `json:"accuracy"`
	Correct      int          `json:"correct_count"`
	Total        int          `json:"total_count"`
	InputTokens  int64        `json:"input_token_count"`
	OutputTokens int64        `json:"output_token_count"`
	Cost         float64      `json:"cost"`
	MeanLatency  float64      `json:"mean_latency"`
	P95Latency   float64      `json:"p95_latency"`
	Entries      []EntryScore `json:"-"`
}

// Evaluate scores results against the possible answers. Entries without a
// result count as failures.
func Evaluate(m ModelConfig, c Category, entries []Entry, results map[string]Result, answers map[string]Answer) Score {
	s := Score{Model: m.Name, Category: c, Total: len(entries)}
	var latencies []float64
	for _, e := range entries {
		es := EntryScore{ID: e.ID}
		r, ok := results[e.ID]
		switch {
		case !ok:
			es.Errors = []string{"no result"}
		default:
			es.ModelResult = r.Calls
			s.InputTokens += r.InputTokens
			s.OutputTokens += r.OutputTokens
			latencies = append(latencies, r.Latency)
			if r.Error != "" {
				es.Errors = []string{r.Error}
				break
			}
			if !c.HasAnswers() {
				es.Errors = checkIrrelevance(r.Calls)
				break
			}
			a, ok := answers[e.ID]
			if !ok {
				es.Errors = []string{"no possible answer"}
				break
			}
			es.PossibleAnswer = a.GroundTruth
			es.Errors = checkCalls(c, r.Calls, a.GroundTruth)
		}
		es.Valid = len(es.Errors) == 0
		if es.Valid {
			s.Correct++
		}
		s.Entries = append(s.Entries, es)
	}
	if s.Total > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Total)
	}
	s.Cost = m.Cost(s.InputTokens, s.OutputTokens)
	s.MeanLatency, s.P95Latency = latencyStats(latencies)
	return s
}

func checkIrrelevance(calls []Call) []string {
	if len(calls) == 0 {
		return nil
	}
	names := make([]string, 0, len(calls))
	for _, c := range calls {
		names = append(names, c.Name)
	}
	return []string{fmt.Sprintf("calls: got = %v, wanted none", names)}
}

func checkCalls(c Category, calls []Call, truth []map[string]map[string][]any) []string {
	switch c {
	case CategorySimple, CategoryMultiple:
		if len(calls) != 1 {
			return []string{fmt.Sprintf("call count: got = %d, wanted = 1", len(calls))}
		}
		if len(truth) == 0 {
			return []string{"possible answer has no calls"}
		}
		return matchCall(calls[0], truth[0])
	default:
		if len(calls) != len(truth) {
			return []string{fmt.Sprintf("call count: got = %d, wanted = %d", len(calls), len(truth))}
		}
		if !assign(calls, truth, make([]bool, len(truth))) {
			return []string{"calls do not match the possible answers in any order"}
		}
		return nil
	}
}

// assign reports whether every call matches a distinct expected call.
func assign(calls []Call, truth []map[string]map[string][]any, used []bool) bool {
	if len(calls) == 0 {
		return true
	}
	for i, t := range truth {
		if used[i] || len(matchCall(calls[0], t)) != 0 {
			continue
		}
		used[i] = true
		if assign(calls[1:], truth, used) {
			return true
		}
		used[i] = false
	}
	return false
}

// matchCall checks one call against one expected call, mapping a single
// function name to its accepted parameter values.
func matchCall(call Call, want map[string]map[string][]any) []string {
	if len(want) != 1 {
		return []string{fmt.Sprintf("possible answer names %d functions, wanted 1", len(want))}
	}
	var name string
	var params map[string][]any
	for n, p := range want {
		name, params = n, p
	}
	if toolName(call.Name) != toolName(name) {
		return []string{fmt.Sprintf("function: got = %s, wanted = %s", call.Name, name)}
	}

	var errs []string
	for _, arg := range sortedKeys(call.Arguments) {
		if _, ok := params[arg]; !ok {
			errs = append(errs, fmt.Sprintf("unexpected parameter %q", arg))
		}
	}
	for _, p := range sortedKeys(params) {
		allowed := params[p]
		v, ok := call.Arguments[p]
		if !ok {
			if !optional(allowed) {
				errs = append(errs, fmt.Sprintf("missing required parameter %q", p))
			}
			continue
		}
		if !oneOf(v, allowed) {
			errs = append(errs, fmt.Sprintf("parameter %q: got = %v, wanted one of %v", p, v, allowed))
		}
	}
	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func optional(allowed []any) bool {
	return slices.ContainsFunc(allowed, func(a any) bool { return a == "" })
}

func oneOf(v any, allowed []any) bool {
	return slices.ContainsFunc(allowed, func(a any) bool { return equalValue(v, a) })
}

// equalValue compares a model supplied value with an accepted one. Strings
// compare case-insensitively ignoring spaces and punctuation. Nested maps
// in accepted values may list alternatives per key.
func equalValue(v, want any) bool {
	switch w := want.(type) {
	case string:
		s, ok := v.(string)
		return ok && normalize(s) == normalize(w)
	case float64:
		f, ok := v.(float64)
		return ok && math.Abs(f-w) < 1e-9
	case bool:
		b, ok := v.(bool)
		return ok && b == w
	case []any:
		vs, ok := v.([]any)
		if !ok || len(vs) != len(w) {
			return false
		}
		for i := range w {
			if !equalValue(vs[i], w[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		vm, ok := v.(map[string]any)
		if !ok {
			return false
		}
		for k := range vm {
			if _, ok := w[k]; !ok {
				return false
			}
		}
		for k, wv := range w {
			got, present := vm[k]
			alts, isAlts := wv.([]any)
			if _, gotList := got.([]any); isAlts && !gotList {
				if !present {
					if !optional(alts) {
						return false
					}
					continue
				}
				if !oneOf(got, alts) {
					return false
				}
				continue
			}
			if !present || !equalValue(got, wv) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(v, want)
	}
}

var punctuation = strings.NewReplacer(" ", "", ",", "", ".", "", "/", "", "-", "", "_", "", "*", "", "^", "", "'", "", `"`, "")

func normalize(s string) string {
	return punctuation.Replace(strings.ToLower(s))
}

// latencyStats returns the mean and the nearest-rank 95th percentile.
func latencyStats(latencies []float64) (mean, p95 float64) {
	if len(latencies) == 0 {
		return 0, 0
	}
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)
	var sum float64
	for _, l := range sorted {
		sum += l
	}
	rank := int(math.Ceil(0.95*float64(len(sorted)))) - 1
	return sum / float64(len(sorted)), sorted[max(0, rank)]
}
