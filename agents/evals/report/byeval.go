/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"chainguard.dev/agentbench/agents/evals"
	"chainguard.dev/sdk/pathtree"
)

// ByEval renders a summary table and a tree organized by evaluation, then
// model, then test case. Only paths shaped /{model}/{test case}/{eval}
// contribute. Passing models are collapsed; failing test cases are expanded
// with their failures and low grades.
func ByEval(obs *evals.NamespacedObserver[*evals.ResultCollector], threshold float64) (string, bool) {
	results := collect(obs)
	if len(results) == 0 {
		return "", false
	}

	var sb strings.Builder
	sb.WriteString(summaryTable(results, threshold))
	sb.WriteString("\n")

	tree := pathtree.New()
	tree.PrintOption = pathtree.KeyValueLabel
	hasFailure := false

	for _, evalName := range slices.Sorted(maps.Keys(results)) {
		er := results[evalName]
		total := er.total()
		if total.below(threshold) {
			hasFailure = true
		}
		value, label := total.format(threshold)
		_ = tree.Add(evalName, value, label)

		for _, modelName := range slices.Sorted(maps.Keys(er.models)) {
			mr := er.models[modelName]
			mtotal := mr.total()
			failing := mr.failing(threshold)
			if !mtotal.below(threshold) && len(failing) == 0 {
				continue
			}
			if mtotal.below(threshold) {
				hasFailure = true
			}
			value, label := mtotal.format(threshold)
			modelPath := evalName + "/" + modelName
			_ = tree.Add(modelPath, value, label)

			for _, caseName := range failing {
				cs := mr.cases[caseName]
				value, label := cs.format(threshold)
				casePath := modelPath + "/" + caseName
				_ = tree.Add(casePath, value, label)
				for i, d := range cs.details(threshold) {
					_ = tree.Add(fmt.Sprintf("%s/%d", casePath, i+1), d[0], d[1])
				}
			}
		}
	}

	sb.WriteString(tree.String())
	return sb.String(), hasFailure
}

type evalResult struct {
	models map[string]*modelResult
}

func (e *evalResult) total() *stats {
	var s stats
	for _, m := range e.models {
		s.merge(m.total())
	}
	return &s
}

type modelResult struct {
	cases map[string]*stats
}

func (m *modelResult) total() *stats {
	var s stats
	for _, c := range m.cases {
		s.merge(c)
	}
	return &s
}

func (m *modelResult) failing(threshold float64) []string {
	var out []string
	for name, c := range m.cases {
		if c.below(threshold) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

func collect(obs *evals.NamespacedObserver[*evals.ResultCollector]) map[string]*evalResult {
	results := make(map[string]*evalResult)
	obs.Walk(func(name string, collector *evals.ResultCollector) {
		if collector.Total() == 0 {
			return
		}
		model, testCase, eval, ok := parsePath(name)
		if !ok {
			return
		}
		er, ok := results[eval]
		if !ok {
			er = &evalResult{models: make(map[string]*modelResult)}
			results[eval] = er
		}
		mr, ok := er.models[model]
		if !ok {
			mr = &modelResult{cases: make(map[string]*stats)}
			er.models[model] = mr
		}
		s := &stats{}
		s.add(collector)
		mr.cases[testCase] = s
	})
	return results
}

func parsePath(name string) (model, testCase, eval string, ok bool) {
	parts := strings.Split(strings.Trim(name, "/"), "/")
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// summaryTable renders one row per evaluation with a column per model,
// followed by indented rows for test cases that fell below the threshold.
func summaryTable(results map[string]*evalResult, threshold float64) string {
	modelSet := map[string]struct{}{}
	for _, er := range results {
		for m := range er.models {
			modelSet[m] = struct{}{}
		}
	}
	models := slices.Sorted(maps.Keys(modelSet))

	var buf bytes.Buffer
	table := createStandardTable(append(append([]string{"Evaluation Metric"}, models...), "Average"), &buf)

	cell := func(v float64, s string) string {
		if v < threshold*100 {
			return "❌ " + s
		}
		return s
	}

	for _, evalName := range slices.Sorted(maps.Keys(results)) {
		er := results[evalName]
		row := []string{evalName}
		var sum float64
		for _, m := range models {
			mr, ok := er.models[m]
			if !ok {
				row = append(row, "-")
				continue
			}
			t := mr.total()
			v := t.score() * 100
			sum += v
			s := fmt.Sprintf("%.1f%%", v)
			if len(mr.cases) > 1 {
				s = fmt.Sprintf("%d/%d (%.1f%%)", t.passed(), t.iterations, v)
			}
			row = append(row, cell(v, s))
		}
		avg := sum / float64(len(models))
		row = append(row, cell(avg, fmt.Sprintf("%.1f%%", avg)))
		_ = table.Append(row)

		caseSet := map[string]struct{}{}
		for _, mr := range er.models {
			for c := range mr.cases {
				caseSet[c] = struct{}{}
			}
		}
		var caseRows [][]string
		for _, c := range slices.Sorted(maps.Keys(caseSet)) {
			row := []string{c}
			var sum float64
			low := false
			for _, m := range models {
				mr, ok := er.models[m]
				if !ok || mr.cases[c] == nil {
					row = append(row, "-")
					continue
				}
				v := mr.cases[c].score() * 100
				sum += v
				low = low || v < threshold*100
				row = append(row, cell(v, fmt.Sprintf("%.2f (%.0f%%)", v/100, v)))
			}
			avg := sum / float64(len(models))
			low = low || avg < threshold*100
			row = append(row, cell(avg, fmt.Sprintf("%.1f%%", avg)))
			if low {
				caseRows = append(caseRows, row)
			}
		}
		for i, row := range caseRows {
			prefix := "   ├─ "
			if i == len(caseRows)-1 {
				prefix = "   └─ "
			}
			row[0] = prefix + row[0]
			_ = table.Append(row)
		}
	}

	_ = table.Render()
	return "## Summary Table\n\n" + buf.String()
}
