/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"fmt"

	"chainguard.dev/agentbench/agents/evals"
)

// Generator renders an observer tree. It returns the report and whether
// any evaluation fell below the threshold.
type Generator func(obs *evals.NamespacedObserver[*evals.ResultCollector], threshold float64) (string, bool)

// stats aggregates the outcome of one or more ResultCollectors.
type stats struct {
	iterations int64
	failures   []string
	grades     []evals.Grade
}

func (s *stats) add(c *evals.ResultCollector) {
	s.iterations += c.Total()
	s.failures = append(s.failures, c.Failures()...)
	s.grades = append(s.grades, c.Grades()...)
}

func (s *stats) merge(o *stats) {
	s.iterations += o.iterations
	s.failures = append(s.failures, o.failures...)
	s.grades = append(s.grades, o.grades...)
}

func (s *stats) passed() int64 { return s.iterations - int64(len(s.failures)) }

func (s *stats) passRate() float64 {
	if s.iterations == 0 {
		return 1
	}
	return float64(s.passed()) / float64(s.iterations)
}

func (s *stats) avgGrade() float64 {
	if len(s.grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range s.grades {
		sum += g.Score
	}
	return sum / float64(len(s.grades))
}

// score is the average grade when the evaluation grades, otherwise the pass rate.
func (s *stats) score() float64 {
	if len(s.grades) > 0 {
		return s.avgGrade()
	}
	return s.passRate()
}

func (s *stats) below(threshold float64) bool {
	return s.passRate() < threshold || (len(s.grades) > 0 && s.avgGrade() < threshold)
}

// format renders the value and label of a tree node.
func (s *stats) format(threshold float64) (string, string) {
	var value, label string
	switch {
	case len(s.failures) > 0 && len(s.grades) > 0:
		value = fmt.Sprintf("%.1f%% pass, %.2f avg", s.passRate()*100, s.avgGrade())
		label = fmt.Sprintf("(%d/%d)", s.passed(), s.iterations)
	case len(s.grades) > 0:
		noun := "results"
		if len(s.grades) == 1 {
			noun = "result"
		}
		value = fmt.Sprintf("%.2f avg", s.avgGrade())
		label = fmt.Sprintf("(%d %s)", len(s.grades), noun)
	default:
		value = fmt.Sprintf("%.1f%%", s.passRate()*100)
		label = fmt.Sprintf("(%d/%d)", s.passed(), s.iterations)
	}
	if s.below(threshold) {
		value = "❌ " + value
	}
	return value, label
}

// details lists failures and then below-threshold grades as value/label pairs.
func (s *stats) details(threshold float64) [][2]string {
	var out [][2]string
	for _, f := range s.failures {
		out = append(out, [2]string{"FAIL", f})
	}
	for _, g := range s.grades {
		if g.Score < threshold {
			out = append(out, [2]string{fmt.Sprintf("%.2f", g.Score), g.Reasoning})
		}
	}
	return out
}

// Row is a flat summary of one namespace of the observer tree.
type Row struct {
	Path       string  `json:"path"`
	Iterations int64   `json:"iterations"`
	Failures   int     `json:"failures"`
	Grades     int     `json:"grades"`
	PassRate   float64 `json:"pass_rate"`
	AvgGrade   float64 `json:"avg_grade,omitempty"`
}

// Rows flattens every namespace that observed at least one trace.
func Rows(obs *evals.NamespacedObserver[*evals.ResultCollector]) []Row {
	var rows []Row
	obs.Walk(func(name string, c *evals.ResultCollector) {
		var s stats
		s.add(c)
		if s.iterations == 0 {
			return
		}
		rows = append(rows, Row{
			Path:       name,
			Iterations: s.iterations,
			Failures:   len(s.failures),
			Grades:     len(s.grades),
			PassRate:   s.passRate(),
			AvgGrade:   s.avgGrade(),
		})
	})
	return rows
}
