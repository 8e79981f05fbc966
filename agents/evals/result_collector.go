/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"slices"
	"sync"
)

// Grade represents a grade with score and reasoning
type Grade struct {
	Score     float64
	Reasoning string
}

// ResultCollector wraps an Observer to collect failure messages and grades.
// Failures are logged to the inner observer rather than failing it.
type ResultCollector struct {
	inner Observer
	taps  []Observer

	mu       sync.Mutex
	failures []string
	grades   []Grade
}

// NewResultCollector creates a new ResultCollector that wraps the given Observer.
// Taps see every event unchanged, failures included.
func NewResultCollector(inner Observer, taps ...Observer) *ResultCollector {
	return &ResultCollector{inner: inner, taps: taps}
}

func (r *ResultCollector) Fail(msg string) {
	r.inner.Log(msg)
	for _, t := range r.taps {
		t.Fail(msg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, msg)
}

func (r *ResultCollector) Log(msg string) {
	r.inner.Log(msg)
	for _, t := range r.taps {
		t.Log(msg)
	}
}

func (r *ResultCollector) Grade(score float64, reasoning string) {
	r.inner.Grade(score, reasoning)
	for _, t := range r.taps {
		t.Grade(score, reasoning)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.grades = append(r.grades, Grade{Score: score, Reasoning: reasoning})
}

func (r *ResultCollector) Increment() {
	r.inner.Increment()
	for _, t := range r.taps {
		t.Increment()
	}
}

func (r *ResultCollector) Total() int64 {
	return r.inner.Total()
}

// Failures returns a copy of the collected failure messages
func (r *ResultCollector) Failures() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.failures)
}

// Grades returns a copy of the collected grades
func (r *ResultCollector) Grades() []Grade {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.grades)
}

// PassRate is the fraction of observed traces that did not fail.
// It is 1 when nothing was observed.
func (r *ResultCollector) PassRate() float64 {
	total := r.Total()
	if total == 0 {
		return 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(total-int64(len(r.failures))) / float64(total)
}

// MeanGrade returns the average grade and whether any grades were recorded.
func (r *ResultCollector) MeanGrade() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.grades) == 0 {
		return 0, false
	}
	var sum float64
	for _, g := range r.grades {
		sum += g.Score
	}
	return sum / float64(len(r.grades)), true
}
