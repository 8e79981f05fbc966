/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals_test

import (
	"testing"

	"chainguard.dev/agentbench/agents/evals"
	"github.com/google/go-cmp/cmp"
)

func TestResultCollector(t *testing.T) {
	t.Parallel()
	inner := &mockObserver{}
	rc := evals.NewResultCollector(inner)

	if got := rc.PassRate(); got != 1 {
		t.Errorf("empty pass rate: got = %v, wanted = 1", got)
	}
	if _, ok := rc.MeanGrade(); ok {
		t.Error("empty mean grade: got = ok, wanted = none")
	}

	for range 4 {
		rc.Increment()
	}
	rc.Fail("severity: got = low, wanted = high")
	rc.Grade(0.8, "specific diagnosis")
	rc.Grade(0.4, "vague diagnosis")

	if len(inner.failures) != 0 {
		t.Errorf("inner failures: got = %v, wanted none (failures are logged)", inner.failures)
	}
	if diff := cmp.Diff([]string{"severity: got = low, wanted = high"}, rc.Failures()); diff != "" {
		t.Errorf("Failures (-want +got):\n%s", diff)
	}
	if got := rc.PassRate(); got != 0.75 {
		t.Errorf("pass rate: got = %v, wanted = 0.75", got)
	}
	mean, ok := rc.MeanGrade()
	if !ok || mean < 0.599 || mean > 0.601 {
		t.Errorf("mean grade: got = %v (%v), wanted = 0.6", mean, ok)
	}

	grades := rc.Grades()
	grades[0].Score = 0
	if rc.Grades()[0].Score != 0.8 {
		t.Error("Grades returned internal slice, wanted a copy")
	}
}

func TestMetricsObserver(t *testing.T) {
	t.Parallel()
	m := evals.NewMetricsObserver[string]("/gpt-4o/disk-full/action")
	m.Increment()
	m.Increment()
	m.Fail("x")
	m.Grade(0.9, "good")
	m.Log("ignored")

	if got := m.Total(); got != 2 {
		t.Errorf("total: got = %d, wanted = 2", got)
	}
}

func TestResultCollectorTaps(t *testing.T) {
	t.Parallel()
	inner, tap := &mockObserver{}, &mockObserver{}
	rc := evals.NewResultCollector(inner, tap)
	rc.Increment()
	rc.Increment()
	rc.Fail("action: got = ignore, wanted = alert")
	rc.Grade(0.5, "vague")
	rc.Log("checked")

	if len(inner.failures) != 0 {
		t.Errorf("inner failures: got = %v, wanted none", inner.failures)
	}
	if diff := cmp.Diff([]string{"action: got = ignore, wanted = alert"}, tap.failures); diff != "" {
		t.Errorf("tap failures (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Grade: 0.50 - vague", "checked"}, tap.logs); diff != "" {
		t.Errorf("tap logs (-want +got):\n%s", diff)
	}
	if inner.count != 2 || tap.count != 2 {
		t.Errorf("counts: got = %d/%d, wanted = 2/2", inner.count, tap.count)
	}
	if got := rc.Total(); got != 2 {
		t.Errorf("Total: got = %d, wanted = 2", got)
	}
}
