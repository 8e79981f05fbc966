/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package testevals_test

import (
	"context"
	"testing"

	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/agents/evals"
	"chainguard.dev/agentbench/agents/evals/testevals"
)

func TestObserverPassingEvals(t *testing.T) {
	obs := evals.NewNamespacedObserver(func(name string) evals.Observer {
		return testevals.NewPrefix(t, name)
	})

	tracer := agenttrace.ByCode(
		evals.Inject(obs.Child("no-errors"), evals.NoErrors[string]()),
		evals.Inject(obs.Child("action"), evals.ResultEquals("none")),
		evals.Inject(obs.Child("graded"), func(o evals.Observer, tr *agenttrace.Trace[string]) {
			o.Grade(1.0, "healthy log routed to no action")
		}),
	)

	tracer.NewTrace(context.Background(), "INFO: health check passed").Complete("none", nil)

	for _, name := range []string{"no-errors", "action", "graded"} {
		if got := obs.Child(name).Total(); got != 1 {
			t.Errorf("%s total: got = %d, wanted = 1", name, got)
		}
	}
}

func TestNewCounts(t *testing.T) {
	o := testevals.New(t)
	o.Increment()
	o.Increment()
	o.Log("two traces observed")
	if got := o.Total(); got != 2 {
		t.Errorf("total: got = %d, wanted = 2", got)
	}
}
