/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package evals evaluates completed agent traces.

An evaluation is an ObservableTraceCallback: it inspects an
agenttrace.Trace and reports to an Observer through Fail, Log and Grade.
Inject binds an evaluation to an Observer, producing a callback for
agenttrace.ByCode, so evaluations run as traces complete.

	obs := evals.NewNamespacedObserver(func(name string) *evals.ResultCollector {
		return evals.NewResultCollector(evals.NewLogObserver(ctx, name))
	})
	tracer := evals.BuildTracer(obs.Child("gpt-4o").Child("disk-full"), map[string]evals.ObservableTraceCallback[string]{
		"no-errors":  evals.NoErrors[string](),
		"tool-usage": evals.MaximumNToolCalls[string](3),
	})
	ctx = agenttrace.WithTracer(ctx, tracer)

Observers:

  - ResultCollector collects failures and grades for reports (see package report)
  - NamespacedObserver arranges observers in a /model/case/eval tree
  - MetricsObserver exports Prometheus counters and a grade histogram
  - LogObserver logs through clog
  - testevals.New binds evaluations to a *testing.T
*/
package evals
