/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package testevals adapts testing.TB to evals.Observer, so evaluations
// fail the test that runs them:
//
//	obs := evals.NewNamespacedObserver(func(name string) evals.Observer {
//		return testevals.NewPrefix(t, name)
//	})
//	tracer := agenttrace.ByCode(
//		evals.Inject(obs.Child("no-errors"), evals.NoErrors[string]()),
//	)
package testevals
