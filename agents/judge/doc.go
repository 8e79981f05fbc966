/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package judge grades agent output with an LLM using single-criterion
// rubrics (agent-as-a-judge).
//
// # Modes
//
//   - GoldenMode: compare a response with a reference answer (0.0 to 1.0)
//   - BenchmarkMode: compare two responses (-1.0 favors the first, 1.0 the second)
//   - StandaloneMode: grade a response against the criterion alone (0.0 to 1.0)
//   - TraceMode: grade a whole agent trace, tool calls included (0.0 to 1.0)
//
// # Providers
//
// New picks the provider from the model name: claude-* models use Anthropic
// and everything else goes to the OpenAI-compatible endpoint configured in
// config.LLM (Llama Stack, vLLM or OpenAI).
//
// # Evals
//
// NewGoldenEval, NewStandaloneEval and NewTraceEval adapt a judge into an
// evals.ObservableTraceCallback that grades traces through an Observer:
//
//	j, err := judge.New(ctx, cfg.LLM, "")
//	tracer := evals.BuildTracer(obs, map[string]evals.ObservableTraceCallback[string]{
//		"diagnosis-quality": judge.NewStandaloneEval[string](j, "explains the root cause in 1-2 sentences"),
//		"grounded":          judge.NewTraceEval[string](j, "claims are supported by tool results"),
//	})
//
// The callbacks passed to the eval constructors trace the judge itself;
// Evals(mode) returns the usual checks for that.
package judge
