/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package workflow runs agents as directed state graphs.
//
// A graph is a set of named nodes that each transform a state value, joined
// by static edges and conditional edges whose router picks a route from the
// state. Runs start at the entry point and stop when a node routes to END:
//
//	g := workflow.New[State]("log-monitor").
//		AddNode("classify", classify, workflow.WithSpanKind(agenttrace.SpanKindLLM)).
//		AddNode("set_no_action", noAction, workflow.WithSpanKind(agenttrace.SpanKindTool)).
//		AddConditionalEdges("classify", route, map[string]string{"diagnose": "diagnose", "end": "set_no_action"}).
//		AddEdge("set_no_action", workflow.END).
//		SetEntryPoint("classify")
//	compiled, err := g.Compile()
//	final, err := compiled.Invoke(ctx, State{LogMessage: msg})
//
// Compile rejects graphs with unknown edge targets, nodes without outgoing
// edges, unreachable nodes or a missing entry point. Invoke bounds each run
// by a step limit, records a span per node and counts node executions on
// the workflow meter.
package workflow
