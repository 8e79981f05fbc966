/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace provides tracing infrastructure for AI agent interactions.

# Overview

  - ExecutionContext: experiment, workflow, node and run id used to enrich spans and metrics
  - Trace[T]: a complete agent interaction from prompt to result
  - ToolCall[T]: an individual tool invocation within a trace
  - Tracer[T]: creates traces and receives them on completion
  - Span: a workflow step span with a kind (AGENT, CHAIN, LLM, TOOL) and JSON inputs/outputs

Every trace and span is an OpenTelemetry span, so whatever TracerProvider is
installed (an embedded database exporter, OTLP/HTTP) receives them.

# Usage

	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		Experiment: "log-monitor-agent",
		Workflow:   "log-monitor",
		RunID:      runID,
	})

	tracer := agenttrace.ByCode[string](func(trace *agenttrace.Trace[string]) {
		log.Printf("Trace completed: %s", trace.ID)
	})
	ctx = agenttrace.WithTracer[string](ctx, tracer)

	trace := agenttrace.StartTrace[string](ctx, "Diagnose the log message")
	tc := trace.StartToolCall("tc1", "ask_question", map[string]any{"repoName": "redis/redis"})
	tc.Complete("Redis persists with RDB snapshots and AOF", nil)
	trace.Complete("Disk is full", nil)

Workflow steps use StartSpan:

	ctx, span := agenttrace.StartSpan(ctx, "classify", agenttrace.SpanKindLLM)
	span.SetInputs(map[string]any{"log_message": msg})
	defer span.End(err)
*/
package agenttrace
