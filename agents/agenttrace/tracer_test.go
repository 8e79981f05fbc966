/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

type mockTracer[T any] struct {
	mu     sync.Mutex
	traces []*Trace[T]
}

func (m *mockTracer[T]) NewTrace(ctx context.Context, prompt string) *Trace[T] {
	return newTraceWithTracer[T](ctx, m, prompt)
}

func (m *mockTracer[T]) RecordTrace(trace *Trace[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.traces = append(m.traces, trace)
}

func TestTracerFromContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tracer := &mockTracer[string]{}

	if got := TracerFromContext[string](WithTracer[string](ctx, tracer)); got != tracer {
		t.Errorf("TracerFromContext: got = %v, wanted = %v", got, tracer)
	}
	if got := TracerFromContext[string](ctx); got == nil {
		t.Error("TracerFromContext without tracer: got = nil, wanted = default tracer")
	}
	// Tracers are keyed by result type.
	if _, ok := any(TracerFromContext[int](WithTracer[string](ctx, tracer))).(*mockTracer[string]); ok {
		t.Error("TracerFromContext[int]: got string tracer, wanted default")
	}
}

func TestCompleteRecordsTrace(t *testing.T) {
	t.Parallel()
	tracer := &mockTracer[string]{}
	ctx := WithTracer[string](context.Background(), tracer)

	trace := StartTrace[string](ctx, "classify this log")
	trace.StartToolCall("tc1", "search", map[string]any{"q": "disk"}).Complete("found", nil)
	trace.BadToolCall("tc2", "missing", nil, errors.New("unknown tool"))

	if len(tracer.traces) != 0 {
		t.Fatalf("traces before completion: got = %d, wanted = 0", len(tracer.traces))
	}
	trace.Complete("error", nil)

	if len(tracer.traces) != 1 {
		t.Fatalf("traces after completion: got = %d, wanted = 1", len(tracer.traces))
	}
	got := tracer.traces[0]
	if got.Result != "error" {
		t.Errorf("result: got = %q, wanted = %q", got.Result, "error")
	}
	if len(got.ToolCalls) != 2 {
		t.Fatalf("tool calls: got = %d, wanted = 2", len(got.ToolCalls))
	}
	if got.ToolCalls[1].Error == nil {
		t.Error("bad tool call error: got = nil, wanted = error")
	}
	if got.EndTime.IsZero() {
		t.Error("end time: got = zero, wanted = set")
	}
}

func TestByCodeRunsAllCallbacks(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	cb := func(*Trace[int]) { calls.Add(1) }
	tracer := ByCode[int](cb, nil, cb, cb)

	tracer.NewTrace(context.Background(), "p").Complete(7, nil)

	if got := calls.Load(); got != 3 {
		t.Errorf("callbacks invoked: got = %d, wanted = 3", got)
	}
}

func TestRecordTokenUsageAccumulates(t *testing.T) {
	t.Parallel()
	trace := ByCode[string]().NewTrace(context.Background(), "p")
	trace.RecordTokenUsage("gpt-4o", 10, 5)
	trace.RecordTokenUsage("gpt-4o", 3, 2)

	want := Usage{Model: "gpt-4o", InputTokens: 13, OutputTokens: 7}
	if trace.Usage != want {
		t.Errorf("usage: got = %+v, wanted = %+v", trace.Usage, want)
	}
}

func TestTraceExecutionContext(t *testing.T) {
	t.Parallel()
	execCtx := ExecutionContext{Experiment: "exp", Workflow: "log-monitor", RunID: "r1"}
	ctx := WithExecutionContext(context.Background(), execCtx.WithNode("diagnose"))

	trace := ByCode[string]().NewTrace(ctx, "p")
	if trace.ExecContext.Node != "diagnose" {
		t.Errorf("node: got = %q, wanted = %q", trace.ExecContext.Node, "diagnose")
	}
	if execCtx.Node != "" {
		t.Errorf("WithNode mutated receiver: got = %q, wanted = empty", execCtx.Node)
	}
}

func TestEnrichAttributesBounded(t *testing.T) {
	t.Parallel()
	execCtx := ExecutionContext{Experiment: "exp", Workflow: "wf", Node: "classify", RunID: "unbounded", TurnNumber: 2}
	attrs := execCtx.EnrichAttributes(nil)

	for _, kv := range attrs {
		if kv.Key == "run_id" {
			t.Error("EnrichAttributes: got run_id label, wanted it excluded")
		}
	}
	if len(attrs) != 4 {
		t.Errorf("EnrichAttributes: got = %d attributes, wanted = 4", len(attrs))
	}
}

func TestTraceString(t *testing.T) {
	t.Parallel()
	trace := ByCode[string]().NewTrace(context.Background(), "why is the disk full?")
	trace.AddReasoning("check mounts")
	trace.StartToolCall("tc1", "df", map[string]any{"path": "/var"}).Complete(strings.Repeat("x", 300), nil)
	trace.Metadata["case"] = "disk"
	trace.Complete("disk full", nil)

	s := trace.String()
	for _, want := range []string{"why is the disk full?", "Reasoning (1 blocks)", "df (ID: tc1)", "path: /var", "Result: disk full", "case: disk", "..."} {
		if !strings.Contains(s, want) {
			t.Errorf("String(): missing %q in:\n%s", want, s)
		}
	}
}

func TestGenerateTraceID(t *testing.T) {
	t.Parallel()
	seen := map[string]bool{}
	for range 100 {
		id := generateTraceID()
		if seen[id] {
			t.Fatalf("generateTraceID: duplicate %q", id)
		}
		seen[id] = true
		if parts := strings.Split(id, "-"); len(parts) != 3 {
			t.Errorf("generateTraceID: got = %q, wanted = YYYYMMDD-HHMMSS-hex", id)
		}
	}
}
