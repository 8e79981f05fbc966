/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"chainguard.dev/agentbench/agents/agenttrace"
	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// run records one log monitor style trace and returns its id.
func run(t *testing.T, tp *sdktrace.TracerProvider, failDiagnose bool) string {
	t.Helper()
	tracer := tp.Tracer("test")
	ctx, root := tracer.Start(context.Background(), "process_log_message")
	root.SetAttributes(attribute.String(agenttrace.AttrSpanKind, "AGENT"))

	_, classify := tracer.Start(ctx, "classify_log")
	classify.SetAttributes(
		attribute.String(agenttrace.AttrSpanKind, "LLM"),
		attribute.String(agenttrace.AttrInputs, `{"log_message":"ERROR: disk full"}`),
		attribute.String(agenttrace.AttrOutputs, `{"classification":"error"}`),
	)
	classify.AddEvent("retry")
	classify.End()

	_, diagnose := tracer.Start(ctx, "diagnose_problem")
	diagnose.SetAttributes(attribute.String(agenttrace.AttrSpanKind, "LLM"))
	if failDiagnose {
		diagnose.SetStatus(codes.Error, "llm unavailable")
	}
	diagnose.End()

	root.End()
	return root.SpanContext().TraceID().String()
}

func TestExportAndQuery(t *testing.T) {
	s := newStore(t)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(s.Exporter("log-monitor-agent")))
	ctx := context.Background()

	first := run(t, tp, false)
	second := run(t, tp, true)

	traces, err := s.ListTraces(ctx, "log-monitor-agent", 0)
	if err != nil {
		t.Fatalf("ListTraces: %v", err)
	}
	var ids []string
	for _, tr := range traces {
		ids = append(ids, tr.TraceID)
		if tr.Name != "process_log_message" || tr.SpanCount != 3 || tr.Status != "Unset" {
			t.Errorf("trace %s: got = %+v", tr.TraceID, tr)
		}
	}
	if diff := cmp.Diff([]string{second, first}, ids); diff != "" {
		t.Errorf("ListTraces order: (-want +got):\n%s", diff)
	}

	limited, err := s.ListTraces(ctx, "log-monitor-agent", 1)
	if err != nil || len(limited) != 1 || limited[0].TraceID != second {
		t.Errorf("ListTraces limit 1: got = %v, %v", limited, err)
	}

	tr, err := s.GetTrace(ctx, second)
	if err != nil {
		t.Fatalf("GetTrace: %v", err)
	}
	var names, kinds []string
	for _, sp := range tr.Spans {
		names = append(names, sp.Name)
		kinds = append(kinds, sp.Kind)
	}
	if diff := cmp.Diff([]string{"process_log_message", "classify_log", "diagnose_problem"}, names); diff != "" {
		t.Errorf("span order: (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"AGENT", "LLM", "LLM"}, kinds); diff != "" {
		t.Errorf("span kinds: (-want +got):\n%s", diff)
	}

	classify := tr.Spans[1]
	if classify.ParentSpanID != tr.Spans[0].SpanID {
		t.Errorf("parent: got = %q, wanted = %q", classify.ParentSpanID, tr.Spans[0].SpanID)
	}
	if got, want := classify.Inputs(), `{"log_message":"ERROR: disk full"}`; got != want {
		t.Errorf("Inputs: got = %q, wanted = %q", got, want)
	}
	if got, want := classify.Outputs(), `{"classification":"error"}`; got != want {
		t.Errorf("Outputs: got = %q, wanted = %q", got, want)
	}
	if len(classify.Events) != 1 || classify.Events[0].Name != "retry" {
		t.Errorf("events: got = %v, wanted one retry event", classify.Events)
	}
	if d := tr.Spans[2]; d.StatusCode != "Error" || d.StatusMessage != "llm unavailable" {
		t.Errorf("diagnose status: got = %s %q, wanted = Error %q", d.StatusCode, d.StatusMessage, "llm unavailable")
	}
}

func TestExperimentAttribute(t *testing.T) {
	s := newStore(t)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(s.Exporter("default")))
	ctx := context.Background()

	_, span := tp.Tracer("test").Start(ctx, "judge")
	span.SetAttributes(attribute.String("experiment", "judge-evals"))
	span.End()
	run(t, tp, false)

	exps, err := s.Experiments(ctx)
	if err != nil {
		t.Fatalf("Experiments: %v", err)
	}
	if diff := cmp.Diff([]string{"judge-evals", "default"}, exps); diff != "" {
		t.Errorf("Experiments: (-want +got):\n%s", diff)
	}
	for exp, want := range map[string]int{"judge-evals": 1, "default": 1, "missing": 0} {
		traces, err := s.ListTraces(ctx, exp, 10)
		if err != nil {
			t.Fatalf("ListTraces(%s): %v", exp, err)
		}
		if len(traces) != want {
			t.Errorf("ListTraces(%s): got = %d, wanted = %d", exp, len(traces), want)
		}
	}
}

func TestGetTraceNotFound(t *testing.T) {
	s := newStore(t)
	if _, err := s.GetTrace(context.Background(), "0123"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTrace: got = %v, wanted ErrNotFound", err)
	}
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mlflow.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(s.Exporter("log-monitor-agent")))
	id := run(t, tp, false)
	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()
	tr, err := s.GetTrace(ctx, id)
	if err != nil {
		t.Fatalf("GetTrace: %v", err)
	}
	if len(tr.Spans) != 3 {
		t.Errorf("spans: got = %d, wanted = 3", len(tr.Spans))
	}
}
