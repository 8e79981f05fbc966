/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/tracestore"
)

func TestWriteSpanTree(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tr := &tracestore.Trace{
		TraceInfo: tracestore.TraceInfo{TraceID: "abc", Status: "OK", Duration: 1500 * time.Millisecond},
		Spans: []tracestore.Span{
			{SpanID: "1", Name: "process_log_message", Kind: "AGENT", StatusCode: "OK", StartTime: start, EndTime: start.Add(1500 * time.Millisecond)},
			{SpanID: "2", ParentSpanID: "1", Name: "workflow_execution", Kind: "CHAIN", StatusCode: "OK", StartTime: start, EndTime: start.Add(time.Second)},
			{SpanID: "3", ParentSpanID: "2", Name: "classify_log", Kind: "CHAIN", StatusCode: "ERROR", StatusMessage: "timeout", StartTime: start, EndTime: start.Add(200 * time.Millisecond),
				Attributes: map[string]any{agenttrace.AttrOutputs: `{"classification":   "error"}`}},
		},
	}

	var buf bytes.Buffer
	if err := writeSpanTree(&buf, tr); err != nil {
		t.Fatalf("writeSpanTree: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Trace abc (OK, 1.5s)",
		"process_log_message",
		"  workflow_execution",
		"    classify_log",
		"ERROR: timeout",
		`{"classification": "error"}`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output: got = %q, wanted it to contain %q", out, want)
		}
	}
}

func TestWriteTraceList(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := writeTraceList(&buf, []tracestore.TraceInfo{{
		TraceID:   "abc",
		Name:      "process_log_message",
		Status:    "OK",
		StartTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  2 * time.Second,
		SpanCount: 7,
	}})
	if err != nil {
		t.Fatalf("writeTraceList: %v", err)
	}
	for _, want := range []string{"Trace ID", "abc", "process_log_message", "2026-01-02T03:04:05Z", "2s", "7"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output: got = %q, wanted it to contain %q", buf.String(), want)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "short", n: 10, want: "short"},
		{in: "a\n  b", n: 10, want: "a b"},
		{in: "ééééé", n: 3, want: "ééé..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d): got = %q, wanted = %q", tt.in, tt.n, got, tt.want)
		}
	}
}
