/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/config"
	"chainguard.dev/agentbench/tracestore"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	tp, mp := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
	})
}

func TestTracesURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"http://localhost:5000", "http://localhost:5000/v1/traces"},
		{"http://localhost:5000/", "http://localhost:5000/v1/traces"},
		{"http://collector:4318/v1/traces", "http://collector:4318/v1/traces"},
	}
	for _, tt := range tests {
		if got := tracesURL(tt.in); got != tt.want {
			t.Errorf("tracesURL(%q): got = %q, wanted = %q", tt.in, got, tt.want)
		}
	}
}

func TestSetupStoreAndMetrics(t *testing.T) {
	restoreGlobals(t)
	ctx := context.Background()

	store, err := tracestore.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	mem := tracetest.NewInMemoryExporter()
	cfg := config.Tracing{ExperimentName: "log-monitor-agent", ServiceName: "logmonitor"}
	tel, err := Setup(ctx, cfg, WithStore(store), WithExporter(mem), WithRegistry(prometheus.NewRegistry()), WithSyncExport())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	_, span := agenttrace.StartSpan(ctx, "process_log_message", agenttrace.SpanKindAgent)
	span.End(nil)

	counter, err := otel.Meter("test").Int64Counter("log.messages")
	if err != nil {
		t.Fatalf("Int64Counter: %v", err)
	}
	counter.Add(ctx, 3)

	srv := httptest.NewServer(tel.MetricsHandler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "log_messages_total") {
		t.Errorf("metrics: got = %s, wanted log_messages_total", body)
	}

	// The in-memory exporter forgets its spans on shutdown.
	if got := len(mem.GetSpans()); got != 1 {
		t.Errorf("exported spans: got = %d, wanted = 1", got)
	}
	if err := tel.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	traces, err := store.ListTraces(ctx, "log-monitor-agent", 10)
	if err != nil {
		t.Fatalf("ListTraces: %v", err)
	}
	if len(traces) != 1 || traces[0].Name != "process_log_message" {
		t.Errorf("stored traces: got = %+v", traces)
	}
}

func TestSetupOTLP(t *testing.T) {
	restoreGlobals(t)
	ctx := context.Background()

	var hits atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/traces" {
			t.Errorf("path: got = %q, wanted = /v1/traces", r.URL.Path)
		}
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	cfg := config.Tracing{ExperimentName: "log-monitor-agent", ServiceName: "logmonitor", OTLPEndpoint: collector.URL}
	tel, err := Setup(ctx, cfg, WithRegistry(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	_, span := agenttrace.StartSpan(ctx, "classify_log", agenttrace.SpanKindLLM)
	span.End(nil)

	if err := tel.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if hits.Load() == 0 {
		t.Error("collector: got no export requests")
	}
}
