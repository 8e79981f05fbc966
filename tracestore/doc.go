/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package tracestore keeps agent spans in an embedded sqlite database.
//
// The Store is an OpenTelemetry span exporter sink: spans are grouped by
// trace and by experiment as they are exported, and can be read back for
// inspection or for judging a whole run.
//
//	store, err := tracestore.Open(ctx, "mlflow.db")
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(store.Exporter("log-monitor-agent")))
//	...
//	traces, err := store.ListTraces(ctx, "log-monitor-agent", 10)
package tracestore
