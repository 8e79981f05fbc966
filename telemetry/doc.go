/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package telemetry installs the global OpenTelemetry providers.
//
// Spans go to the embedded trace store, to an OTLP/HTTP collector, or both.
// Metrics are exposed in the Prometheus format:
//
//	tel, err := telemetry.Setup(ctx, cfg.Tracing, telemetry.WithStore(store))
//	if err != nil { ... }
//	defer tel.Shutdown(context.WithoutCancel(ctx))
//	http.Handle("/metrics", tel.MetricsHandler())
package telemetry
