/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"context"
	"time"

	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the meter workflow instruments are created on.
const MeterName = "chainguard.dev/agentbench/workflow"

type metrics struct {
	executions metric.Int64Counter
	duration   metric.Float64Histogram
}

func newMetrics() *metrics {
	meter := otel.Meter(MeterName, metric.WithInstrumentationVersion("1.0.0"))

	executions, err := meter.Int64Counter("workflow.node.executions",
		metric.WithDescription("The number of workflow node executions"),
		metric.WithUnit("{executions}"))
	if err != nil {
		clog.Warn("Failed to create counter, metric disabled", "metric", "workflow.node.executions", "error", err)
		executions = noop.Int64Counter{}
	}
	duration, err := meter.Float64Histogram("workflow.node.duration",
		metric.WithDescription("Duration of workflow node executions"),
		metric.WithUnit("s"))
	if err != nil {
		clog.Warn("Failed to create histogram, metric disabled", "metric", "workflow.node.duration", "error", err)
		duration = noop.Float64Histogram{}
	}
	return &metrics{executions: executions, duration: duration}
}

func (m *metrics) record(ctx context.Context, workflow, node string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("workflow", workflow),
		attribute.String("node", node),
		attribute.String("status", status),
	)
	m.executions.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}
