/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"time"

	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the meter shared by every executor; the model is a dimension.
const MeterName = "chainguard.dev/agentbench/agents"

// GenAI records token usage, tool calls and request latency of LLM calls.
// Instruments that fail to initialize degrade to no-ops.
type GenAI struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	toolCalls        metric.Int64Counter
	requestDuration  metric.Float64Histogram
	attrEnricher     AttributeEnricher
}

// NewGenAI creates the GenAI instruments on the named meter of the global
// MeterProvider.
func NewGenAI(meterName string) *GenAI {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			clog.Warn("Failed to create counter, metric disabled", "metric", name, "error", err)
			return noop.Int64Counter{}
		}
		return c
	}

	duration, err := meter.Float64Histogram("genai.request.duration",
		metric.WithDescription("Latency of LLM API requests"),
		metric.WithUnit("s"))
	if err != nil {
		clog.Warn("Failed to create histogram, metric disabled", "metric", "genai.request.duration", "error", err)
		duration = noop.Float64Histogram{}
	}

	return &GenAI{
		promptTokens:     counter("genai.token.prompt", "The number of prompt tokens used", "{tokens}"),
		completionTokens: counter("genai.token.completion", "The number of completion tokens used", "{tokens}"),
		toolCalls:        counter("genai.tool.calls", "The number of tool calls made during execution", "{calls}"),
		requestDuration:  duration,
	}
}

// SetAttributeEnricher installs an enricher applied before every recording.
func (m *GenAI) SetAttributeEnricher(enricher AttributeEnricher) {
	m.attrEnricher = enricher
}

func (m *GenAI) attrs(ctx context.Context, base []attribute.KeyValue, extra []attribute.KeyValue) metric.MeasurementOption {
	if m.attrEnricher != nil {
		base = m.attrEnricher(ctx, base)
	}
	return metric.WithAttributes(append(base, extra...)...)
}

// RecordTokens records prompt and completion token usage for model.
func (m *GenAI) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64, attrs ...attribute.KeyValue) {
	opt := m.attrs(ctx, []attribute.KeyValue{attribute.String("model", model)}, attrs)
	m.promptTokens.Add(ctx, promptTokens, opt)
	m.completionTokens.Add(ctx, completionTokens, opt)
}

// RecordToolCall counts one invocation of toolName requested by model.
func (m *GenAI) RecordToolCall(ctx context.Context, model, toolName string, attrs ...attribute.KeyValue) {
	m.toolCalls.Add(ctx, 1, m.attrs(ctx, []attribute.KeyValue{
		attribute.String("model", model),
		attribute.String("tool", toolName),
	}, attrs))
}

// RecordLatency records the duration of one model request.
func (m *GenAI) RecordLatency(ctx context.Context, model string, d time.Duration, attrs ...attribute.KeyValue) {
	m.requestDuration.Record(ctx, d.Seconds(), m.attrs(ctx, []attribute.KeyValue{attribute.String("model", model)}, attrs))
}
