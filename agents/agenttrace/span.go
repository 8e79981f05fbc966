/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// SpanKind classifies a workflow span.
type SpanKind string

const (
	SpanKindAgent SpanKind = "AGENT"
	SpanKindChain SpanKind = "CHAIN"
	SpanKindLLM   SpanKind = "LLM"
	SpanKindTool  SpanKind = "TOOL"
)

// Span attribute keys shared by every span this package creates.
const (
	AttrSpanKind = "agent.span.kind"
	AttrInputs   = "agent.span.inputs"
	AttrOutputs  = "agent.span.outputs"
)

// InstrumentationName is the OpenTelemetry tracer name used for agent spans.
const InstrumentationName = "chainguard.dev/agentbench/agents/agenttrace"

const maxAttrLen = 4096

func otelTracer() oteltrace.Tracer {
	return otel.Tracer(InstrumentationName, oteltrace.WithInstrumentationVersion("1.0.0"))
}

// Span is a workflow step span carrying a kind and JSON encoded inputs and outputs.
type Span struct {
	span oteltrace.Span
}

// StartSpan starts a span of the given kind as a child of any span in ctx.
// The execution context, when present, is recorded on the span.
func StartSpan(ctx context.Context, name string, kind SpanKind, attrs ...attribute.KeyValue) (context.Context, *Span) {
	all := append(GetExecutionContext(ctx).spanAttributes(), attribute.String(AttrSpanKind, string(kind)))
	all = append(all, attrs...)
	ctx, span := otelTracer().Start(ctx, name, oteltrace.WithAttributes(all...))
	return ctx, &Span{span: span}
}

// SetInputs records the inputs of the step.
func (s *Span) SetInputs(v any) {
	s.span.SetAttributes(attribute.String(AttrInputs, encodeAttr(v)))
}

// SetOutputs records the outputs of the step.
func (s *Span) SetOutputs(v any) {
	s.span.SetAttributes(attribute.String(AttrOutputs, encodeAttr(v)))
}

// SetAttributes sets additional attributes on the span.
func (s *Span) SetAttributes(kv ...attribute.KeyValue) {
	s.span.SetAttributes(kv...)
}

// SpanContext returns the OpenTelemetry span context.
func (s *Span) SpanContext() oteltrace.SpanContext {
	return s.span.SpanContext()
}

// End ends the span, marking it failed when err is non-nil.
func (s *Span) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

func endSpan(span oteltrace.Span, result any, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.String(AttrOutputs, encodeAttr(result)))
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// encodeAttr renders v as JSON (strings verbatim), truncated to fit a span attribute.
func encodeAttr(v any) string {
	var s string
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			s = fmt.Sprintf("%v", v)
		} else {
			s = string(b)
		}
	}
	return truncate(s, maxAttrLen)
}

// truncate shortens s to at most n bytes, ending in "..." when cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
