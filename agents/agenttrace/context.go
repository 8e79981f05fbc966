/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// ExecutionContext identifies the workflow run an agent execution belongs to.
// It is attached to spans and, through EnrichAttributes, to metrics.
type ExecutionContext struct {
	Experiment string `json:"experiment,omitempty"` // e.g. "log-monitor-agent"
	Workflow   string `json:"workflow,omitempty"`   // e.g. "log-monitor"
	Node       string `json:"node,omitempty"`       // Workflow node currently executing (classify, diagnose, ...)
	RunID      string `json:"run_id,omitempty"`     // Unique per workflow invocation
	TurnNumber int    `json:"turn_number,omitempty"`
}

// WithNode returns a copy of the execution context scoped to the named node.
func (e ExecutionContext) WithNode(node string) ExecutionContext {
	e.Node = node
	return e
}

// WithTurn returns a copy of the execution context for the given model turn.
func (e ExecutionContext) WithTurn(turn int) ExecutionContext {
	e.TurnNumber = turn
	return e
}

// EnrichAttributes adds execution context attributes to the provided base attributes.
// Only bounded labels are added: the run id stays on spans and is never used
// as a metric label.
func (e ExecutionContext) EnrichAttributes(baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(baseAttrs), len(baseAttrs)+4)
	copy(attrs, baseAttrs)

	if e.Experiment != "" {
		attrs = append(attrs, attribute.String("experiment", e.Experiment))
	}
	if e.Workflow != "" {
		attrs = append(attrs, attribute.String("workflow", e.Workflow))
	}
	if e.Node != "" {
		attrs = append(attrs, attribute.String("node", e.Node))
	}
	attrs = append(attrs, attribute.Int("turn", e.TurnNumber))

	return attrs
}

// spanAttributes returns the attributes recorded on agent spans, including
// the unbounded run id.
func (e ExecutionContext) spanAttributes() []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if e.Experiment != "" {
		attrs = append(attrs, attribute.String("experiment", e.Experiment))
	}
	if e.Workflow != "" {
		attrs = append(attrs, attribute.String("workflow", e.Workflow))
	}
	if e.Node != "" {
		attrs = append(attrs, attribute.String("node", e.Node))
	}
	if e.RunID != "" {
		attrs = append(attrs, attribute.String("run_id", e.RunID))
	}
	return attrs
}

type contextKey string

const executionContextKey contextKey = "execution_context"

// WithExecutionContext adds execution context to the Go context
func WithExecutionContext(ctx context.Context, execCtx ExecutionContext) context.Context {
	return context.WithValue(ctx, executionContextKey, execCtx)
}

// GetExecutionContext retrieves execution context from the Go context
func GetExecutionContext(ctx context.Context) ExecutionContext {
	if execCtx, ok := ctx.Value(executionContextKey).(ExecutionContext); ok {
		return execCtx
	}
	return ExecutionContext{}
}
