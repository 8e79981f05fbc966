/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chainguard.dev/agentbench/agents/agenttrace"
	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultStepLimit bounds the number of node executions in one Invoke.
const DefaultStepLimit = 25

// ErrStepLimit is returned when a run exceeds its step limit, which usually
// means the graph loops.
var ErrStepLimit = errors.New("workflow step limit exceeded")

// CompileOption configures a compiled graph.
type CompileOption func(*compileOptions)

type compileOptions struct {
	stepLimit int
}

// WithDefaultStepLimit sets the step limit of every run of the compiled graph.
func WithDefaultStepLimit(n int) CompileOption {
	return func(o *compileOptions) { o.stepLimit = n }
}

// Compiled is a validated graph ready to run. It is safe for concurrent use.
type Compiled[S any] struct {
	name        string
	nodes       map[string]node[S]
	order       []string
	edges       map[string]string
	conditional map[string]conditional[S]
	entry       string
	stepLimit   int
	metrics     *metrics
}

// Name returns the graph name.
func (c *Compiled[S]) Name() string { return c.name }

// Nodes returns the node names in registration order.
func (c *Compiled[S]) Nodes() []string {
	return append([]string(nil), c.order...)
}

// InvokeOption configures a single run.
type InvokeOption func(*invokeOptions)

type invokeOptions struct {
	stepLimit int
	onStep    func(node string)
}

// WithStepLimit overrides the step limit for one run.
func WithStepLimit(n int) InvokeOption {
	return func(o *invokeOptions) { o.stepLimit = n }
}

// WithStepHook calls fn before each node runs.
func WithStepHook(fn func(node string)) InvokeOption {
	return func(o *invokeOptions) { o.onStep = fn }
}

// Invoke runs the graph from its entry point until a node routes to END.
// Each node runs inside a span of its configured kind, with the execution
// context in ctx scoped to the node.
func (c *Compiled[S]) Invoke(ctx context.Context, state S, opts ...InvokeOption) (S, error) {
	o := invokeOptions{stepLimit: c.stepLimit}
	for _, opt := range opts {
		opt(&o)
	}

	current := c.entry
	for step := 0; current != END; step++ {
		if step >= o.stepLimit {
			return state, fmt.Errorf("%w (%d) at node %q", ErrStepLimit, o.stepLimit, current)
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}
		if o.onStep != nil {
			o.onStep(current)
		}

		next, err := c.runNode(ctx, current, state)
		if err != nil {
			return state, fmt.Errorf("node %q: %w", current, err)
		}
		state = next

		if current, err = c.route(current, state); err != nil {
			return state, err
		}
	}
	return state, nil
}

func (c *Compiled[S]) runNode(ctx context.Context, name string, state S) (S, error) {
	n := c.nodes[name]
	execCtx := agenttrace.GetExecutionContext(ctx)
	if execCtx.Workflow == "" {
		execCtx.Workflow = c.name
	}
	ctx = agenttrace.WithExecutionContext(ctx, execCtx.WithNode(name))

	ctx, span := agenttrace.StartSpan(ctx, n.spanName, n.kind, attribute.String("workflow.node", name))
	span.SetInputs(state)

	clog.FromContext(ctx).With("workflow", c.name, "node", name).Debug("Running workflow node")
	start := time.Now()
	next, err := n.fn(ctx, state)
	c.metrics.record(ctx, c.name, name, time.Since(start), err)

	if err == nil {
		span.SetOutputs(next)
	}
	span.End(err)
	return next, err
}

func (c *Compiled[S]) route(from string, state S) (string, error) {
	if to, ok := c.edges[from]; ok {
		return to, nil
	}
	cond := c.conditional[from]
	key := cond.router(state)
	to, ok := cond.routes[key]
	if !ok {
		return "", fmt.Errorf("node %q routed to unknown key %q", from, key)
	}
	return to, nil
}
