/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"chainguard.dev/agentbench/agents/agenttrace"
)

// END is the pseudo node that terminates a run.
const END = "__end__"

// NodeFunc transforms the state. Nodes return the updated state rather than
// mutating shared data, so a failed node leaves the caller's state intact.
type NodeFunc[S any] func(ctx context.Context, state S) (S, error)

// RouterFunc picks a route key from the state after a node has run.
type RouterFunc[S any] func(state S) string

type node[S any] struct {
	fn       NodeFunc[S]
	spanName string
	kind     agenttrace.SpanKind
}

type conditional[S any] struct {
	router RouterFunc[S]
	routes map[string]string
}

// NodeOption configures a node.
type NodeOption func(*nodeOptions)

type nodeOptions struct {
	spanName string
	kind     agenttrace.SpanKind
}

// WithSpanName names the node's span; the node name is used otherwise.
func WithSpanName(name string) NodeOption {
	return func(o *nodeOptions) { o.spanName = name }
}

// WithSpanKind sets the kind of the node's span. Nodes default to CHAIN.
func WithSpanKind(kind agenttrace.SpanKind) NodeOption {
	return func(o *nodeOptions) { o.kind = kind }
}

// Graph builds a directed state graph. Builder methods record problems
// instead of failing, and Compile reports all of them at once.
type Graph[S any] struct {
	name        string
	nodes       map[string]node[S]
	order       []string
	edges       map[string]string
	conditional map[string]conditional[S]
	entry       string
	errs        []error
}

// New returns an empty graph. The name labels spans and metrics.
func New[S any](name string) *Graph[S] {
	return &Graph[S]{
		name:        name,
		nodes:       make(map[string]node[S]),
		edges:       make(map[string]string),
		conditional: make(map[string]conditional[S]),
	}
}

// AddNode registers a node.
func (g *Graph[S]) AddNode(name string, fn NodeFunc[S], opts ...NodeOption) *Graph[S] {
	o := nodeOptions{spanName: name, kind: agenttrace.SpanKindChain}
	for _, opt := range opts {
		opt(&o)
	}
	switch {
	case name == "" || name == END:
		g.errs = append(g.errs, fmt.Errorf("invalid node name %q", name))
	case fn == nil:
		g.errs = append(g.errs, fmt.Errorf("node %q has no function", name))
	case g.has(name):
		g.errs = append(g.errs, fmt.Errorf("node %q already exists", name))
	default:
		g.nodes[name] = node[S]{fn: fn, spanName: o.spanName, kind: o.kind}
		g.order = append(g.order, name)
	}
	return g
}

// AddEdge routes from one node to another, or to END, unconditionally.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	if g.hasOutgoing(from) {
		g.errs = append(g.errs, fmt.Errorf("node %q already has an outgoing edge", from))
		return g
	}
	g.edges[from] = to
	return g
}

// AddConditionalEdges routes from a node to routes[router(state)].
func (g *Graph[S]) AddConditionalEdges(from string, router RouterFunc[S], routes map[string]string) *Graph[S] {
	switch {
	case g.hasOutgoing(from):
		g.errs = append(g.errs, fmt.Errorf("node %q already has an outgoing edge", from))
	case router == nil:
		g.errs = append(g.errs, fmt.Errorf("node %q has a nil router", from))
	case len(routes) == 0:
		g.errs = append(g.errs, fmt.Errorf("node %q has no routes", from))
	default:
		g.conditional[from] = conditional[S]{router: router, routes: maps.Clone(routes)}
	}
	return g
}

// SetEntryPoint names the first node to run.
func (g *Graph[S]) SetEntryPoint(name string) *Graph[S] {
	g.entry = name
	return g
}

func (g *Graph[S]) has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

func (g *Graph[S]) hasOutgoing(name string) bool {
	_, static := g.edges[name]
	_, cond := g.conditional[name]
	return static || cond
}

// successors returns the sorted targets reachable in one step from name.
func (g *Graph[S]) successors(name string) []string {
	if to, ok := g.edges[name]; ok {
		return []string{to}
	}
	c, ok := g.conditional[name]
	if !ok {
		return nil
	}
	seen := map[string]struct{}{}
	for _, to := range c.routes {
		seen[to] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Compile validates the graph and freezes it for execution.
func (g *Graph[S]) Compile(opts ...CompileOption) (*Compiled[S], error) {
	errs := slices.Clone(g.errs)

	switch {
	case g.entry == "":
		errs = append(errs, errors.New("entry point is not set"))
	case !g.has(g.entry):
		errs = append(errs, fmt.Errorf("entry point %q is not a node", g.entry))
	}

	for _, from := range slices.Sorted(maps.Keys(g.edges)) {
		to := g.edges[from]
		if !g.has(from) {
			errs = append(errs, fmt.Errorf("edge from unknown node %q", from))
		}
		if to != END && !g.has(to) {
			errs = append(errs, fmt.Errorf("edge from %q to unknown node %q", from, to))
		}
	}
	for _, from := range slices.Sorted(maps.Keys(g.conditional)) {
		if !g.has(from) {
			errs = append(errs, fmt.Errorf("conditional edge from unknown node %q", from))
		}
		routes := g.conditional[from].routes
		for _, key := range slices.Sorted(maps.Keys(routes)) {
			if to := routes[key]; to != END && !g.has(to) {
				errs = append(errs, fmt.Errorf("route %q from %q targets unknown node %q", key, from, to))
			}
		}
	}
	for _, name := range g.order {
		if !g.hasOutgoing(name) {
			errs = append(errs, fmt.Errorf("node %q has no outgoing edge", name))
		}
	}

	if g.has(g.entry) {
		reached := map[string]bool{g.entry: true}
		queue := []string{g.entry}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range g.successors(cur) {
				if next != END && !reached[next] {
					reached[next] = true
					queue = append(queue, next)
				}
			}
		}
		for _, name := range g.order {
			if !reached[name] {
				errs = append(errs, fmt.Errorf("node %q is unreachable from %q", name, g.entry))
			}
		}
	}

	o := compileOptions{stepLimit: DefaultStepLimit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.stepLimit <= 0 {
		errs = append(errs, fmt.Errorf("step limit must be positive, got %d", o.stepLimit))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("compiling graph %q: %w", g.name, errors.Join(errs...))
	}

	return &Compiled[S]{
		name:        g.name,
		nodes:       maps.Clone(g.nodes),
		order:       slices.Clone(g.order),
		edges:       maps.Clone(g.edges),
		conditional: maps.Clone(g.conditional),
		entry:       g.entry,
		stepLimit:   o.stepLimit,
		metrics:     newMetrics(),
	}, nil
}
