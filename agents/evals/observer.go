/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"maps"
	"path"
	"slices"
	"sync"

	"chainguard.dev/agentbench/agents/agenttrace"
)

// Observer defines an interface for observing and controlling evaluation execution
type Observer interface {
	// Fail marks the evaluation as failed with the given message.
	// Should be called at most once per trace evaluation.
	Fail(string)
	// Log logs a message.
	Log(string)
	// Grade assigns a rating (0.0-1.0) with reasoning to the trace result.
	// Should be called at most once per trace evaluation.
	Grade(score float64, reasoning string)
	// Increment is called each time a trace is evaluated.
	Increment()
	// Total returns the number of observed instances.
	Total() int64
}

// ObservableTraceCallback is an evaluation run against a completed trace.
type ObservableTraceCallback[T any] func(Observer, *agenttrace.Trace[T])

// Inject binds an Observer to an ObservableTraceCallback, producing a callback
// suitable for agenttrace.ByCode.
func Inject[T any](obs Observer, callback ObservableTraceCallback[T]) agenttrace.TraceCallback[T] {
	return func(trace *agenttrace.Trace[T]) {
		obs.Increment()
		callback(obs, trace)
	}
}

// NamespacedObserver arranges Observers in a tree addressed by slash separated paths.
type NamespacedObserver[T Observer] struct {
	name     string
	inner    T
	factory  func(string) T
	mu       sync.Mutex
	children map[string]*NamespacedObserver[T]
}

// NewNamespacedObserver creates a root NamespacedObserver; factory builds the
// Observer for each path.
func NewNamespacedObserver[T Observer](factory func(string) T) *NamespacedObserver[T] {
	return &NamespacedObserver[T]{
		name:     "/",
		inner:    factory("/"),
		factory:  factory,
		children: make(map[string]*NamespacedObserver[T]),
	}
}

func (n *NamespacedObserver[T]) Fail(msg string)                 { n.inner.Fail(msg) }
func (n *NamespacedObserver[T]) Log(msg string)                  { n.inner.Log(msg) }
func (n *NamespacedObserver[T]) Grade(score float64, why string) { n.inner.Grade(score, why) }
func (n *NamespacedObserver[T]) Increment()                      { n.inner.Increment() }
func (n *NamespacedObserver[T]) Total() int64                    { return n.inner.Total() }

// Name returns the full path of this namespace.
func (n *NamespacedObserver[T]) Name() string { return n.name }

// Inner returns the Observer for this namespace.
func (n *NamespacedObserver[T]) Inner() T { return n.inner }

// Child returns the child namespace with the given name, creating it if necessary
func (n *NamespacedObserver[T]) Child(name string) *NamespacedObserver[T] {
	n.mu.Lock()
	defer n.mu.Unlock()

	if child, ok := n.children[name]; ok {
		return child
	}
	childPath := path.Join(n.name, name)
	child := &NamespacedObserver[T]{
		name:     childPath,
		inner:    n.factory(childPath),
		factory:  n.factory,
		children: make(map[string]*NamespacedObserver[T]),
	}
	n.children[name] = child
	return child
}

// Walk visits this node and then its children depth first, in name order.
func (n *NamespacedObserver[T]) Walk(visitor func(string, T)) {
	visitor(n.name, n.inner)

	n.mu.Lock()
	names := slices.Sorted(maps.Keys(n.children))
	children := make([]*NamespacedObserver[T], 0, len(names))
	for _, name := range names {
		children = append(children, n.children[name])
	}
	n.mu.Unlock()

	for _, child := range children {
		child.Walk(visitor)
	}
}
