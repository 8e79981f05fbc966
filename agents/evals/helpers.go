/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"fmt"
	"reflect"
	"slices"
	"time"

	"chainguard.dev/agentbench/agents/agenttrace"
)

type (
	trace[T any]    = agenttrace.Trace[T]
	toolCall[T any] = agenttrace.ToolCall[T]
)

// ExactToolCalls validates the trace has exactly n tool calls.
func ExactToolCalls[T any](n int) ObservableTraceCallback[T] {
	return RangeToolCalls[T](n, n)
}

// MinimumNToolCalls validates the trace has at least n tool calls.
func MinimumNToolCalls[T any](n int) ObservableTraceCallback[T] {
	return func(o Observer, tr *trace[T]) {
		if got := len(tr.ToolCalls); got < n {
			o.Fail(fmt.Sprintf("tool call count: got = %d, wanted >= %d", got, n))
		}
	}
}

// MaximumNToolCalls validates the trace has at most n tool calls.
func MaximumNToolCalls[T any](n int) ObservableTraceCallback[T] {
	return func(o Observer, tr *trace[T]) {
		if got := len(tr.ToolCalls); got > n {
			o.Fail(fmt.Sprintf("tool call count: got = %d, wanted <= %d", got, n))
		}
	}
}

// RangeToolCalls validates the trace has between lo and hi tool calls, inclusive.
func RangeToolCalls[T any](lo, hi int) ObservableTraceCallback[T] {
	return func(o Observer, tr *trace[T]) {
		got := len(tr.ToolCalls)
		switch {
		case lo == hi && got != lo:
			o.Fail(fmt.Sprintf("tool call count: got = %d, wanted = %d", got, lo))
		case got < lo || got > hi:
			o.Fail(fmt.Sprintf("tool call count: got = %d, wanted = %d..%d", got, lo, hi))
		}
	}
}

// NoToolCalls validates the trace has no tool calls.
func NoToolCalls[T any]() ObservableTraceCallback[T] {
	return ExactToolCalls[T](0)
}

// OnlyToolCalls validates the trace only uses the named tools.
func OnlyToolCalls[T any](toolNames ...string) ObservableTraceCallback[T] {
	return func(o Observer, tr *trace[T]) {
		for _, tc := range tr.ToolCalls {
			if !slices.Contains(toolNames, tc.Name) {
				o.Fail(fmt.Sprintf("unexpected tool call %q, only allowed: %v", tc.Name, toolNames))
				return
			}
		}
	}
}

// RequiredToolCalls validates every named tool is called at least once.
func RequiredToolCalls[T any](toolNames []string) ObservableTraceCallback[T] {
	return func(o Observer, tr *trace[T]) {
		var missing []string
		for _, name := range toolNames {
			if !slices.ContainsFunc(tr.ToolCalls, func(tc *toolCall[T]) bool { return tc.Name == name }) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			o.Fail(fmt.Sprintf("missing required tool calls: %v", missing))
		}
	}
}

// ToolCallValidator validates each tool call with a custom function.
func ToolCallValidator[T any](validator func(o Observer, tc *agenttrace.ToolCall[T]) error) ObservableTraceCallback[T] {
	return func(o Observer, tr *trace[T]) {
		for i, tc := range tr.ToolCalls {
			if err := validator(o, tc); err != nil {
				o.Fail(fmt.Sprintf("tool call %d (%s) validation failed: %v", i, tc.Name, err))
				return
			}
		}
	}
}

// ToolCallNamed validates the tool calls with the given name; at least one must exist.
func ToolCallNamed[T any](name string, validator func(o Observer, tc *agenttrace.ToolCall[T]) error) ObservableTraceCallback[T] {
	return func(o Observer, tr *trace[T]) {
		found := false
		for _, tc := range tr.ToolCalls {
			if tc.Name != name {
				continue
			}
			found = true
			if err := validator(o, tc); err != nil {
				o.Fail(fmt.Sprintf("tool call %s validation failed: %v", name, err))
				return
			}
		}
		if !found {
			o.Fail(fmt.Sprintf("tool call named %q: got = not found, wanted = found", name))
		}
	}
}

// NoErrors validates that neither the trace nor any tool call failed.
func NoErrors[T any]() ObservableTraceCallback[T] {
	return func(o Observer, tr *trace[T]) {
		if tr.Error != nil {
			o.Fail(fmt.Sprintf("trace error: got = %v, wanted = nil", tr.Error))
			return
		}
		for _, tc := range tr.ToolCalls {
			if tc.Error != nil {
				o.Fail(fmt.Sprintf("tool call %s error: got = %v, wanted = nil", tc.Name, tc.Error))
				return
			}
		}
	}
}

// MaxDuration validates the trace completed within d.
func MaxDuration[T any](d time.Duration) ObservableTraceCallback[T] {
	return func(o Observer, tr *trace[T]) {
		if got := tr.Duration(); got > d {
			o.Fail(fmt.Sprintf("duration: got = %v, wanted <= %v", got, d))
		}
	}
}

// MaxTokens validates the trace consumed at most n input plus output tokens.
func MaxTokens[T any](n int64) ObservableTraceCallback[T] {
	return func(o Observer, tr *trace[T]) {
		if got := tr.Usage.InputTokens + tr.Usage.OutputTokens; got > n {
			o.Fail(fmt.Sprintf("tokens: got = %d, wanted <= %d", got, n))
		}
	}
}

// ResultEquals validates the trace result equals want.
func ResultEquals[T comparable](want T) ObservableTraceCallback[T] {
	return func(o Observer, tr *trace[T]) {
		if tr.Result != want {
			o.Fail(fmt.Sprintf("result: got = %v, wanted = %v", tr.Result, want))
		}
	}
}

// ResultValidator validates a non-nil result with a custom function.
// T is typically a pointer type.
func ResultValidator[T any](validator func(result T) error) ObservableTraceCallback[T] {
	return func(o Observer, tr *trace[T]) {
		v := reflect.ValueOf(tr.Result)
		if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
			o.Fail("result is nil")
			return
		}
		if err := validator(tr.Result); err != nil {
			o.Fail(err.Error())
		}
	}
}

// BuildCallbacks injects each evaluation with the child observer of the same name.
func BuildCallbacks[T any, O Observer](observer *NamespacedObserver[O], evalMap map[string]ObservableTraceCallback[T]) []agenttrace.TraceCallback[T] {
	callbacks := make([]agenttrace.TraceCallback[T], 0, len(evalMap))
	for name, evalFunc := range evalMap {
		callbacks = append(callbacks, Inject(observer.Child(name), evalFunc))
	}
	return callbacks
}

// BuildTracer creates a ByCode tracer running every evaluation in evalMap
// against each completed trace.
func BuildTracer[T any, O Observer](observer *NamespacedObserver[O], evalMap map[string]ObservableTraceCallback[T]) agenttrace.Tracer[T] {
	return agenttrace.ByCode(BuildCallbacks(observer, evalMap)...)
}
