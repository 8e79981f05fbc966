/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/agents/evals"
)

// NewGoldenEval grades a trace's result against goldenAnswer.
func NewGoldenEval[T any](j Interface, criterion, goldenAnswer string, callbacks ...agenttrace.TraceCallback[*Judgement]) evals.ObservableTraceCallback[T] {
	return func(o evals.Observer, trace *agenttrace.Trace[T]) {
		answer, ok := marshalResult(o, trace)
		if !ok {
			return
		}
		runJudge(o, j, trace.ExecContext, &Request{
			Mode:            GoldenMode,
			ReferenceAnswer: goldenAnswer,
			ActualAnswer:    answer,
			Criterion:       criterion,
		}, callbacks)
	}
}

// NewStandaloneEval grades a trace's result against criterion alone.
func NewStandaloneEval[T any](j Interface, criterion string, callbacks ...agenttrace.TraceCallback[*Judgement]) evals.ObservableTraceCallback[T] {
	return func(o evals.Observer, trace *agenttrace.Trace[T]) {
		answer, ok := marshalResult(o, trace)
		if !ok {
			return
		}
		runJudge(o, j, trace.ExecContext, &Request{
			Mode:         StandaloneMode,
			ActualAnswer: answer,
			Criterion:    criterion,
		}, callbacks)
	}
}

// NewTraceEval grades the whole trace, including its tool calls and
// errors, against criterion. Unlike the other evals it also runs for traces
// that failed without a result.
func NewTraceEval[T any](j Interface, criterion string, callbacks ...agenttrace.TraceCallback[*Judgement]) evals.ObservableTraceCallback[T] {
	return func(o evals.Observer, trace *agenttrace.Trace[T]) {
		data, err := json.MarshalIndent(Summarize(trace), "", "  ")
		if err != nil {
			o.Fail(fmt.Sprintf("Failed to encode trace: %v", err))
			return
		}
		runJudge(o, j, trace.ExecContext, &Request{
			Mode:         TraceMode,
			ActualAnswer: string(data),
			Criterion:    criterion,
		}, callbacks)
	}
}

// TraceSummary is the JSON view of a trace shown to the judge. Errors are
// rendered as strings since error values do not marshal.
type TraceSummary struct {
	Input     string            `json:"input"`
	ToolCalls []ToolCallSummary `json:"tool_calls,omitempty"`
	Reasoning []string          `json:"reasoning,omitempty"`
	Result    any               `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	Duration  string            `json:"duration"`
}

// ToolCallSummary is the JSON view of one tool call.
type ToolCallSummary struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
	Result any            `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Summarize converts a trace into its judge-facing summary.
func Summarize[T any](trace *agenttrace.Trace[T]) TraceSummary {
	s := TraceSummary{
		Input:    trace.InputPrompt,
		Duration: trace.Duration().String(),
	}
	// A failed or empty run shows the judge its error, not a zero result.
	if trace.Error != nil {
		s.Error = trace.Error.Error()
	} else if !isZeroResult(trace.Result) {
		s.Result = trace.Result
	}
	for _, r := range trace.Reasoning {
		s.Reasoning = append(s.Reasoning, r.Thinking)
	}
	for _, tc := range trace.ToolCalls {
		call := ToolCallSummary{Name: tc.Name, Params: tc.Params, Result: tc.Result}
		if tc.Error != nil {
			call.Error = tc.Error.Error()
		}
		s.ToolCalls = append(s.ToolCalls, call)
	}
	return s
}

func marshalResult[T any](o evals.Observer, trace *agenttrace.Trace[T]) (string, bool) {
	if isNilResult(trace.Result) {
		o.Fail("Failed to extract response: trace has no result")
		return "", false
	}
	// Strings are judged as written rather than as quoted JSON.
	if s, ok := any(trace.Result).(string); ok {
		if s == "" {
			o.Fail("Failed to extract response: trace result is empty")
			return "", false
		}
		return s, true
	}
	data, err := json.MarshalIndent(trace.Result, "", "  ")
	if err != nil {
		o.Fail(fmt.Sprintf("Failed to extract response: failed to marshal result: %v", err))
		return "", false
	}
	return string(data), true
}

// runJudge judges request with the callbacks traced on the judge itself.
// It starts from a fresh context so the judge's trace is not nested under
// the judged one, but keeps the execution context for metric labels.
func runJudge(o evals.Observer, j Interface, execCtx agenttrace.ExecutionContext, request *Request, callbacks []agenttrace.TraceCallback[*Judgement]) {
	ctx := agenttrace.WithTracer(context.Background(), agenttrace.ByCode(callbacks...))
	ctx = agenttrace.WithExecutionContext(ctx, execCtx)

	resp, err := j.Judge(ctx, request)
	if err != nil {
		o.Fail(fmt.Sprintf("Judge failed: %v", err))
		return
	}
	if resp == nil {
		o.Fail("Judge returned nil response")
		return
	}

	o.Grade(resp.Score, resp.Reasoning)
	for _, suggestion := range resp.Suggestions {
		o.Log(fmt.Sprintf("  Suggestion: %s", suggestion))
	}
}

func isZeroResult[T any](value T) bool {
	v := reflect.ValueOf(value)
	return !v.IsValid() || v.IsZero()
}

func isNilResult[T any](value T) bool {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
