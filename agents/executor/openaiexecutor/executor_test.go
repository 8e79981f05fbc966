/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaiexecutor_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/agents/executor/openaiexecutor"
	"chainguard.dev/agentbench/agents/executor/retry"
	"chainguard.dev/agentbench/agents/promptbuilder"
	"chainguard.dev/agentbench/agents/toolcall"
	"github.com/google/go-cmp/cmp"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type weatherRequest struct{ City string }

func (r *weatherRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	return p.BindJSON("city", r.City)
}

type forecast struct {
	City    string  `json:"city"`
	TempC   float64 `json:"temp_c"`
	Summary string  `json:"summary"`
}

var prompt = promptbuilder.MustNewPrompt("What is the weather in {{city}}?")

// fakeServer replays scripted chat completion responses and records the
// decoded request bodies.
type fakeServer struct {
	mu        sync.Mutex
	responses []func(w http.ResponseWriter)
	requests  []map[string]any
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	_ = json.Unmarshal(body, &req)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	f.mu.Unlock()

	if n > len(f.responses) {
		http.Error(w, `{"error":{"message":"unexpected request"}}`, http.StatusBadRequest)
		return
	}
	f.responses[n-1](w)
}

func completion(message map[string]any, finish string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o",
			"choices": []any{map[string]any{
				"index":         0,
				"finish_reason": finish,
				"message":       message,
			}},
			"usage": map[string]any{"prompt_tokens": 20, "completion_tokens": 5, "total_tokens": 25},
		})
	}
}

func textReply(content string) func(w http.ResponseWriter) {
	return completion(map[string]any{"role": "assistant", "content": content}, "stop")
}

func toolReply(id, name, args string) func(w http.ResponseWriter) {
	return completion(map[string]any{
		"role":    "assistant",
		"content": nil,
		"tool_calls": []any{map[string]any{
			"id":       id,
			"type":     "function",
			"function": map[string]any{"name": name, "arguments": args},
		}},
	}, "tool_calls")
}

func statusReply(code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, `{"error":{"message":"try again","type":"server_error"}}`)
	}
}

func newClient(t *testing.T, f *fakeServer) openai.Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return openai.NewClient(
		option.WithBaseURL(srv.URL+"/v1/"),
		option.WithAPIKey("not-needed"),
		option.WithMaxRetries(0),
	)
}

func captureTraces[T any](ctx context.Context) (context.Context, func() []*agenttrace.Trace[T]) {
	var mu sync.Mutex
	var traces []*agenttrace.Trace[T]
	ctx = agenttrace.WithTracer(ctx, agenttrace.ByCode[T](func(tr *agenttrace.Trace[T]) {
		mu.Lock()
		defer mu.Unlock()
		traces = append(traces, tr)
	}))
	return ctx, func() []*agenttrace.Trace[T] {
		mu.Lock()
		defer mu.Unlock()
		return traces
	}
}

func weatherTool(calls *int) toolcall.Tool[*forecast] {
	return toolcall.Tool[*forecast]{
		Def: toolcall.Definition{
			Name:        "get_weather",
			Description: "Get the current weather for a city",
			Parameters: []toolcall.Parameter{
				{Name: "location", Type: "string", Description: "City name", Required: true},
			},
		},
		Handler: func(_ context.Context, call toolcall.ToolCall, trace *agenttrace.Trace[*forecast], _ **forecast) map[string]any {
			*calls++
			loc, errResp := toolcall.Param[string](call, trace, "location")
			if errResp != nil {
				return errResp
			}
			tc := trace.StartToolCall(call.ID, call.Name, call.Args)
			resp := map[string]any{"location": loc, "temp_c": 21.5, "conditions": "sunny"}
			tc.Complete(resp, nil)
			return resp
		},
	}
}

func TestExecuteToolLoop(t *testing.T) {
	f := &fakeServer{responses: []func(http.ResponseWriter){
		toolReply("call_1", "get_weather", `{"location":"Paris"}`),
		textReply("```json\n{\"city\": \"Paris\", \"temp_c\": 21.5, \"summary\": \"Sunny\"}\n```"),
	}}
	exec, err := openaiexecutor.New[*weatherRequest, *forecast](newClient(t, f), prompt,
		openaiexecutor.WithModel[*weatherRequest, *forecast]("openai/gpt-4o"),
		openaiexecutor.WithSystemInstructions[*weatherRequest, *forecast](promptbuilder.MustNewPrompt("You are a weather assistant.")),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, traces := captureTraces[*forecast](context.Background())
	calls := 0
	got, err := exec.Execute(ctx, &weatherRequest{City: "Paris"}, map[string]toolcall.Tool[*forecast]{
		"get_weather": weatherTool(&calls),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := &forecast{City: "Paris", TempC: 21.5, Summary: "Sunny"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result (-want +got):\n%s", diff)
	}
	if calls != 1 {
		t.Errorf("tool calls: got = %d, wanted = 1", calls)
	}

	if len(f.requests) != 2 {
		t.Fatalf("requests: got = %d, wanted = 2", len(f.requests))
	}
	first := f.requests[0]
	if first["model"] != "openai/gpt-4o" {
		t.Errorf("model: got = %v, wanted = openai/gpt-4o", first["model"])
	}
	if msgs := first["messages"].([]any); len(msgs) != 2 {
		t.Errorf("first request messages: got = %d, wanted = 2 (system, user)", len(msgs))
	}
	if tools := first["tools"].([]any); len(tools) != 1 {
		t.Errorf("tools: got = %d, wanted = 1", len(tools))
	}
	// system, user, assistant tool call, tool result
	msgs := f.requests[1]["messages"].([]any)
	if len(msgs) != 4 {
		t.Fatalf("second request messages: got = %d, wanted = 4", len(msgs))
	}
	toolMsg := msgs[3].(map[string]any)
	if toolMsg["role"] != "tool" || toolMsg["tool_call_id"] != "call_1" {
		t.Errorf("tool message: got = %v", toolMsg)
	}

	trs := traces()
	if len(trs) != 1 {
		t.Fatalf("traces: got = %d, wanted = 1", len(trs))
	}
	tr := trs[0]
	if tr.InputPrompt != `What is the weather in "Paris"?` {
		t.Errorf("prompt: got = %q", tr.InputPrompt)
	}
	if len(tr.ToolCalls) != 1 || tr.ToolCalls[0].Name != "get_weather" {
		t.Errorf("trace tool calls: got = %v", tr.ToolCalls)
	}
	if tr.Usage.InputTokens != 40 || tr.Usage.OutputTokens != 10 {
		t.Errorf("usage: got = %+v, wanted 40 in / 10 out", tr.Usage)
	}
}

func TestExecuteStringVerbatim(t *testing.T) {
	const diagnosis = "Redis refused the connection because it is bound to 127.0.0.1. Bind it to 0.0.0.0 or use the service address."
	f := &fakeServer{responses: []func(http.ResponseWriter){textReply("\n" + diagnosis + "\n")}}
	exec, err := openaiexecutor.New[*weatherRequest, string](newClient(t, f), prompt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := exec.Execute(context.Background(), &weatherRequest{City: "Paris"}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != diagnosis {
		t.Errorf("result: got = %q, wanted = %q", got, diagnosis)
	}
	if _, ok := f.requests[0]["tools"]; ok {
		t.Error("request carried tools, wanted none")
	}
}

func TestExecuteUnknownAndMalformedTools(t *testing.T) {
	f := &fakeServer{responses: []func(http.ResponseWriter){
		toolReply("call_1", "get_stock_price", `{"ticker":"ACME"}`),
		toolReply("call_2", "get_weather", `{"location": "Par`),
		textReply(`{"city": "Paris", "temp_c": 0, "summary": "unknown"}`),
	}}
	exec, err := openaiexecutor.New[*weatherRequest, *forecast](newClient(t, f), prompt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, traces := captureTraces[*forecast](context.Background())
	calls := 0
	if _, err := exec.Execute(ctx, &weatherRequest{City: "Paris"}, map[string]toolcall.Tool[*forecast]{
		"get_weather": weatherTool(&calls),
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if calls != 0 {
		t.Errorf("handler calls: got = %d, wanted = 0", calls)
	}

	tr := traces()[0]
	if len(tr.ToolCalls) != 2 {
		t.Fatalf("trace tool calls: got = %d, wanted = 2", len(tr.ToolCalls))
	}
	for _, tc := range tr.ToolCalls {
		if tc.Error == nil {
			t.Errorf("tool call %s: got no error, wanted one", tc.Name)
		}
	}

	msgs := f.requests[1]["messages"].([]any)
	content := msgs[len(msgs)-1].(map[string]any)["content"].(string)
	if content != `{"error":"unknown tool: \"get_stock_price\""}` {
		t.Errorf("unknown tool response: got = %s", content)
	}
}

func TestExecuteToolSetsResult(t *testing.T) {
	f := &fakeServer{responses: []func(http.ResponseWriter){
		toolReply("call_1", "submit_forecast", `{"summary":"Sunny"}`),
	}}
	exec, err := openaiexecutor.New[*weatherRequest, *forecast](newClient(t, f), prompt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	submit := toolcall.Tool[*forecast]{
		Def: toolcall.Definition{Name: "submit_forecast", Parameters: []toolcall.Parameter{{Name: "summary", Type: "string", Required: true}}},
		Handler: func(_ context.Context, call toolcall.ToolCall, _ *agenttrace.Trace[*forecast], result **forecast) map[string]any {
			*result = &forecast{City: "Paris", Summary: call.Args["summary"].(string)}
			return map[string]any{"success": true}
		},
	}
	got, err := exec.Execute(context.Background(), &weatherRequest{City: "Paris"}, map[string]toolcall.Tool[*forecast]{"submit_forecast": submit})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got == nil || got.Summary != "Sunny" {
		t.Errorf("result: got = %+v, wanted summary Sunny", got)
	}
	if len(f.requests) != 1 {
		t.Errorf("requests: got = %d, wanted = 1", len(f.requests))
	}
}

func TestExecuteRetriesTransientErrors(t *testing.T) {
	f := &fakeServer{responses: []func(http.ResponseWriter){
		statusReply(http.StatusServiceUnavailable),
		statusReply(http.StatusTooManyRequests),
		textReply("ok"),
	}}
	exec, err := openaiexecutor.New[*weatherRequest, string](newClient(t, f), prompt,
		openaiexecutor.WithRetryConfig[*weatherRequest, string](retry.Config{MaxRetries: 3, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := exec.Execute(context.Background(), &weatherRequest{City: "Paris"}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "ok" || len(f.requests) != 3 {
		t.Errorf("got = %q after %d requests, wanted ok after 3", got, len(f.requests))
	}
}

func TestExecuteDoesNotRetryClientErrors(t *testing.T) {
	f := &fakeServer{responses: []func(http.ResponseWriter){statusReply(http.StatusUnauthorized)}}
	exec, err := openaiexecutor.New[*weatherRequest, string](newClient(t, f), prompt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = exec.Execute(context.Background(), &weatherRequest{City: "Paris"}, nil)
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("error: got = %v, wanted 401 API error", err)
	}
	if len(f.requests) != 1 {
		t.Errorf("requests: got = %d, wanted = 1", len(f.requests))
	}
}

func TestExecuteMaxTurns(t *testing.T) {
	f := &fakeServer{responses: []func(http.ResponseWriter){
		toolReply("call_1", "get_weather", `{"location":"Paris"}`),
		toolReply("call_2", "get_weather", `{"location":"Paris"}`),
	}}
	exec, err := openaiexecutor.New[*weatherRequest, *forecast](newClient(t, f), prompt,
		openaiexecutor.WithMaxTurns[*weatherRequest, *forecast](2),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	calls := 0
	_, err = exec.Execute(context.Background(), &weatherRequest{City: "Paris"}, map[string]toolcall.Tool[*forecast]{
		"get_weather": weatherTool(&calls),
	})
	if !errors.Is(err, openaiexecutor.ErrMaxTurns) {
		t.Errorf("error: got = %v, wanted = %v", err, openaiexecutor.ErrMaxTurns)
	}
}

func TestExecuteParseFailure(t *testing.T) {
	f := &fakeServer{responses: []func(http.ResponseWriter){textReply("I could not determine the weather.")}}
	exec, err := openaiexecutor.New[*weatherRequest, *forecast](newClient(t, f), prompt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := exec.Execute(context.Background(), &weatherRequest{City: "Paris"}, nil); err == nil {
		t.Error("Execute: wanted parse error for prose answer")
	}
}

func TestOptionsValidate(t *testing.T) {
	client := openai.NewClient(option.WithAPIKey("not-needed"))
	tests := []struct {
		name string
		opt  openaiexecutor.Option[*weatherRequest, string]
	}{
		{name: "empty model", opt: openaiexecutor.WithModel[*weatherRequest, string]("")},
		{name: "zero tokens", opt: openaiexecutor.WithMaxTokens[*weatherRequest, string](0)},
		{name: "hot temperature", opt: openaiexecutor.WithTemperature[*weatherRequest, string](2.5)},
		{name: "nil system", opt: openaiexecutor.WithSystemInstructions[*weatherRequest, string](nil)},
		{name: "zero turns", opt: openaiexecutor.WithMaxTurns[*weatherRequest, string](0)},
		{name: "unnamed schema", opt: openaiexecutor.WithResponseSchema[*weatherRequest, string]("", map[string]any{})},
		{name: "negative retries", opt: openaiexecutor.WithRetryConfig[*weatherRequest, string](retry.Config{MaxRetries: -1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := openaiexecutor.New(client, prompt, tt.opt); err == nil {
				t.Error("New: wanted option error")
			}
		})
	}
	if _, err := openaiexecutor.New[*weatherRequest, string](client, nil); err == nil {
		t.Error("New: wanted error for nil prompt")
	}
}
