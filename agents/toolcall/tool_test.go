/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall_test

import (
	"context"
	"errors"
	"testing"

	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/agents/toolcall"
	"github.com/google/go-cmp/cmp"
)

func echoTool(name string) toolcall.Tool[string] {
	return toolcall.Tool[string]{
		Def: toolcall.Definition{
			Name:        name,
			Description: "Echo the input",
			Parameters: []toolcall.Parameter{
				{Name: "input", Type: "string", Description: "The input", Required: true},
				{Name: "tags", Type: "array", Description: "Tags"},
			},
		},
		Handler: func(_ context.Context, call toolcall.ToolCall, _ *agenttrace.Trace[string], _ *string) map[string]any {
			return map[string]any{"received": call.Args["input"]}
		},
	}
}

func TestJSONSchema(t *testing.T) {
	got := echoTool("echo").Def.JSONSchema()
	want := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input": map[string]any{"type": "string", "description": "The input"},
			"tags": map[string]any{
				"type":        "array",
				"description": "Tags",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required": []string{"input"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSONSchema (-want +got):\n%s", diff)
	}
}

func TestJSONSchemaRaw(t *testing.T) {
	raw := map[string]any{"properties": map[string]any{"q": map[string]any{"type": "string"}}}
	def := toolcall.Definition{Name: "search", Schema: raw}

	got := def.JSONSchema()
	if got["type"] != "object" {
		t.Errorf("type: got = %v, wanted = object", got["type"])
	}
	if _, ok := raw["type"]; ok {
		t.Error("JSONSchema mutated the raw schema")
	}
}

func TestStaticAndMerge(t *testing.T) {
	ctx := context.Background()

	tools, err := toolcall.Merge(
		toolcall.Static(echoTool("a"), echoTool("b")),
		toolcall.Empty[string](),
		toolcall.Static(echoTool("c")),
	).Tools(ctx)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(tools) != 3 {
		t.Errorf("tools: got = %d, wanted = 3", len(tools))
	}

	_, err = toolcall.Merge(toolcall.Static(echoTool("a")), toolcall.Static(echoTool("a"))).Tools(ctx)
	if err == nil {
		t.Error("Merge: wanted duplicate tool error")
	}

	boom := errors.New("server unavailable")
	failing := toolcall.ProviderFunc[string](func(context.Context) (map[string]toolcall.Tool[string], error) {
		return nil, boom
	})
	if _, err := toolcall.Merge(toolcall.Static(echoTool("a")), failing).Tools(ctx); !errors.Is(err, boom) {
		t.Errorf("Merge error: got = %v, wanted = %v", err, boom)
	}
}

func TestParam(t *testing.T) {
	ctx := agenttrace.WithTracer(context.Background(), agenttrace.ByCode[string]())
	trace := agenttrace.StartTrace[string](ctx, "prompt")

	call := toolcall.ToolCall{ID: "1", Name: "echo", Args: map[string]any{"input": "hi"}}
	v, errResp := toolcall.Param[string](call, trace, "input")
	if errResp != nil || v != "hi" {
		t.Errorf("Param: got = %q, %v, wanted = hi", v, errResp)
	}

	_, errResp = toolcall.Param[string](call, trace, "missing")
	if errResp == nil {
		t.Fatal("Param: wanted error response")
	}
	if len(trace.ToolCalls) != 1 || trace.ToolCalls[0].Error == nil {
		t.Errorf("bad tool call: got = %v, wanted one errored call", trace.ToolCalls)
	}

	limit, errResp := toolcall.OptionalParam(call, "limit", 10)
	if errResp != nil || limit != 10 {
		t.Errorf("OptionalParam: got = %d, %v, wanted = 10", limit, errResp)
	}
}
