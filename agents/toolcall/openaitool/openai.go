/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaitool

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"chainguard.dev/agentbench/agents/toolcall"
	"chainguard.dev/agentbench/agents/toolcall/params"
	"github.com/openai/openai-go"
)

// ToolParam converts a tool definition into a chat completions function tool.
func ToolParam(def toolcall.Definition) openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Type: "function",
		Function: openai.FunctionDefinitionParam{
			Name:        def.Name,
			Description: openai.String(def.Description),
			Parameters:  openai.FunctionParameters(def.JSONSchema()),
		},
	}
}

// ToolParams converts a tool map, ordered by name so requests are stable.
func ToolParams[Resp any](tools map[string]toolcall.Tool[Resp]) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, name := range slices.Sorted(maps.Keys(tools)) {
		out = append(out, ToolParam(tools[name].Def))
	}
	return out
}

// Definitions converts a list of definitions in order.
func Definitions(defs []toolcall.Definition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		out = append(out, ToolParam(d))
	}
	return out
}

// Call converts a model tool call into a provider-independent call. The
// arguments are a JSON string produced by the model and may be malformed.
func Call(tc openai.ChatCompletionMessageToolCall) (toolcall.ToolCall, error) {
	call := toolcall.ToolCall{ID: tc.ID, Name: tc.Function.Name}
	args, err := params.Parse(tc.Function.Arguments)
	if err != nil {
		return call, fmt.Errorf("tool %s: %w", tc.Function.Name, err)
	}
	call.Args = args
	return call, nil
}

// ResultMessage encodes a handler response as a tool message.
func ResultMessage(id string, response map[string]any) (openai.ChatCompletionMessageParamUnion, error) {
	body, err := json.Marshal(response)
	if err != nil {
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("encoding tool result: %w", err)
	}
	return openai.ToolMessage(string(body), id), nil
}
