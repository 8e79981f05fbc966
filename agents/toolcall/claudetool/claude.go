/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudetool

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"chainguard.dev/agentbench/agents/toolcall"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
)

// ToolParam converts a tool definition into an Anthropic tool parameter.
func ToolParam(def toolcall.Definition) anthropic.ToolUnionParam {
	schema := def.JSONSchema()
	return anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
		Name:        def.Name,
		Description: anthropic.String(def.Description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Type:       constant.Object("object"),
			Properties: schema["properties"],
			Required:   def.RequiredNames(),
		},
	}}
}

// ToolParams converts a tool map, ordered by name so requests are stable.
func ToolParams[Resp any](tools map[string]toolcall.Tool[Resp]) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, name := range slices.Sorted(maps.Keys(tools)) {
		out = append(out, ToolParam(tools[name].Def))
	}
	return out
}

// Call converts a tool use block into a provider-independent call.
func Call(block anthropic.ToolUseBlock) (toolcall.ToolCall, error) {
	call := toolcall.ToolCall{ID: block.ID, Name: block.Name, Args: map[string]any{}}
	if len(block.Input) == 0 {
		return call, nil
	}
	if err := json.Unmarshal(block.Input, &call.Args); err != nil {
		return call, fmt.Errorf("parsing tool input for %s: %w", block.Name, err)
	}
	return call, nil
}

// ResultBlock wraps a handler response as a tool result content block.
func ResultBlock(id string, response map[string]any) (anthropic.ContentBlockParamUnion, error) {
	body, err := json.Marshal(response)
	if err != nil {
		return anthropic.ContentBlockParamUnion{}, fmt.Errorf("encoding tool result: %w", err)
	}
	_, isErr := response["error"]
	return anthropic.ContentBlockParamUnion{OfToolResult: &anthropic.ToolResultBlockParam{
		ToolUseID: id,
		IsError:   anthropic.Bool(isErr),
		Content: []anthropic.ToolResultBlockParamContentUnion{{
			OfText: &anthropic.TextBlockParam{Text: string(body)},
		}},
	}}, nil
}
