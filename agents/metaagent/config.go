/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"chainguard.dev/agentbench/agents/promptbuilder"
	"chainguard.dev/agentbench/agents/toolcall"
)

// Config defines the configuration for a meta-agent instance.
type Config[Resp any] struct {
	// SystemInstructions is the system prompt that defines the agent's role and behavior.
	SystemInstructions *promptbuilder.Prompt

	// UserPrompt is the template for formatting the user's request.
	// The Req type is bound to this template via its Bind method.
	UserPrompt *promptbuilder.Prompt

	// Tools provides the tools offered to the model; nil offers none.
	Tools toolcall.ToolProvider[Resp]

	// ToolsOptional lets the agent run without tools when Tools fails to
	// resolve, e.g. when an MCP server is unreachable.
	ToolsOptional bool

	// MaxTokens bounds each model turn; zero keeps the executor default.
	MaxTokens int64

	// Temperature overrides the executor default when non-nil.
	Temperature *float64

	// MaxTurns bounds tool-calling turns; zero keeps the executor default.
	MaxTurns int

	// ResponseSchema, when set, requests structured output named
	// ResponseSchemaName from OpenAI-compatible endpoints. Claude models
	// follow the JSON instructions of the prompt instead.
	ResponseSchemaName string
	ResponseSchema     map[string]any
}
