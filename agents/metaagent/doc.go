/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metaagent builds agents that run on whichever provider their model
// belongs to.
//
// The framework is generic over two type parameters:
//   - Req: The request type (must implement promptbuilder.Bindable)
//   - Resp: The structured response type returned by the agent, or string
//
// # Model Support
//
//   - Models starting with "claude-" use Anthropic's Messages API
//   - Every other model uses the OpenAI-compatible endpoint from config.LLM:
//     Llama Stack when USE_LLAMA_STACK is true, OpenAI otherwise
//
// # Usage
//
//	agent, err := metaagent.New[*Request, *Result](ctx, cfg.LLM, "", metaagent.Config[*Result]{
//		SystemInstructions: systemPrompt,
//		UserPrompt:         userPrompt,
//		Tools:              mcpTools,
//		ToolsOptional:      true,
//	})
//	result, err := agent.Execute(ctx, request)
package metaagent
