/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package claudeexecutor runs tool-calling agents on Anthropic's Messages API.
//
// The executor handles the conversation loop:
//   - Prompt rendering from templates
//   - Message streaming and accumulation
//   - Tool call execution through toolcall.Tool handlers
//   - JSON response parsing, or verbatim text for string responses
//   - Trace management for evaluation
//
// # Basic Usage
//
//	client := anthropic.NewClient(option.WithAPIKey(key))
//
//	exec, err := claudeexecutor.New[*Request, *Response](client, prompt,
//		claudeexecutor.WithModel[*Request, *Response]("claude-sonnet-4-5"),
//		claudeexecutor.WithMaxTokens[*Request, *Response](16000),
//	)
//	if err != nil {
//		return nil, err
//	}
//	response, err := exec.Execute(ctx, request, tools)
//
// # Extended Thinking
//
// WithThinking enables extended thinking. Reasoning blocks are stored on the
// trace as agenttrace.ReasoningContent, and the temperature is forced to 1.0
// as the API requires.
package claudeexecutor
