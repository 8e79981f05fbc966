/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package mcptools exposes the tools of one or more MCP servers to agents.
//
// A Client connects lazily to every configured server over streamable HTTP
// or SSE, lists their tools once and caches the result. Provider adapts the
// tools into a toolcall.ToolProvider whose handlers call the remote tool
// and record the call on the agent trace:
//
//	client := mcptools.NewClient(mcptools.ResearchServers(cfg.MCP))
//	defer client.Close()
//
//	agent, err := metaagent.New[Req, string](ctx, cfg.LLM, "", metaagent.Config[string]{
//		UserPrompt:    prompt,
//		Tools:         mcptools.Provider[string](client),
//		ToolsOptional: true,
//	})
package mcptools
