/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package mcptools

import (
	"context"

	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/agents/toolcall"
	"github.com/chainguard-dev/clog"
)

// Provider exposes the client's tools to an agent.
func Provider[Resp any](c *Client) toolcall.ToolProvider[Resp] {
	return toolcall.ProviderFunc[Resp](func(ctx context.Context) (map[string]toolcall.Tool[Resp], error) {
		remote, err := c.ListTools(ctx)
		if err != nil {
			return nil, err
		}
		tools := make(map[string]toolcall.Tool[Resp], len(remote))
		for _, rt := range remote {
			tools[rt.Name] = toolcall.Tool[Resp]{
				Def: toolcall.Definition{
					Name:        rt.Name,
					Description: rt.Description,
					Schema:      rt.InputSchema,
				},
				Handler: handler[Resp](c, rt),
			}
		}
		return tools, nil
	})
}

func handler[Resp any](c *Client, rt Tool) toolcall.Handler[Resp] {
	return func(ctx context.Context, call toolcall.ToolCall, trace *agenttrace.Trace[Resp], _ *Resp) map[string]any {
		tc := trace.StartToolCall(call.ID, call.Name, call.Args)
		out, err := c.CallTool(ctx, call.Name, call.Args)
		tc.Complete(out, err)
		if err != nil {
			clog.WarnContext(ctx, "MCP tool call failed", "server", rt.Server, "tool", call.Name, "error", err)
			return map[string]any{"error": err.Error()}
		}
		return map[string]any{"content": out}
	}
}
