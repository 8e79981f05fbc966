/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"context"
	"fmt"

	"chainguard.dev/agentbench/agents/promptbuilder"
	"chainguard.dev/agentbench/agents/toolcall"
	"chainguard.dev/agentbench/config"
	"github.com/chainguard-dev/clog"
)

// Agent is the interface for a configured meta-agent.
//   - Req must implement promptbuilder.Bindable.
//   - Resp is the structured response type, or string for free text.
type Agent[Req promptbuilder.Bindable, Resp any] interface {
	// Execute runs the agent on request with the configured tools.
	Execute(ctx context.Context, request Req) (Resp, error)
}

// executor is satisfied by both openaiexecutor.Interface and
// claudeexecutor.Interface.
type executor[Req promptbuilder.Bindable, Resp any] interface {
	Execute(ctx context.Context, request Req, tools map[string]toolcall.Tool[Resp]) (Resp, error)
}

// New creates a meta-agent. The model determines the provider:
//   - Models starting with "claude-" use Anthropic's Messages API
//   - Any other model uses the OpenAI-compatible endpoint selected by llm
//     (Llama Stack, vLLM or OpenAI)
//
// An empty model uses the default model of llm.
func New[Req promptbuilder.Bindable, Resp any](
	ctx context.Context,
	llm config.LLM,
	model string,
	cfg Config[Resp],
) (Agent[Req, Resp], error) {
	if cfg.UserPrompt == nil {
		return nil, fmt.Errorf("user prompt is required")
	}
	if model == "" {
		model = llm.Model()
	}

	var (
		exec executor[Req, Resp]
		err  error
	)
	switch {
	case config.IsClaude(model):
		exec, err = newClaudeExecutor[Req](llm, model, cfg)
	default:
		exec, err = newOpenAIExecutor[Req](llm, model, cfg)
	}
	if err != nil {
		return nil, err
	}

	clog.FromContext(ctx).With("model", model).Debug("Created meta-agent")
	return &agent[Req, Resp]{exec: exec, config: cfg}, nil
}

type agent[Req promptbuilder.Bindable, Resp any] struct {
	exec   executor[Req, Resp]
	config Config[Resp]
}

func (a *agent[Req, Resp]) Execute(ctx context.Context, request Req) (Resp, error) {
	tools, err := a.tools(ctx)
	if err != nil {
		var zero Resp
		return zero, err
	}
	return a.exec.Execute(ctx, request, tools)
}

func (a *agent[Req, Resp]) tools(ctx context.Context) (map[string]toolcall.Tool[Resp], error) {
	if a.config.Tools == nil {
		return nil, nil
	}
	tools, err := a.config.Tools.Tools(ctx)
	if err == nil {
		return tools, nil
	}
	if !a.config.ToolsOptional {
		return nil, fmt.Errorf("loading tools: %w", err)
	}
	clog.WarnContext(ctx, "Tools unavailable, continuing without them", "error", err)
	return nil, nil
}
