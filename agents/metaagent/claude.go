/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"fmt"

	"chainguard.dev/agentbench/agents/executor/claudeexecutor"
	"chainguard.dev/agentbench/agents/promptbuilder"
	"chainguard.dev/agentbench/config"
)

func newClaudeExecutor[Req promptbuilder.Bindable, Resp any](llm config.LLM, model string, cfg Config[Resp]) (executor[Req, Resp], error) {
	client, err := llm.AnthropicClient()
	if err != nil {
		return nil, err
	}

	opts := []claudeexecutor.Option[Req, Resp]{
		claudeexecutor.WithModel[Req, Resp](model),
		claudeexecutor.WithRetryConfig[Req, Resp](llm.RetryConfig()),
	}
	if cfg.SystemInstructions != nil {
		opts = append(opts, claudeexecutor.WithSystemInstructions[Req, Resp](cfg.SystemInstructions))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, claudeexecutor.WithMaxTokens[Req, Resp](cfg.MaxTokens))
	}
	if cfg.Temperature != nil {
		opts = append(opts, claudeexecutor.WithTemperature[Req, Resp](*cfg.Temperature))
	}
	if cfg.MaxTurns > 0 {
		opts = append(opts, claudeexecutor.WithMaxTurns[Req, Resp](cfg.MaxTurns))
	}

	exec, err := claudeexecutor.New[Req, Resp](client, cfg.UserPrompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Claude executor: %w", err)
	}
	return exec, nil
}
