/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"fmt"

	"chainguard.dev/agentbench/agents/executor/openaiexecutor"
	"chainguard.dev/agentbench/agents/promptbuilder"
	"chainguard.dev/agentbench/config"
)

func newOpenAIExecutor[Req promptbuilder.Bindable, Resp any](llm config.LLM, model string, cfg Config[Resp]) (executor[Req, Resp], error) {
	client, err := llm.OpenAIClient()
	if err != nil {
		return nil, err
	}

	opts := []openaiexecutor.Option[Req, Resp]{
		openaiexecutor.WithModel[Req, Resp](model),
		openaiexecutor.WithRetryConfig[Req, Resp](llm.RetryConfig()),
	}
	if cfg.SystemInstructions != nil {
		opts = append(opts, openaiexecutor.WithSystemInstructions[Req, Resp](cfg.SystemInstructions))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, openaiexecutor.WithMaxTokens[Req, Resp](cfg.MaxTokens))
	}
	if cfg.Temperature != nil {
		opts = append(opts, openaiexecutor.WithTemperature[Req, Resp](*cfg.Temperature))
	}
	if cfg.MaxTurns > 0 {
		opts = append(opts, openaiexecutor.WithMaxTurns[Req, Resp](cfg.MaxTurns))
	}

	if cfg.ResponseSchema != nil {
		name := cfg.ResponseSchemaName
		if name == "" {
			name = "response"
		}
		opts = append(opts, openaiexecutor.WithResponseSchema[Req, Resp](name, cfg.ResponseSchema))
	}

	exec, err := openaiexecutor.New[Req, Resp](client, cfg.UserPrompt, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI executor: %w", err)
	}
	return exec, nil
}
