/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"fmt"

	"chainguard.dev/agentbench/agents/executor/claudeexecutor"
	"chainguard.dev/agentbench/agents/executor/openaiexecutor"
	"chainguard.dev/agentbench/agents/metrics"
	"chainguard.dev/agentbench/agents/promptbuilder"
	"chainguard.dev/agentbench/agents/schema"
	"chainguard.dev/agentbench/agents/toolcall"
	"chainguard.dev/agentbench/config"
	"github.com/chainguard-dev/clog"
)

const (
	defaultMaxTokens   = 8192
	defaultTemperature = 0.1
)

// Option configures a judge.
type Option func(*options)

type options struct {
	enricher   metrics.AttributeEnricher
	structured bool
}

// WithAttributeEnricher labels the judge's token metrics.
func WithAttributeEnricher(enricher metrics.AttributeEnricher) Option {
	return func(o *options) { o.enricher = enricher }
}

// WithStructuredOutput asks OpenAI-compatible endpoints to constrain the
// judgment to its JSON schema. Endpoints without json_schema support reject
// such requests, so it is off by default. Claude judges ignore it.
func WithStructuredOutput() Option {
	return func(o *options) { o.structured = true }
}

type executor interface {
	Execute(ctx context.Context, request *Request, tools map[string]toolcall.Tool[*Judgement]) (*Judgement, error)
}

type judge struct {
	model     string
	executors map[JudgmentMode]executor
}

// New creates a judge for model, selecting the provider by name: claude-*
// models use Anthropic and every other model uses the OpenAI-compatible
// endpoint of llm. An empty model uses the default model of llm.
func New(ctx context.Context, llm config.LLM, model string, opts ...Option) (Interface, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if model == "" {
		model = llm.Model()
	}

	build := newOpenAIExecutor
	if config.IsClaude(model) {
		build = newClaudeExecutor
	}

	j := &judge{model: model, executors: make(map[JudgmentMode]executor, len(Modes))}
	for _, mode := range Modes {
		prompt, err := promptFor(mode)
		if err != nil {
			return nil, err
		}
		exec, err := build(llm, model, prompt, o)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s executor: %w", mode, err)
		}
		j.executors[mode] = exec
	}

	clog.FromContext(ctx).With("model", model).Debug("Created judge")
	return j, nil
}

// Judge implements Interface
func (j *judge) Judge(ctx context.Context, request *Request) (*Judgement, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	judgement, err := j.executors[request.Mode].Execute(ctx, request, nil)
	if err != nil {
		return nil, err
	}
	// Models occasionally omit the mode; the request is authoritative.
	if judgement.Mode == "" {
		judgement.Mode = request.Mode
	}
	return judgement, nil
}

func newOpenAIExecutor(llm config.LLM, model string, prompt *promptbuilder.Prompt, o options) (executor, error) {
	client, err := llm.OpenAIClient()
	if err != nil {
		return nil, err
	}
	opts := []openaiexecutor.Option[*Request, *Judgement]{
		openaiexecutor.WithModel[*Request, *Judgement](model),
		openaiexecutor.WithMaxTokens[*Request, *Judgement](defaultMaxTokens),
		openaiexecutor.WithTemperature[*Request, *Judgement](defaultTemperature),
		openaiexecutor.WithMaxTurns[*Request, *Judgement](1),
		openaiexecutor.WithRetryConfig[*Request, *Judgement](llm.RetryConfig()),
	}
	if o.enricher != nil {
		opts = append(opts, openaiexecutor.WithAttributeEnricher[*Request, *Judgement](o.enricher))
	}
	if o.structured {
		s, err := schema.StrictMapFor[Judgement]()
		if err != nil {
			return nil, fmt.Errorf("judgement schema: %w", err)
		}
		opts = append(opts, openaiexecutor.WithResponseSchema[*Request, *Judgement]("judgement", s))
	}
	return openaiexecutor.New[*Request, *Judgement](client, prompt, opts...)
}

func newClaudeExecutor(llm config.LLM, model string, prompt *promptbuilder.Prompt, o options) (executor, error) {
	client, err := llm.AnthropicClient()
	if err != nil {
		return nil, err
	}
	opts := []claudeexecutor.Option[*Request, *Judgement]{
		claudeexecutor.WithModel[*Request, *Judgement](model),
		claudeexecutor.WithMaxTokens[*Request, *Judgement](defaultMaxTokens),
		claudeexecutor.WithTemperature[*Request, *Judgement](defaultTemperature),
		claudeexecutor.WithMaxTurns[*Request, *Judgement](1),
		claudeexecutor.WithRetryConfig[*Request, *Judgement](llm.RetryConfig()),
	}
	if o.enricher != nil {
		opts = append(opts, claudeexecutor.WithAttributeEnricher[*Request, *Judgement](o.enricher))
	}
	return claudeexecutor.New[*Request, *Judgement](client, prompt, opts...)
}
