/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package assistant answers questions with the tools of an MCP server,
// calling them in a loop until the model produces a final answer.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/agents/metaagent"
	"chainguard.dev/agentbench/agents/promptbuilder"
	"chainguard.dev/agentbench/agents/toolcall"
	"chainguard.dev/agentbench/config"
	"github.com/chainguard-dev/clog"
)

// DefaultQuestion is asked when none is given.
const DefaultQuestion = "Tell me about some parks in Rhode Island, and let me know if there are any upcoming events at them."

var systemPrompt = promptbuilder.MustNewPrompt(`You are a helpful assistant with access to tools.
Use the tools to look up facts instead of answering from memory, and call
them as many times as the question needs. When you have enough information,
answer the question directly in plain prose.`)

var userPrompt = promptbuilder.MustNewPrompt(`{{question}}`)

type request struct {
	Question string
}

func (r *request) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	return p.BindCodeBlock("question", "", r.Question)
}

// Option configures an Assistant.
type Option func(*options)

type options struct {
	model    string
	maxTurns int
}

// WithModel overrides the model of the LLM configuration.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithMaxTurns bounds the number of model turns per question.
func WithMaxTurns(n int) Option {
	return func(o *options) { o.maxTurns = n }
}

// Assistant is a tool-calling question answerer.
type Assistant struct {
	agent metaagent.Agent[*request, string]
}

// New creates an Assistant using the tools of provider. Questions fail
// when the tools cannot be loaded.
func New(ctx context.Context, llm config.LLM, tools toolcall.ToolProvider[string], opts ...Option) (*Assistant, error) {
	if tools == nil {
		return nil, errors.New("a tool provider is required")
	}
	o := options{maxTurns: 20}
	for _, opt := range opts {
		opt(&o)
	}
	agent, err := metaagent.New[*request](ctx, llm, o.model, metaagent.Config[string]{
		SystemInstructions: systemPrompt,
		UserPrompt:         userPrompt,
		Tools:              tools,
		MaxTurns:           o.maxTurns,
	})
	if err != nil {
		return nil, fmt.Errorf("creating assistant: %w", err)
	}
	return &Assistant{agent: agent}, nil
}

// Ask answers question.
func (a *Assistant) Ask(ctx context.Context, question string) (answer string, err error) {
	if strings.TrimSpace(question) == "" {
		return "", errors.New("question is empty")
	}
	ctx, span := agenttrace.StartSpan(ctx, "assistant", agenttrace.SpanKindAgent)
	span.SetInputs(map[string]string{"question": question})
	defer func() {
		if err == nil {
			span.SetOutputs(map[string]string{"answer": answer})
		}
		span.End(err)
	}()

	answer, err = a.agent.Execute(ctx, &request{Question: question})
	if err != nil {
		return "", fmt.Errorf("answering question: %w", err)
	}
	clog.FromContext(ctx).With("answer_length", len(answer)).Info("Answered question")
	return answer, nil
}
