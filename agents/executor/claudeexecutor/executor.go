/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/agents/executor/retry"
	"chainguard.dev/agentbench/agents/metrics"
	"chainguard.dev/agentbench/agents/promptbuilder"
	"chainguard.dev/agentbench/agents/result"
	"chainguard.dev/agentbench/agents/toolcall"
	"chainguard.dev/agentbench/agents/toolcall/claudetool"
	"chainguard.dev/agentbench/agents/toolcall/params"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel/attribute"
)

// ErrMaxTurns is returned when Claude keeps requesting tools past the
// configured turn limit.
var ErrMaxTurns = errors.New("exceeded maximum tool-calling turns")

// Interface is the public interface for Claude agent execution
type Interface[Request promptbuilder.Bindable, Response any] interface {
	// Execute runs the agent conversation with the given request and tools
	Execute(ctx context.Context, request Request, tools map[string]toolcall.Tool[Response]) (Response, error)
}

// executor provides the private implementation
type executor[Request promptbuilder.Bindable, Response any] struct {
	client               anthropic.Client
	modelName            string
	systemInstructions   *promptbuilder.Prompt
	prompt               *promptbuilder.Prompt
	maxTokens            int64
	temperature          float64
	maxTurns             int
	thinkingBudgetTokens *int64 // nil = disabled
	genaiMetrics         *metrics.GenAI
	retryConfig          retry.Config
	attributes           []attribute.KeyValue
}

// New creates a new Executor with minimal required configuration
func New[Request promptbuilder.Bindable, Response any](
	client anthropic.Client,
	prompt *promptbuilder.Prompt,
	opts ...Option[Request, Response],
) (Interface[Request, Response], error) {
	if prompt == nil {
		return nil, errors.New("prompt cannot be nil")
	}

	e := &executor[Request, Response]{
		client:       client,
		modelName:    "claude-sonnet-4-5",
		prompt:       prompt,
		maxTokens:    8192,
		temperature:  0.1,
		maxTurns:     20,
		genaiMetrics: metrics.NewGenAI(metrics.MeterName),
		retryConfig:  retry.DefaultConfig(),
	}
	e.genaiMetrics.SetAttributeEnricher(metrics.ExecutionContextEnricher)

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return e, nil
}

// Execute runs the agent conversation with the given request and tools
func (e *executor[Request, Response]) Execute(
	ctx context.Context,
	request Request,
	tools map[string]toolcall.Tool[Response],
) (response Response, err error) {
	log := clog.FromContext(ctx)

	boundPrompt, err := request.Bind(e.prompt)
	if err != nil {
		return response, fmt.Errorf("failed to bind request to prompt: %w", err)
	}
	prompt, err := boundPrompt.Build()
	if err != nil {
		return response, fmt.Errorf("failed to build prompt: %w", err)
	}

	trace := agenttrace.StartTrace[Response](ctx, prompt)
	defer func() {
		trace.Complete(response, err)
	}()
	ctx = trace.Context()

	log.With("prompt_length", len(prompt)).
		With("model", e.modelName).
		Info("Starting Claude agent execution")

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.modelName),
		MaxTokens: e.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(e.temperature),
	}
	if len(tools) > 0 {
		params.Tools = claudetool.ToolParams(tools)
	}
	if e.systemInstructions != nil {
		systemPrompt, err := e.systemInstructions.Build()
		if err != nil {
			return response, fmt.Errorf("building system prompt: %w", err)
		}
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	if e.thinkingBudgetTokens != nil {
		// Extended thinking requires temperature 1.0.
		params.Temperature = anthropic.Float(1.0)
		params.Thinking = anthropic.ThinkingConfigParamUnion{
			OfEnabled: &anthropic.ThinkingConfigEnabledParam{
				BudgetTokens: *e.thinkingBudgetTokens,
			},
		}
	}

	var finalResult Response

	for turn := range e.maxTurns {
		turnCtx := agenttrace.WithExecutionContext(ctx, agenttrace.GetExecutionContext(ctx).WithTurn(turn+1))

		start := time.Now()
		message, err := retry.Do(turnCtx, e.retryConfig, "stream_message", isRetryableClaudeError, func() (anthropic.Message, error) {
			stream := e.client.Messages.NewStreaming(turnCtx, params)
			var msg anthropic.Message
			for stream.Next() {
				if err := msg.Accumulate(stream.Current()); err != nil {
					return msg, fmt.Errorf("failed to accumulate event: %w", err)
				}
			}
			return msg, stream.Err()
		})
		if err != nil {
			return response, fmt.Errorf("failed to stream Claude response: %w", err)
		}
		e.genaiMetrics.RecordLatency(turnCtx, e.modelName, time.Since(start), e.attributes...)

		if u := message.Usage; u.InputTokens > 0 || u.OutputTokens > 0 {
			e.genaiMetrics.RecordTokens(turnCtx, e.modelName, u.InputTokens, u.OutputTokens, e.attributes...)
			trace.RecordTokenUsage(e.modelName, u.InputTokens, u.OutputTokens)
		}

		var (
			toolUses []anthropic.ToolUseBlock
			text     strings.Builder
		)
		for _, block := range message.Content {
			switch block.Type {
			case "text":
				text.WriteString(block.Text)
			case "tool_use":
				toolUses = append(toolUses, anthropic.ToolUseBlock{ID: block.ID, Name: block.Name, Input: block.Input})
			case "thinking":
				trace.AddReasoning(block.Thinking)
			}
		}

		if len(toolUses) > 0 {
			params.Messages = append(params.Messages, message.ToParam())

			results := make([]anthropic.ContentBlockParamUnion, 0, len(toolUses))
			for _, toolUse := range toolUses {
				e.genaiMetrics.RecordToolCall(turnCtx, e.modelName, toolUse.Name, e.attributes...)

				blk, err := claudetool.ResultBlock(toolUse.ID, e.executeToolCall(turnCtx, toolUse, tools, trace, &finalResult))
				if err != nil {
					return response, err
				}
				results = append(results, blk)
			}
			if !reflect.ValueOf(&finalResult).Elem().IsZero() {
				log.Info("Tool set final result, exiting conversation loop")
				return finalResult, nil
			}
			params.Messages = append(params.Messages, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleUser,
				Content: results,
			})
			continue
		}

		content := strings.TrimSpace(text.String())
		if content == "" {
			return response, errors.New("no content in Claude's response")
		}
		if s, ok := any(&response).(*string); ok {
			*s = content
			return response, nil
		}
		resp, err := result.Extract[Response](content)
		if err != nil {
			log.With("response", content).
				With("error", err).
				Error("Failed to parse Claude response")
			return response, fmt.Errorf("failed to parse response: %w", err)
		}
		log.Info("Successfully completed Claude agent execution")
		return resp, nil
	}

	return response, fmt.Errorf("%w (%d)", ErrMaxTurns, e.maxTurns)
}

func (e *executor[Request, Response]) executeToolCall(
	ctx context.Context,
	toolUse anthropic.ToolUseBlock,
	tools map[string]toolcall.Tool[Response],
	trace *agenttrace.Trace[Response],
	finalResult *Response,
) map[string]any {
	log := clog.FromContext(ctx).With("tool", toolUse.Name).With("id", toolUse.ID)

	call, err := claudetool.Call(toolUse)
	if err != nil {
		log.With("error", err).Warn("Malformed tool input")
		trace.BadToolCall(toolUse.ID, toolUse.Name, map[string]any{"input": string(toolUse.Input)}, err)
		return params.Error("%v", err)
	}

	tool, ok := tools[call.Name]
	if !ok {
		log.Error("Unknown tool requested")
		err := fmt.Errorf("unknown tool: %q", call.Name)
		trace.BadToolCall(call.ID, call.Name, call.Args, err)
		return params.Error("%v", err)
	}

	log.Info("Executing tool call")
	return tool.Handler(ctx, call, trace, finalResult)
}
