/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaiexecutor

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
	"chainguard.dev/agentbench/agents/toolcall/openaitool"
	"chainguard.dev/agentbench/agents/toolcall/params"
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	"go.opentelemetry.io/otel/attribute"
)

// ErrMaxTurns is returned when the model keeps requesting tools past the
// configured turn limit.
var ErrMaxTurns = errors.New("exceeded maximum tool-calling turns")

// Interface is the public interface for OpenAI-compatible agent execution.
type Interface[Request promptbuilder.Bindable, Response any] interface {
	// Execute runs the conversation for request, dispatching tool calls to tools
	// until the model produces a final answer.
	Execute(ctx context.Context, request Request, tools map[string]toolcall.Tool[Response]) (Response, error)
}

type executor[Request promptbuilder.Bindable, Response any] struct {
	client             openai.Client
	modelName          string
	systemInstructions *promptbuilder.Prompt
	prompt             *promptbuilder.Prompt
	maxTokens          int64
	temperature        float64
	maxTurns           int
	responseSchema     *openai.ResponseFormatJSONSchemaJSONSchemaParam
	genaiMetrics       *metrics.GenAI
	retryConfig        retry.Config
	attributes         []attribute.KeyValue
}

// New creates an executor talking to an OpenAI-compatible chat completions
// endpoint through client.
func New[Request promptbuilder.Bindable, Response any](
	client openai.Client,
	prompt *promptbuilder.Prompt,
	opts ...Option[Request, Response],
) (Interface[Request, Response], error) {
	if prompt == nil {
		return nil, errors.New("prompt cannot be nil")
	}

	e := &executor[Request, Response]{
		client:       client,
		modelName:    openai.ChatModelGPT4o,
		prompt:       prompt,
		maxTokens:    4096,
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
		With("tools", len(tools)).
		Info("Starting OpenAI-compatible agent execution")

	var messages []openai.ChatCompletionMessageParamUnion
	if e.systemInstructions != nil {
		system, err := e.systemInstructions.Build()
		if err != nil {
			return response, fmt.Errorf("building system prompt: %w", err)
		}
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:               e.modelName,
		Messages:            messages,
		Temperature:         openai.Float(e.temperature),
		MaxCompletionTokens: openai.Int(e.maxTokens),
	}
	if len(tools) > 0 {
		params.Tools = openaitool.ToolParams(tools)
	}
	if e.responseSchema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: *e.responseSchema},
		}
	}

	// Tool handlers may set the final result directly.
	var finalResult Response

	for turn := range e.maxTurns {
		turnCtx := agenttrace.WithExecutionContext(ctx, agenttrace.GetExecutionContext(ctx).WithTurn(turn+1))

		start := time.Now()
		completion, err := retry.Do(turnCtx, e.retryConfig, "chat_completion", isRetryableOpenAIError, func() (*openai.ChatCompletion, error) {
			return e.client.Chat.Completions.New(turnCtx, params)
		})
		if err != nil {
			return response, fmt.Errorf("chat completion: %w", err)
		}
		e.genaiMetrics.RecordLatency(turnCtx, e.modelName, time.Since(start), e.attributes...)

		if u := completion.Usage; u.PromptTokens > 0 || u.CompletionTokens > 0 {
			e.genaiMetrics.RecordTokens(turnCtx, e.modelName, u.PromptTokens, u.CompletionTokens, e.attributes...)
			trace.RecordTokenUsage(e.modelName, u.PromptTokens, u.CompletionTokens)
		}

		if len(completion.Choices) == 0 {
			return response, errors.New("no choices in chat completion")
		}
		msg := completion.Choices[0].Message

		if len(msg.ToolCalls) > 0 {
			params.Messages = append(params.Messages, msg.ToParam())
			for _, tc := range msg.ToolCalls {
				e.genaiMetrics.RecordToolCall(turnCtx, e.modelName, tc.Function.Name, e.attributes...)

				resp := e.executeToolCall(turnCtx, tc, tools, trace, &finalResult)
				toolMsg, err := openaitool.ResultMessage(tc.ID, resp)
				if err != nil {
					return response, err
				}
				params.Messages = append(params.Messages, toolMsg)
			}
			if !reflect.ValueOf(&finalResult).Elem().IsZero() {
				log.Info("Tool set final result, exiting conversation loop")
				return finalResult, nil
			}
			continue
		}

		if msg.Refusal != "" {
			return response, fmt.Errorf("model refused: %s", msg.Refusal)
		}
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			return response, errors.New("no content in chat completion")
		}

		if s, ok := any(&response).(*string); ok {
			*s = content
			return response, nil
		}
		resp, err := result.Extract[Response](content)
		if err != nil {
			log.With("response", content).
				With("error", err).
				Error("Failed to parse model response")
			return response, fmt.Errorf("failed to parse response: %w", err)
		}
		log.Info("Successfully completed OpenAI-compatible agent execution")
		return resp, nil
	}

	return response, fmt.Errorf("%w (%d)", ErrMaxTurns, e.maxTurns)
}

func (e *executor[Request, Response]) executeToolCall(
	ctx context.Context,
	tc openai.ChatCompletionMessageToolCall,
	tools map[string]toolcall.Tool[Response],
	trace *agenttrace.Trace[Response],
	finalResult *Response,
) map[string]any {
	log := clog.FromContext(ctx).With("tool", tc.Function.Name).With("id", tc.ID)

	call, err := openaitool.Call(tc)
	if err != nil {
		log.With("error", err).Warn("Malformed tool call arguments")
		trace.BadToolCall(tc.ID, tc.Function.Name, map[string]any{"arguments": tc.Function.Arguments}, err)
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
