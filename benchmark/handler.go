/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package benchmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"chainguard.dev/agentbench/agents/executor/openaiexecutor"
	"chainguard.dev/agentbench/agents/executor/retry"
	"chainguard.dev/agentbench/agents/promptbuilder"
	"chainguard.dev/agentbench/agents/result"
	"chainguard.dev/agentbench/agents/toolcall"
	"chainguard.dev/agentbench/agents/toolcall/openaitool"
	"github.com/openai/openai-go"
)

// Call is one function call made by the model.
type Call struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Result is the outcome of one entry, stored as a JSON line. Error is set
// when the model's answer could not be obtained or decoded.
type Result struct {
	ID           string  `json:"id"`
	RunID        string  `json:"run_id,omitempty"`
	Calls        []Call  `json:"result"`
	Text         string  `json:"text,omitempty"`
	Error        string  `json:"error,omitempty"`
	InputTokens  int64   `json:"input_token_count"`
	OutputTokens int64   `json:"output_token_count"`
	Latency      float64 `json:"latency"`
}

// Handler sends one entry to a model.
type Handler interface {
	Infer(ctx context.Context, e Entry) (Result, error)
}

// NewHandler returns the handler selected by the model's configuration.
func NewHandler(m ModelConfig, client openai.Client, rc retry.Config) (Handler, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &openAIHandler{client: client, model: m.APIModel(), kind: m.Handler, retry: rc}, nil
}

type openAIHandler struct {
	client openai.Client
	model  string
	kind   HandlerKind
	retry  retry.Config
}

var promptSystem = promptbuilder.MustNewPrompt(`You are an expert in composing functions. You are given a question and a set of possible functions.
Based on the question, you will need to make one or more function calls to achieve the purpose.
If none of the functions can be used, point it out and respond with an empty list.
If the given question lacks the parameters required by the function, also point it out.

Respond only with a JSON array of calls, each an object with the fields
"name" (the function name) and "arguments" (an object of parameter values):
[{"name": "func_name1", "arguments": {"param1": "value1"}}, {"name": "func_name2", "arguments": {"param": "value"}}]

Here is a list of functions in JSON format that you can invoke.
{{functions}}`)

func (h *openAIHandler) Infer(ctx context.Context, e Entry) (Result, error) {
	res := Result{ID: e.ID}

	var messages []openai.ChatCompletionMessageParamUnion
	params := openai.ChatCompletionNewParams{
		Model:       h.model,
		Temperature: openai.Float(0),
	}
	names := make(map[string]string, len(e.Function))
	switch h.kind {
	case HandlerFC:
		defs := make([]toolcall.Definition, 0, len(e.Function))
		for _, f := range e.Function {
			names[toolName(f.Name)] = f.Name
			defs = append(defs, toolcall.Definition{
				Name:        toolName(f.Name),
				Description: f.Description,
				Schema:      jsonSchema(f.Parameters),
			})
		}
		if len(defs) > 0 {
			params.Tools = openaitool.Definitions(defs)
		}
	case HandlerPrompt:
		p, err := promptSystem.BindJSON("functions", e.Function)
		if err != nil {
			return res, err
		}
		system, err := p.Build()
		if err != nil {
			return res, err
		}
		messages = append(messages, openai.SystemMessage(system))
	default:
		return res, fmt.Errorf("unknown handler %q", h.kind)
	}
	for _, m := range e.Messages() {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	params.Messages = messages

	start := time.Now()
	completion, err := retry.Do(ctx, h.retry, "benchmark_inference", openaiexecutor.IsRetryable, func() (*openai.ChatCompletion, error) {
		return h.client.Chat.Completions.New(ctx, params)
	})
	res.Latency = time.Since(start).Seconds()
	if err != nil {
		return res, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	res.InputTokens = completion.Usage.PromptTokens
	res.OutputTokens = completion.Usage.CompletionTokens
	if len(completion.Choices) == 0 {
		res.Error = "no choices in chat completion"
		return res, nil
	}
	msg := completion.Choices[0].Message
	res.Text = msg.Content

	if h.kind == HandlerPrompt {
		calls, err := parsePromptCalls(msg.Content)
		if err != nil {
			res.Error = err.Error()
		}
		res.Calls = calls
		return res, nil
	}

	for _, tc := range msg.ToolCalls {
		call, err := openaitool.Call(tc)
		if err != nil {
			res.Error = err.Error()
			continue
		}
		name := call.Name
		if orig, ok := names[name]; ok {
			name = orig
		}
		res.Calls = append(res.Calls, Call{Name: name, Arguments: call.Args})
	}
	return res, nil
}

// parsePromptCalls decodes the JSON array of calls of a prompt handler
// answer. An answer without JSON is a refusal to call anything.
func parsePromptCalls(text string) ([]Call, error) {
	payload := result.ExtractJSON(text)
	if payload == "" || (payload[0] != '[' && payload[0] != '{') {
		return nil, nil
	}
	var calls []Call
	if err := json.Unmarshal([]byte(payload), &calls); err == nil {
		return validCalls(calls)
	}
	var single Call
	if err := json.Unmarshal([]byte(payload), &single); err == nil && single.Name != "" {
		return validCalls([]Call{single})
	}
	return nil, fmt.Errorf("unparseable answer: %s", truncate(payload, 200))
}

func validCalls(calls []Call) ([]Call, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	for _, c := range calls {
		if c.Name == "" {
			return nil, errors.New("call without a function name")
		}
	}
	return calls, nil
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n])) + "..."
}
