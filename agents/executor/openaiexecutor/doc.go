/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package openaiexecutor runs tool-calling agents against OpenAI-compatible
// chat completions endpoints such as OpenAI, Llama Stack and vLLM.
//
// The executor binds the request into the prompt template, sends the
// conversation with the registered tools, executes the tool calls the model
// requests and loops until the model answers in text. Text answers are
// returned verbatim when Response is a string and otherwise decoded from the
// JSON the model produced.
//
//	client := openai.NewClient(
//		option.WithBaseURL("http://localhost:8321/v1"),
//		option.WithAPIKey("not-needed"),
//	)
//	exec, err := openaiexecutor.New[*Request, *Diagnosis](client, prompt,
//		openaiexecutor.WithModel[*Request, *Diagnosis]("openai/gpt-4o"),
//		openaiexecutor.WithSystemInstructions[*Request, *Diagnosis](system),
//	)
//	diagnosis, err := exec.Execute(ctx, req, tools)
//
// Every execution produces an agenttrace.Trace recorded with the tracer on
// the context, and GenAI token, tool call and latency metrics.
//
// Rate limit and transient server errors (429, 500, 502, 503, 504) are
// retried with exponential backoff.
package openaiexecutor
