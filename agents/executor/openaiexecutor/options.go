/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaiexecutor

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"chainguard.dev/agentbench/agents/executor/retry"
	"chainguard.dev/agentbench/agents/metrics"
	"chainguard.dev/agentbench/agents/promptbuilder"
	"github.com/openai/openai-go"
	"go.opentelemetry.io/otel/attribute"
)

// Option is a functional option for configuring the executor
type Option[Request promptbuilder.Bindable, Response any] func(*executor[Request, Response]) error

// WithModel sets the model identifier sent to the endpoint, e.g. "gpt-4o"
// or "openai/gpt-4o" on Llama Stack.
func WithModel[Request promptbuilder.Bindable, Response any](model string) Option[Request, Response] {
	return func(e *executor[Request, Response]) error {
		if model == "" {
			return errors.New("model cannot be empty")
		}
		e.modelName = model
		return nil
	}
}

// WithMaxTokens bounds the completion tokens of each model turn.
func WithMaxTokens[Request promptbuilder.Bindable, Response any](tokens int64) Option[Request, Response] {
	return func(e *executor[Request, Response]) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		e.maxTokens = tokens
		return nil
	}
}

// WithTemperature sets the sampling temperature (0.0 to 2.0).
func WithTemperature[Request promptbuilder.Bindable, Response any](temp float64) Option[Request, Response] {
	return func(e *executor[Request, Response]) error {
		if temp < 0.0 || temp > 2.0 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", temp)
		}
		e.temperature = temp
		return nil
	}
}

// WithSystemInstructions sets the system message.
func WithSystemInstructions[Request promptbuilder.Bindable, Response any](prompt *promptbuilder.Prompt) Option[Request, Response] {
	return func(e *executor[Request, Response]) error {
		if prompt == nil {
			return errors.New("system instructions prompt cannot be nil")
		}
		e.systemInstructions = prompt
		return nil
	}
}

// WithMaxTurns bounds the number of model requests in one execution.
func WithMaxTurns[Request promptbuilder.Bindable, Response any](turns int) Option[Request, Response] {
	return func(e *executor[Request, Response]) error {
		if turns <= 0 {
			return fmt.Errorf("max turns must be positive, got %d", turns)
		}
		e.maxTurns = turns
		return nil
	}
}

// WithResponseSchema requests structured output constrained to schema.
// Endpoints without json_schema response format support reject the request,
// so this is opt-in.
func WithResponseSchema[Request promptbuilder.Bindable, Response any](name string, schema map[string]any) Option[Request, Response] {
	return func(e *executor[Request, Response]) error {
		if name == "" || schema == nil {
			return errors.New("response schema requires a name and a schema")
		}
		e.responseSchema = &openai.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   name,
			Schema: schema,
			Strict: openai.Bool(true),
		}
		return nil
	}
}

// WithAttributeEnricher replaces the metric attribute enricher. By default
// metrics carry the execution context labels.
func WithAttributeEnricher[Request promptbuilder.Bindable, Response any](enricher metrics.AttributeEnricher) Option[Request, Response] {
	return func(e *executor[Request, Response]) error {
		e.genaiMetrics.SetAttributeEnricher(enricher)
		return nil
	}
}

// WithResourceLabels adds static attributes to every metric recorded.
func WithResourceLabels[Request promptbuilder.Bindable, Response any](labels map[string]string) Option[Request, Response] {
	return func(e *executor[Request, Response]) error {
		for _, k := range slices.Sorted(maps.Keys(labels)) {
			e.attributes = append(e.attributes, attribute.String(k, labels[k]))
		}
		return nil
	}
}

// WithRetryConfig sets the retry configuration for transient API errors.
func WithRetryConfig[Request promptbuilder.Bindable, Response any](cfg retry.Config) Option[Request, Response] {
	return func(e *executor[Request, Response]) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.retryConfig = cfg
		return nil
	}
}
