/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/agentbench/agents/executor/retry"
	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sethvargo/go-envconfig"
)

// LLM selects the inference endpoint. With UseLlamaStack the agents talk to
// the Llama Stack OpenAI-compatible API; otherwise to OpenAI directly.
// Models named claude-* go to Anthropic regardless.
type LLM struct {
	UseLlamaStack   bool   `env:"USE_LLAMA_STACK,default=true"`
	LlamaStackURL   string `env:"LLAMA_STACK_URL,default=http://localhost:8321"`
	ModelName       string `env:"MODEL_NAME,default=openai/gpt-4o"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIModel     string `env:"OPENAI_MODEL,default=gpt-4o"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	Retry retry.Config
}

// Endpoint is a resolved OpenAI-compatible endpoint.
type Endpoint struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Endpoint resolves the OpenAI-compatible endpoint.
func (l LLM) Endpoint() (Endpoint, error) {
	if l.UseLlamaStack {
		return Endpoint{
			BaseURL: strings.TrimRight(l.LlamaStackURL, "/") + "/v1",
			APIKey:  "not-needed",
			Model:   l.ModelName,
		}, nil
	}
	if l.OpenAIAPIKey == "" {
		return Endpoint{}, errors.New("OPENAI_API_KEY is required when USE_LLAMA_STACK=false")
	}
	return Endpoint{
		BaseURL: l.OpenAIBaseURL,
		APIKey:  l.OpenAIAPIKey,
		Model:   l.OpenAIModel,
	}, nil
}

// Model returns the model agents use by default.
func (l LLM) Model() string {
	if l.UseLlamaStack {
		return l.ModelName
	}
	return l.OpenAIModel
}

// OpenAIClient returns a client for the resolved OpenAI-compatible endpoint.
// SDK level retries are disabled; executors retry through the retry package.
func (l LLM) OpenAIClient() (openai.Client, error) {
	ep, err := l.Endpoint()
	if err != nil {
		return openai.Client{}, err
	}
	opts := []option.RequestOption{option.WithAPIKey(ep.APIKey), option.WithMaxRetries(0)}
	if ep.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(ep.BaseURL))
	}
	return openai.NewClient(opts...), nil
}

// AnthropicClient returns a client for claude-* models.
func (l LLM) AnthropicClient() (anthropic.Client, error) {
	if l.AnthropicAPIKey == "" {
		return anthropic.Client{}, errors.New("ANTHROPIC_API_KEY is required for claude-* models")
	}
	return anthropic.NewClient(
		anthropicoption.WithAPIKey(l.AnthropicAPIKey),
		anthropicoption.WithMaxRetries(0),
	), nil
}

// RetryConfig returns the retry settings, falling back to the defaults when
// the LLM config was built by hand rather than loaded from the environment.
func (l LLM) RetryConfig() retry.Config {
	if l.Retry == (retry.Config{}) {
		return retry.DefaultConfig()
	}
	return l.Retry
}

// IsClaude reports whether model is served through Anthropic.
func IsClaude(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "claude-")
}

// MCP lists the research and assistant MCP servers.
type MCP struct {
	DeepWikiURL string `env:"DEEPWIKI_MCP_URL,default=https://mcp.deepwiki.com/mcp"`
	Context7URL string `env:"CONTEXT7_MCP_URL,default=https://mcp.context7.com/mcp"`
	NPSURL      string `env:"NPS_MCP_URL,default=http://localhost:3005/sse"`
}

// Tracing selects where spans go.
type Tracing struct {
	TraceDB        string `env:"TRACE_DB,default=mlflow.db"`
	OTLPEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ExperimentName string `env:"EXPERIMENT_NAME,default=log-monitor-agent"`
	ServiceName    string `env:"OTEL_SERVICE_NAME,default=agentbench"`
}

// Actions configures the real alert and ticket sinks; stubs are used when
// these are unset.
type Actions struct {
	GitHubToken      string `env:"GITHUB_TOKEN"`
	GitHubRepository string `env:"GITHUB_REPOSITORY"`
	SlackWebhookURL  string `env:"SLACK_WEBHOOK_URL"`
}

// Repository splits GitHubRepository into owner and name.
func (a Actions) Repository() (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(a.GitHubRepository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("GITHUB_REPOSITORY must be owner/repo, got %q", a.GitHubRepository)
	}
	return owner, repo, nil
}

// Server configures the ingest server.
type Server struct {
	Port int `env:"PORT,default=8080"`
}

// LogMonitor is the configuration of the log monitor agent.
type LogMonitor struct {
	LLM     LLM
	MCP     MCP
	Tracing Tracing
	Actions Actions
	Server  Server
}

// Assistant is the configuration of the MCP assistant.
type Assistant struct {
	LLM LLM
	MCP MCP
}

// Benchmark is the configuration of the function-calling benchmark. The
// inference server is the OpenAI-compatible endpoint of LLM.
type Benchmark struct {
	LLM LLM

	DataDir      string `env:"BENCHMARK_DATA_DIR,default=data"`
	ResultDir    string `env:"BENCHMARK_RESULT_DIR,default=result"`
	ScoreDir     string `env:"BENCHMARK_SCORE_DIR,default=score"`
	ModelOverlay string `env:"BENCHMARK_MODEL_CONFIG"`
}

// Load populates cfg from the process environment.
func Load[T any](ctx context.Context) (*T, error) {
	return LoadFrom[T](ctx, envconfig.OsLookuper())
}

// LoadFrom populates cfg from lookuper.
func LoadFrom[T any](ctx context.Context, lookuper envconfig.Lookuper) (*T, error) {
	var cfg T
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}
	return &cfg, nil
}
