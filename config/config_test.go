/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package config_test

import (
	"context"
	"testing"
	"time"

	"chainguard.dev/agentbench/config"
	"github.com/google/go-cmp/cmp"
	"github.com/sethvargo/go-envconfig"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFrom[config.LogMonitor](context.Background(), envconfig.MapLookuper(nil))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if !cfg.LLM.UseLlamaStack {
		t.Error("UseLlamaStack: got = false, wanted = true")
	}
	ep, err := cfg.LLM.Endpoint()
	if err != nil {
		t.Fatalf("Endpoint: %v", err)
	}
	if diff := cmp.Diff(config.Endpoint{BaseURL: "http://localhost:8321/v1", APIKey: "not-needed", Model: "openai/gpt-4o"}, ep); diff != "" {
		t.Errorf("Endpoint (-want +got):\n%s", diff)
	}

	want := config.MCP{
		DeepWikiURL: "https://mcp.deepwiki.com/mcp",
		Context7URL: "https://mcp.context7.com/mcp",
		NPSURL:      "http://localhost:3005/sse",
	}
	if diff := cmp.Diff(want, cfg.MCP); diff != "" {
		t.Errorf("MCP (-want +got):\n%s", diff)
	}
	if cfg.Tracing.TraceDB != "mlflow.db" || cfg.Tracing.ExperimentName != "log-monitor-agent" {
		t.Errorf("Tracing: got = %+v", cfg.Tracing)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port: got = %d, wanted = 8080", cfg.Server.Port)
	}
	if cfg.LLM.Retry.MaxRetries != 5 || cfg.LLM.Retry.BaseBackoff != time.Second {
		t.Errorf("Retry: got = %+v", cfg.LLM.Retry)
	}
}

func TestEndpointOpenAI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		env     map[string]string
		want    config.Endpoint
		wantErr bool
	}{{
		name: "openai",
		env:  map[string]string{"USE_LLAMA_STACK": "false", "OPENAI_API_KEY": "sk-test", "OPENAI_MODEL": "gpt-4o-mini"},
		want: config.Endpoint{APIKey: "sk-test", Model: "gpt-4o-mini"},
	}, {
		name:    "openai without key",
		env:     map[string]string{"USE_LLAMA_STACK": "false"},
		wantErr: true,
	}, {
		name: "llama stack trailing slash",
		env:  map[string]string{"LLAMA_STACK_URL": "http://llama:8321/", "MODEL_NAME": "meta-llama/Llama-3.1-8B-Instruct"},
		want: config.Endpoint{BaseURL: "http://llama:8321/v1", APIKey: "not-needed", Model: "meta-llama/Llama-3.1-8B-Instruct"},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := config.LoadFrom[config.Assistant](context.Background(), envconfig.MapLookuper(tt.env))
			if err != nil {
				t.Fatalf("LoadFrom: %v", err)
			}
			got, err := cfg.LLM.Endpoint()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Endpoint error: got = %v, wanted error = %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Endpoint (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepository(t *testing.T) {
	t.Parallel()
	owner, repo, err := config.Actions{GitHubRepository: "acme/platform"}.Repository()
	if err != nil || owner != "acme" || repo != "platform" {
		t.Errorf("Repository: got = %s/%s, %v, wanted = acme/platform", owner, repo, err)
	}
	for _, bad := range []string{"", "acme", "acme/", "/platform", "a/b/c"} {
		if _, _, err := (config.Actions{GitHubRepository: bad}).Repository(); err == nil {
			t.Errorf("Repository(%q): wanted error", bad)
		}
	}
}

func TestInvalidEnv(t *testing.T) {
	t.Parallel()
	if _, err := config.LoadFrom[config.LogMonitor](context.Background(), envconfig.MapLookuper(map[string]string{"PORT": "http"})); err == nil {
		t.Error("LoadFrom: wanted error for non-numeric PORT")
	}
}

func TestLoadBenchmark(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFrom[config.Benchmark](context.Background(), envconfig.MapLookuper(map[string]string{
		"BENCHMARK_DATA_DIR":     "/bfcl/data",
		"BENCHMARK_MODEL_CONFIG": "models.yaml",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	want := config.Benchmark{
		LLM:          cfg.LLM,
		DataDir:      "/bfcl/data",
		ResultDir:    "result",
		ScoreDir:     "score",
		ModelOverlay: "models.yaml",
	}
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Errorf("Benchmark (-want +got):\n%s", diff)
	}
}
