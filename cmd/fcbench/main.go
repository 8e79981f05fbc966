/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Command fcbench benchmarks the function calling of models served by an
// OpenAI-compatible inference server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"chainguard.dev/agentbench/agents/evals/report"
	"chainguard.dev/agentbench/benchmark"
	"chainguard.dev/agentbench/config"
	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		clog.FatalContextf(ctx, "fcbench: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fcbench",
		Short: "Function-calling benchmark",
		Long: `fcbench asks a model to call functions for the questions of each test
category, then scores the calls against the possible answers.

Test data is read from BENCHMARK_DATA_DIR (<category>.json and
possible_answer/<category>.json, JSON lines). The inference server is the
OpenAI-compatible endpoint selected by USE_LLAMA_STACK.`,
		SilenceUsage: true,
	}
	root.AddCommand(newGenerateCmd(), newEvaluateCmd(), newModelsCmd())
	return root
}

// loadConfig reads the environment and the registry, including the model
// overlay when one is configured.
func loadConfig(ctx context.Context) (*config.Benchmark, *benchmark.Registry, error) {
	cfg, err := config.Load[config.Benchmark](ctx)
	if err != nil {
		return nil, nil, err
	}
	reg := benchmark.NewRegistry()
	if cfg.ModelOverlay != "" {
		if err := reg.LoadOverlay(cfg.ModelOverlay); err != nil {
			return nil, nil, fmt.Errorf("loading model overlay: %w", err)
		}
	}
	return cfg, reg, nil
}

// dirFlags lets the directories from the environment be overridden.
type dirFlags struct {
	data, result, score string
}

func (d *dirFlags) register(cmd *cobra.Command, score bool) {
	cmd.Flags().StringVar(&d.data, "data-dir", "", "test data directory (default: BENCHMARK_DATA_DIR)")
	cmd.Flags().StringVar(&d.result, "result-dir", "", "result directory (default: BENCHMARK_RESULT_DIR)")
	if score {
		cmd.Flags().StringVar(&d.score, "score-dir", "", "score directory (default: BENCHMARK_SCORE_DIR)")
	}
}

func (d dirFlags) apply(cfg *config.Benchmark) {
	if d.data != "" {
		cfg.DataDir = d.data
	}
	if d.result != "" {
		cfg.ResultDir = d.result
	}
	if d.score != "" {
		cfg.ScoreDir = d.score
	}
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models known to the benchmark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, reg, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			return writeModels(cmd.OutOrStdout(), reg.Models())
		},
	}
}

func writeModels(w io.Writer, models []benchmark.ModelConfig) error {
	table := report.NewMarkdownTable([]string{"Name", "Display name", "Handler", "Organization", "License", "Input $/M", "Output $/M"}, w)
	for _, m := range models {
		if err := table.Append([]string{
			m.Name,
			m.DisplayName,
			string(m.Handler),
			m.Organization,
			m.License,
			strconv.FormatFloat(m.InputPricePerMillion, 'f', -1, 64),
			strconv.FormatFloat(m.OutputPricePerMillion, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
