/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"os"

	"chainguard.dev/agentbench/benchmark"
	"chainguard.dev/agentbench/config"
	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
)

func newEvaluateCmd() *cobra.Command {
	var (
		dirs       dirFlags
		models     []string
		categories string
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score generated results against the possible answers",
		Long: `evaluate writes <score>/<model>/<category>_score.json, appends a row per
model and category to <score>/data_overall.csv and prints a summary.
Categories without a result file are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, reg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			dirs.apply(cfg)

			cats, err := benchmark.ParseCategories(categories)
			if err != nil {
				return err
			}

			var scores []benchmark.Score
			for _, name := range models {
				m, err := reg.Lookup(name)
				if err != nil {
					return err
				}
				for _, c := range cats {
					s, ok, err := score(cfg, m, c)
					if err != nil {
						return fmt.Errorf("%s/%s: %w", m.Name, c, err)
					}
					if !ok {
						clog.WarnContext(ctx, "No results to evaluate", "model", m.Name, "category", c)
						continue
					}
					if err := benchmark.WriteScore(cfg.ScoreDir, s); err != nil {
						return err
					}
					if err := benchmark.AppendOverall(cfg.ScoreDir, s); err != nil {
						return err
					}
					scores = append(scores, s)
				}
			}
			return benchmark.Summary(cmd.OutOrStdout(), scores)
		},
	}
	dirs.register(cmd, true)
	cmd.Flags().StringSliceVar(&models, "model", nil, "model names from the registry (repeatable)")
	cmd.Flags().StringVar(&categories, "test-category", "all", `comma separated test categories, or "all"`)
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

// score evaluates one model on one category. It reports false when the
// model has no result file for the category.
func score(cfg *config.Benchmark, m benchmark.ModelConfig, c benchmark.Category) (benchmark.Score, bool, error) {
	path := benchmark.ResultPath(cfg.ResultDir, m.Name, c)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return benchmark.Score{}, false, nil
	}
	results, err := benchmark.LoadResults(path)
	if err != nil {
		return benchmark.Score{}, false, err
	}
	entries, err := benchmark.LoadEntries(cfg.DataDir, c)
	if err != nil {
		return benchmark.Score{}, false, err
	}
	var answers map[string]benchmark.Answer
	if c.HasAnswers() {
		if answers, err = benchmark.LoadAnswers(cfg.DataDir, c); err != nil {
			return benchmark.Score{}, false, err
		}
	}
	return benchmark.Evaluate(m, c, entries, results, answers), true, nil
}
