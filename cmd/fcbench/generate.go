/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"chainguard.dev/agentbench/benchmark"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		dirs       dirFlags
		models     []string
		categories string
		threads    int
		overwrite  bool
		quiet      bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Collect the function calls of models for test categories",
		Example: `  fcbench generate --model gpt-4o-mini-2024-07-18 --test-category simple,parallel --num-threads 8
  fcbench generate --model meta-llama/Llama-3.1-8B-Instruct --allow-overwrite`,
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
			client, err := cfg.LLM.OpenAIClient()
			if err != nil {
				return err
			}

			for _, name := range models {
				m, err := reg.Lookup(name)
				if err != nil {
					return err
				}
				h, err := benchmark.NewHandler(m, client, cfg.LLM.RetryConfig())
				if err != nil {
					return err
				}
				gen := &benchmark.Generator{
					Handler:   h,
					Model:     m.Name,
					ResultDir: cfg.ResultDir,
					Threads:   threads,
					Overwrite: overwrite,
				}
				if !quiet {
					gen.Progress = cmd.ErrOrStderr()
				}

				for _, c := range cats {
					entries, err := benchmark.LoadEntries(cfg.DataDir, c)
					if err != nil {
						return err
					}
					stats, err := gen.Generate(ctx, c, entries)
					if err != nil {
						return fmt.Errorf("%s/%s: %w", m.Name, c, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d generated, %d skipped, %d failed -> %s\n",
						m.Name, c, stats.Generated, stats.Skipped, stats.Failed,
						benchmark.ResultPath(cfg.ResultDir, m.Name, c))
				}
			}
			return nil
		},
	}
	dirs.register(cmd, false)
	cmd.Flags().StringSliceVar(&models, "model", nil, "model names from the registry (repeatable)")
	cmd.Flags().StringVar(&categories, "test-category", "all", `comma separated test categories, or "all"`)
	cmd.Flags().IntVar(&threads, "num-threads", 1, "concurrent requests to the inference server")
	cmd.Flags().BoolVar(&overwrite, "allow-overwrite", false, "discard existing results instead of resuming")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "hide the progress bar")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
