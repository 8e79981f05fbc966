/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"fmt"

	"chainguard.dev/agentbench/agents/judge"
	"chainguard.dev/agentbench/agents/metrics"
	"chainguard.dev/agentbench/logmonitor/evaluation"
	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	var (
		f           agentFlags
		dataset     string
		judgeModel  string
		noJudge     bool
		threshold   float64
		parallelism int
		format      string
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run the evaluation dataset and report per-eval pass rates",
		Long: `eval processes every case of the dataset (the built-in cases unless
--dataset is given), checks classification, severity and action, and asks
a judge to grade the diagnoses. Alerts and tickets always go to the
logging stubs. The command fails when any eval falls below --threshold.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			f.disableSink = true

			ds := evaluation.Default()
			if dataset != "" {
				var err error
				if ds, err = evaluation.Load(dataset); err != nil {
					return err
				}
			}

			rt, err := setup(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			agent, closeFn, err := rt.newAgent(ctx, f)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeFn(); err != nil {
					clog.WarnContext(ctx, "Closing MCP sessions", "error", err)
				}
			}()

			label := f.model
			if label == "" {
				label = rt.cfg.LLM.Model()
			}
			opts := []evaluation.Option{
				evaluation.WithLabel(label),
				evaluation.WithParallelism(parallelism),
			}
			if !noJudge {
				j, err := judge.New(ctx, rt.cfg.LLM, judgeModel, judge.WithAttributeEnricher(metrics.ExecutionContextEnricher))
				if err != nil {
					return fmt.Errorf("creating judge: %w", err)
				}
				opts = append(opts, evaluation.WithJudge(j))
			}

			obs := evaluation.NewObserver(ctx)
			if err := evaluation.Run(ctx, agent, ds, obs, opts...); err != nil {
				return err
			}

			out, failed, err := evaluation.Report(obs, threshold, evaluation.Format(format))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			if failed {
				return errors.New("one or more evals fell below the threshold")
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&dataset, "dataset", "", "YAML dataset of cases (default: built-in cases)")
	cmd.Flags().StringVar(&judgeModel, "judge-model", "", "model grading diagnoses (default: the agent's default model)")
	cmd.Flags().BoolVar(&noJudge, "no-judge", false, "skip the diagnosis quality eval")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.8, "minimum pass rate per eval")
	cmd.Flags().IntVar(&parallelism, "parallelism", 4, "cases processed at once")
	cmd.Flags().StringVar(&format, "report", string(evaluation.ByEval), "report layout: byeval or simple")
	return cmd
}
