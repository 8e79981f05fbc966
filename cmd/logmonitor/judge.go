/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"chainguard.dev/agentbench/agents/judge"
	"chainguard.dev/agentbench/agents/metrics"
	"github.com/spf13/cobra"
)

const traceCriterion = `The agent classified the log message correctly, diagnosed a plausible ` +
	`root cause, used research tools only when they could help, and took an action ` +
	`consistent with the severity it assessed.`

func newJudgeCmd() *cobra.Command {
	var (
		model     string
		criterion string
	)
	cmd := &cobra.Command{
		Use:   "judge [trace id]",
		Short: "Grade a recorded trace with an LLM judge",
		Long: `judge loads a trace from TRACE_DB, the most recent one of EXPERIMENT_NAME
when no id is given, and grades the whole run against --criterion.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rt, err := setup(ctx, true)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			var traceID string
			if len(args) == 1 {
				traceID = args[0]
			} else {
				infos, err := rt.store.ListTraces(ctx, rt.cfg.Tracing.ExperimentName, 1)
				if err != nil {
					return err
				}
				if len(infos) == 0 {
					return fmt.Errorf("no traces recorded for experiment %q", rt.cfg.Tracing.ExperimentName)
				}
				traceID = infos[0].TraceID
			}

			tr, err := rt.store.GetTrace(ctx, traceID)
			if err != nil {
				return err
			}
			b, err := json.Marshal(tr)
			if err != nil {
				return fmt.Errorf("encoding trace: %w", err)
			}

			j, err := judge.New(ctx, rt.cfg.LLM, model, judge.WithAttributeEnricher(metrics.ExecutionContextEnricher))
			if err != nil {
				return err
			}
			judgement, err := j.Judge(ctx, &judge.Request{
				Mode:         judge.TraceMode,
				ActualAnswer: string(b),
				Criterion:    criterion,
			})
			if err != nil {
				return fmt.Errorf("judging trace %s: %w", traceID, err)
			}
			if judgement == nil {
				return errors.New("judge returned no judgement")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Trace %s\n%s\n", traceID, judgement)
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "judge model (default: MODEL_NAME / OPENAI_MODEL)")
	cmd.Flags().StringVar(&criterion, "criterion", traceCriterion, "what the run is graded against")
	return cmd
}
