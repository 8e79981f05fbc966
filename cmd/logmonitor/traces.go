/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"chainguard.dev/agentbench/agents/evals/report"
	"chainguard.dev/agentbench/config"
	"chainguard.dev/agentbench/tracestore"
	"github.com/spf13/cobra"
)

func newTracesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traces",
		Short: "Inspect the traces recorded in TRACE_DB",
	}
	cmd.AddCommand(newTracesListCmd(), newTracesGetCmd(), newTracesExperimentsCmd())
	return cmd
}

func openStore(ctx context.Context) (*tracestore.Store, *config.Tracing, error) {
	cfg, err := config.Load[config.Tracing](ctx)
	if err != nil {
		return nil, nil, err
	}
	store, err := tracestore.Open(ctx, cfg.TraceDB)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func newTracesListCmd() *cobra.Command {
	var (
		experiment string
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent traces of an experiment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, cfg, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if experiment == "" {
				experiment = cfg.ExperimentName
			}
			infos, err := store.ListTraces(ctx, experiment, limit)
			if err != nil {
				return err
			}
			return writeTraceList(cmd.OutOrStdout(), infos)
		},
	}
	cmd.Flags().StringVar(&experiment, "experiment", "", "experiment name (default: EXPERIMENT_NAME)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of traces; 0 lists all")
	return cmd
}

func writeTraceList(w io.Writer, infos []tracestore.TraceInfo) error {
	table := report.NewMarkdownTable([]string{"Trace ID", "Name", "Status", "Started", "Duration", "Spans"}, w)
	for _, info := range infos {
		if err := table.Append([]string{
			info.TraceID,
			info.Name,
			info.Status,
			info.StartTime.Format(time.RFC3339),
			info.Duration.Round(time.Millisecond).String(),
			strconv.Itoa(info.SpanCount),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func newTracesGetCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <trace id>",
		Short: "Show the spans of a trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			tr, err := store.GetTrace(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tr)
			}
			return writeSpanTree(cmd.OutOrStdout(), tr)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the trace as JSON")
	return cmd
}

// writeSpanTree renders the spans indented under their parents.
func writeSpanTree(w io.Writer, tr *tracestore.Trace) error {
	fmt.Fprintf(w, "Trace %s (%s, %s)\n\n", tr.TraceID, tr.Status, tr.Duration.Round(time.Millisecond))

	depth := make(map[string]int, len(tr.Spans))
	table := report.NewMarkdownTable([]string{"Span", "Kind", "Status", "Duration", "Outputs"}, w)
	for _, s := range tr.Spans {
		d := 0
		if parent, ok := depth[s.ParentSpanID]; ok {
			d = parent + 1
		}
		depth[s.SpanID] = d

		status := s.StatusCode
		if s.StatusMessage != "" {
			status += ": " + s.StatusMessage
		}
		if err := table.Append([]string{
			strings.Repeat("  ", d) + s.Name,
			s.Kind,
			status,
			s.EndTime.Sub(s.StartTime).Round(time.Millisecond).String(),
			truncate(s.Outputs(), 60),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func newTracesExperimentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "experiments",
		Short: "List the experiments in TRACE_DB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			names, err := store.Experiments(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
