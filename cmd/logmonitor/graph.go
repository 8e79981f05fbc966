/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"chainguard.dev/agentbench/config"
	"chainguard.dev/agentbench/logmonitor"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the workflow as a Mermaid flowchart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			llm, err := config.Load[config.LLM](ctx)
			if err != nil {
				return err
			}
			agent, err := logmonitor.New(ctx, *llm)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), agent.Graph().Mermaid())
			return nil
		},
	}
}
