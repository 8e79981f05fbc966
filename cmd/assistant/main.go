/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Command assistant answers a question with the tools of an MCP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chainguard.dev/agentbench/assistant"
	"chainguard.dev/agentbench/config"
	"chainguard.dev/agentbench/mcptools"
	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		clog.FatalContextf(ctx, "assistant: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	var (
		model    string
		maxTurns int
		server   string
	)
	cmd := &cobra.Command{
		Use:   "assistant [question]",
		Short: "Answer a question using the tools of an MCP server",
		Long: `assistant connects to the MCP server at NPS_MCP_URL (or --server), offers
its tools to the model and loops until the model gives a final answer.
Without a question it asks about parks in Rhode Island.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load[config.Assistant](ctx)
			if err != nil {
				return err
			}
			if server != "" {
				cfg.MCP.NPSURL = server
			}

			question := assistant.DefaultQuestion
			if len(args) > 0 {
				question = strings.Join(args, " ")
			}

			client := mcptools.NewClient([]mcptools.Server{mcptools.NPSServer(cfg.MCP)})
			defer func() {
				if err := client.Close(); err != nil {
					clog.WarnContext(ctx, "Closing MCP session", "error", err)
				}
			}()

			a, err := assistant.New(ctx, cfg.LLM, mcptools.Provider[string](client),
				assistant.WithModel(model),
				assistant.WithMaxTurns(maxTurns),
			)
			if err != nil {
				return err
			}
			answer, err := a.Ask(ctx, question)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "model to use instead of MODEL_NAME / OPENAI_MODEL")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 20, "maximum model turns before giving up")
	cmd.Flags().StringVar(&server, "server", "", "SSE URL of the MCP server (default: NPS_MCP_URL)")
	return cmd
}
