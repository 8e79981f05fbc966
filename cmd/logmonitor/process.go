/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
)

func newProcessCmd() *cobra.Command {
	var f agentFlags
	cmd := &cobra.Command{
		Use:   "process [log message...]",
		Short: "Process log messages given as arguments, or one per line on stdin",
		Example: `  logmonitor process "ERROR: Connection refused to redis:6379"
  tail -n 20 server.log | logmonitor process`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			messages := args
			if len(messages) == 0 {
				var err error
				if messages, err = readMessages(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			rt, err := setup(ctx, true)
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

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, msg := range messages {
				state, err := agent.Process(ctx, msg)
				if err != nil {
					return err
				}
				if err := enc.Encode(state); err != nil {
					return err
				}
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// readMessages returns the non-blank lines of r.
func readMessages(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading log messages: %w", err)
	}
	return out, nil
}
