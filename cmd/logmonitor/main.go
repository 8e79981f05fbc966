/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Command logmonitor classifies, diagnoses and acts on server log messages.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chainguard.dev/agentbench/actions"
	"chainguard.dev/agentbench/config"
	"chainguard.dev/agentbench/logmonitor"
	"chainguard.dev/agentbench/mcptools"
	"chainguard.dev/agentbench/telemetry"
	"chainguard.dev/agentbench/tracestore"
	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		clog.FatalContextf(ctx, "logmonitor: %v", err)
	}
}

type agentFlags struct {
	model       string
	noResearch  bool
	structured  bool
	disableSink bool
}

func (f *agentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.model, "model", "", "model to use instead of MODEL_NAME / OPENAI_MODEL")
	cmd.Flags().BoolVar(&f.noResearch, "no-research", false, "diagnose without the MCP research tools")
	cmd.Flags().BoolVar(&f.structured, "structured-output", false, "constrain classification and severity to their JSON schemas")
	cmd.Flags().BoolVar(&f.disableSink, "dry-run", false, "log alerts and tickets instead of sending them")
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "logmonitor",
		Short: "Log monitor agent",
		Long: `logmonitor runs server log messages through an LLM workflow:
classify, diagnose, assess severity, then alert the SRE team or manage a
GitHub ticket. Spans are recorded in TRACE_DB and optionally exported
over OTLP/HTTP.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newProcessCmd(),
		newServeCmd(),
		newEvalCmd(),
		newJudgeCmd(),
		newTracesCmd(),
		newGraphCmd(),
	)
	return root
}

// runtime holds what every agent subcommand sets up: configuration, the
// trace store and the telemetry providers.
type runtime struct {
	cfg   *config.LogMonitor
	store *tracestore.Store
	tel   *telemetry.Telemetry
}

func setup(ctx context.Context, syncExport bool) (*runtime, error) {
	cfg, err := config.Load[config.LogMonitor](ctx)
	if err != nil {
		return nil, err
	}
	store, err := tracestore.Open(ctx, cfg.Tracing.TraceDB)
	if err != nil {
		return nil, err
	}
	opts := []telemetry.Option{telemetry.WithStore(store)}
	if syncExport {
		opts = append(opts, telemetry.WithSyncExport())
	}
	tel, err := telemetry.Setup(ctx, cfg.Tracing, opts...)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}
	return &runtime{cfg: cfg, store: store, tel: tel}, nil
}

// Close flushes spans before closing the store they are written to.
func (r *runtime) Close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := r.tel.Shutdown(ctx); err != nil {
		clog.WarnContext(ctx, "Shutting down telemetry", "error", err)
	}
	if err := r.store.Close(); err != nil {
		clog.WarnContext(ctx, "Closing trace store", "error", err)
	}
}

// newAgent wires the configured sinks and research servers into an agent.
// The returned close function releases the MCP sessions.
func (r *runtime) newAgent(ctx context.Context, f agentFlags) (*logmonitor.Agent, func() error, error) {
	opts := []logmonitor.Option{
		logmonitor.WithModel(f.model),
		logmonitor.WithExperiment(r.cfg.Tracing.ExperimentName),
	}
	if f.structured {
		opts = append(opts, logmonitor.WithStructuredOutput())
	}
	if !f.disableSink {
		alerter, ticketer, err := actions.FromConfig(ctx, r.cfg.Actions)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, logmonitor.WithAlerter(alerter), logmonitor.WithTicketer(ticketer))
	}

	closeFn := func() error { return nil }
	if !f.noResearch {
		client := mcptools.NewClient(mcptools.ResearchServers(r.cfg.MCP))
		opts = append(opts, logmonitor.WithResearchTools(mcptools.Provider[string](client)))
		closeFn = client.Close
	}

	agent, err := logmonitor.New(ctx, r.cfg.LLM, opts...)
	if err != nil {
		return nil, nil, errors.Join(err, closeFn())
	}
	return agent, closeFn, nil
}
