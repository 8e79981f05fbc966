/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation

import (
	"context"
	"fmt"

	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/agents/evals"
	"chainguard.dev/agentbench/agents/evals/report"
	"chainguard.dev/agentbench/agents/judge"
	"chainguard.dev/agentbench/logmonitor"
	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

// DiagnosisCriterion is what the judge grades diagnoses against.
const DiagnosisCriterion = `The diagnosis identifies what went wrong in the log message, ` +
	`names a plausible root cause and states the likely impact, in at most two sentences. ` +
	`It must not invent components that the log message does not mention.`

// Processor runs a log message through the monitor.
type Processor interface {
	Process(ctx context.Context, logMessage string) (logmonitor.State, error)
}

// Option configures Run.
type Option func(*options)

type options struct {
	judge       judge.Interface
	parallelism int
	label       string
}

// WithJudge adds the diagnosis quality eval, graded by j, to every case
// that is expected to be diagnosed.
func WithJudge(j judge.Interface) Option {
	return func(o *options) { o.judge = j }
}

// WithParallelism bounds the number of cases processed at once.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

// WithLabel names the top level of the observer tree, usually the model
// under evaluation.
func WithLabel(label string) Option {
	return func(o *options) { o.label = label }
}

// Evals returns the evaluations run against the trace of one case.
func Evals(c Case, j judge.Interface) map[string]evals.ObservableTraceCallback[logmonitor.State] {
	m := map[string]evals.ObservableTraceCallback[logmonitor.State]{
		"no-errors": evals.NoErrors[logmonitor.State](),
		"classification": evals.ResultValidator(func(s logmonitor.State) error {
			if s.Classification != c.Classification {
				return fmt.Errorf("classification: got = %s, wanted = %s", s.Classification, c.Classification)
			}
			return nil
		}),
		"action": evals.ResultValidator(func(s logmonitor.State) error {
			if s.ActionTaken != c.Action {
				return fmt.Errorf("action: got = %s, wanted = %s", s.ActionTaken, c.Action)
			}
			return nil
		}),
	}
	if c.Severity != "" {
		m["severity"] = evals.ResultValidator(func(s logmonitor.State) error {
			if s.Severity != c.Severity {
				return fmt.Errorf("severity: got = %s, wanted = %s", s.Severity, c.Severity)
			}
			return nil
		})
	}
	if j != nil && c.Classification != logmonitor.ClassificationNormal {
		m["diagnosis-quality"] = judge.NewStandaloneEval[logmonitor.State](j, DiagnosisCriterion)
	}
	return m
}

// Run processes every case of ds and records the evaluations under
// obs/<label>/<case>/<eval>. Processing errors are recorded as eval
// failures rather than returned; only context cancellation stops the run.
func Run(ctx context.Context, p Processor, ds Dataset, obs *evals.NamespacedObserver[*evals.ResultCollector], opts ...Option) error {
	o := options{parallelism: 4, label: "default"}
	for _, opt := range opts {
		opt(&o)
	}

	root := obs.Child(o.label)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, o.parallelism))
	for _, c := range ds.Cases {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tracer := evals.BuildTracer(root.Child(c.Name), Evals(c, o.judge))
			tr := agenttrace.StartTrace[logmonitor.State](agenttrace.WithTracer(ctx, tracer), c.LogMessage)
			state, err := p.Process(tr.Context(), c.LogMessage)
			if err != nil {
				clog.WarnContext(ctx, "Case failed", "case", c.Name, "error", err)
			}
			tr.Complete(state, err)
			return nil
		})
	}
	return g.Wait()
}

// Format selects how Report lays out the results.
type Format string

const (
	// ByEval groups results by eval name across cases.
	ByEval Format = "byeval"
	// Simple prints the observer tree as-is.
	Simple Format = "simple"
)

// Report renders the results and reports whether any eval fell below
// threshold.
func Report(obs *evals.NamespacedObserver[*evals.ResultCollector], threshold float64, format Format) (string, bool, error) {
	switch format {
	case ByEval, "":
		out, failed := report.ByEval(obs, threshold)
		return out, failed, nil
	case Simple:
		out, failed := report.Simple(obs, threshold)
		return out, failed, nil
	default:
		return "", false, fmt.Errorf("unknown report format %q (want %s or %s)", format, ByEval, Simple)
	}
}

// NewObserver returns an observer tree that collects results, logs each
// eval event through clog and exports evaluation metrics per namespace.
func NewObserver(ctx context.Context) *evals.NamespacedObserver[*evals.ResultCollector] {
	return evals.NewNamespacedObserver(func(name string) *evals.ResultCollector {
		return evals.NewResultCollector(
			evals.NewLogObserver(ctx, name),
			evals.NewMetricsObserver[logmonitor.State](name),
		)
	})
}
