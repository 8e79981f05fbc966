/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package logmonitor

import (
	"context"
	"fmt"
	"unicode/utf8"

	"chainguard.dev/agentbench/actions"
	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/agents/metaagent"
	"chainguard.dev/agentbench/agents/schema"
	"chainguard.dev/agentbench/agents/toolcall"
	"chainguard.dev/agentbench/config"
	"chainguard.dev/agentbench/workflow"
	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
)

// WorkflowName labels the spans and metrics of every run.
const WorkflowName = "log-monitor"

// Option configures an Agent.
type Option func(*options)

type options struct {
	model      string
	experiment string
	research   toolcall.ToolProvider[string]
	alerter    actions.Alerter
	ticketer   actions.Ticketer
	structured bool
}

// WithModel overrides the model of the LLM configuration.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithExperiment records runs under the named experiment.
func WithExperiment(name string) Option {
	return func(o *options) { o.experiment = name }
}

// WithResearchTools offers research tools to the diagnosis step. When the
// provider fails, diagnosis proceeds without tools.
func WithResearchTools(provider toolcall.ToolProvider[string]) Option {
	return func(o *options) { o.research = provider }
}

// WithAlerter sets the sink for high severity problems.
func WithAlerter(a actions.Alerter) Option {
	return func(o *options) { o.alerter = a }
}

// WithTicketer sets the sink for low severity problems.
func WithTicketer(t actions.Ticketer) Option {
	return func(o *options) { o.ticketer = t }
}

// WithStructuredOutput constrains classification and severity responses
// with JSON schemas on OpenAI-compatible endpoints.
func WithStructuredOutput() Option {
	return func(o *options) { o.structured = true }
}

// Agent classifies server log messages, diagnoses problems and routes them
// to an alert or a ticket. It is safe for concurrent use.
type Agent struct {
	classifier     metaagent.Agent[*classifyRequest, *ClassificationResult]
	diagnoser      metaagent.Agent[*diagnoseRequest, string]
	plainDiagnoser metaagent.Agent[*diagnoseRequest, string]
	assessor       metaagent.Agent[*severityRequest, *SeverityAssessment]
	research       toolcall.ToolProvider[string]
	alerter        actions.Alerter
	ticketer       actions.Ticketer
	experiment     string
	graph          *workflow.Compiled[State]
}

// New builds the agent. Alerts and tickets go to logging stubs unless
// sinks are provided.
func New(ctx context.Context, llm config.LLM, opts ...Option) (*Agent, error) {
	o := options{alerter: actions.LogAlerter{}, ticketer: actions.LogTicketer{}}
	for _, opt := range opts {
		opt(&o)
	}

	temperature := 0.0
	classifyCfg := metaagent.Config[*ClassificationResult]{
		UserPrompt:  classifyPrompt,
		Temperature: &temperature,
		MaxTurns:    1,
	}
	severityCfg := metaagent.Config[*SeverityAssessment]{
		UserPrompt:  severityPrompt,
		Temperature: &temperature,
		MaxTurns:    1,
	}
	if o.structured {
		s, err := schema.StrictMapFor[ClassificationResult]()
		if err != nil {
			return nil, fmt.Errorf("classification schema: %w", err)
		}
		classifyCfg.ResponseSchemaName, classifyCfg.ResponseSchema = "log_classification", s
		if s, err = schema.StrictMapFor[SeverityAssessment](); err != nil {
			return nil, fmt.Errorf("severity schema: %w", err)
		}
		severityCfg.ResponseSchemaName, severityCfg.ResponseSchema = "severity_assessment", s
	}

	a := &Agent{
		research:   o.research,
		alerter:    o.alerter,
		ticketer:   o.ticketer,
		experiment: o.experiment,
	}
	var err error
	if a.classifier, err = metaagent.New[*classifyRequest](ctx, llm, o.model, classifyCfg); err != nil {
		return nil, fmt.Errorf("creating classifier: %w", err)
	}
	if a.plainDiagnoser, err = metaagent.New[*diagnoseRequest](ctx, llm, o.model, metaagent.Config[string]{
		UserPrompt:  diagnosePrompt,
		Temperature: &temperature,
		MaxTurns:    1,
	}); err != nil {
		return nil, fmt.Errorf("creating diagnoser: %w", err)
	}
	if o.research != nil {
		if a.diagnoser, err = metaagent.New[*diagnoseRequest](ctx, llm, o.model, metaagent.Config[string]{
			UserPrompt:    diagnoseWithToolsPrompt,
			Tools:         o.research,
			ToolsOptional: true,
			Temperature:   &temperature,
			MaxTurns:      10,
		}); err != nil {
			return nil, fmt.Errorf("creating research diagnoser: %w", err)
		}
	}
	if a.assessor, err = metaagent.New[*severityRequest](ctx, llm, o.model, severityCfg); err != nil {
		return nil, fmt.Errorf("creating severity assessor: %w", err)
	}

	if a.graph, err = a.buildGraph(); err != nil {
		return nil, err
	}
	return a, nil
}

// Graph returns the compiled workflow.
func (a *Agent) Graph() *workflow.Compiled[State] {
	return a.graph
}

// Process runs a log message through the workflow and returns the final
// state. Each run gets its own run id on the execution context.
func (a *Agent) Process(ctx context.Context, logMessage string) (final State, err error) {
	execCtx := agenttrace.GetExecutionContext(ctx)
	if execCtx.Experiment == "" {
		execCtx.Experiment = a.experiment
	}
	execCtx.Workflow = WorkflowName
	execCtx.RunID = uuid.NewString()
	ctx = agenttrace.WithExecutionContext(ctx, execCtx)
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("run_id", execCtx.RunID))

	ctx, span := agenttrace.StartSpan(ctx, "process_log_message", agenttrace.SpanKindAgent)
	span.SetInputs(map[string]string{"log_message": logMessage})
	defer func() {
		if err == nil {
			span.SetOutputs(final)
		}
		span.End(err)
	}()

	_, initSpan := agenttrace.StartSpan(ctx, "initialize_state", agenttrace.SpanKindTool)
	initSpan.SetInputs(map[string]string{"log_message": prefix(logMessage, 200)})
	state := State{LogMessage: logMessage}
	initSpan.SetOutputs(map[string]any{"state_keys": stateKeys})
	initSpan.End(nil)

	wctx, runSpan := agenttrace.StartSpan(ctx, "workflow_execution", agenttrace.SpanKindChain)
	runSpan.SetInputs(map[string]string{"log_message_preview": prefix(logMessage, 100)})
	final, err = a.graph.Invoke(wctx, state)
	if err == nil {
		runSpan.SetOutputs(map[string]any{
			"classification": final.Classification,
			"severity":       final.Severity,
			"action_taken":   final.ActionTaken,
		})
	}
	runSpan.End(err)
	if err != nil {
		return final, fmt.Errorf("processing log message: %w", err)
	}

	clog.InfoContext(ctx, "Processed log message", "action", final.ActionTaken)
	return final, nil
}

// prefix returns at most n bytes of s without splitting a rune.
// prefix returns the first n characters of s.
func prefix(s string, n int) string {
	i := 0
	for range n {
		if i >= len(s) {
			return s
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}
