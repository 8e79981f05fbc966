/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package logmonitor

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/agentbench/actions"
	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/workflow"
	"github.com/chainguard-dev/clog"
)

// Node names of the workflow graph.
const (
	NodeClassify       = "classify"
	NodeDiagnose       = "diagnose"
	NodeAssessSeverity = "assess_severity"
	NodeAlertSRE       = "alert_sre"
	NodeManageTicket   = "manage_ticket"
	NodeSetNoAction    = "set_no_action"
)

func (a *Agent) buildGraph() (*workflow.Compiled[State], error) {
	return workflow.New[State](WorkflowName).
		AddNode(NodeClassify, a.classify,
			workflow.WithSpanName("classify_log"), workflow.WithSpanKind(agenttrace.SpanKindLLM)).
		AddNode(NodeSetNoAction, setNoAction,
			workflow.WithSpanKind(agenttrace.SpanKindTool)).
		AddNode(NodeDiagnose, a.diagnose,
			workflow.WithSpanName("diagnose_problem"), workflow.WithSpanKind(agenttrace.SpanKindLLM)).
		AddNode(NodeAssessSeverity, a.assessSeverity,
			workflow.WithSpanKind(agenttrace.SpanKindLLM)).
		AddNode(NodeAlertSRE, a.alertSRE,
			workflow.WithSpanKind(agenttrace.SpanKindTool)).
		AddNode(NodeManageTicket, a.manageTicket,
			workflow.WithSpanName("manage_github_ticket"), workflow.WithSpanKind(agenttrace.SpanKindTool)).
		SetEntryPoint(NodeClassify).
		AddConditionalEdges(NodeClassify, routeAfterClassify, map[string]string{
			"diagnose": NodeDiagnose,
			"end":      NodeSetNoAction,
		}).
		AddEdge(NodeDiagnose, NodeAssessSeverity).
		AddConditionalEdges(NodeAssessSeverity, routeBySeverity, map[string]string{
			NodeAlertSRE:     NodeAlertSRE,
			NodeManageTicket: NodeManageTicket,
		}).
		AddEdge(NodeSetNoAction, workflow.END).
		AddEdge(NodeAlertSRE, workflow.END).
		AddEdge(NodeManageTicket, workflow.END).
		Compile()
}

func (a *Agent) classify(ctx context.Context, s State) (State, error) {
	log := clog.FromContext(ctx)
	if strings.TrimSpace(s.LogMessage) == "" {
		log.Info("Empty log message, treating as normal")
		s.Classification = ClassificationNormal
		return s, nil
	}

	res, err := a.classifier.Execute(ctx, &classifyRequest{LogMessage: s.LogMessage})
	if err != nil {
		return s, fmt.Errorf("classifying log message: %w", err)
	}
	if res == nil {
		return s, fmt.Errorf("classifying log message: empty result")
	}
	if err := res.Validate(); err != nil {
		return s, fmt.Errorf("classifying log message: %w", err)
	}
	log.With("classification", res.Classification).
		With("confidence", res.Confidence).
		With("indicators", res.Indicators).
		Info("Classified log message")
	s.Classification = res.Classification
	return s, nil
}

func routeAfterClassify(s State) string {
	switch s.Classification {
	case ClassificationError, ClassificationWarning:
		return "diagnose"
	default:
		return "end"
	}
}

func (a *Agent) diagnose(ctx context.Context, s State) (State, error) {
	log := clog.FromContext(ctx)
	diagnoser := a.plainDiagnoser
	if a.research != nil {
		// Resolve the tools up front so an unreachable server also drops
		// the tool guidance from the prompt.
		if _, err := a.research.Tools(ctx); err != nil {
			log.With("error", err).Warn("Research tools unavailable, proceeding without them")
		} else {
			diagnoser = a.diagnoser
		}
	}

	diagnosis, err := diagnoser.Execute(ctx, &diagnoseRequest{
		LogMessage:     s.LogMessage,
		Classification: s.Classification,
	})
	if err != nil {
		return s, fmt.Errorf("diagnosing log message: %w", err)
	}
	s.Diagnosis = strings.TrimSpace(diagnosis)
	log.With("diagnosis", s.Diagnosis).Info("Diagnosed problem")
	return s, nil
}

func (a *Agent) assessSeverity(ctx context.Context, s State) (State, error) {
	log := clog.FromContext(ctx)
	res, err := a.assessor.Execute(ctx, &severityRequest{LogMessage: s.LogMessage, Diagnosis: s.Diagnosis})
	if err == nil && res == nil {
		err = fmt.Errorf("empty result")
	}
	if err == nil {
		err = res.Validate()
	}
	if err != nil {
		log.With("error", err).Warn("Unable to determine severity, defaulting to low")
		s.Severity = SeverityLow
		return s, nil
	}
	log.With("severity", res.Severity).
		With("confidence", res.Confidence).
		With("reasoning", res.Reasoning).
		Info("Assessed severity")
	s.Severity = res.Severity
	return s, nil
}

func routeBySeverity(s State) string {
	if s.Severity == SeverityHigh {
		return NodeAlertSRE
	}
	return NodeManageTicket
}

func (a *Agent) alertSRE(ctx context.Context, s State) (State, error) {
	if err := a.alerter.Send(ctx, actions.Alert{
		Message:   "High severity issue detected - " + s.Diagnosis,
		Severity:  string(s.Severity),
		Diagnosis: s.Diagnosis,
	}); err != nil {
		return s, fmt.Errorf("alerting SRE: %w", err)
	}
	s.ActionTaken = ActionSlackAlert
	return s, nil
}

// TicketTitle is the title of the issue filed for a log message.
func TicketTitle(logMessage string) string {
	return "[Auto] " + prefix(logMessage, 50) + "..."
}

// TicketBody is the body of the issue filed for a log message.
func TicketBody(logMessage, diagnosis string) string {
	return fmt.Sprintf("## Log Message\n%s\n\n## Diagnosis\n%s", logMessage, diagnosis)
}

func (a *Agent) manageTicket(ctx context.Context, s State) (State, error) {
	exists, err := a.ticketer.Exists(ctx, s.Diagnosis)
	if err != nil {
		return s, fmt.Errorf("checking for an existing issue: %w", err)
	}
	if exists {
		clog.InfoContext(ctx, "Issue already tracked, not filing another")
	} else if err := a.ticketer.Create(ctx, actions.Ticket{
		Title: TicketTitle(s.LogMessage),
		Body:  TicketBody(s.LogMessage, s.Diagnosis),
	}); err != nil {
		return s, fmt.Errorf("creating issue: %w", err)
	}
	s.ActionTaken = ActionGitHubTicket
	return s, nil
}

func setNoAction(ctx context.Context, s State) (State, error) {
	clog.InfoContext(ctx, "No further action needed for normal log message")
	s.ActionTaken = ActionNone
	return s, nil
}
