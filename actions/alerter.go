/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package actions

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"chainguard.dev/agentbench/agents/agenttrace"
	"github.com/chainguard-dev/clog"
	"github.com/slack-go/slack"
)

// Alert is a page sent to the on-call SRE.
type Alert struct {
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	Diagnosis string `json:"diagnosis"`
}

// Alerter delivers alerts.
type Alerter interface {
	Send(ctx context.Context, alert Alert) error
}

// LogAlerter logs alerts instead of delivering them.
type LogAlerter struct{}

var _ Alerter = LogAlerter{}

// Send implements Alerter.
func (LogAlerter) Send(ctx context.Context, alert Alert) error {
	ctx, span := agenttrace.StartSpan(ctx, "send_slack_alert", agenttrace.SpanKindTool)
	span.SetInputs(alert)
	clog.FromContext(ctx).With(
		"severity", alert.Severity,
		"diagnosis", alert.Diagnosis,
	).Infof("Stub alerter, not sending: %s", alert.Message)
	span.End(nil)
	return nil
}

// SlackAlerter posts alerts to a Slack incoming webhook.
type SlackAlerter struct {
	webhookURL string
	client     *http.Client
}

var _ Alerter = (*SlackAlerter)(nil)

// NewSlackAlerter returns an alerter posting to webhookURL. A nil client
// uses http.DefaultClient.
func NewSlackAlerter(webhookURL string, client *http.Client) *SlackAlerter {
	if client == nil {
		client = http.DefaultClient
	}
	return &SlackAlerter{webhookURL: webhookURL, client: client}
}

// slackText renders the alert as Slack mrkdwn.
func slackText(alert Alert) string {
	return fmt.Sprintf(":rotating_light: *%s Severity Alert*\n%s\n\nDiagnosis: %s",
		strings.ToUpper(alert.Severity), alert.Message, alert.Diagnosis)
}

// Send implements Alerter.
func (s *SlackAlerter) Send(ctx context.Context, alert Alert) (err error) {
	ctx, span := agenttrace.StartSpan(ctx, "send_slack_alert", agenttrace.SpanKindTool)
	span.SetInputs(alert)
	defer func() { span.End(err) }()

	msg := &slack.WebhookMessage{Text: slackText(alert)}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.client, msg); err != nil {
		return fmt.Errorf("posting slack alert: %w", err)
	}
	clog.InfoContext(ctx, "Sent slack alert", "severity", alert.Severity)
	return nil
}
