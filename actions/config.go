/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package actions

import (
	"context"
	"net/http"

	"chainguard.dev/agentbench/config"
	"github.com/chainguard-dev/clog"
)

// FromConfig returns the Slack alerter when a webhook is configured and
// the GitHub ticketer when a token is configured, stubs otherwise.
func FromConfig(ctx context.Context, cfg config.Actions) (Alerter, Ticketer, error) {
	log := clog.FromContext(ctx)

	var alerter Alerter = LogAlerter{}
	if cfg.SlackWebhookURL != "" {
		alerter = NewSlackAlerter(cfg.SlackWebhookURL, http.DefaultClient)
	} else {
		log.Info("SLACK_WEBHOOK_URL not set, using stub alerter")
	}

	var ticketer Ticketer = LogTicketer{}
	if cfg.GitHubToken != "" {
		owner, repo, err := cfg.Repository()
		if err != nil {
			return nil, nil, err
		}
		ticketer = NewGitHubTicketer(NewGitHubClient(ctx, cfg.GitHubToken), owner, repo)
	} else {
		log.Info("GITHUB_TOKEN not set, using stub ticketer")
	}
	return alerter, ticketer, nil
}
