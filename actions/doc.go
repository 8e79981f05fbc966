/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package actions provides the sinks the log monitor acts through: an
// Alerter that pages the on-call SRE and a Ticketer that files issues.
//
// Each concern has a stub that only logs, used when no credentials are
// configured, and a real implementation:
//
//	alerter := actions.NewSlackAlerter(webhookURL, http.DefaultClient)
//	ticketer := actions.NewGitHubTicketer(actions.NewGitHubClient(ctx, token), "org", "repo")
//
// Every call runs inside a TOOL span named after the action.
package actions
