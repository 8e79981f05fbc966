/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package logmonitor implements an agent that triages server log messages.
//
// Each message flows through a small workflow graph:
//
//	classify ──error/warning──▶ diagnose ──▶ assess_severity ──high──▶ alert_sre
//	    │                                          └──────────low──▶ manage_ticket
//	    └──normal──▶ set_no_action
//
// Diagnosis may consult documentation tools served over MCP. High severity
// problems are sent to an Alerter and everything else becomes a ticket,
// unless a matching ticket is already open.
//
//	agent, err := logmonitor.New(ctx, cfg.LLM,
//		logmonitor.WithResearchTools(mcptools.Provider[string](client)),
//		logmonitor.WithAlerter(alerter),
//		logmonitor.WithTicketer(ticketer))
//	state, err := agent.Process(ctx, "ERROR Connection refused to redis:6379")
package logmonitor
