/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package logmonitor

import (
	"chainguard.dev/agentbench/agents/promptbuilder"
	"chainguard.dev/agentbench/mcptools"
)

var classifyPrompt = promptbuilder.MustNewPrompt(`Analyze this server log message and classify it.

Log message:
{{log_message}}

Determine if this is an error, warning, or normal informational message.
Look for indicators like:
- ERROR, FAIL, Exception, stack traces → error
- WARNING, WARN, threshold, approaching limit → warning
- INFO, DEBUG, success, started, completed → normal

Provide your classification with confidence score and the indicators you found.
Respond with a JSON object with the fields "classification" (error, warning or
normal), "confidence" (0.0 to 1.0) and "indicators" (list of strings).`)

// diagnosePrompt is used when the research tools are unavailable.
var diagnosePrompt = promptbuilder.MustNewPrompt(`Analyze this {{classification}} log message and diagnose the root cause.

Log message:
{{log_message}}

Provide a brief diagnosis explaining:
1. What went wrong
2. Likely root cause
3. Potential impact

Keep the diagnosis concise (1-2 sentences).`)

var diagnoseWithToolsPrompt = promptbuilder.MustNewPrompt(`Analyze this {{classification}} log message and diagnose the root cause.

Log message:
{{log_message}}
{{guidance}}
Provide a brief diagnosis explaining:
1. What went wrong
2. Likely root cause
3. Potential impact

Keep the diagnosis concise (1-2 sentences).`).MustBindStringLiteral("guidance", mcptools.ResearchGuidance)

var severityPrompt = promptbuilder.MustNewPrompt(`Assess the severity of this problem.

Log message:
{{log_message}}

Diagnosis: {{diagnosis}}

Determine if this is HIGH or LOW severity:
- HIGH: Immediate user impact, service degradation, data loss risk, security issue
- LOW: Can wait for normal business hours, minor inconvenience, cosmetic issue

If uncertain, default to LOW severity.
Respond with a JSON object with the fields "severity" (high or low),
"reasoning" and "confidence" (0.0 to 1.0).`)

type classifyRequest struct {
	LogMessage string
}

func (r *classifyRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	return p.BindCodeBlock("log_message", "", r.LogMessage)
}

type diagnoseRequest struct {
	LogMessage     string
	Classification Classification
}

func (r *diagnoseRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	p, err := p.BindCodeBlock("log_message", "", r.LogMessage)
	if err != nil {
		return nil, err
	}
	// The classification was validated against a fixed set, so it is safe
	// to inline.
	switch r.Classification {
	case ClassificationError:
		return p.BindStringLiteral("classification", "error")
	case ClassificationWarning:
		return p.BindStringLiteral("classification", "warning")
	default:
		return p.BindStringLiteral("classification", "normal")
	}
}

type severityRequest struct {
	LogMessage string
	Diagnosis  string
}

func (r *severityRequest) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	p, err := p.BindCodeBlock("log_message", "", r.LogMessage)
	if err != nil {
		return nil, err
	}
	return p.BindJSON("diagnosis", r.Diagnosis)
}
