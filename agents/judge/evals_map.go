/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"chainguard.dev/agentbench/agents/evals"
)

// Evals returns the checks every judgment of mode should pass, keyed by name.
func Evals(mode JudgmentMode) map[string]evals.ObservableTraceCallback[*Judgement] {
	return map[string]evals.ObservableTraceCallback[*Judgement]{
		"no-errors":     evals.NoErrors[*Judgement](),
		"valid-score":   ValidScore(mode),
		"check-mode":    CheckMode(mode),
		"has-reasoning": HasReasoning(),
		"no-tool-calls": evals.NoToolCalls[*Judgement](),
	}
}
