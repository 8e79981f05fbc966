/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

import (
	"errors"

	"chainguard.dev/agentbench/agents/executor/retry"
	"github.com/anthropics/anthropic-sdk-go"
)

func statusOf(err error) (int, bool) {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}

// isRetryableClaudeError reports rate limit, overloaded and transient
// gateway errors.
var isRetryableClaudeError = retry.OnStatus(statusOf, 429, 503, 504, 529)
