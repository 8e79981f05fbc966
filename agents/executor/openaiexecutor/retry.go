/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaiexecutor

import (
	"errors"

	"chainguard.dev/agentbench/agents/executor/retry"
	"github.com/openai/openai-go"
)

func statusOf(err error) (int, bool) {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}

// isRetryableOpenAIError reports rate limit and transient server errors.
var isRetryableOpenAIError = retry.OnStatus(statusOf, 429, 500, 502, 503, 504)

// IsRetryable reports whether err from the OpenAI client is a rate limit
// or transient server error.
func IsRetryable(err error) bool {
	return isRetryableOpenAIError(err)
}
