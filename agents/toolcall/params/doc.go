/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package params extracts typed tool arguments from decoded JSON and formats
// tool error responses. It is shared by the OpenAI and Claude tool adapters.
package params
