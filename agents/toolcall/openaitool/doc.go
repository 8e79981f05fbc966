/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package openaitool adapts toolcall definitions and calls to OpenAI-compatible
// chat completions (OpenAI, Llama Stack, vLLM).
package openaitool
