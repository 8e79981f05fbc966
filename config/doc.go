/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads the environment configuration of the agentbench
// commands with go-envconfig.
package config
