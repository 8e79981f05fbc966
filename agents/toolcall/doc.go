/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package toolcall defines provider-independent tools for AI agents.
//
// A Tool pairs a Definition (name, description, parameters or a raw JSON
// schema) with a Handler that executes calls and records them on the agent
// trace. Executors convert definitions into SDK-specific parameters through
// the openaitool and claudetool subpackages.
//
// # Providers
//
// Tools reach an agent through a ToolProvider:
//
//	tools := toolcall.Merge(
//		toolcall.Static(weatherTool),
//		mcpProvider, // resolved lazily from remote servers
//	)
//
// Empty provides no tools and is the base for agents that only reason over
// their prompt.
package toolcall
