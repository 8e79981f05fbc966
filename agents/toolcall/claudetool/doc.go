/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package claudetool adapts toolcall definitions and calls to the Anthropic
// Messages API.
//
//	params.Tools = claudetool.ToolParams(tools)
//	...
//	call, err := claudetool.Call(block.AsToolUse())
//	resp := tools[call.Name].Handler(ctx, call, trace, &result)
//	blk, err := claudetool.ResultBlock(call.ID, resp)
package claudetool
