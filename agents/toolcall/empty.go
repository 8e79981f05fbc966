/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import "context"

type emptyToolsProvider[Resp any] struct{}

var _ ToolProvider[any] = emptyToolsProvider[any]{}

// Empty returns a ToolProvider that provides no tools.
func Empty[Resp any]() ToolProvider[Resp] {
	return emptyToolsProvider[Resp]{}
}

func (emptyToolsProvider[Resp]) Tools(context.Context) (map[string]Tool[Resp], error) {
	return map[string]Tool[Resp]{}, nil
}
