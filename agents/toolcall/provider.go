/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// ToolProvider supplies the tools an agent may call. Providers backed by
// remote servers resolve their tools lazily, so Tools takes a context and
// may fail.
type ToolProvider[Resp any] interface {
	Tools(ctx context.Context) (map[string]Tool[Resp], error)
}

// ProviderFunc adapts a function to ToolProvider.
type ProviderFunc[Resp any] func(ctx context.Context) (map[string]Tool[Resp], error)

// Tools implements ToolProvider.
func (f ProviderFunc[Resp]) Tools(ctx context.Context) (map[string]Tool[Resp], error) {
	return f(ctx)
}

// Static returns a provider serving a fixed set of tools keyed by name.
func Static[Resp any](tools ...Tool[Resp]) ToolProvider[Resp] {
	m := make(map[string]Tool[Resp], len(tools))
	for _, t := range tools {
		m[t.Def.Name] = t
	}
	return ProviderFunc[Resp](func(context.Context) (map[string]Tool[Resp], error) {
		return maps.Clone(m), nil
	})
}

// Merge combines providers. Resolving fails if any provider fails or if two
// providers expose a tool with the same name.
func Merge[Resp any](providers ...ToolProvider[Resp]) ToolProvider[Resp] {
	return ProviderFunc[Resp](func(ctx context.Context) (map[string]Tool[Resp], error) {
		out := map[string]Tool[Resp]{}
		for _, p := range providers {
			tools, err := p.Tools(ctx)
			if err != nil {
				return nil, err
			}
			for _, name := range slices.Sorted(maps.Keys(tools)) {
				if _, dup := out[name]; dup {
					return nil, fmt.Errorf("duplicate tool %q", name)
				}
				out[name] = tools[name]
			}
		}
		return out, nil
	})
}
