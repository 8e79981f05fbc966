/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Mermaid renders the graph as a Mermaid flowchart. Conditional edges are
// dashed and labelled with their route key.
func (c *Compiled[S]) Mermaid() string {
	id := func(name string) string {
		if name == END {
			return "__end__([END])"
		}
		return name
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "  __start__([START]) --> %s\n", c.entry)
	for _, from := range c.order {
		if to, ok := c.edges[from]; ok {
			fmt.Fprintf(&sb, "  %s --> %s\n", from, id(to))
			continue
		}
		routes := c.conditional[from].routes
		for _, key := range slices.Sorted(maps.Keys(routes)) {
			fmt.Fprintf(&sb, "  %s -. %s .-> %s\n", from, key, id(routes[key]))
		}
	}
	return sb.String()
}
