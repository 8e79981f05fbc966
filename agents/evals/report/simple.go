/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"fmt"

	"chainguard.dev/agentbench/agents/evals"
	"chainguard.dev/sdk/pathtree"
)

// Simple renders the observer tree as-is, one node per namespace that
// observed traces, with failures and below-threshold grades beneath it.
func Simple(obs *evals.NamespacedObserver[*evals.ResultCollector], threshold float64) (string, bool) {
	tree := pathtree.New()
	tree.PrintOption = pathtree.KeyValueLabel
	hasFailure := false

	obs.Walk(func(name string, collector *evals.ResultCollector) {
		var s stats
		s.add(collector)
		if s.iterations == 0 {
			return
		}
		if s.below(threshold) {
			hasFailure = true
		}

		value, label := s.format(threshold)
		if err := tree.Add(name, value, label); err != nil {
			_ = tree.Update(name, value, label)
		}
		for i, d := range s.details(threshold) {
			_ = tree.Add(fmt.Sprintf("%s/%d", name, i+1), d[0], d[1])
		}
	})

	return tree.String(), hasFailure
}
