/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package report renders evaluation results collected in a
NamespacedObserver[*evals.ResultCollector] tree.

  - Simple: one node per namespace, mirroring the observer tree
  - ByEval: a markdown summary table plus a tree grouped by evaluation,
    model and test case; expects /{model}/{test case}/{eval} paths
  - Rows: flat per-namespace summaries for JSON output

Both generators return the rendered text and whether any evaluation fell
below the threshold. An evaluation is below threshold when its pass rate
is, or when it records grades and their average is.
*/
package report
