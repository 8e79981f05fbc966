/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package benchmark runs function-calling test categories against an
// OpenAI-compatible inference endpoint and scores the results.
//
// A run has two phases. Generate sends every entry of a category to the
// model's handler and appends one JSON line per entry to
// <result>/<model>/<category>_result.json. Evaluate checks those results
// against the possible answers, writes <score>/<model>/<category>_score.json
// and appends a row to <score>/data_overall.csv.
//
// Test data uses JSON lines, one entry per line:
//
//	{"id": "simple_0", "question": [[{"role": "user", "content": "..."}]], "function": [{"name": "...", "parameters": {...}}]}
//
// with the accepted answers under possible_answer/:
//
//	{"id": "simple_0", "ground_truth": [{"calculate_area": {"base": [10], "unit": ["cm", ""]}}]}
//
// An empty string among the accepted values marks the parameter optional.
package benchmark
