/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package result turns model responses into Go values.
//
// Models wrap JSON in markdown fences or surround it with prose;
// ExtractJSON finds the payload and Extract unmarshals it:
//
//	verdict, err := result.Extract[SeverityAssessment](text)
//
// Extract[string] returns the free text answer with fences stripped.
package result
