/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"fmt"
	"strings"
)

// JudgmentMode specifies the type of judgment to perform.
type JudgmentMode string

const (
	// GoldenMode grades a response against a reference answer.
	GoldenMode JudgmentMode = "golden"
	// BenchmarkMode compares two responses; negative scores favor the first.
	BenchmarkMode JudgmentMode = "benchmark"
	// StandaloneMode grades a single response against a criterion.
	StandaloneMode JudgmentMode = "standalone"
	// TraceMode grades a whole agent trace: the tools it called, what they
	// returned and the final answer.
	TraceMode JudgmentMode = "trace"
)

// Modes lists every supported judgment mode.
var Modes = []JudgmentMode{GoldenMode, BenchmarkMode, StandaloneMode, TraceMode}

// Request contains the context for judgment
type Request struct {
	Mode JudgmentMode `json:"mode"`

	// ReferenceAnswer is the golden answer in golden mode and the first
	// candidate in benchmark mode. It must be empty otherwise.
	ReferenceAnswer string `json:"reference_answer,omitempty"`

	// ActualAnswer is the answer to evaluate. In trace mode it holds the
	// JSON encoded trace.
	ActualAnswer string `json:"actual_answer"`

	Criterion string `json:"criterion"`
}

// Validate checks the fields required by the request's mode.
func (r *Request) Validate() error {
	switch r.Mode {
	case GoldenMode:
		if r.ReferenceAnswer == "" {
			return fmt.Errorf("reference_answer is required for %s mode", r.Mode)
		}
	case BenchmarkMode:
		if r.ReferenceAnswer == "" {
			return fmt.Errorf("reference_answer (first candidate) is required for %s mode", r.Mode)
		}
	case StandaloneMode, TraceMode:
		if r.ReferenceAnswer != "" {
			return fmt.Errorf("reference_answer must not be provided for %s mode", r.Mode)
		}
	default:
		return fmt.Errorf("unsupported mode: %q", r.Mode)
	}
	if r.ActualAnswer == "" {
		return fmt.Errorf("actual_answer is required for %s mode", r.Mode)
	}
	if r.Criterion == "" {
		return fmt.Errorf("criterion is required for %s mode", r.Mode)
	}
	return nil
}

// Judgement contains the judgment result
type Judgement struct {
	Mode JudgmentMode `json:"mode" jsonschema:"enum=golden,enum=benchmark,enum=standalone,enum=trace"`

	// Score is 0.0 (awful) to 1.0 (ideal), or -1.0 to 1.0 in benchmark mode.
	Score float64 `json:"score"`

	Reasoning string `json:"reasoning"`

	// Suggestions may be empty for perfect scores.
	Suggestions []string `json:"suggestions"`
}

// String renders the judgment the way evaluation reports print grades.
func (j *Judgement) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Grade: %.2f", j.Score)
	if j.Reasoning != "" {
		fmt.Fprintf(&sb, " - %s", j.Reasoning)
	}
	for _, s := range j.Suggestions {
		fmt.Fprintf(&sb, "\n  Suggestion: %s", s)
	}
	return sb.String()
}

// Interface defines the contract for judge implementations
type Interface interface {
	Judge(ctx context.Context, request *Request) (*Judgement, error)
}
