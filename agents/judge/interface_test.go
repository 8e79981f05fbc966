/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge_test

import (
	"strings"
	"testing"

	"chainguard.dev/agentbench/agents/judge"
)

func TestJudgementString(t *testing.T) {
	tests := []struct {
		name     string
		judgment *judge.Judgement
		want     string
	}{{
		name:     "score and reasoning",
		judgment: &judge.Judgement{Score: 0.85, Reasoning: "Diagnosis names the root cause"},
		want:     "Grade: 0.85 - Diagnosis names the root cause",
	}, {
		name:     "score only",
		judgment: &judge.Judgement{Score: 1.0},
		want:     "Grade: 1.00",
	}, {
		name: "suggestions",
		judgment: &judge.Judgement{
			Score:       0.6,
			Reasoning:   "Vague",
			Suggestions: []string{"Name the failing service", "Mention the port"},
		},
		want: "Grade: 0.60 - Vague\n  Suggestion: Name the failing service\n  Suggestion: Mention the port",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.judgment.String(); got != tt.want {
				t.Errorf("String: got = %q, wanted = %q", got, tt.want)
			}
		})
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     judge.Request
		wantErr string
	}{{
		name: "golden ok",
		req:  judge.Request{Mode: judge.GoldenMode, ReferenceAnswer: "a", ActualAnswer: "b", Criterion: "c"},
	}, {
		name:    "golden without reference",
		req:     judge.Request{Mode: judge.GoldenMode, ActualAnswer: "b", Criterion: "c"},
		wantErr: "reference_answer is required",
	}, {
		name:    "benchmark without first candidate",
		req:     judge.Request{Mode: judge.BenchmarkMode, ActualAnswer: "b", Criterion: "c"},
		wantErr: "first candidate",
	}, {
		name:    "standalone with reference",
		req:     judge.Request{Mode: judge.StandaloneMode, ReferenceAnswer: "a", ActualAnswer: "b", Criterion: "c"},
		wantErr: "must not be provided",
	}, {
		name: "trace ok",
		req:  judge.Request{Mode: judge.TraceMode, ActualAnswer: `{"input":"x"}`, Criterion: "c"},
	}, {
		name:    "missing answer",
		req:     judge.Request{Mode: judge.TraceMode, Criterion: "c"},
		wantErr: "actual_answer is required",
	}, {
		name:    "missing criterion",
		req:     judge.Request{Mode: judge.StandaloneMode, ActualAnswer: "b"},
		wantErr: "criterion is required",
	}, {
		name:    "unknown mode",
		req:     judge.Request{Mode: "pairwise", ActualAnswer: "b", Criterion: "c"},
		wantErr: "unsupported mode",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("Validate: got = %v, wanted nil", err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Errorf("Validate: got = %v, wanted error containing %q", err, tt.wantErr)
			}
		})
	}
}
