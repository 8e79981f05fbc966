/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"errors"
	"fmt"
	"math"

	"chainguard.dev/agentbench/agents/agenttrace"
	"chainguard.dev/agentbench/agents/evals"
)

// ValidScore fails judgments whose score falls outside the range of mode.
func ValidScore(mode JudgmentMode) evals.ObservableTraceCallback[*Judgement] {
	return evals.ResultValidator(func(result *Judgement) error {
		lo, hi, err := scoreBounds(mode)
		if err != nil {
			return err
		}
		if result.Score < lo || result.Score > hi {
			return fmt.Errorf("score %.2f is out of range [%g, %g] for %s mode", result.Score, lo, hi, mode)
		}
		return nil
	})
}

func scoreBounds(mode JudgmentMode) (float64, float64, error) {
	switch mode {
	case BenchmarkMode:
		return -1, 1, nil
	case GoldenMode, StandaloneMode, TraceMode:
		return 0, 1, nil
	default:
		return 0, 0, fmt.Errorf("unknown judgment mode: %s", mode)
	}
}

// HasReasoning fails judgments without reasoning.
func HasReasoning() evals.ObservableTraceCallback[*Judgement] {
	return evals.ResultValidator(func(result *Judgement) error {
		if result.Reasoning == "" {
			return errors.New("judgment has no reasoning")
		}
		return nil
	})
}

// CheckMode fails judgments whose mode is not expectedMode.
func CheckMode(expectedMode JudgmentMode) evals.ObservableTraceCallback[*Judgement] {
	return evals.ResultValidator(func(result *Judgement) error {
		if result.Mode != expectedMode {
			return fmt.Errorf("mode %s does not match expected %s", result.Mode, expectedMode)
		}
		return nil
	})
}

// ScoreRange grades how close the judgment score lands to [minScore, maxScore].
// It is used to check a judge against answers of known quality.
func ScoreRange(minScore, maxScore float64) evals.ObservableTraceCallback[*Judgement] {
	return func(o evals.Observer, trace *agenttrace.Trace[*Judgement]) {
		if trace.Result == nil {
			o.Fail("judgment result is nil")
			return
		}
		score := trace.Result.Score
		grade := calculateRangeGrade(score, minScore, maxScore)
		where := "within"
		if grade < 1.0 {
			where = "outside"
		}
		o.Grade(grade, fmt.Sprintf("score %.2f is %s expected range [%.2f, %.2f]", score, where, minScore, maxScore))
	}
}

// calculateRangeGrade is 1.0 inside [minScore, maxScore] and decays with the
// distance to the nearest bound, reaching 0.0 at twice the range width.
func calculateRangeGrade(actualScore, minScore, maxScore float64) float64 {
	if actualScore >= minScore && actualScore <= maxScore {
		return 1.0
	}
	distance := min(math.Abs(actualScore-minScore), math.Abs(actualScore-maxScore))
	penalty := min(distance/((maxScore-minScore)*2), 1.0)
	return max(1.0-penalty, 0.0)
}
