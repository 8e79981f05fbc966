/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"context"
	"sync/atomic"

	"github.com/chainguard-dev/clog"
)

// LogObserver is an Observer that writes through clog, for evaluation runs
// outside of go test.
type LogObserver struct {
	logger *clog.Logger
	total  atomic.Int64
}

// NewLogObserver returns an Observer logging with the context's logger,
// annotated with the namespace.
func NewLogObserver(ctx context.Context, namespace string) *LogObserver {
	return &LogObserver{logger: clog.FromContext(ctx).With("eval", namespace)}
}

func (l *LogObserver) Fail(msg string) {
	l.logger.Warn("Evaluation failed", "reason", msg)
}

func (l *LogObserver) Log(msg string) {
	l.logger.Debug(msg)
}

func (l *LogObserver) Grade(score float64, reasoning string) {
	l.logger.Info("Evaluation graded", "score", score, "reasoning", reasoning)
}

func (l *LogObserver) Increment() {
	l.total.Add(1)
}

func (l *LogObserver) Total() int64 {
	return l.total.Load()
}
