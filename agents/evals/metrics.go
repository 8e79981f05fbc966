/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"reflect"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_evaluations_total",
			Help: "Total number of agent evaluations performed",
		},
		[]string{"result_type", "namespace"},
	)

	failureCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_evaluation_failures_total",
			Help: "Total number of failed evaluations",
		},
		[]string{"result_type", "namespace"},
	)

	gradeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_evaluation_grade",
			Help:    "Distribution of evaluation grades (0.0-1.0)",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
		[]string{"result_type", "namespace"},
	)
)

// MetricsObserver implements Observer by exporting Prometheus metrics.
type MetricsObserver struct {
	evalCounter prometheus.Counter
	failCounter prometheus.Counter
	grades      prometheus.Observer
	total       atomic.Int64
}

// NewMetricsObserver creates a metrics observer labelled with T's type name and the namespace.
func NewMetricsObserver[T any](namespace string) *MetricsObserver {
	labels := prometheus.Labels{
		"result_type": reflect.TypeFor[T]().String(),
		"namespace":   namespace,
	}
	return &MetricsObserver{
		evalCounter: evaluationCounter.With(labels),
		failCounter: failureCounter.With(labels),
		grades:      gradeHistogram.With(labels),
	}
}

func (m *MetricsObserver) Increment() {
	m.total.Add(1)
	m.evalCounter.Inc()
}

func (m *MetricsObserver) Fail(string) {
	m.failCounter.Inc()
}

func (m *MetricsObserver) Grade(score float64, _ string) {
	m.grades.Observe(score)
}

// Log is a no-op.
func (m *MetricsObserver) Log(string) {}

func (m *MetricsObserver) Total() int64 {
	return m.total.Load()
}
