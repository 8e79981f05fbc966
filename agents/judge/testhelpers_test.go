/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge_test

import (
	"context"
	"fmt"
	"sync"

	"chainguard.dev/agentbench/agents/judge"
)

type mockObserver struct {
	mu       sync.Mutex
	failures []string
	logs     []string
	grades   []float64
}

func (m *mockObserver) Fail(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, msg)
}

func (m *mockObserver) Log(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, msg)
}

func (m *mockObserver) Grade(score float64, reasoning string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grades = append(m.grades, score)
	m.logs = append(m.logs, fmt.Sprintf("Grade: %.2f - %s", score, reasoning))
}

func (m *mockObserver) Increment()   {}
func (m *mockObserver) Total() int64 { return 0 }

// mockJudge returns a canned judgment and records the requests it saw.
type mockJudge struct {
	judgment *judge.Judgement
	err      error

	mu       sync.Mutex
	requests []*judge.Request
}

func (m *mockJudge) Judge(_ context.Context, request *judge.Request) (*judge.Judgement, error) {
	m.mu.Lock()
	m.requests = append(m.requests, request)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.judgment, nil
}
