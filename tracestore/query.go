/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chainguard.dev/agentbench/agents/agenttrace"
)

// ErrNotFound is returned when a trace or experiment does not exist.
var ErrNotFound = errors.New("not found")

// TraceInfo summarizes a stored trace. Name and Status are those of the
// root span, empty until the root span has been exported.
type TraceInfo struct {
	TraceID    string        `json:"trace_id"`
	Experiment string        `json:"experiment"`
	Name       string        `json:"name"`
	Status     string        `json:"status"`
	StartTime  time.Time     `json:"start_time"`
	Duration   time.Duration `json:"duration"`
	SpanCount  int           `json:"span_count"`
}

// Span is a stored span.
type Span struct {
	SpanID        string         `json:"span_id"`
	ParentSpanID  string         `json:"parent_span_id,omitempty"`
	Name          string         `json:"name"`
	Kind          string         `json:"kind,omitempty"`
	StatusCode    string         `json:"status_code"`
	StatusMessage string         `json:"status_message,omitempty"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	Attributes    map[string]any `json:"attributes,omitempty"`
	Events        []Event        `json:"events,omitempty"`
}

// Event is an event recorded on a span.
type Event struct {
	Name       string         `json:"name"`
	Time       time.Time      `json:"time"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Inputs returns the recorded inputs of the span.
func (s Span) Inputs() string {
	v, _ := s.Attributes[agenttrace.AttrInputs].(string)
	return v
}

// Outputs returns the recorded outputs of the span.
func (s Span) Outputs() string {
	v, _ := s.Attributes[agenttrace.AttrOutputs].(string)
	return v
}

// Trace is a stored trace with its spans ordered by start time.
type Trace struct {
	TraceInfo
	Spans []Span `json:"spans"`
}

// Experiments returns the experiment names, oldest first.
func (s *Store) Experiments(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM experiments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing experiments: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListTraces returns up to limit traces of experiment, newest first.
// A non-positive limit returns every trace.
func (s *Store) ListTraces(ctx context.Context, experiment string, limit int) ([]TraceInfo, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.trace_id, e.name, t.name, t.status, t.start_ns, t.end_ns, t.span_count
		FROM traces t
		JOIN experiments e ON e.id = t.experiment_id
		WHERE e.name = ?
		ORDER BY t.start_ns DESC
		LIMIT ?`, experiment, limit)
	if err != nil {
		return nil, fmt.Errorf("listing traces of %q: %w", experiment, err)
	}
	defer rows.Close()

	var out []TraceInfo
	for rows.Next() {
		info, err := scanTraceInfo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTraceInfo(row scanner) (TraceInfo, error) {
	var (
		info       TraceInfo
		start, end int64
	)
	if err := row.Scan(&info.TraceID, &info.Experiment, &info.Name, &info.Status, &start, &end, &info.SpanCount); err != nil {
		return TraceInfo{}, err
	}
	info.StartTime = time.Unix(0, start).UTC()
	info.Duration = time.Duration(end - start)
	return info, nil
}

// GetTrace returns a trace and its spans ordered by start time.
func (s *Store) GetTrace(ctx context.Context, traceID string) (*Trace, error) {
	info, err := scanTraceInfo(s.db.QueryRowContext(ctx, `
		SELECT t.trace_id, e.name, t.name, t.status, t.start_ns, t.end_ns, t.span_count
		FROM traces t
		JOIN experiments e ON e.id = t.experiment_id
		WHERE t.trace_id = ?`, traceID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trace %s: %w", traceID, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("reading trace %s: %w", traceID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT span_id, parent_span_id, name, kind, status_code, status_message,
			start_ns, end_ns, attributes, events
		FROM spans
		WHERE trace_id = ?
		ORDER BY start_ns, rowid`, traceID)
	if err != nil {
		return nil, fmt.Errorf("reading spans of %s: %w", traceID, err)
	}
	defer rows.Close()

	tr := &Trace{TraceInfo: info, Spans: []Span{}}
	for rows.Next() {
		var (
			sp                 Span
			start, end         int64
			attrJSON, evtsJSON string
		)
		if err := rows.Scan(&sp.SpanID, &sp.ParentSpanID, &sp.Name, &sp.Kind, &sp.StatusCode, &sp.StatusMessage,
			&start, &end, &attrJSON, &evtsJSON); err != nil {
			return nil, err
		}
		sp.StartTime, sp.EndTime = time.Unix(0, start).UTC(), time.Unix(0, end).UTC()
		if err := json.Unmarshal([]byte(attrJSON), &sp.Attributes); err != nil {
			return nil, fmt.Errorf("decoding attributes of span %s: %w", sp.SpanID, err)
		}
		var evts []event
		if err := json.Unmarshal([]byte(evtsJSON), &evts); err != nil {
			return nil, fmt.Errorf("decoding events of span %s: %w", sp.SpanID, err)
		}
		for _, ev := range evts {
			sp.Events = append(sp.Events, Event{Name: ev.Name, Time: time.Unix(0, ev.TimeNS).UTC(), Attributes: ev.Attributes})
		}
		tr.Spans = append(tr.Spans, sp)
	}
	return tr, rows.Err()
}
