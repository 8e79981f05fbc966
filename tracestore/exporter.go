/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"chainguard.dev/agentbench/agents/agenttrace"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporter writes spans into a Store under an experiment. Spans carrying
// an "experiment" attribute are filed under that experiment instead.
type Exporter struct {
	store      *Store
	experiment string
}

var _ sdktrace.SpanExporter = (*Exporter)(nil)

// Exporter returns a span exporter filing spans under experiment.
func (s *Store) Exporter(experiment string) *Exporter {
	return &Exporter{store: s, experiment: experiment}
}

type event struct {
	Name       string         `json:"name"`
	TimeNS     int64          `json:"time_ns"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func attrMap(kvs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

// ExportSpans implements sdktrace.SpanExporter. A batch is written in one
// transaction.
func (e *Exporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if len(spans) == 0 {
		return nil
	}
	tx, err := e.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning export: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	experiments := map[string]int64{}
	for _, span := range spans {
		attrs := attrMap(span.Attributes())
		name := e.experiment
		if v, ok := attrs["experiment"].(string); ok && v != "" {
			name = v
		}
		expID, ok := experiments[name]
		if !ok {
			if expID, err = experimentID(ctx, tx, name); err != nil {
				return err
			}
			experiments[name] = expID
		}
		if err := insertSpan(ctx, tx, expID, span, attrs); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}

func insertSpan(ctx context.Context, tx *sql.Tx, expID int64, span sdktrace.ReadOnlySpan, attrs map[string]any) error {
	sc := span.SpanContext()
	traceID := sc.TraceID().String()
	var parentID, rootName, rootStatus string
	if span.Parent().IsValid() {
		parentID = span.Parent().SpanID().String()
	} else {
		rootName, rootStatus = span.Name(), span.Status().Code.String()
	}
	start, end := span.StartTime().UnixNano(), span.EndTime().UnixNano()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO traces (trace_id, experiment_id, name, status, start_ns, end_ns, span_count)
		VALUES (?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(trace_id) DO UPDATE SET
			name = COALESCE(NULLIF(excluded.name, ''), traces.name),
			status = COALESCE(NULLIF(excluded.status, ''), traces.status),
			start_ns = MIN(traces.start_ns, excluded.start_ns),
			end_ns = MAX(traces.end_ns, excluded.end_ns),
			span_count = traces.span_count + 1`,
		traceID, expID, rootName, rootStatus, start, end,
	); err != nil {
		return fmt.Errorf("recording trace %s: %w", traceID, err)
	}

	events := make([]event, 0, len(span.Events()))
	for _, ev := range span.Events() {
		events = append(events, event{Name: ev.Name, TimeNS: ev.Time.UnixNano(), Attributes: attrMap(ev.Attributes)})
	}
	attrJSON, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("encoding attributes of span %s: %w", span.Name(), err)
	}
	eventJSON, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encoding events of span %s: %w", span.Name(), err)
	}
	kind, _ := attrs[agenttrace.AttrSpanKind].(string)

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO spans (trace_id, span_id, parent_span_id, name, kind,
			status_code, status_message, start_ns, end_ns, attributes, events)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		traceID, sc.SpanID().String(), parentID, span.Name(), kind,
		span.Status().Code.String(), span.Status().Description, start, end,
		string(attrJSON), string(eventJSON),
	); err != nil {
		return fmt.Errorf("recording span %s: %w", span.Name(), err)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter. The store outlives its
// exporters and is closed separately.
func (e *Exporter) Shutdown(context.Context) error {
	return nil
}
