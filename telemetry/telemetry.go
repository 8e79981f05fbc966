/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"chainguard.dev/agentbench/config"
	"chainguard.dev/agentbench/tracestore"
	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures Setup.
type Option func(*options)

type options struct {
	store      *tracestore.Store
	exporters  []sdktrace.SpanExporter
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	syncExport bool
}

// WithStore files spans in the embedded trace store.
func WithStore(store *tracestore.Store) Option {
	return func(o *options) { o.store = store }
}

// WithExporter adds a span exporter.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) { o.exporters = append(o.exporters, exp) }
}

// WithRegistry registers metrics with reg instead of the default registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registerer, o.gatherer = reg, reg }
}

// WithSyncExport exports each span as it ends instead of batching. Short
// lived commands use it so no span is lost on exit.
func WithSyncExport() Option {
	return func(o *options) { o.syncExport = true }
}

// Telemetry owns the installed providers.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	gatherer       prometheus.Gatherer
}

// Setup builds the tracer and meter providers and installs them globally.
// An OTLP exporter is added when cfg.OTLPEndpoint is set.
func Setup(ctx context.Context, cfg config.Tracing, opts ...Option) (*Telemetry, error) {
	o := options{registerer: prometheus.DefaultRegisterer, gatherer: prometheus.DefaultGatherer}
	for _, opt := range opts {
		opt(&o)
	}
	log := clog.FromContext(ctx)

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("experiment", cfg.ExperimentName),
	))
	if err != nil {
		return nil, fmt.Errorf("building resource: %w", err)
	}

	exporters := o.exporters
	if o.store != nil {
		exporters = append(exporters, o.store.Exporter(cfg.ExperimentName))
		log.With("experiment", cfg.ExperimentName).Info("Recording traces in the trace store")
	}
	if cfg.OTLPEndpoint != "" {
		exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(tracesURL(cfg.OTLPEndpoint)))
		if err != nil {
			return nil, fmt.Errorf("creating OTLP exporter: %w", err)
		}
		exporters = append(exporters, exp)
		log.With("endpoint", cfg.OTLPEndpoint).Info("Exporting traces over OTLP/HTTP")
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, exp := range exporters {
		if o.syncExport {
			tpOpts = append(tpOpts, sdktrace.WithSyncer(exp))
		} else {
			tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
		}
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)

	promExporter, err := otelprom.New(otelprom.WithRegisterer(o.registerer))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("creating prometheus exporter: %w", err), tp.Shutdown(ctx))
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(promExporter), sdkmetric.WithResource(res))

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	return &Telemetry{TracerProvider: tp, MeterProvider: mp, gatherer: o.gatherer}, nil
}

// tracesURL appends the OTLP traces path to a collector base URL, as the
// OTEL_EXPORTER_OTLP_ENDPOINT convention requires.
func tracesURL(endpoint string) string {
	endpoint = strings.TrimRight(endpoint, "/")
	if strings.HasSuffix(endpoint, "/v1/traces") {
		return endpoint
	}
	return endpoint + "/v1/traces"
}

// MetricsHandler serves the registered metrics.
func (t *Telemetry) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(t.gatherer, promhttp.HandlerOpts{})
}

// Shutdown flushes pending spans and stops both providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(t.TracerProvider.Shutdown(ctx), t.MeterProvider.Shutdown(ctx))
}
