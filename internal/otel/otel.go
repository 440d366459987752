// Package otel wires OpenTelemetry for plotpipe.
//
// Traces and metrics go to an OTLP/HTTP endpoint taken from the config
// file or OTEL_EXPORTER_OTLP_ENDPOINT. Without an endpoint every
// instrument is a no-op, so sessions can record unconditionally.
package otel

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "plotpipe"

// Version is reported as service.version. cmd sets it from its own
// linker-injected Version.
var Version = "dev"

// OTELConfig holds the exporter settings.
type OTELConfig struct {
	Endpoint string        // OTLP base URL, e.g. "http://localhost:4318"
	Headers  string        // key=value pairs separated by commas
	Interval time.Duration // metric export interval, DefaultInterval if zero
	Program  string        // gnuplot executable, recorded on the resource
}

// Telemetry holds the OTEL providers and metric instruments.
type Telemetry struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider

	Tracer  trace.Tracer
	Metrics *Metrics
}

// parseHeaders parses the OTEL_EXPORTER_OTLP_HEADERS format.
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	if raw == "" {
		return headers
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if idx := strings.IndexByte(pair, '='); idx > 0 {
			key := strings.TrimSpace(pair[:idx])
			val := strings.TrimSpace(pair[idx+1:])
			if key != "" {
				headers[key] = val
			}
		}
	}
	return headers
}

// Init sets up OTLP HTTP exporters and registers them globally.
// With an empty cfg.Endpoint the returned Telemetry is a no-op.
func Init(ctx context.Context, cfg OTELConfig) (*Telemetry, error) {
	t := &Telemetry{}

	if cfg.Endpoint != "" {
		res, err := newResource(ctx, cfg.Program)
		if err != nil {
			return nil, err
		}
		ep, err := parseEndpoint(cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		headers := parseHeaders(cfg.Headers)

		traceOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(ep.host),
			otlptracehttp.WithURLPath(ep.basePath + "/v1/traces"),
		}
		metricOpts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(ep.host),
			otlpmetrichttp.WithURLPath(ep.basePath + "/v1/metrics"),
		}
		if ep.insecure {
			traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
			metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
		}
		if len(headers) > 0 {
			traceOpts = append(traceOpts, otlptracehttp.WithHeaders(headers))
			metricOpts = append(metricOpts, otlpmetrichttp.WithHeaders(headers))
		}

		traceExp, err := otlptracehttp.New(ctx, traceOpts...)
		if err != nil {
			return nil, fmt.Errorf("otel trace exporter: %w", err)
		}
		t.tp = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExp),
			sdktrace.WithResource(res),
		)

		metricExp, err := otlpmetrichttp.New(ctx, metricOpts...)
		if err != nil {
			return nil, fmt.Errorf("otel metric exporter: %w", err)
		}
		t.mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp,
				sdkmetric.WithInterval(cfg.exportInterval()))),
			sdkmetric.WithResource(res),
		)

		otel.SetTracerProvider(t.tp)
		otel.SetMeterProvider(t.mp)
	}

	t.Tracer = otel.Tracer(serviceName)

	metrics, err := NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("otel metrics: %w", err)
	}
	t.Metrics = metrics

	return t, nil
}

// DefaultInterval is the metric export interval when none is configured.
const DefaultInterval = 15 * time.Second

func (c OTELConfig) exportInterval() time.Duration {
	if c.Interval <= 0 {
		return DefaultInterval
	}
	return c.Interval
}

// newResource describes this process. The gnuplot executable is recorded
// so traces from different installations can be told apart.
func newResource(ctx context.Context, program string) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(Version),
	}
	if program != "" {
		attrs = append(attrs, attribute.String("plotpipe.program", program))
	}
	res, err := resource.New(ctx, resource.WithAttributes(attrs...), resource.WithHost())
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}
	return res, nil
}

// endpoint is an OTLP base URL split the way the exporters want it:
// WithEndpoint takes host:port only and the signal path is appended to
// the base path.
type endpoint struct {
	host     string
	basePath string
	insecure bool
}

func parseEndpoint(raw string) (endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return endpoint{}, fmt.Errorf("otel: invalid endpoint URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return endpoint{}, fmt.Errorf("otel: endpoint URL %q has no host", raw)
	}
	return endpoint{
		host:     u.Host,
		basePath: strings.TrimRight(u.Path, "/"),
		insecure: u.Scheme == "http",
	}, nil
}

// Shutdown flushes pending telemetry. Safe on a nil or no-op Telemetry.
func (t *Telemetry) Shutdown(ctx context.Context) {
	if t == nil {
		return
	}
	if t.tp != nil {
		_ = t.tp.Shutdown(ctx)
	}
	if t.mp != nil {
		_ = t.mp.Shutdown(ctx)
	}
}

// Start opens a span on the plotpipe tracer. A nil Telemetry falls back to
// the global (possibly no-op) tracer.
func (t *Telemetry) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(serviceName)
	if t != nil && t.Tracer != nil {
		tracer = t.Tracer
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
