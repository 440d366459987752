package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "plotpipe"

// Message kinds recorded on the messages counter.
const (
	KindCommand  = "command"
	KindPlot     = "plot"
	KindSplot    = "splot"
	KindHeredoc  = "heredoc"
	KindUndefine = "undefine"
	KindFlush    = "flush"
	KindRaw      = "raw"
)

// Metrics holds the OTEL instruments for gnuplot sessions.
// All counters are cumulative and safe for concurrent use.
type Metrics struct {
	BytesWritten   metric.Int64Counter
	Messages       metric.Int64Counter
	Datasets       metric.Int64Counter
	FramingErrors  metric.Int64Counter
	SessionEvents  metric.Int64Counter
	SessionRuntime metric.Float64Histogram
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.BytesWritten, err = meter.Int64Counter("plotpipe.bytes.written",
		metric.WithDescription("Bytes written to the gnuplot input pipe"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}

	m.Messages, err = meter.Int64Counter("plotpipe.messages",
		metric.WithDescription("Protocol messages sent, partitioned by kind (command, plot, splot, heredoc, undefine, flush)"))
	if err != nil {
		return nil, err
	}

	m.Datasets, err = meter.Int64Counter("plotpipe.datasets.defined",
		metric.WithDescription("Named here-document datasets defined"))
	if err != nil {
		return nil, err
	}

	m.FramingErrors, err = meter.Int64Counter("plotpipe.framing.errors",
		metric.WithDescription("Messages rejected because the value count did not match the declared shape"))
	if err != nil {
		return nil, err
	}

	m.SessionEvents, err = meter.Int64Counter("plotpipe.sessions",
		metric.WithDescription("Session lifecycle events (spawn, spawn_error, close, exit)"))
	if err != nil {
		return nil, err
	}

	m.SessionRuntime, err = meter.Float64Histogram("plotpipe.session.duration",
		metric.WithDescription("Time from spawn to gnuplot exit"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordMessage records one protocol message of the given kind and size.
func (m *Metrics) RecordMessage(ctx context.Context, kind string, bytes int) {
	if m == nil {
		return
	}
	m.Messages.Add(ctx, 1, metric.WithAttributes(attribute.String("message.kind", kind)))
	m.BytesWritten.Add(ctx, int64(bytes))
	if kind == KindHeredoc {
		m.Datasets.Add(ctx, 1)
	}
}

// RecordFramingError records a rejected message.
func (m *Metrics) RecordFramingError(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.FramingErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("message.kind", kind)))
}

// RecordSessionEvent records a lifecycle event.
func (m *Metrics) RecordSessionEvent(ctx context.Context, event string) {
	if m == nil {
		return
	}
	m.SessionEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("session.event", event)))
}

// RecordExit records the exit of a session's process.
func (m *Metrics) RecordExit(ctx context.Context, seconds float64, exitCode int) {
	if m == nil {
		return
	}
	m.SessionEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("session.event", "exit")))
	m.SessionRuntime.Record(ctx, seconds, metric.WithAttributes(attribute.Int("process.exit_code", exitCode)))
}
