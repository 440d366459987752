package otel

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"single", "Authorization=Basic abc", map[string]string{"Authorization": "Basic abc"}},
		{"multiple with spaces", " a = 1 , b=2 ", map[string]string{"a": "1", "b": "2"}},
		{"value with equals", "k=v=w", map[string]string{"k": "v=w"}},
		{"missing key skipped", "=v,x=y", map[string]string{"x": "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseHeaders(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("parseHeaders(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("header %q = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestInit_NoEndpointIsNoop(t *testing.T) {
	ctx := context.Background()
	tel, err := Init(ctx, OTELConfig{})
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	defer tel.Shutdown(ctx)

	if tel.Metrics == nil {
		t.Fatal("expected metric instruments even without an endpoint")
	}
	tel.Metrics.RecordMessage(ctx, KindPlot, 128)
	tel.Metrics.RecordFramingError(ctx, KindHeredoc)
	tel.Metrics.RecordSessionEvent(ctx, "spawn")
	tel.Metrics.RecordExit(ctx, 1.5, 0)

	_, span := tel.Start(ctx, "test")
	span.End()
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordMessage(ctx, KindCommand, 10)
	m.RecordFramingError(ctx, KindPlot)
	m.RecordSessionEvent(ctx, "close")
	m.RecordExit(ctx, 0, 1)

	var tel *Telemetry
	tel.Shutdown(ctx)
	_, span := tel.Start(ctx, "nil")
	span.End()
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw     string
		want    endpoint
		wantErr bool
	}{
		{raw: "http://localhost:4318", want: endpoint{host: "localhost:4318", insecure: true}},
		{raw: "https://otel.example.com/otlp/", want: endpoint{host: "otel.example.com", basePath: "/otlp"}},
		{raw: "localhost:4318", wantErr: true},
		{raw: "://bad", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseEndpoint(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseEndpoint(%q) = %+v, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEndpoint(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("parseEndpoint(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExportInterval(t *testing.T) {
	if got := (OTELConfig{}).exportInterval(); got != DefaultInterval {
		t.Errorf("zero interval = %v, want %v", got, DefaultInterval)
	}
	if got := (OTELConfig{Interval: time.Minute}).exportInterval(); got != time.Minute {
		t.Errorf("configured interval = %v, want 1m", got)
	}
}

func TestNewResource_RecordsProgram(t *testing.T) {
	res, err := newResource(context.Background(), "/opt/gnuplot/bin/gnuplot")
	if err != nil {
		t.Fatalf("newResource() error: %v", err)
	}
	v, ok := res.Set().Value(attribute.Key("plotpipe.program"))
	if !ok || v.AsString() != "/opt/gnuplot/bin/gnuplot" {
		t.Errorf("plotpipe.program = %v (present %v)", v.AsString(), ok)
	}

	res, err = newResource(context.Background(), "")
	if err != nil {
		t.Fatalf("newResource() error: %v", err)
	}
	if _, ok := res.Set().Value(attribute.Key("plotpipe.program")); ok {
		t.Error("plotpipe.program set without a program")
	}
}
