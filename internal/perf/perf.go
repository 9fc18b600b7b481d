// Package perf records OpenTelemetry spans in memory so commands can report
// where their time went.
package perf

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/meza/minepkg"

var (
	setupOnce sync.Once
	exporter  *spanExporter
	provider  *sdktrace.TracerProvider
	tracer    trace.Tracer
)

func ensureInitialized() {
	setupOnce.Do(func() {
		exporter = newSpanExporter(maxRetainedSpans)
		provider = sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		tracer = provider.Tracer(instrumentationName)
	})
}

// TracerProvider exposes the in-memory provider so instrumented transports
// (otelhttp) report into the same span log.
func TracerProvider() trace.TracerProvider {
	ensureInitialized()
	return provider
}

type Span struct {
	span trace.Span
}

type spanConfig struct {
	attributes []attribute.KeyValue
}

type SpanOption func(*spanConfig)

func WithAttributes(attributes ...attribute.KeyValue) SpanOption {
	return func(config *spanConfig) {
		config.attributes = append(config.attributes, attributes...)
	}
}

func StartSpan(ctx context.Context, name string, options ...SpanOption) (context.Context, *Span) {
	ensureInitialized()
	if ctx == nil {
		ctx = context.Background()
	}

	config := spanConfig{}
	for _, option := range options {
		option(&config)
	}

	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(config.attributes...))
	return ctx, &Span{span: span}
}

func (s *Span) SetAttributes(attributes ...attribute.KeyValue) {
	if s == nil {
		return
	}
	s.span.SetAttributes(attributes...)
}

func (s *Span) AddEvent(name string, attributes ...attribute.KeyValue) {
	if s == nil {
		return
	}
	s.span.AddEvent(name, trace.WithAttributes(attributes...))
}

func (s *Span) RecordError(err error) {
	if s == nil || err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// EndWithError records err (when non-nil) together with the success flag and
// ends the span.
func (s *Span) EndWithError(err error) {
	if s == nil {
		return
	}
	s.RecordError(err)
	s.span.SetAttributes(attribute.Bool("success", err == nil))
	s.span.End()
}

func (s *Span) End() {
	if s == nil {
		return
	}
	s.span.End()
}

// SnapshotSpans returns every finished span recorded since the last Reset.
func SnapshotSpans() ([]sdktrace.ReadOnlySpan, error) {
	ensureInitialized()
	if err := provider.ForceFlush(context.Background()); err != nil {
		return nil, err
	}
	spans, _ := exporter.Snapshot()
	return spans, nil
}

// Dropped reports how many spans fell out of the bounded log since the last Reset.
func Dropped() int {
	ensureInitialized()
	_, dropped := exporter.Snapshot()
	return dropped
}

func Reset() {
	ensureInitialized()
	exporter.Reset()
}
