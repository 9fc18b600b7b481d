package perf

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
)

type SpanSnapshot struct {
	Name         string                 `json:"name"`
	TraceID      string                 `json:"trace_id"`
	SpanID       string                 `json:"span_id"`
	ParentSpanID string                 `json:"parent_span_id,omitempty"`
	StartTime    time.Time              `json:"start_time"`
	EndTime      time.Time              `json:"end_time"`
	Attributes   map[string]interface{} `json:"attributes,omitempty"`
	Events       []EventSnapshot        `json:"events,omitempty"`
}

type EventSnapshot struct {
	Name       string                 `json:"name"`
	Timestamp  time.Time              `json:"timestamp"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

func (s SpanSnapshot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

func GetSpans() ([]SpanSnapshot, error) {
	spans, err := SnapshotSpans()
	if err != nil {
		return nil, err
	}

	out := make([]SpanSnapshot, 0, len(spans))
	for _, span := range spans {
		out = append(out, snapshotSpan(span))
	}
	return out, nil
}

func FindSpanByName(spans []SpanSnapshot, name string) (SpanSnapshot, bool) {
	for _, span := range spans {
		if span.Name == name {
			return span, true
		}
	}
	return SpanSnapshot{}, false
}

// CountSpansByName is mostly useful in tests asserting how often a remote call happened.
func CountSpansByName(spans []SpanSnapshot, name string) int {
	count := 0
	for _, span := range spans {
		if span.Name == name {
			count++
		}
	}
	return count
}

func snapshotSpan(span trace.ReadOnlySpan) SpanSnapshot {
	spanContext := span.SpanContext()
	out := SpanSnapshot{
		Name:       span.Name(),
		TraceID:    spanContext.TraceID().String(),
		SpanID:     spanContext.SpanID().String(),
		StartTime:  span.StartTime(),
		EndTime:    span.EndTime(),
		Attributes: attributesToMap(span.Attributes()),
	}
	if parent := span.Parent(); parent.IsValid() {
		out.ParentSpanID = parent.SpanID().String()
	}

	for _, event := range span.Events() {
		out.Events = append(out.Events, EventSnapshot{
			Name:       event.Name,
			Timestamp:  event.Time,
			Attributes: attributesToMap(event.Attributes),
		})
	}
	return out
}

func attributesToMap(attributes []attribute.KeyValue) map[string]interface{} {
	if len(attributes) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(attributes))
	for _, kv := range attributes {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}
