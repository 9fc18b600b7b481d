package perf

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/sdk/trace"
)

// maxRetainedSpans bounds the in-memory log. A batch install over a large
// manifest records a span per request attempt; past the bound the oldest
// spans are dropped so the long-running parents, which end last, survive.
const maxRetainedSpans = 20000

type spanExporter struct {
	mu      sync.Mutex
	limit   int
	spans   []trace.ReadOnlySpan
	dropped int
}

func newSpanExporter(limit int) *spanExporter {
	return &spanExporter{limit: limit}
}

func (exporter *spanExporter) ExportSpans(_ context.Context, spans []trace.ReadOnlySpan) error {
	exporter.mu.Lock()
	defer exporter.mu.Unlock()

	exporter.spans = append(exporter.spans, spans...)
	if overflow := len(exporter.spans) - exporter.limit; exporter.limit > 0 && overflow > 0 {
		exporter.spans = append(exporter.spans[:0], exporter.spans[overflow:]...)
		exporter.dropped += overflow
	}
	return nil
}

func (exporter *spanExporter) Shutdown(context.Context) error {
	return nil
}

func (exporter *spanExporter) Reset() {
	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	exporter.spans = exporter.spans[:0]
	exporter.dropped = 0
}

// Snapshot copies the retained spans and reports how many were dropped.
func (exporter *spanExporter) Snapshot() ([]trace.ReadOnlySpan, int) {
	exporter.mu.Lock()
	defer exporter.mu.Unlock()

	out := make([]trace.ReadOnlySpan, len(exporter.spans))
	copy(out, exporter.spans)
	return out, exporter.dropped
}
