package observe

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq uint64

// opStats accumulates outcomes for one operation.
type opStats struct {
	DurationMS float64 `json:"duration_ms_total"`
	Success    int64   `json:"success_total"`
	Failure    int64   `json:"failure_total"`
}

// ExpvarMetricsRecorder publishes operation timings plus the running sale
// counters (transaction count, gross revenue, items sold) via expvar, for
// terminals that want process-local metrics without a scrape endpoint.
type ExpvarMetricsRecorder struct {
	name string

	mu           sync.Mutex
	ops          map[string]opStats
	transactions int64
	revenue      float64
	itemsSold    int64
}

// ExpvarMetricsSnapshot is a read-only view of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	Operations   map[string]opStats `json:"operations"`
	Transactions int64              `json:"transactions_total"`
	Revenue      float64            `json:"revenue_total"`
	ItemsSold    int64              `json:"items_sold_total"`
	RecordedAt   time.Time          `json:"recorded_at"`
}

// NewExpvarMetricsRecorder constructs an expvar-backed recorder and publishes
// it under the supplied name. When name is empty, a unique identifier is
// generated so test processes can build recorders freely.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("salespoint_metrics_%d", id)
	}
	rec := &ExpvarMetricsRecorder{
		name: name,
		ops:  make(map[string]opStats),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// Observe implements MetricsRecorder.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	r.mu.Lock()
	stats := r.ops[operation]
	stats.DurationMS += float64(duration) / float64(time.Millisecond)
	if success {
		stats.Success++
	} else {
		stats.Failure++
	}
	r.ops[operation] = stats
	r.mu.Unlock()
}

// RecordSale implements SaleRecorder.
func (r *ExpvarMetricsRecorder) RecordSale(_ context.Context, total float64, items int) {
	r.mu.Lock()
	r.transactions++
	r.revenue += total
	r.itemsSold += int64(items)
	r.mu.Unlock()
}

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make(map[string]opStats, len(r.ops))
	for op, stats := range r.ops {
		ops[op] = stats
	}
	return ExpvarMetricsSnapshot{
		Operations:   ops,
		Transactions: r.transactions,
		Revenue:      r.revenue,
		ItemsSold:    r.itemsSold,
		RecordedAt:   time.Now().UTC(),
	}
}

// TraceEvent is one completed span emitted by JSONTraceTracer.
type TraceEvent struct {
	Operation  string    `json:"operation"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	DurationMS float64   `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// JSONTraceTracer writes completed spans as JSON lines and retains them for
// inspection.
type JSONTraceTracer struct {
	mu     sync.Mutex
	events []TraceEvent
	enc    *json.Encoder
}

// NewJSONTracer constructs a tracer over the writer; a nil writer retains
// events without emitting them.
func NewJSONTracer(w io.Writer) *JSONTraceTracer {
	t := &JSONTraceTracer{}
	if w != nil {
		t.enc = json.NewEncoder(w)
	}
	return t
}

// Events returns a copy of all completed spans.
func (t *JSONTraceTracer) Events() []TraceEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceEvent, len(t.events))
	copy(out, t.events)
	return out
}

// Start implements Tracer.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonTraceSpan{
		tracer:    t,
		operation: operation,
		started:   time.Now().UTC(),
	}
}

type jsonTraceSpan struct {
	tracer    *JSONTraceTracer
	operation string
	started   time.Time
}

func (s *jsonTraceSpan) End(err error) {
	event := TraceEvent{
		Operation: s.operation,
		Outcome:   "success",
		StartedAt: s.started,
		EndedAt:   time.Now().UTC(),
	}
	event.DurationMS = float64(event.EndedAt.Sub(s.started)) / float64(time.Millisecond)
	if err != nil {
		event.Outcome = "error"
		event.Error = err.Error()
	}

	s.tracer.mu.Lock()
	s.tracer.events = append(s.tracer.events, event)
	if s.tracer.enc != nil {
		_ = s.tracer.enc.Encode(event)
	}
	s.tracer.mu.Unlock()
}
