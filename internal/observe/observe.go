// Package observe defines the ambient observability hooks the core components
// accept: structured logging, operation metrics, and trace spans. All hooks
// default to no-ops so the core never depends on a collaborator being wired.
package observe

import (
	"context"
	"time"
)

// Logger is the leveled, key-value logging surface used across the core.
// *slog.Logger satisfies it directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger { return nopLogger{} }

// MetricsRecorder receives one observation per core operation outcome.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// SaleRecorder receives completed sale figures. Recorders implement it in
// addition to MetricsRecorder when they track business counters; callers
// type-assert and skip silently otherwise.
type SaleRecorder interface {
	RecordSale(ctx context.Context, total float64, items int)
}

type nopMetrics struct{}

func (nopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// NopMetrics returns a recorder that discards observations.
func NopMetrics() MetricsRecorder { return nopMetrics{} }

// TraceSpan terminates a span started by a Tracer.
type TraceSpan interface {
	End(err error)
}

// Tracer opens spans around core operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type nopTracer struct{}

type nopSpan struct{}

func (nopSpan) End(error) {}

func (nopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, nopSpan{}
}

// NopTracer returns a tracer that records nothing.
func NopTracer() Tracer { return nopTracer{} }
