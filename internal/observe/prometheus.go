package observe

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation outcomes and the sale counters
// on a dedicated registry so callers can mount it behind promhttp without
// inheriting the global default collectors.
type PrometheusMetricsRecorder struct {
	registry     *prometheus.Registry
	duration     *prometheus.HistogramVec
	results      *prometheus.CounterVec
	transactions prometheus.Counter
	revenue      prometheus.Counter
	itemsSold    prometheus.Counter
}

// NewPrometheusMetricsRecorder constructs a recorder with its own registry.
func NewPrometheusMetricsRecorder() *PrometheusMetricsRecorder {
	registry := prometheus.NewRegistry()
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "salespoint",
		Name:      "operation_duration_seconds",
		Help:      "Duration of core operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salespoint",
		Name:      "operation_results_total",
		Help:      "Core operation outcomes by status.",
	}, []string{"operation", "status"})
	transactions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "salespoint",
		Name:      "transactions_total",
		Help:      "Completed sales.",
	})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "salespoint",
		Name:      "revenue_total",
		Help:      "Gross pre-tax revenue from completed sales.",
	})
	itemsSold := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "salespoint",
		Name:      "items_sold_total",
		Help:      "Line items across completed sales.",
	})
	registry.MustRegister(duration, results, transactions, revenue, itemsSold)
	return &PrometheusMetricsRecorder{
		registry:     registry,
		duration:     duration,
		results:      results,
		transactions: transactions,
		revenue:      revenue,
		itemsSold:    itemsSold,
	}
}

// Registry exposes the backing registry for scrape handler wiring.
func (r *PrometheusMetricsRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.duration.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}

// RecordSale implements SaleRecorder.
func (r *PrometheusMetricsRecorder) RecordSale(_ context.Context, total float64, items int) {
	r.transactions.Inc()
	r.revenue.Add(total)
	r.itemsSold.Add(float64(items))
}
