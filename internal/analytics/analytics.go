// Package analytics derives rollup views from the transaction log: daily
// revenue series, per-category revenue, and summary statistics. Compute is a
// pure function of the log contents; the Aggregator adds a cache keyed by the
// log version so repeated reads between appends are free.
package analytics

import (
	"sort"
	"sync"

	"salespoint/pkg/domain"
)

// DateLayout is the calendar-date key format used by DailyRevenue.
const DateLayout = "2006-01-02"

// Snapshot is the derived rollup. It is never stored; every value is
// recomputable from the transaction log.
type Snapshot struct {
	DailyRevenue            map[string]float64 `json:"dailyRevenue"`
	CategoryRevenue         map[string]float64 `json:"categoryRevenue"`
	TotalRevenue            float64            `json:"totalRevenue"`
	AverageTransactionValue float64            `json:"averageTransactionValue"`
	Count                   int                `json:"count"`
}

// Days returns the daily revenue keys in chronological order. The lexical
// sort is chronological because keys use DateLayout.
func (s Snapshot) Days() []string {
	out := make([]string, 0, len(s.DailyRevenue))
	for day := range s.DailyRevenue {
		out = append(out, day)
	}
	sort.Strings(out)
	return out
}

// Compute derives the rollup from the given transactions. Calendar dates are
// taken in the viewer's local time zone; the aggregation itself is
// order-independent.
func Compute(txs []domain.Transaction) Snapshot {
	snap := Snapshot{
		DailyRevenue:    make(map[string]float64),
		CategoryRevenue: make(map[string]float64),
		Count:           len(txs),
	}
	for _, tx := range txs {
		day := tx.Date.Local().Format(DateLayout)
		snap.DailyRevenue[day] += tx.TotalAmount
		snap.TotalRevenue += tx.TotalAmount
		for _, item := range tx.Items {
			snap.CategoryRevenue[item.Category] += item.LineTotal()
		}
	}
	if snap.Count > 0 {
		snap.AverageTransactionValue = snap.TotalRevenue / float64(snap.Count)
	}
	return snap
}

// Aggregator reads a transaction log and memoizes the rollup per log version.
// Any append bumps the version and invalidates the cache.
type Aggregator struct {
	log domain.TransactionLog

	mu      sync.Mutex
	cached  Snapshot
	version uint64
	valid   bool
}

// NewAggregator constructs an aggregator over the log.
func NewAggregator(log domain.TransactionLog) *Aggregator {
	return &Aggregator{log: log}
}

// Snapshot returns the current rollup, recomputing only when the log has
// changed since the last call.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	version := a.log.Version()
	if a.valid && version == a.version {
		return a.cached
	}
	a.cached = Compute(a.log.All())
	a.version = version
	a.valid = true
	return a.cached
}
