// Package ledger implements the append-only transaction store: an in-memory
// ordered log mirrored to a durable snapshot after every append. Snapshot
// backends are pluggable (memory, blob filesystem, S3, SQLite, Postgres) and
// selected through environment configuration.
package ledger

import (
	"context"
	"sync"

	"salespoint/internal/observe"
	"salespoint/pkg/domain"
)

// Ledger is the single-writer transaction log. Appends are serialized; a
// failed snapshot write is surfaced as a PersistenceError but never loses the
// in-memory append, and write-then-swap discipline in the drivers keeps the
// previously committed snapshot intact.
type Ledger struct {
	mu      sync.RWMutex
	txs     []domain.Transaction
	version uint64
	store   domain.SnapshotStore
	logger  observe.Logger
}

var _ domain.TransactionLog = (*Ledger)(nil)

// New constructs a ledger over the given snapshot store and hydrates it.
// Read or decode failures are not fatal: the ledger starts empty and the
// failure is logged as a warning.
func New(ctx context.Context, store domain.SnapshotStore, logger observe.Logger) *Ledger {
	if logger == nil {
		logger = observe.NopLogger()
	}
	l := &Ledger{store: store, logger: logger}
	txs, ok, err := store.Load(ctx)
	if err != nil {
		logger.Warn("transaction snapshot unreadable, starting empty",
			"driver", store.Driver(), "error", err)
		return l
	}
	if ok {
		l.txs = txs
	}
	return l
}

// Append adds one completed transaction and persists the full updated
// collection. The in-memory log keeps the transaction even when persistence
// fails; the returned error is then a PersistenceError for the caller to
// surface as a non-fatal warning.
func (l *Ledger) Append(ctx context.Context, tx domain.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs = append(l.txs, tx.Clone())
	l.version++
	if err := l.store.Save(ctx, l.txs); err != nil {
		l.logger.Warn("transaction snapshot write failed, in-memory log retained",
			"driver", l.store.Driver(), "error", err)
		return domain.PersistenceError{Op: "save", Key: SnapshotKey, Err: err}
	}
	return nil
}

// All returns the transactions in insertion order. The slice and its items
// are copies; history cannot be mutated through them.
func (l *Ledger) All() []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Transaction, 0, len(l.txs))
	for _, tx := range l.txs {
		out = append(out, tx.Clone())
	}
	return out
}

// Len returns the number of recorded transactions.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.txs)
}

// Version implements domain.TransactionLog.
func (l *Ledger) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// Flush rewrites the current snapshot. Used on session teardown.
func (l *Ledger) Flush(ctx context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err := l.store.Save(ctx, l.txs); err != nil {
		return domain.PersistenceError{Op: "save", Key: SnapshotKey, Err: err}
	}
	return nil
}

// Close flushes and releases the snapshot backend.
func (l *Ledger) Close(ctx context.Context) error {
	flushErr := l.Flush(ctx)
	if err := l.store.Close(); err != nil {
		return domain.PersistenceError{Op: "close", Key: SnapshotKey, Err: err}
	}
	return flushErr
}
