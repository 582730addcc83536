package domain

import "context"

// TransactionLog is the append-only transaction store surface consumed by
// higher layers. Insertion order equals chronological order of completion.
type TransactionLog interface {
	Append(ctx context.Context, tx Transaction) error
	All() []Transaction
	Len() int
	// Version increments on every successful Append; aggregators use it to
	// invalidate cached rollups.
	Version() uint64
}

// SnapshotStore is a minimal abstraction over durable backends. The encoding
// is a full-replace snapshot: Save rewrites the entire collection, so a write
// failure must not corrupt the previously committed snapshot.
type SnapshotStore interface {
	Load(ctx context.Context) ([]Transaction, bool, error)
	Save(ctx context.Context, txs []Transaction) error
	Close() error
	Driver() string
}
