package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"salespoint/pkg/domain"
)

const (
	pgDriverName = "pgx"
	// Default DSN keeps parity with Open defaults while allowing overrides via env.
	pgDefaultDSN = "postgres://localhost/salespoint?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// PostgresSnapshotStore persists the snapshot into a JSONB state table,
// mirroring the sqlite driver's full-replace semantics for multi-terminal
// deployments that already run Postgres.
type PostgresSnapshotStore struct {
	db *sql.DB
	mu sync.Mutex
}

var _ domain.SnapshotStore = (*PostgresSnapshotStore)(nil)

// NewPostgresSnapshotStore opens a Postgres-backed store using the provided
// DSN (falls back to a local default) and ensures the state table exists.
func NewPostgresSnapshotStore(ctx context.Context, dsn string) (*PostgresSnapshotStore, error) {
	if dsn == "" {
		dsn = pgDefaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(pgDriverName, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	return &PostgresSnapshotStore{db: db}, nil
}

// Load implements domain.SnapshotStore.
func (s *PostgresSnapshotStore) Load(ctx context.Context) ([]domain.Transaction, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = $1`, SnapshotKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select state: %w", err)
	}
	txs, err := decodeSnapshot(payload)
	if err != nil {
		return nil, false, err
	}
	return txs, true, nil
}

// Save implements domain.SnapshotStore.
func (s *PostgresSnapshotStore) Save(ctx context.Context, txs []domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := encodeSnapshot(txs)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		SnapshotKey, payload); err != nil {
		return fmt.Errorf("upsert %s: %w", SnapshotKey, err)
	}
	return nil
}

// Close implements domain.SnapshotStore.
func (s *PostgresSnapshotStore) Close() error { return s.db.Close() }

// Driver implements domain.SnapshotStore.
func (s *PostgresSnapshotStore) Driver() string { return "postgres" }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *PostgresSnapshotStore) DB() *sql.DB { return s.db }
