package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"salespoint/pkg/domain"
)

// SQLiteSnapshotStore persists the snapshot into a single-row state table as
// a JSON blob, replaced wholesale inside a database transaction on every save.
type SQLiteSnapshotStore struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

var _ domain.SnapshotStore = (*SQLiteSnapshotStore)(nil)

// NewSQLiteSnapshotStore opens (or creates) the sqlite file and ensures the
// state table exists. An empty path defaults to salespoint.db.
func NewSQLiteSnapshotStore(path string) (*SQLiteSnapshotStore, error) {
	if path == "" {
		path = "salespoint.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &SQLiteSnapshotStore{db: db, path: path}, nil
}

// Load implements domain.SnapshotStore.
func (s *SQLiteSnapshotStore) Load(ctx context.Context) ([]domain.Transaction, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, SnapshotKey).Scan(&payload)
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
func (s *SQLiteSnapshotStore) Save(ctx context.Context, txs []domain.Transaction) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, err := encodeSnapshot(txs)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		SnapshotKey, payload); err != nil {
		retErr = fmt.Errorf("upsert %s: %w", SnapshotKey, err)
		return retErr
	}
	return tx.Commit()
}

// Close implements domain.SnapshotStore.
func (s *SQLiteSnapshotStore) Close() error { return s.db.Close() }

// Driver implements domain.SnapshotStore.
func (s *SQLiteSnapshotStore) Driver() string { return "sqlite" }

// Path returns the configured database path.
func (s *SQLiteSnapshotStore) Path() string { return s.path }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *SQLiteSnapshotStore) DB() *sql.DB { return s.db }
