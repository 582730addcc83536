package ledger

import (
	"context"

	"salespoint/pkg/domain"
)

// MemorySnapshotStore keeps the serialized snapshot in process memory.
// Ephemeral sessions and tests only.
type MemorySnapshotStore struct {
	payload []byte
}

var _ domain.SnapshotStore = (*MemorySnapshotStore)(nil)

// NewMemorySnapshotStore constructs an empty in-memory snapshot store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

// Load implements domain.SnapshotStore.
func (s *MemorySnapshotStore) Load(context.Context) ([]domain.Transaction, bool, error) {
	if s.payload == nil {
		return nil, false, nil
	}
	txs, err := decodeSnapshot(s.payload)
	if err != nil {
		return nil, false, err
	}
	return txs, true, nil
}

// Save implements domain.SnapshotStore.
func (s *MemorySnapshotStore) Save(_ context.Context, txs []domain.Transaction) error {
	payload, err := encodeSnapshot(txs)
	if err != nil {
		return err
	}
	s.payload = payload
	return nil
}

// Close implements domain.SnapshotStore.
func (s *MemorySnapshotStore) Close() error { return nil }

// Driver implements domain.SnapshotStore.
func (s *MemorySnapshotStore) Driver() string { return "memory" }
