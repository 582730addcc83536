package ledger

import (
	"context"

	"salespoint/internal/blob"
	"salespoint/pkg/domain"
)

// BlobSnapshotStore persists the transaction snapshot through the blob
// collaborator (filesystem, memory, or S3), under SnapshotKey plus a .json
// suffix for the benefit of anyone poking at the backing store.
type BlobSnapshotStore struct {
	store blob.Store
	key   string
}

var _ domain.SnapshotStore = (*BlobSnapshotStore)(nil)

// NewBlobSnapshotStore wraps a blob store as a snapshot backend.
func NewBlobSnapshotStore(store blob.Store) *BlobSnapshotStore {
	return &BlobSnapshotStore{store: store, key: SnapshotKey + ".json"}
}

// Load implements domain.SnapshotStore.
func (s *BlobSnapshotStore) Load(ctx context.Context) ([]domain.Transaction, bool, error) {
	payload, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	txs, err := decodeSnapshot(payload)
	if err != nil {
		return nil, false, err
	}
	return txs, true, nil
}

// Save implements domain.SnapshotStore. Atomicity is delegated to the blob
// driver's write-then-swap Put.
func (s *BlobSnapshotStore) Save(ctx context.Context, txs []domain.Transaction) error {
	payload, err := encodeSnapshot(txs)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, s.key, payload)
}

// Close implements domain.SnapshotStore.
func (s *BlobSnapshotStore) Close() error { return nil }

// Driver implements domain.SnapshotStore.
func (s *BlobSnapshotStore) Driver() string { return string(s.store.Driver()) }
