package ledger

import (
	"encoding/json"
	"fmt"

	"salespoint/pkg/domain"
)

// SnapshotKey is the bucket/object key every snapshot driver writes under.
// The payload is a JSON array of transactions with dates encoded as RFC 3339
// strings.
const SnapshotKey = "transactions"

func encodeSnapshot(txs []domain.Transaction) ([]byte, error) {
	if txs == nil {
		txs = []domain.Transaction{}
	}
	b, err := json.Marshal(txs)
	if err != nil {
		return nil, fmt.Errorf("encode transactions: %w", err)
	}
	return b, nil
}

func decodeSnapshot(payload []byte) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := json.Unmarshal(payload, &txs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return txs, nil
}
