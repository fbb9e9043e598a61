package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ReceiptStore persists receipts of executed Safe transactions.
// Append-only table keyed by chain + tx hash.
type ReceiptStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// StoredReceipt is one row of the receipts table.
type StoredReceipt struct {
	Chain      string
	TxHash     string
	SafeTxHash string
	Status     uint64
	GasUsed    uint64
	RawJSON    string
	CreatedAt  time.Time
}

// Upsert records the receipt of the transaction that executed safeTxHash.
func (s *ReceiptStore) Upsert(chain string, safeTxHash common.Hash, receipt *types.Receipt) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("receipt store not initialized")
	}
	if chain == "" {
		return fmt.Errorf("chain is required")
	}
	if receipt == nil {
		return fmt.Errorf("receipt is required")
	}

	raw, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	_, err = s.db.Exec(`
INSERT INTO receipts (chain, tx_hash, safe_tx_hash, status, gas_used, raw_json)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(chain, tx_hash) DO UPDATE SET
	safe_tx_hash=excluded.safe_tx_hash,
	status=excluded.status,
	gas_used=excluded.gas_used,
	raw_json=excluded.raw_json
`, chain, receipt.TxHash.Hex(), safeTxHash.Hex(), receipt.Status, receipt.GasUsed, string(raw))
	if err != nil {
		return fmt.Errorf("persist receipt: %w", err)
	}

	s.logger.Debug("stored receipt",
		zap.String("chain", chain),
		zap.Stringer("tx", receipt.TxHash),
		zap.Stringer("safeTxHash", safeTxHash),
		zap.Uint64("status", receipt.Status))
	return nil
}

// Find returns the stored receipt for the transaction that executed
// safeTxHash on chain. A successful receipt wins over reverted attempts;
// otherwise the most recent one is returned.
func (s *ReceiptStore) Find(chain string, safeTxHash common.Hash) (*StoredReceipt, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("receipt store not initialized")
	}
	if chain == "" {
		return nil, fmt.Errorf("chain is required")
	}

	var out StoredReceipt
	var created string
	row := s.db.QueryRow(`
SELECT chain, tx_hash, COALESCE(safe_tx_hash, ''), COALESCE(status, 0), COALESCE(gas_used, 0), COALESCE(raw_json, ''), created_at
FROM receipts
WHERE chain = ? AND safe_tx_hash = ?
ORDER BY status DESC, created_at DESC, rowid DESC
LIMIT 1`,
		chain, safeTxHash.Hex(),
	)
	if err := row.Scan(&out.Chain, &out.TxHash, &out.SafeTxHash, &out.Status, &out.GasUsed, &out.RawJSON, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("receipt for %s: %w", safeTxHash.Hex(), ErrNotFound)
		}
		return nil, err
	}
	out.CreatedAt = parseTimestamp(created)
	return &out, nil
}

// Succeeded reports whether the receipt recorded a successful execution.
func (r *StoredReceipt) Succeeded() bool {
	return r.Status == types.ReceiptStatusSuccessful
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
