package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/yolodolo42/safesig/internal/safe"
)

// BundleKey identifies the signatures collected for one Safe transaction.
type BundleKey struct {
	ChainID    *big.Int
	Safe       common.Address
	SafeTxHash common.Hash
}

// KeyFor builds the key for a transaction hash under a Safe domain.
func KeyFor(domain safe.Domain, safeTxHash common.Hash) BundleKey {
	return BundleKey{
		ChainID:    domain.ChainID,
		Safe:       domain.VerifyingContract,
		SafeTxHash: safeTxHash,
	}
}

func (k BundleKey) args() ([]any, error) {
	if k.ChainID == nil || k.ChainID.Sign() <= 0 {
		return nil, fmt.Errorf("bundle key: chain id is required")
	}
	return []any{k.ChainID.String(), k.Safe.Hex(), k.SafeTxHash.Hex()}, nil
}

// BundleStore keeps the assembled signature bundle of each pending Safe
// transaction so signing can continue across invocations.
type BundleStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// Load returns the stored bundle, or nil when nothing was collected yet.
func (s *BundleStore) Load(ctx context.Context, key BundleKey) ([]byte, error) {
	args, err := key.args()
	if err != nil {
		return nil, err
	}

	var encoded string
	err = s.db.QueryRowContext(ctx,
		`SELECT signatures FROM bundles WHERE chain_id = ? AND safe = ? AND safe_tx_hash = ?`,
		args...,
	).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}

	bundle, err := hexutil.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("load bundle: stored signatures are corrupt: %w", err)
	}
	return bundle, nil
}

// Save replaces the stored bundle. An empty bundle clears the entry.
func (s *BundleStore) Save(ctx context.Context, key BundleKey, bundle []byte) error {
	if len(bundle) == 0 {
		_, err := s.Clear(ctx, key)
		return err
	}
	if len(bundle)%safe.SignatureLength != 0 {
		return fmt.Errorf("save bundle: %w: %d bytes", safe.ErrMalformedSignature, len(bundle))
	}

	args, err := key.args()
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO bundles (chain_id, safe, safe_tx_hash, signatures)
VALUES (?, ?, ?, ?)
ON CONFLICT(chain_id, safe, safe_tx_hash) DO UPDATE SET
	signatures=excluded.signatures,
	updated_at=CURRENT_TIMESTAMP
`, append(args, hexutil.Encode(bundle))...)
	if err != nil {
		return fmt.Errorf("save bundle: %w", err)
	}

	s.logger.Debug("saved bundle",
		zap.Stringer("safe", key.Safe),
		zap.Stringer("safeTxHash", key.SafeTxHash),
		zap.Int("signatures", len(bundle)/safe.SignatureLength))
	return nil
}

// Clear drops the stored bundle and reports whether one existed.
func (s *BundleStore) Clear(ctx context.Context, key BundleKey) (bool, error) {
	args, err := key.args()
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM bundles WHERE chain_id = ? AND safe = ? AND safe_tx_hash = ?`,
		args...,
	)
	if err != nil {
		return false, fmt.Errorf("clear bundle: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("clear bundle: %w", err)
	}

	s.logger.Debug("cleared bundle",
		zap.Stringer("safe", key.Safe),
		zap.Stringer("safeTxHash", key.SafeTxHash),
		zap.Bool("existed", n > 0))
	return n > 0, nil
}
