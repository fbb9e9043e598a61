package store

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yolodolo42/safesig/internal/safe"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDSN(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_CreatesFile(t *testing.T) {
	dataDir := t.TempDir()
	db, err := Open(dataDir, nil)
	require.NoError(t, err)
	require.NotNil(t, db)
	require.NoError(t, db.Close())

	_, err = os.Stat(filepath.Join(dataDir, DBFile))
	assert.NoError(t, err)
}

func TestClose_Nil(t *testing.T) {
	var db *DB
	assert.NoError(t, db.Close())
}

func testKey() BundleKey {
	return KeyFor(safe.Domain{
		ChainID:           big.NewInt(11155111),
		VerifyingContract: common.HexToAddress("0x5afe5afe5afe5afe5afe5afe5afe5afe5afe5afe"),
	}, common.HexToHash("0x01"))
}

func fakeBundle(n int) []byte {
	out := make([]byte, 0, n*safe.SignatureLength)
	for i := 0; i < n; i++ {
		sig := make([]byte, safe.SignatureLength)
		sig[0] = byte(i + 1)
		sig[64] = 27
		out = append(out, sig...)
	}
	return out
}

func TestBundleStore(t *testing.T) {
	ctx := context.Background()
	bundles := openMemory(t).Bundles()
	key := testKey()

	t.Run("load missing returns nil", func(t *testing.T) {
		got, err := bundles.Load(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("save then load", func(t *testing.T) {
		require.NoError(t, bundles.Save(ctx, key, fakeBundle(2)))

		got, err := bundles.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, fakeBundle(2), got)
	})

	t.Run("save replaces", func(t *testing.T) {
		require.NoError(t, bundles.Save(ctx, key, fakeBundle(3)))

		got, err := bundles.Load(ctx, key)
		require.NoError(t, err)
		assert.Len(t, got, 3*safe.SignatureLength)
	})

	t.Run("keys are independent", func(t *testing.T) {
		other := key
		other.SafeTxHash = common.HexToHash("0x02")

		got, err := bundles.Load(ctx, other)
		require.NoError(t, err)
		assert.Nil(t, got)

		other = key
		other.ChainID = big.NewInt(1)
		got, err = bundles.Load(ctx, other)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("clear", func(t *testing.T) {
		existed, err := bundles.Clear(ctx, key)
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = bundles.Clear(ctx, key)
		require.NoError(t, err)
		assert.False(t, existed)

		got, err := bundles.Load(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("saving empty clears", func(t *testing.T) {
		require.NoError(t, bundles.Save(ctx, key, fakeBundle(1)))
		require.NoError(t, bundles.Save(ctx, key, nil))

		got, err := bundles.Load(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("rejects partial signature", func(t *testing.T) {
		err := bundles.Save(ctx, key, make([]byte, 131))
		assert.ErrorIs(t, err, safe.ErrMalformedSignature)
	})

	t.Run("requires chain id", func(t *testing.T) {
		bad := key
		bad.ChainID = nil
		_, err := bundles.Load(ctx, bad)
		assert.Error(t, err)
	})
}

func TestReceiptStore(t *testing.T) {
	receipts := openMemory(t).Receipts()
	safeTxHash := common.HexToHash("0xabc")

	receipt := &types.Receipt{
		Type:        types.DynamicFeeTxType,
		Status:      types.ReceiptStatusSuccessful,
		GasUsed:     84000,
		TxHash:      common.HexToHash("0xdead"),
		BlockNumber: big.NewInt(10),
	}

	t.Run("upsert and find", func(t *testing.T) {
		require.NoError(t, receipts.Upsert("sepolia", safeTxHash, receipt))

		got, err := receipts.Find("sepolia", safeTxHash)
		require.NoError(t, err)
		assert.Equal(t, "sepolia", got.Chain)
		assert.Equal(t, receipt.TxHash.Hex(), got.TxHash)
		assert.Equal(t, safeTxHash.Hex(), got.SafeTxHash)
		assert.True(t, got.Succeeded())
		assert.Equal(t, uint64(84000), got.GasUsed)
		assert.NotEmpty(t, got.RawJSON)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("upsert overwrites", func(t *testing.T) {
		updated := *receipt
		updated.GasUsed = 90000
		require.NoError(t, receipts.Upsert("sepolia", safeTxHash, &updated))

		got, err := receipts.Find("sepolia", safeTxHash)
		require.NoError(t, err)
		assert.Equal(t, uint64(90000), got.GasUsed)
	})

	t.Run("success wins over a later revert", func(t *testing.T) {
		reverted := *receipt
		reverted.TxHash = common.HexToHash("0xf00d")
		reverted.Status = types.ReceiptStatusFailed
		require.NoError(t, receipts.Upsert("sepolia", safeTxHash, &reverted))

		got, err := receipts.Find("sepolia", safeTxHash)
		require.NoError(t, err)
		assert.Equal(t, receipt.TxHash.Hex(), got.TxHash)
	})

	t.Run("only reverts", func(t *testing.T) {
		other := common.HexToHash("0xabd")
		reverted := *receipt
		reverted.TxHash = common.HexToHash("0xcafe")
		reverted.Status = types.ReceiptStatusFailed
		require.NoError(t, receipts.Upsert("sepolia", other, &reverted))

		got, err := receipts.Find("sepolia", other)
		require.NoError(t, err)
		assert.False(t, got.Succeeded())
	})

	t.Run("missing receipt", func(t *testing.T) {
		_, err := receipts.Find("sepolia", common.HexToHash("0xbeef"))
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = receipts.Find("gnosis", safeTxHash)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("validates input", func(t *testing.T) {
		assert.Error(t, receipts.Upsert("", safeTxHash, receipt))
		assert.Error(t, receipts.Upsert("sepolia", safeTxHash, nil))
		_, err := receipts.Find("", safeTxHash)
		assert.Error(t, err)
	})
}
