package safe

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeHashes(t *testing.T) {
	// Values hard-coded in the Safe contracts.
	assert.Equal(t,
		common.HexToHash("0x47e79534a245952e8b16893a336b85a3d9ea9fa8c573f3d803afb92a79469218"),
		domainTypeHash)
	assert.Equal(t,
		common.HexToHash("0xbb8310d486368db6bd6f849402fdd73ad53d316b5a4b2644ad6efe0f941286d8"),
		safeTxTypeHash)
}

func TestHash(t *testing.T) {
	t.Run("matches apitypes typed data hash", func(t *testing.T) {
		txs := map[string]Transaction{
			"zero transfer": testTx(),
			"call with data and refund": {
				To:             common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
				Value:          big.NewInt(1_000_000_000_000_000_000),
				Data:           common.FromHex("0xa9059cbb000000000000000000000000f39fd6e51aad88f6f4ce6ab8827279cfffb92266"),
				Operation:      OperationDelegateCall,
				SafeTxGas:      big.NewInt(50000),
				BaseGas:        big.NewInt(21000),
				GasPrice:       big.NewInt(1_000_000_000),
				GasToken:       common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
				RefundReceiver: common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
				Nonce:          big.NewInt(42),
			},
		}

		for name, tx := range txs {
			t.Run(name, func(t *testing.T) {
				want, _, err := apitypes.TypedDataAndHash(TypedData(testDomain(), tx))
				require.NoError(t, err)
				assert.Equal(t, common.BytesToHash(want), Hash(testDomain(), tx))
			})
		}
	})

	t.Run("nil numbers hash as zero", func(t *testing.T) {
		tx := testTx()
		withNils := tx
		withNils.Value, withNils.SafeTxGas, withNils.BaseGas, withNils.GasPrice, withNils.Nonce = nil, nil, nil, nil, nil
		withNils.Data = nil

		assert.Equal(t, Hash(testDomain(), tx), Hash(testDomain(), withNils))
	})

	t.Run("depends on chain id", func(t *testing.T) {
		other := testDomain()
		other.ChainID = big.NewInt(100)
		assert.NotEqual(t, Hash(testDomain(), testTx()), Hash(other, testTx()))
	})

	t.Run("depends on verifying contract", func(t *testing.T) {
		other := testDomain()
		other.VerifyingContract = common.HexToAddress("0x0000000000000000000000000000000000000001")
		assert.NotEqual(t, Hash(testDomain(), testTx()), Hash(other, testTx()))
	})

	t.Run("depends on nonce", func(t *testing.T) {
		next := testTx()
		next.Nonce = big.NewInt(1)
		assert.NotEqual(t, Hash(testDomain(), testTx()), Hash(testDomain(), next))
	})
}

func TestTypedData(t *testing.T) {
	td := TypedData(testDomain(), testTx())

	assert.Equal(t, "SafeTx", td.PrimaryType)
	assert.Equal(t, testDomain().VerifyingContract, common.HexToAddress(td.Domain.VerifyingContract))
	assert.Equal(t, int64(1), (*big.Int)(td.Domain.ChainId).Int64())
	assert.Empty(t, td.Domain.Name)

	t.Run("message fields follow SafeTx order", func(t *testing.T) {
		names := make([]string, 0, len(td.Types["SafeTx"]))
		for _, f := range td.Types["SafeTx"] {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{
			"to", "value", "data", "operation", "safeTxGas",
			"baseGas", "gasPrice", "gasToken", "refundReceiver", "nonce",
		}, names)
		assert.Len(t, td.Message, len(names))
	})

	t.Run("does not alias caller values", func(t *testing.T) {
		tx := testTx()
		td := TypedData(testDomain(), tx)
		td.Message["value"].(*big.Int).SetInt64(99)
		assert.Equal(t, int64(0), tx.Value.Int64())
	})
}
