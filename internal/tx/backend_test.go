package tx

import (
	"bytes"
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/yolodolo42/safesig/internal/safe"
)

// fakeBackend is an in-memory chain used by the builder and executor tests.
type fakeBackend struct {
	nonce     uint64
	tip       *big.Int
	gasPrice  *big.Int
	gas       uint64
	threshold *big.Int // nil makes getThreshold fail
	simErr    error
	sendErr   error

	estimated []ethereum.CallMsg
	simulated []ethereum.CallMsg
	sent      []*types.Transaction
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nonce:     3,
		tip:       big.NewInt(1_000_000_000),
		gasPrice:  big.NewInt(20_000_000_000),
		gas:       120_000,
		threshold: big.NewInt(2),
	}
}

func (f *fakeBackend) GetNonce(context.Context, string, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) EstimateGas(_ context.Context, _ string, msg ethereum.CallMsg) (uint64, error) {
	f.estimated = append(f.estimated, msg)
	return f.gas, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context, string) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context, string) (*big.Int, error) {
	return f.tip, nil
}

func (f *fakeBackend) CallContract(_ context.Context, _ string, msg ethereum.CallMsg) ([]byte, error) {
	if bytes.Equal(msg.Data, safe.EncodeGetThreshold()) {
		if f.threshold == nil {
			return nil, errors.New("rpc unavailable")
		}
		return common.LeftPadBytes(f.threshold.Bytes(), 32), nil
	}
	f.simulated = append(f.simulated, msg)
	if f.simErr != nil {
		return nil, f.simErr
	}
	return common.LeftPadBytes([]byte{1}, 32), nil
}

func (f *fakeBackend) CodeAt(context.Context, string, common.Address) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, _ string, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) WaitMined(_ context.Context, _ string, txHash common.Hash) (*types.Receipt, error) {
	return &types.Receipt{
		Type:    types.DynamicFeeTxType,
		Status:  types.ReceiptStatusSuccessful,
		GasUsed: f.gas - 10_000,
		TxHash:  txHash,
	}, nil
}
