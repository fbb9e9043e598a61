// Package tx builds and submits the EOA transaction that executes a Safe
// transaction on chain.
package tx

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrSimulationFailed is returned when the eth_call dry run reverts.
var ErrSimulationFailed = errors.New("transaction simulation failed")

// FeeBackend is the subset of the chain client needed to price and
// simulate a transaction.
type FeeBackend interface {
	GetNonce(ctx context.Context, chainName string, address common.Address) (uint64, error)
	EstimateGas(ctx context.Context, chainName string, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context, chainName string) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context, chainName string) (*big.Int, error)
	CallContract(ctx context.Context, chainName string, msg ethereum.CallMsg) ([]byte, error)
}

// Intent captures a state-changing transaction the user wants to perform.
type Intent struct {
	Chain       string         // chain name (e.g., "ethereum")
	ChainID     *big.Int       // EIP-155 chain id
	From        common.Address // signer address
	To          common.Address // recipient
	ValueWei    *big.Int       // native value
	Data        []byte         // calldata
	Nonce       *uint64        // optional override
	GasLimit    *uint64        // optional override
	MaxFeePerG  *big.Int       // optional override
	MaxPriority *big.Int       // optional override
}

// SuggestedFees carries gas estimates so the caller can render them.
type SuggestedFees struct {
	GasLimit         uint64
	MaxFeePerGas     *big.Int
	MaxPriorityFee   *big.Int
	EstimatedCostWei *big.Int
}

// BuildUnsignedTx simulates and prepares an unsigned EIP-1559 transaction.
func BuildUnsignedTx(ctx context.Context, cc FeeBackend, intent Intent) (*types.Transaction, SuggestedFees, error) {
	if intent.ValueWei == nil {
		intent.ValueWei = new(big.Int)
	}
	if intent.ChainID == nil {
		return nil, SuggestedFees{}, fmt.Errorf("chain id missing")
	}

	// Nonce
	nonce := uint64(0)
	if intent.Nonce != nil {
		nonce = *intent.Nonce
	} else {
		n, err := cc.GetNonce(ctx, intent.Chain, intent.From)
		if err != nil {
			return nil, SuggestedFees{}, fmt.Errorf("fetch nonce: %w", err)
		}
		nonce = n
	}

	// Fees
	maxFee := intent.MaxFeePerG
	maxPrio := intent.MaxPriority
	if maxFee == nil || maxPrio == nil {
		tip, err := cc.SuggestGasTipCap(ctx, intent.Chain)
		if err != nil {
			return nil, SuggestedFees{}, fmt.Errorf("suggest tip: %w", err)
		}
		fee, err := cc.SuggestGasPrice(ctx, intent.Chain)
		if err != nil {
			return nil, SuggestedFees{}, fmt.Errorf("suggest gas price: %w", err)
		}
		if maxPrio == nil {
			maxPrio = tip
		}
		if maxFee == nil {
			maxFee = fee
		}
	}
	if maxFee.Cmp(maxPrio) < 0 {
		maxFee = new(big.Int).Set(maxPrio)
	}

	call := ethereum.CallMsg{
		From:      intent.From,
		To:        &intent.To,
		GasFeeCap: maxFee,
		GasTipCap: maxPrio,
		Value:     intent.ValueWei,
		Data:      intent.Data,
	}

	// Dry run first so a revert reason (bad signatures, wrong nonce) surfaces
	// before gas estimation swallows it.
	if _, err := cc.CallContract(ctx, intent.Chain, call); err != nil {
		return nil, SuggestedFees{}, fmt.Errorf("%w: %w", ErrSimulationFailed, err)
	}

	// Gas limit
	gasLimit := uint64(0)
	if intent.GasLimit != nil {
		gasLimit = *intent.GasLimit
	} else {
		gl, err := cc.EstimateGas(ctx, intent.Chain, call)
		if err != nil {
			return nil, SuggestedFees{}, fmt.Errorf("estimate gas: %w", err)
		}
		gasLimit = gl
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   intent.ChainID,
		Nonce:     nonce,
		GasTipCap: maxPrio,
		GasFeeCap: maxFee,
		Gas:       gasLimit,
		To:        &intent.To,
		Value:     intent.ValueWei,
		Data:      intent.Data,
	})

	total := new(big.Int).Mul(maxFee, new(big.Int).SetUint64(gasLimit))
	total.Add(total, intent.ValueWei)

	return tx, SuggestedFees{
		GasLimit:         gasLimit,
		MaxFeePerGas:     maxFee,
		MaxPriorityFee:   maxPrio,
		EstimatedCostWei: total,
	}, nil
}
