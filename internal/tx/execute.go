package tx

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/yolodolo42/safesig/internal/chain"
	"github.com/yolodolo42/safesig/internal/safe"
	"github.com/yolodolo42/safesig/internal/wallet"
)

var (
	// ErrNoSignatures is returned when execution is requested without any
	// collected signature.
	ErrNoSignatures = errors.New("no signatures collected")
	// ErrBelowThreshold is returned when fewer owners signed than the Safe
	// requires.
	ErrBelowThreshold = errors.New("not enough signatures for safe threshold")
)

// Backend is the chain access the executor needs. *chain.Client satisfies it.
type Backend interface {
	FeeBackend
	chain.ContractCaller
	SendTransaction(ctx context.Context, chainName string, tx *types.Transaction) error
	WaitMined(ctx context.Context, chainName string, txHash common.Hash) (*types.Receipt, error)
}

// ReceiptRecorder persists the receipt of an executed Safe transaction.
type ReceiptRecorder interface {
	Upsert(chain string, safeTxHash common.Hash, receipt *types.Receipt) error
}

// Request describes one execTransaction submission.
type Request struct {
	Chain      string
	Domain     safe.Domain
	Tx         safe.Transaction
	Signatures []byte
	Wait       bool
}

// Result reports what was submitted.
type Result struct {
	SafeTxHash common.Hash
	Owners     []common.Address
	Threshold  *big.Int // nil when it could not be read
	Tx         *types.Transaction
	Fees       SuggestedFees
	Receipt    *types.Receipt // nil unless Request.Wait
}

// Executor submits fully signed Safe transactions from an EOA.
type Executor struct {
	backend  Backend
	receipts ReceiptRecorder
	logger   *zap.Logger
}

// NewExecutor creates an executor. receipts may be nil.
func NewExecutor(backend Backend, receipts ReceiptRecorder, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{backend: backend, receipts: receipts, logger: logger}
}

// Execute re-assembles the collected signatures, checks them against the
// Safe threshold and sends execTransaction signed by signer.
func (e *Executor) Execute(ctx context.Context, signer wallet.Signer, req Request) (*Result, error) {
	session := safe.NewSession(req.Domain, req.Tx)
	if err := session.Load(req.Signatures); err != nil {
		return nil, err
	}
	if session.Len() == 0 {
		return nil, ErrNoSignatures
	}

	pairs, err := session.Owners()
	if err != nil {
		return nil, err
	}
	bundle, err := session.Bundle()
	if err != nil {
		return nil, err
	}

	res := &Result{SafeTxHash: session.Hash()}
	for _, p := range pairs {
		res.Owners = append(res.Owners, p.Owner)
	}

	log := e.logger.With(
		zap.String("chain", req.Chain),
		zap.Stringer("safe", req.Domain.VerifyingContract),
		zap.Stringer("safeTxHash", res.SafeTxHash),
	)

	threshold, err := chain.NewSafeReader(e.backend, req.Chain).Threshold(ctx, req.Domain.VerifyingContract)
	switch {
	case err != nil:
		log.Warn("could not read safe threshold", zap.Error(err))
	case big.NewInt(int64(len(pairs))).Cmp(threshold) < 0:
		return nil, fmt.Errorf("%w: have %d, need %s", ErrBelowThreshold, len(pairs), threshold)
	default:
		res.Threshold = threshold
	}

	calldata, err := safe.EncodeExecTransaction(req.Tx, bundle)
	if err != nil {
		return nil, err
	}

	unsigned, fees, err := BuildUnsignedTx(ctx, e.backend, Intent{
		Chain:    req.Chain,
		ChainID:  req.Domain.ChainID,
		From:     signer.Address(),
		To:       req.Domain.VerifyingContract,
		ValueWei: new(big.Int),
		Data:     calldata,
	})
	if err != nil {
		return nil, err
	}
	res.Fees = fees

	signed, err := signer.SignTransaction(unsigned, req.Domain.ChainID)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	if err := e.backend.SendTransaction(ctx, req.Chain, signed); err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	res.Tx = signed

	log.Info("submitted execTransaction",
		zap.Stringer("tx", signed.Hash()),
		zap.Stringer("from", signer.Address()),
		zap.Int("signatures", len(pairs)),
		zap.Uint64("gas", fees.GasLimit))

	if !req.Wait {
		return res, nil
	}

	receipt, err := e.backend.WaitMined(ctx, req.Chain, signed.Hash())
	if err != nil {
		return res, fmt.Errorf("wait for %s: %w", signed.Hash().Hex(), err)
	}
	res.Receipt = receipt

	if e.receipts != nil {
		if err := e.receipts.Upsert(req.Chain, res.SafeTxHash, receipt); err != nil {
			log.Warn("could not store receipt", zap.Error(err))
		}
	}

	log.Info("execTransaction mined",
		zap.Uint64("status", receipt.Status),
		zap.Uint64("gasUsed", receipt.GasUsed))
	return res, nil
}
