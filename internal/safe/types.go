// Package safe builds, signs, recovers and assembles owner signatures for
// Safe multisig transactions.
//
// The package performs no I/O. Signing is delegated to a Capability, and the
// assembled signature bundle is handed back to the caller for submission.
package safe

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Operation is the Safe call type.
type Operation uint8

const (
	OperationCall         Operation = 0
	OperationDelegateCall Operation = 1
)

func (op Operation) String() string {
	switch op {
	case OperationCall:
		return "call"
	case OperationDelegateCall:
		return "delegatecall"
	default:
		return fmt.Sprintf("operation(%d)", uint8(op))
	}
}

// Transaction is the SafeTx message owners sign.
// A nil numeric field is treated as zero.
type Transaction struct {
	To             common.Address
	Value          *big.Int
	Data           []byte
	Operation      Operation
	SafeTxGas      *big.Int
	BaseGas        *big.Int
	GasPrice       *big.Int
	GasToken       common.Address
	RefundReceiver common.Address
	Nonce          *big.Int
}

// Domain is the EIP-712 domain of a Safe: the chain it lives on and its address.
type Domain struct {
	ChainID           *big.Int
	VerifyingContract common.Address
}

// Validate checks that every numeric field fits in a uint256 and that the
// operation is a call or a delegatecall.
func (tx Transaction) Validate() error {
	fields := []struct {
		name string
		v    *big.Int
	}{
		{"value", tx.Value},
		{"safeTxGas", tx.SafeTxGas},
		{"baseGas", tx.BaseGas},
		{"gasPrice", tx.GasPrice},
		{"nonce", tx.Nonce},
	}
	for _, f := range fields {
		if f.v == nil {
			continue
		}
		if f.v.Sign() < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidTransaction, f.name)
		}
		if f.v.BitLen() > 256 {
			return fmt.Errorf("%w: %s overflows uint256", ErrInvalidTransaction, f.name)
		}
	}
	if tx.Operation > OperationDelegateCall {
		return fmt.Errorf("%w: unsupported operation %d", ErrInvalidTransaction, tx.Operation)
	}
	return nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
