package wallet

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// ErrWatchOnly is returned when a watch-only signer is asked to sign
var ErrWatchOnly = errors.New("watch-only account cannot sign")

// AddressSigner knows an owner address but holds no key. It is enough for
// pre-approved signatures, which carry only the owner address.
type AddressSigner struct {
	address common.Address
}

// NewAddressSigner creates a watch-only signer for address
func NewAddressSigner(address common.Address) *AddressSigner {
	return &AddressSigner{address: address}
}

// Address returns the watched address
func (as *AddressSigner) Address() common.Address {
	return as.address
}

// SignTransaction always fails with ErrWatchOnly
func (as *AddressSigner) SignTransaction(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return nil, ErrWatchOnly
}

// SignMessage always fails with ErrWatchOnly
func (as *AddressSigner) SignMessage(message []byte) ([]byte, error) {
	return nil, ErrWatchOnly
}

// SignTypedData always fails with ErrWatchOnly
func (as *AddressSigner) SignTypedData(typedData apitypes.TypedData) ([]byte, error) {
	return nil, ErrWatchOnly
}
