package wallet

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// KeySigner signs with a raw private key held in memory. It backs the
// --private-key flag and tests; prefer the keystore for anything else.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewKeySigner creates a signer from a hex-encoded private key
func NewKeySigner(privateKeyHex string) (*KeySigner, error) {
	key, err := ParsePrivateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	return &KeySigner{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Address returns the address derived from the key
func (s *KeySigner) Address() common.Address {
	return s.address
}

// SignTransaction signs a transaction
func (s *KeySigner) SignTransaction(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}

// SignMessage signs an arbitrary message using EIP-191 personal sign
func (s *KeySigner) SignMessage(message []byte) ([]byte, error) {
	return signPersonal(s.key, message)
}

// SignTypedData signs EIP-712 typed data
func (s *KeySigner) SignTypedData(typedData apitypes.TypedData) ([]byte, error) {
	return signTypedData(s.key, typedData)
}
