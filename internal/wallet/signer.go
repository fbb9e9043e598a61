package wallet

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Signer is the interface for signing transactions and messages.
// Different implementations support different key management strategies.
type Signer interface {
	// Address returns the Ethereum address of the signer
	Address() common.Address

	// SignTransaction signs a transaction with the given chain ID
	SignTransaction(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)

	// SignMessage signs an arbitrary message (EIP-191 personal sign)
	SignMessage(message []byte) ([]byte, error)

	// SignTypedData signs EIP-712 typed data
	SignTypedData(typedData apitypes.TypedData) ([]byte, error)
}

// signPersonal signs keccak256("\x19Ethereum Signed Message:\n" + len + message).
// The prefix keeps a signed message from being replayed as a transaction.
func signPersonal(key *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	return signDigest(key, accounts.TextHash(message))
}

// signTypedData signs keccak256("\x19\x01" ‖ domainSeparator ‖ hashStruct(message)).
func signTypedData(key *ecdsa.PrivateKey, typedData apitypes.TypedData) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, err
	}
	return signDigest(key, hash)
}

func signDigest(key *ecdsa.PrivateKey, digest []byte) ([]byte, error) {
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, err
	}

	// Transform V from crypto.Sign's 0/1 to 27/28 for web3.js/MetaMask compatibility.
	// Ethereum's ecrecover precompile expects V in {27,28} not {0,1}.
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
