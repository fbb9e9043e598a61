package safe

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/require"
)

// Well-known development keys (DO NOT use in production).
const (
	keyA = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80" // 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266
	keyB = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d" // 0x70997970C51812dc3A010C7d01b50e0d17dc79C8
	keyC = "5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a" // 0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC
)

// keyCapability signs with a raw key and returns v in {0,1} like crypto.Sign.
type keyCapability struct {
	key *ecdsa.PrivateKey
}

func newKeyCapability(t *testing.T, hexKey string) *keyCapability {
	t.Helper()
	key, err := crypto.HexToECDSA(hexKey)
	require.NoError(t, err)
	return &keyCapability{key: key}
}

func (k *keyCapability) Address() common.Address {
	return crypto.PubkeyToAddress(k.key.PublicKey)
}

func (k *keyCapability) SignTypedData(_ context.Context, typedData apitypes.TypedData) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, err
	}
	return crypto.Sign(hash, k.key)
}

func (k *keyCapability) SignMessage(_ context.Context, message []byte) ([]byte, error) {
	return crypto.Sign(accounts.TextHash(message), k.key)
}

// failingCapability rejects every request, like a user declining a prompt.
type failingCapability struct {
	addr common.Address
	err  error
}

func (f failingCapability) Address() common.Address { return f.addr }

func (f failingCapability) SignTypedData(context.Context, apitypes.TypedData) ([]byte, error) {
	return nil, f.err
}

func (f failingCapability) SignMessage(context.Context, []byte) ([]byte, error) {
	return nil, f.err
}

// rawCapability returns a fixed byte string for every signature request.
type rawCapability struct {
	out []byte
}

func (r rawCapability) Address() common.Address { return common.Address{} }

func (r rawCapability) SignTypedData(context.Context, apitypes.TypedData) ([]byte, error) {
	return r.out, nil
}

func (r rawCapability) SignMessage(context.Context, []byte) ([]byte, error) {
	return r.out, nil
}

var errUserRejected = errors.New("user rejected the request")

func testDomain() Domain {
	return Domain{
		ChainID:           big.NewInt(1),
		VerifyingContract: common.HexToAddress("0x5afe5afe5afe5afe5afe5afe5afe5afe5afe5afe"),
	}
}

func testTx() Transaction {
	return Transaction{
		To:        common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Value:     big.NewInt(0),
		Data:      []byte{},
		Operation: OperationCall,
		SafeTxGas: big.NewInt(0),
		BaseGas:   big.NewInt(0),
		GasPrice:  big.NewInt(0),
		Nonce:     big.NewInt(0),
	}
}
