package safe

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const primaryType = "SafeTx"

var (
	domainTypeHash = crypto.Keccak256Hash([]byte(
		"EIP712Domain(uint256 chainId,address verifyingContract)",
	))
	safeTxTypeHash = crypto.Keccak256Hash([]byte(
		"SafeTx(address to,uint256 value,bytes data,uint8 operation," +
			"uint256 safeTxGas,uint256 baseGas,uint256 gasPrice," +
			"address gasToken,address refundReceiver,uint256 nonce)",
	))
)

// safeTxTypes lists SafeTx fields in signing order. chainId belongs to the
// domain, never to the message.
var safeTxTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	primaryType: {
		{Name: "to", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "data", Type: "bytes"},
		{Name: "operation", Type: "uint8"},
		{Name: "safeTxGas", Type: "uint256"},
		{Name: "baseGas", Type: "uint256"},
		{Name: "gasPrice", Type: "uint256"},
		{Name: "gasToken", Type: "address"},
		{Name: "refundReceiver", Type: "address"},
		{Name: "nonce", Type: "uint256"},
	},
}

// TypedData returns the EIP-712 structure a wallet signs directly under the
// typed-data scheme.
func TypedData(domain Domain, tx Transaction) apitypes.TypedData {
	chainID := (*math.HexOrDecimal256)(new(big.Int).Set(orZero(domain.ChainID)))

	data := tx.Data
	if data == nil {
		data = []byte{}
	}

	return apitypes.TypedData{
		Types:       safeTxTypes,
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			ChainId:           chainID,
			VerifyingContract: domain.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"to":             tx.To.Hex(),
			"value":          new(big.Int).Set(orZero(tx.Value)),
			"data":           data,
			"operation":      big.NewInt(int64(tx.Operation)),
			"safeTxGas":      new(big.Int).Set(orZero(tx.SafeTxGas)),
			"baseGas":        new(big.Int).Set(orZero(tx.BaseGas)),
			"gasPrice":       new(big.Int).Set(orZero(tx.GasPrice)),
			"gasToken":       tx.GasToken.Hex(),
			"refundReceiver": tx.RefundReceiver.Hex(),
			"nonce":          new(big.Int).Set(orZero(tx.Nonce)),
		},
	}
}

// DomainSeparator returns the EIP-712 domain separator of a Safe.
func DomainSeparator(domain Domain) common.Hash {
	return crypto.Keccak256Hash(
		domainTypeHash[:],
		word(domain.ChainID),
		common.LeftPadBytes(domain.VerifyingContract[:], 32),
	)
}

// StructHash returns hashStruct(SafeTx) for tx.
func StructHash(tx Transaction) common.Hash {
	return crypto.Keccak256Hash(
		safeTxTypeHash[:],
		common.LeftPadBytes(tx.To[:], 32),
		word(tx.Value),
		crypto.Keccak256(tx.Data),
		word(big.NewInt(int64(tx.Operation))),
		word(tx.SafeTxGas),
		word(tx.BaseGas),
		word(tx.GasPrice),
		common.LeftPadBytes(tx.GasToken[:], 32),
		common.LeftPadBytes(tx.RefundReceiver[:], 32),
		word(tx.Nonce),
	)
}

// Hash returns the Safe transaction hash: keccak256(0x19 0x01 ‖ domainSeparator ‖ structHash).
// This is the value the contract checks owner signatures against.
func Hash(domain Domain, tx Transaction) common.Hash {
	separator := DomainSeparator(domain)
	structHash := StructHash(tx)
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, separator[:], structHash[:])
}

// word encodes v as a 32-byte big-endian uint256. Callers validate range.
func word(v *big.Int) []byte {
	return math.U256Bytes(new(big.Int).Set(orZero(v)))
}
