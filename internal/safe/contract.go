package safe

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// safeABIJSON covers the subset of the Safe contract this tool calls.
const safeABIJSON = `[
  {"type":"function","name":"execTransaction","stateMutability":"payable","inputs":[
    {"name":"to","type":"address"},
    {"name":"value","type":"uint256"},
    {"name":"data","type":"bytes"},
    {"name":"operation","type":"uint8"},
    {"name":"safeTxGas","type":"uint256"},
    {"name":"baseGas","type":"uint256"},
    {"name":"gasPrice","type":"uint256"},
    {"name":"gasToken","type":"address"},
    {"name":"refundReceiver","type":"address"},
    {"name":"signatures","type":"bytes"}
  ],"outputs":[{"name":"success","type":"bool"}]},
  {"type":"function","name":"nonce","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getThreshold","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getOwners","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]}
]`

var safeABI = mustParseABI(safeABIJSON)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("safe: invalid contract ABI: %v", err))
	}
	return parsed
}

// EncodeExecTransaction returns calldata for execTransaction. signatures is
// passed through untouched; it should come from Assemble.
func EncodeExecTransaction(tx Transaction, signatures []byte) ([]byte, error) {
	data := tx.Data
	if data == nil {
		data = []byte{}
	}
	if signatures == nil {
		signatures = []byte{}
	}
	return safeABI.Pack("execTransaction",
		tx.To,
		orZero(tx.Value),
		data,
		uint8(tx.Operation),
		orZero(tx.SafeTxGas),
		orZero(tx.BaseGas),
		orZero(tx.GasPrice),
		tx.GasToken,
		tx.RefundReceiver,
		signatures,
	)
}

// EncodeNonce returns calldata for nonce().
func EncodeNonce() []byte { return mustPack("nonce") }

// EncodeGetThreshold returns calldata for getThreshold().
func EncodeGetThreshold() []byte { return mustPack("getThreshold") }

// EncodeGetOwners returns calldata for getOwners().
func EncodeGetOwners() []byte { return mustPack("getOwners") }

// DecodeNonce decodes the return data of nonce().
func DecodeNonce(out []byte) (*big.Int, error) { return unpackUint("nonce", out) }

// DecodeThreshold decodes the return data of getThreshold().
func DecodeThreshold(out []byte) (*big.Int, error) { return unpackUint("getThreshold", out) }

// DecodeOwners decodes the return data of getOwners().
func DecodeOwners(out []byte) ([]common.Address, error) {
	values, err := safeABI.Unpack("getOwners", out)
	if err != nil {
		return nil, fmt.Errorf("decode getOwners: %w", err)
	}
	owners, ok := values[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("decode getOwners: unexpected type %T", values[0])
	}
	return owners, nil
}

func mustPack(method string) []byte {
	data, err := safeABI.Pack(method)
	if err != nil {
		panic(fmt.Sprintf("safe: pack %s: %v", method, err))
	}
	return data
}

func unpackUint(method string, out []byte) (*big.Int, error) {
	values, err := safeABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", method, err)
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("decode %s: unexpected type %T", method, values[0])
	}
	return v, nil
}
