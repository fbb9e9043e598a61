package safe

import (
	"fmt"
	"io"
	gomath "math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/spf13/viper"
)

// Draft is a transaction description read from a file, before the caller
// fills in what the file leaves out.
type Draft struct {
	Tx       Transaction
	HasNonce bool

	// Optional Safe context; nil when the file does not set it.
	ChainID *big.Int
	Safe    *common.Address
}

// draftFile mirrors the on-disk format. Every value is read as a string and
// parsed as a uint256 afterwards; unquoted numbers that the format decoder
// turned into floats are only accepted while float64 still holds them exactly.
type draftFile struct {
	Safe           string `mapstructure:"safe"`
	ChainID        string `mapstructure:"chainId"`
	To             string `mapstructure:"to"`
	Value          string `mapstructure:"value"`
	Data           string `mapstructure:"data"`
	Operation      string `mapstructure:"operation"`
	SafeTxGas      string `mapstructure:"safeTxGas"`
	BaseGas        string `mapstructure:"baseGas"`
	GasPrice       string `mapstructure:"gasPrice"`
	GasToken       string `mapstructure:"gasToken"`
	RefundReceiver string `mapstructure:"refundReceiver"`
	Nonce          string `mapstructure:"nonce"`
}

// LoadDraft reads a YAML, JSON or TOML transaction file. The format follows
// the file extension.
func LoadDraft(path string) (*Draft, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read transaction file: %w", err)
	}
	return decodeDraft(v)
}

// ParseDraft reads a transaction description of the given format ("yaml", "json", ...).
func ParseDraft(r io.Reader, format string) (*Draft, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("read transaction: %w", err)
	}
	return decodeDraft(v)
}

func decodeDraft(v *viper.Viper) (*Draft, error) {
	var f draftFile
	if err := v.Unmarshal(&f, viper.DecodeHook(exactNumberHook)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	d := &Draft{}
	var err error

	if d.Tx.To, err = parseAddress("to", f.To, false); err != nil {
		return nil, err
	}
	if d.Tx.GasToken, err = parseAddress("gasToken", f.GasToken, true); err != nil {
		return nil, err
	}
	if d.Tx.RefundReceiver, err = parseAddress("refundReceiver", f.RefundReceiver, true); err != nil {
		return nil, err
	}
	if d.Tx.Data, err = parseData(f.Data); err != nil {
		return nil, err
	}

	amounts := []struct {
		name string
		raw  string
		dst  **big.Int
	}{
		{"value", f.Value, &d.Tx.Value},
		{"safeTxGas", f.SafeTxGas, &d.Tx.SafeTxGas},
		{"baseGas", f.BaseGas, &d.Tx.BaseGas},
		{"gasPrice", f.GasPrice, &d.Tx.GasPrice},
	}
	for _, a := range amounts {
		if *a.dst, err = parseUint256(a.name, a.raw); err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(f.Operation) != "" {
		op, ok := math.ParseUint64(strings.TrimSpace(f.Operation))
		if !ok || op > uint64(OperationDelegateCall) {
			return nil, fmt.Errorf("%w: operation must be 0 (call) or 1 (delegatecall), got %q", ErrInvalidTransaction, f.Operation)
		}
		d.Tx.Operation = Operation(op)
	}

	if strings.TrimSpace(f.Nonce) != "" {
		if d.Tx.Nonce, err = parseUint256("nonce", f.Nonce); err != nil {
			return nil, err
		}
		d.HasNonce = true
	}

	if strings.TrimSpace(f.ChainID) != "" {
		if d.ChainID, err = parseUint256("chainId", f.ChainID); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(f.Safe) != "" {
		addr, err := parseAddress("safe", f.Safe, false)
		if err != nil {
			return nil, err
		}
		d.Safe = &addr
	}

	if err := d.Tx.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// maxExactFloat is 2^53; from here on neighbouring integers share a float64.
const maxExactFloat = 1 << 53

// exactNumberHook turns float values into decimal strings, refusing any that
// may already have lost digits. JSON numbers always arrive as float64.
func exactNumberHook(from, to reflect.Kind, data any) (any, error) {
	if to != reflect.String {
		return data, nil
	}
	var f float64
	switch from {
	case reflect.Float64:
		f = data.(float64)
	case reflect.Float32:
		f = float64(data.(float32))
	default:
		return data, nil
	}
	if f != gomath.Trunc(f) || gomath.Abs(f) >= maxExactFloat {
		return nil, fmt.Errorf("%w: number %v cannot be read exactly, quote it as a string", ErrInvalidTransaction, data)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func parseAddress(field, s string, optional bool) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if optional {
			return common.Address{}, nil
		}
		return common.Address{}, fmt.Errorf("%w: %s is required", ErrInvalidTransaction, field)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %s is not an address: %q", ErrInvalidTransaction, field, s)
	}
	return common.HexToAddress(s), nil
}

func parseUint256(field, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := math.ParseBig256(s)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s is not a uint256: %q", ErrInvalidTransaction, field, s)
	}
	return v, nil
}

func parseData(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0x" {
		return []byte{}, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrInvalidTransaction, err)
	}
	return b, nil
}
