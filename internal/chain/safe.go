package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/yolodolo42/safesig/internal/safe"
)

// ErrNotAContract is returned when the Safe address has no deployed code.
var ErrNotAContract = errors.New("no contract deployed at address")

// ContractCaller performs read-only calls against a named chain.
// *Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, chainName string, msg ethereum.CallMsg) ([]byte, error)
	CodeAt(ctx context.Context, chainName string, address common.Address) ([]byte, error)
}

// SafeReader reads Safe state from a chain.
type SafeReader struct {
	caller ContractCaller
	chain  string
}

// NewSafeReader returns a reader bound to one chain.
func NewSafeReader(caller ContractCaller, chainName string) *SafeReader {
	return &SafeReader{caller: caller, chain: chainName}
}

// Nonce returns the Safe's current transaction nonce.
func (r *SafeReader) Nonce(ctx context.Context, safeAddr common.Address) (*big.Int, error) {
	out, err := r.call(ctx, safeAddr, safe.EncodeNonce())
	if err != nil {
		return nil, fmt.Errorf("safe nonce: %w", err)
	}
	return safe.DecodeNonce(out)
}

// Threshold returns the number of owner signatures the Safe requires.
func (r *SafeReader) Threshold(ctx context.Context, safeAddr common.Address) (*big.Int, error) {
	out, err := r.call(ctx, safeAddr, safe.EncodeGetThreshold())
	if err != nil {
		return nil, fmt.Errorf("safe threshold: %w", err)
	}
	return safe.DecodeThreshold(out)
}

// Owners returns the Safe's owner list in contract order.
func (r *SafeReader) Owners(ctx context.Context, safeAddr common.Address) ([]common.Address, error) {
	out, err := r.call(ctx, safeAddr, safe.EncodeGetOwners())
	if err != nil {
		return nil, fmt.Errorf("safe owners: %w", err)
	}
	return safe.DecodeOwners(out)
}

func (r *SafeReader) call(ctx context.Context, safeAddr common.Address, data []byte) ([]byte, error) {
	out, err := r.caller.CallContract(ctx, r.chain, ethereum.CallMsg{To: &safeAddr, Data: data})
	if err != nil {
		return nil, err
	}
	// An empty return from a view call almost always means an EOA or an
	// undeployed Safe; check once so the error says so.
	if len(out) == 0 {
		code, codeErr := r.caller.CodeAt(ctx, r.chain, safeAddr)
		if codeErr == nil && len(code) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotAContract, safeAddr.Hex())
		}
	}
	return out, nil
}

// SafeNonce returns the nonce of a Safe on the given chain.
func (c *Client) SafeNonce(ctx context.Context, chainName string, safeAddr common.Address) (*big.Int, error) {
	return NewSafeReader(c, chainName).Nonce(ctx, safeAddr)
}

// SafeThreshold returns the signature threshold of a Safe on the given chain.
func (c *Client) SafeThreshold(ctx context.Context, chainName string, safeAddr common.Address) (*big.Int, error) {
	return NewSafeReader(c, chainName).Threshold(ctx, safeAddr)
}

// SafeOwners returns the owners of a Safe on the given chain.
func (c *Client) SafeOwners(ctx context.Context, chainName string, safeAddr common.Address) ([]common.Address, error) {
	return NewSafeReader(c, chainName).Owners(ctx, safeAddr)
}
