package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Capability exposes a Signer to the Safe signing code. Signing is
// synchronous here, so the context is only checked before each request.
type Capability struct {
	signer Signer
}

// NewCapability wraps s
func NewCapability(s Signer) *Capability {
	return &Capability{signer: s}
}

func (c *Capability) Address() common.Address {
	return c.signer.Address()
}

func (c *Capability) SignTypedData(ctx context.Context, typedData apitypes.TypedData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.signer.SignTypedData(typedData)
}

func (c *Capability) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.signer.SignMessage(message)
}
