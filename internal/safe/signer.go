package safe

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Capability is everything the package needs from an account: its address,
// an EIP-712 signature over typed data, and an EIP-191 personal signature
// over a message. Key material never crosses this boundary.
//
// Signatures returned by the capability are 65 bytes with v in {0,1} or {27,28}.
type Capability interface {
	Address() common.Address
	SignTypedData(ctx context.Context, typedData apitypes.TypedData) ([]byte, error)
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}

// Sign produces an owner signature for tx under the given scheme.
// Failures of the capability are wrapped in ErrSigningFailed.
func Sign(ctx context.Context, domain Domain, tx Transaction, scheme Scheme, c Capability) (Signature, error) {
	st, ok := strategies[scheme]
	if !ok {
		return Signature{}, fmt.Errorf("%w: %s", ErrConfiguration, scheme)
	}
	return st.sign(ctx, domain, tx, c)
}

// ecdsaSignature normalizes a capability result into r ‖ s ‖ v with v in {27,28}.
func ecdsaSignature(raw []byte) (Signature, error) {
	sig, err := SignatureFromBytes(raw)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: signer returned %d bytes", ErrSigningFailed, len(raw))
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	if sig[64] != 27 && sig[64] != 28 {
		return Signature{}, fmt.Errorf("%w: signer returned v=%d", ErrSigningFailed, sig[64])
	}
	return sig, nil
}
