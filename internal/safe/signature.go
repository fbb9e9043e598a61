package safe

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SignatureLength is the size of one owner signature on the wire: r ‖ s ‖ v.
const SignatureLength = 65

// Signature is a single 65-byte owner signature. The v byte selects the scheme.
type Signature [SignatureLength]byte

// SignatureFromBytes copies b into a Signature. b must be exactly 65 bytes.
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureLength {
		return sig, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedSignature, len(b), SignatureLength)
	}
	copy(sig[:], b)
	return sig, nil
}

func (sig Signature) R() common.Hash { return common.BytesToHash(sig[:32]) }
func (sig Signature) S() common.Hash { return common.BytesToHash(sig[32:64]) }
func (sig Signature) V() byte { return sig[64] }

// Bytes returns a copy of the signature bytes.
func (sig Signature) Bytes() []byte {
	out := make([]byte, SignatureLength)
	copy(out, sig[:])
	return out
}

func (sig Signature) Hex() string { return hexutil.Encode(sig[:]) }

// Scheme classifies the signature by its v byte.
func (sig Signature) Scheme() (Scheme, error) { return Classify(sig.V()) }

// SplitSignatures cuts a concatenated signature blob into 65-byte signatures.
// An empty blob yields no signatures.
func SplitSignatures(blob []byte) ([]Signature, error) {
	if len(blob)%SignatureLength != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrMalformedSignature, len(blob), SignatureLength)
	}
	sigs := make([]Signature, 0, len(blob)/SignatureLength)
	for i := 0; i < len(blob); i += SignatureLength {
		var sig Signature
		copy(sig[:], blob[i:i+SignatureLength])
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// ParseSignatures decodes 0x-prefixed hex and splits it into signatures.
// "" and "0x" both mean no signatures.
func ParseSignatures(s string) ([]Signature, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	blob, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	return SplitSignatures(blob)
}

// JoinSignatures concatenates signatures without separators.
func JoinSignatures(sigs []Signature) []byte {
	out := make([]byte, 0, len(sigs)*SignatureLength)
	for _, sig := range sigs {
		out = append(out, sig[:]...)
	}
	return out
}
