package safe

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// personalMessageOffset is added to v to mark an eth_sign signature.
const personalMessageOffset = 4

// preApprovedV is the v byte of an approval carrying only an owner address.
const preApprovedV = 1

// strategy implements one signing scheme in both directions.
type strategy interface {
	sign(ctx context.Context, domain Domain, tx Transaction, c Capability) (Signature, error)
	recover(domain Domain, tx Transaction, sig Signature) (common.Address, error)
}

var strategies = map[Scheme]strategy{
	SchemeTypedData:       typedDataStrategy{},
	SchemePersonalMessage: personalMessageStrategy{},
	SchemePreApproved:     preApprovedStrategy{},
}

type typedDataStrategy struct{}

func (typedDataStrategy) sign(ctx context.Context, domain Domain, tx Transaction, c Capability) (Signature, error) {
	raw, err := c.SignTypedData(ctx, TypedData(domain, tx))
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}
	return ecdsaSignature(raw)
}

func (typedDataStrategy) recover(domain Domain, tx Transaction, sig Signature) (common.Address, error) {
	return ecrecover(Hash(domain, tx), sig, sig.V())
}

type personalMessageStrategy struct{}

func (personalMessageStrategy) sign(ctx context.Context, domain Domain, tx Transaction, c Capability) (Signature, error) {
	hash := Hash(domain, tx)
	raw, err := c.SignMessage(ctx, hash[:])
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}
	sig, err := ecdsaSignature(raw)
	if err != nil {
		return Signature{}, err
	}
	sig[64] += personalMessageOffset
	return sig, nil
}

func (personalMessageStrategy) recover(domain Domain, tx Transaction, sig Signature) (common.Address, error) {
	hash := Hash(domain, tx)
	return ecrecover(common.BytesToHash(accounts.TextHash(hash[:])), sig, sig.V()-personalMessageOffset)
}

type preApprovedStrategy struct{}

func (preApprovedStrategy) sign(_ context.Context, _ Domain, _ Transaction, c Capability) (Signature, error) {
	var sig Signature
	owner := c.Address()
	copy(sig[32-common.AddressLength:32], owner[:])
	sig[64] = preApprovedV
	return sig, nil
}

// recover reads the owner straight out of r. The contract checks the
// approval at execution time; nothing is verified here.
func (preApprovedStrategy) recover(_ Domain, _ Transaction, sig Signature) (common.Address, error) {
	for _, b := range sig[:32-common.AddressLength] {
		if b != 0 {
			return common.Address{}, fmt.Errorf("%w: r is not a left-padded address", ErrMalformedSignature)
		}
	}
	return common.BytesToAddress(sig[32-common.AddressLength : 32]), nil
}

// ecrecover recovers the signer of hash from r, s and an Ethereum-style v in [27,30].
func ecrecover(hash common.Hash, sig Signature, v byte) (common.Address, error) {
	// 29/30 (33/34 for eth_sign) are accepted by the discriminant but name
	// recovery ids 2 and 3, which no signer produces.
	if v-27 > 1 {
		return common.Address{}, fmt.Errorf("%w: v=%d is not a valid recovery id", ErrMalformedSignature, sig.V())
	}
	rsv := make([]byte, crypto.SignatureLength)
	copy(rsv, sig[:64])
	rsv[crypto.RecoveryIDOffset] = v - 27

	pub, err := crypto.SigToPub(hash[:], rsv)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
