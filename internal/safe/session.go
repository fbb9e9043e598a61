package safe

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Session collects owner signatures for one (domain, transaction) pair.
//
// Owners are recovered as signatures are added; duplicates are only rejected
// when the bundle is assembled. A Session is not safe for concurrent use.
type Session struct {
	domain Domain
	tx     Transaction
	hash   common.Hash
	pairs  []OwnerSignature
}

// NewSession starts an empty session for tx on the Safe described by domain.
func NewSession(domain Domain, tx Transaction) *Session {
	return &Session{
		domain: domain,
		tx:     tx,
		hash:   Hash(domain, tx),
	}
}

func (s *Session) Domain() Domain { return s.domain }
func (s *Session) Transaction() Transaction { return s.tx }

// Hash returns the Safe transaction hash every signature in the session covers.
func (s *Session) Hash() common.Hash { return s.hash }

// Len returns the number of collected signatures.
func (s *Session) Len() int { return len(s.pairs) }

// Load splits a previously assembled blob and adds each signature.
func (s *Session) Load(blob []byte) error {
	sigs, err := SplitSignatures(blob)
	if err != nil {
		return err
	}
	for _, sig := range sigs {
		if _, err := s.Add(sig); err != nil {
			return err
		}
	}
	return nil
}

// Add recovers the owner of sig and appends it to the session.
func (s *Session) Add(sig Signature) (common.Address, error) {
	owner, err := sig.Owner(s.domain, s.tx)
	if err != nil {
		return common.Address{}, err
	}
	s.pairs = append(s.pairs, OwnerSignature{Owner: owner, Signature: sig})
	return owner, nil
}

// Sign asks c for a signature under scheme and adds it to the session.
func (s *Session) Sign(ctx context.Context, scheme Scheme, c Capability) (OwnerSignature, error) {
	sig, err := Sign(ctx, s.domain, s.tx, scheme, c)
	if err != nil {
		return OwnerSignature{}, err
	}
	owner, err := s.Add(sig)
	if err != nil {
		return OwnerSignature{}, err
	}
	return OwnerSignature{Owner: owner, Signature: sig}, nil
}

// Owners returns the collected pairs in bundle order.
func (s *Session) Owners() ([]OwnerSignature, error) {
	return SortOwners(s.pairs)
}

// Bundle assembles every collected signature into the wire format.
func (s *Session) Bundle() ([]byte, error) {
	return Assemble(s.pairs)
}
