package safe

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// OwnerSignature pairs a signature with the owner it recovers to.
type OwnerSignature struct {
	Owner     common.Address
	Signature Signature
}

// ownerKey is the comparison key the contract's ordering check is equivalent to.
func ownerKey(owner common.Address) string {
	return strings.ToLower(owner.Hex())
}

// SortOwners returns pairs ordered by ascending owner address. Two pairs with
// the same owner fail with ErrDuplicateOwner; they are never merged.
func SortOwners(pairs []OwnerSignature) ([]OwnerSignature, error) {
	sorted := slices.Clone(pairs)
	slices.SortStableFunc(sorted, func(a, b OwnerSignature) int {
		return strings.Compare(ownerKey(a.Owner), ownerKey(b.Owner))
	})
	for i := 1; i < len(sorted); i++ {
		if ownerKey(sorted[i-1].Owner) == ownerKey(sorted[i].Owner) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateOwner, sorted[i].Owner.Hex())
		}
	}
	return sorted, nil
}

// Assemble sorts pairs by owner and concatenates their signatures into the
// execTransaction signatures argument: N × 65 bytes, no length prefix.
// Nothing is returned on failure.
func Assemble(pairs []OwnerSignature) ([]byte, error) {
	sorted, err := SortOwners(pairs)
	if err != nil {
		return nil, err
	}
	sigs := make([]Signature, len(sorted))
	for i, p := range sorted {
		sigs[i] = p.Signature
	}
	return JoinSignatures(sigs), nil
}
