package safe

import (
	"github.com/ethereum/go-ethereum/common"
)

// RecoverOwner returns the owner that produced sig for (domain, tx).
//
// The v byte picks the scheme: 27..30 is EIP-712, 31..34 is eth_sign with
// v shifted by 4, and 1 carries the owner address in r. Recovering against
// a different transaction yields a different, unrelated address.
func RecoverOwner(domain Domain, tx Transaction, sig []byte) (common.Address, error) {
	s, err := SignatureFromBytes(sig)
	if err != nil {
		return common.Address{}, err
	}
	return s.Owner(domain, tx)
}

// Owner is RecoverOwner for an already-sized signature.
func (sig Signature) Owner(domain Domain, tx Transaction) (common.Address, error) {
	scheme, err := sig.Scheme()
	if err != nil {
		return common.Address{}, err
	}
	return strategies[scheme].recover(domain, tx, sig)
}
