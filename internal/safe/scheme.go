package safe

import (
	"fmt"
	"strings"
)

// Scheme identifies how an owner produced a signature.
type Scheme int

const (
	// SchemeTypedData is an EIP-712 signature over the SafeTx structure.
	SchemeTypedData Scheme = iota + 1
	// SchemePersonalMessage is an EIP-191 eth_sign signature over the Safe
	// transaction hash, flagged by adding 4 to v.
	SchemePersonalMessage
	// SchemePreApproved asserts an approval the contract verifies on its
	// own. It carries the owner address instead of an ECDSA signature.
	SchemePreApproved
)

var schemeNames = map[Scheme]string{
	SchemeTypedData:       "eip712",
	SchemePersonalMessage: "ethsign",
	SchemePreApproved:     "validator",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scheme(%d)", int(s))
}

// Schemes returns every supported scheme in display order.
func Schemes() []Scheme {
	return []Scheme{SchemeTypedData, SchemePersonalMessage, SchemePreApproved}
}

// ParseScheme maps a scheme name (eip712, ethsign, validator) to a Scheme.
func ParseScheme(name string) (Scheme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range schemeNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrConfiguration, name)
}

// discriminant maps a closed range of v values to the scheme that produces it.
type discriminant struct {
	lo, hi byte
	scheme Scheme
}

var discriminants = []discriminant{
	{lo: 27, hi: 30, scheme: SchemeTypedData},
	{lo: 31, hi: 34, scheme: SchemePersonalMessage},
	{lo: 1, hi: 1, scheme: SchemePreApproved},
}

// Classify returns the scheme a signature with the given v byte was produced under.
func Classify(v byte) (Scheme, error) {
	for _, d := range discriminants {
		if v >= d.lo && v <= d.hi {
			return d.scheme, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidSignatureDiscriminant, v)
}
