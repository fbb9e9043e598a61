package safe

import "errors"

var (
	// ErrConfiguration is returned when a caller asks for a signing scheme
	// that does not exist. It indicates a programming or config defect.
	ErrConfiguration = errors.New("unknown signing scheme")

	// ErrSigningFailed wraps any failure reported by the signer capability,
	// including user rejection.
	ErrSigningFailed = errors.New("signing failed")

	// ErrMalformedSignature is returned for signature bytes of the wrong
	// length or with unrecoverable contents.
	ErrMalformedSignature = errors.New("malformed signature")

	// ErrInvalidSignatureDiscriminant is returned when the v byte of a
	// signature is outside every recognized range.
	ErrInvalidSignatureDiscriminant = errors.New("invalid signature V-value")

	// ErrDuplicateOwner is returned when two signatures in a bundle resolve
	// to the same owner.
	ErrDuplicateOwner = errors.New("duplicate owner")

	// ErrInvalidTransaction is returned when a transaction description
	// cannot be parsed into a Transaction.
	ErrInvalidTransaction = errors.New("invalid transaction")
)
