package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPublicKey is thrown when the serialized public key is not a
	// valid point on the secp256k1 curve
	ErrInvalidPublicKey = errors.New("public key must be a valid point on the curve")
	// ErrInvalidChainCode ...
	ErrInvalidChainCode = errors.New("chain code must be exactly 32 bytes")
	// ErrInvalidParentFingerprint ...
	ErrInvalidParentFingerprint = errors.New("parent fingerprint must be exactly 4 bytes")
	// ErrHardenedDerivation is thrown when requesting a child key at an index
	// in the hardened range, which cannot be derived from a public key
	ErrHardenedDerivation = errors.New("hardened derivation requires the private key")
	// ErrInvalidChildKey is thrown in the astronomically rare case that the
	// derived scalar falls outside the curve order or the resulting point is
	// the point at infinity. The caller can skip the index and retry later
	ErrInvalidChildKey = errors.New("derived child key is invalid for this index")
	// ErrNullEncoder ...
	ErrNullEncoder = errors.New("address encoder must not be null")
	// ErrNullParentKey ...
	ErrNullParentKey = errors.New("parent key must not be null")
	// ErrZeroBatchSize ...
	ErrZeroBatchSize = errors.New("batch size must be a positive number")
	// ErrLedgerExhausted is thrown when expanding the ledger would exceed the
	// non-hardened index space of a branch
	ErrLedgerExhausted = errors.New("no more derivable indices for branch")
)

// DerivationError reports the exact (branch, index) pair that failed to
// derive, so that callers can surface it and resume the expansion later.
type DerivationError struct {
	Branch Branch
	Index  uint32
	Err    error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf(
		"derivation failed for %s/%d: %s", e.Branch, e.Index, e.Err,
	)
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}
