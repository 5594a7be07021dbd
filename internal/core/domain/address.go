package domain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// AddressEncoder maps derived key material to its address string
// representation. The encoding is a deterministic pure function of the
// public key, one canonical format per encoder.
type AddressEncoder interface {
	Encode(key *KeyMaterial) (string, error)
}

// DerivedAddress is a materialized leaf of the key tree, uniquely
// identified by its (branch, index) pair under the session key.
type DerivedAddress struct {
	Branch  Branch
	Index   uint32
	Key     *KeyMaterial
	Address string
}

// DerivationPath returns the canonical m/branch/index representation of the
// address position relative to the watched key.
func (a DerivedAddress) DerivationPath() string {
	return fmt.Sprintf("m/%d/%d", uint32(a.Branch), a.Index)
}

type p2wpkhEncoder struct {
	params *chaincfg.Params
}

// NewP2WPKHEncoder returns an AddressEncoder producing native segwit
// pay-to-witness-pubkey-hash addresses for the given network.
func NewP2WPKHEncoder(params *chaincfg.Params) AddressEncoder {
	return &p2wpkhEncoder{params}
}

func (e *p2wpkhEncoder) Encode(key *KeyMaterial) (string, error) {
	witnessProgram := btcutil.Hash160(key.SerializedPublicKey())
	addr, err := btcutil.NewAddressWitnessPubKeyHash(witnessProgram, e.params)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}
