package domain

import (
	"github.com/btcsuite/btcd/btcec/v2"
)

const (
	chainCodeLen   = 32
	fingerprintLen = 4
)

// Branch identifies one of the two derivation chains of the watched key.
// The set is closed: External is the receive chain (path element 0),
// Internal is the change chain (path element 1).
type Branch uint32

const (
	// ExternalBranch is the chain receive addresses are derived from
	ExternalBranch Branch = 0
	// InternalBranch is the chain change addresses are derived from
	InternalBranch Branch = 1
)

// AllBranches is the fixed derivation order of the two chains.
var AllBranches = []Branch{ExternalBranch, InternalBranch}

func (b Branch) String() string {
	if b == InternalBranch {
		return "internal"
	}
	return "external"
}

// KeyMaterial is the immutable representation of an extended public key:
// the public point on the curve, the chain code and the depth/fingerprint
// metadata of its position in the key tree. Malformed input is rejected at
// construction, a KeyMaterial in hand is always well formed.
type KeyMaterial struct {
	pubKey            *btcec.PublicKey
	chainCode         []byte
	depth             uint8
	parentFingerprint []byte
}

// NewKeyMaterial returns a KeyMaterial from the compressed serialization of
// a public key and its chain code. The public key must parse to a valid
// point on the secp256k1 curve.
func NewKeyMaterial(
	serializedPubKey, chainCode []byte, depth uint8, parentFingerprint []byte,
) (*KeyMaterial, error) {
	pubKey, err := btcec.ParsePubKey(serializedPubKey)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	if len(chainCode) != chainCodeLen {
		return nil, ErrInvalidChainCode
	}
	if len(parentFingerprint) != fingerprintLen {
		return nil, ErrInvalidParentFingerprint
	}

	return &KeyMaterial{
		pubKey:            pubKey,
		chainCode:         copyBytes(chainCode),
		depth:             depth,
		parentFingerprint: copyBytes(parentFingerprint),
	}, nil
}

// PublicKey returns the parsed public point.
func (k *KeyMaterial) PublicKey() *btcec.PublicKey {
	return k.pubKey
}

// SerializedPublicKey returns the 33-byte compressed form of the public
// point.
func (k *KeyMaterial) SerializedPublicKey() []byte {
	return k.pubKey.SerializeCompressed()
}

// ChainCode returns a copy of the 32-byte chain code.
func (k *KeyMaterial) ChainCode() []byte {
	return copyBytes(k.chainCode)
}

// Depth returns the derivation depth of the key in the tree.
func (k *KeyMaterial) Depth() uint8 {
	return k.depth
}

// ParentFingerprint returns a copy of the 4-byte fingerprint of the parent
// key. It is informational only.
func (k *KeyMaterial) ParentFingerprint() []byte {
	return copyBytes(k.parentFingerprint)
}

func copyBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
