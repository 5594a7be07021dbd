package domain

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
)

// HardenedKeyStart marks the beginning of the hardened index range. Hardened
// children cannot be derived from public key material, so every index at or
// above this value is rejected.
const HardenedKeyStart = uint32(0x80000000)

// ChildKey derives the non-hardened child of the key at the given index.
//
// The derivation follows the public CKD function: HMAC-SHA512 keyed with the
// parent chain code over serP(parentPubKey) || ser32(index), the left half
// of the digest interpreted as a scalar and the child point computed as
// scalar*G + parentPoint, the right half becoming the child chain code.
//
// ErrInvalidChildKey is returned if the scalar is not lower than the curve
// order or the child point is the point at infinity. Both cases have a
// probability lower than 1 in 2^127 and are never special-cased by callers
// beyond skipping the index.
func (k *KeyMaterial) ChildKey(index uint32) (*KeyMaterial, error) {
	if index >= HardenedKeyStart {
		return nil, ErrHardenedDerivation
	}

	serializedPubKey := k.SerializedPublicKey()

	data := make([]byte, 0, len(serializedPubKey)+4)
	data = append(data, serializedPubKey...)
	data = binary.BigEndian.AppendUint32(data, index)

	mac := hmac.New(sha512.New, k.chainCode)
	mac.Write(data)
	ilr := mac.Sum(nil)

	il, childChainCode := ilr[:chainCodeLen], ilr[chainCodeLen:]

	var ilScalar btcec.ModNScalar
	if overflow := ilScalar.SetByteSlice(il); overflow {
		return nil, ErrInvalidChildKey
	}

	var ilPoint, parentPoint, childPoint btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&ilScalar, &ilPoint)
	k.pubKey.AsJacobian(&parentPoint)
	btcec.AddNonConst(&ilPoint, &parentPoint, &childPoint)
	if (childPoint.X.IsZero() && childPoint.Y.IsZero()) || childPoint.Z.IsZero() {
		return nil, ErrInvalidChildKey
	}
	childPoint.ToAffine()

	return &KeyMaterial{
		pubKey:            btcec.NewPublicKey(&childPoint.X, &childPoint.Y),
		chainCode:         copyBytes(childChainCode),
		depth:             k.depth + 1,
		parentFingerprint: btcutil.Hash160(serializedPubKey)[:fingerprintLen],
	}, nil
}

// BranchKey derives the branch node of the given chain, ie. the child of
// the watched key at index 0 (external) or 1 (internal).
func (k *KeyMaterial) BranchKey(branch Branch) (*KeyMaterial, error) {
	return k.ChildKey(uint32(branch))
}
