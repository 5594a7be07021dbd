// Package xpub decodes extended public keys from their base58check string
// form (BIP32 serialization with SLIP132 version bytes) into raw key
// material, and re-encodes them. It never deals with private keys: version
// bytes of extended private keys are simply unknown to it.
package xpub

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// serialized form: version(4) || depth(1) || parent fingerprint(4) ||
	// child number(4) || chain code(32) || compressed public key(33)
	serializedKeyLen = 78
	checksumLen      = 4
)

var (
	// ErrInvalidKeyLength ...
	ErrInvalidKeyLength = errors.New("invalid extended public key length")
	// ErrInvalidChecksum ...
	ErrInvalidChecksum = errors.New("invalid extended public key checksum")
	// ErrUnknownVersion is thrown for version bytes that do not identify a
	// supported extended public key (xpub/ypub/zpub/tpub/upub/vpub)
	ErrUnknownVersion = errors.New("unsupported extended public key version")
	// ErrNotAPublicKey is thrown when the key material is not a compressed
	// public key
	ErrNotAPublicKey = errors.New("key material is not a compressed public key")
)

var (
	versionXpub = [4]byte{0x04, 0x88, 0xb2, 0x1e}
	versionYpub = [4]byte{0x04, 0x9d, 0x7c, 0xb2}
	versionZpub = [4]byte{0x04, 0xb2, 0x47, 0x46}
	versionTpub = [4]byte{0x04, 0x35, 0x87, 0xcf}
	versionUpub = [4]byte{0x04, 0x4a, 0x52, 0x62}
	versionVpub = [4]byte{0x04, 0x5f, 0x1c, 0xf6}

	paramsByVersion = map[[4]byte]*chaincfg.Params{
		versionXpub: &chaincfg.MainNetParams,
		versionYpub: &chaincfg.MainNetParams,
		versionZpub: &chaincfg.MainNetParams,
		versionTpub: &chaincfg.TestNet3Params,
		versionUpub: &chaincfg.TestNet3Params,
		versionVpub: &chaincfg.TestNet3Params,
	}

	canonicalVersionByName = map[string][4]byte{
		chaincfg.MainNetParams.Name:  versionXpub,
		chaincfg.TestNet3Params.Name: versionTpub,
	}
)

// ExtendedPublicKey is the decoded form of a serialized extended public
// key.
type ExtendedPublicKey struct {
	Version           [4]byte
	Depth             uint8
	ParentFingerprint [4]byte
	ChildNumber       uint32
	ChainCode         [32]byte
	PublicKey         [33]byte
}

// Parse decodes and validates the base58check serialization of an extended
// public key. The version bytes must identify one of the supported public
// key prefixes, which also pins the network the key belongs to.
func Parse(serialized string) (*ExtendedPublicKey, error) {
	decoded := base58.Decode(serialized)
	if len(decoded) != serializedKeyLen+checksumLen {
		return nil, ErrInvalidKeyLength
	}

	payload, checksum := decoded[:serializedKeyLen], decoded[serializedKeyLen:]
	if !bytes.Equal(chainhash.DoubleHashB(payload)[:checksumLen], checksum) {
		return nil, ErrInvalidChecksum
	}

	key := &ExtendedPublicKey{}
	copy(key.Version[:], payload[:4])
	key.Depth = payload[4]
	copy(key.ParentFingerprint[:], payload[5:9])
	key.ChildNumber = binary.BigEndian.Uint32(payload[9:13])
	copy(key.ChainCode[:], payload[13:45])
	copy(key.PublicKey[:], payload[45:])

	if _, ok := paramsByVersion[key.Version]; !ok {
		return nil, ErrUnknownVersion
	}
	if key.PublicKey[0] != 0x02 && key.PublicKey[0] != 0x03 {
		return nil, ErrNotAPublicKey
	}

	return key, nil
}

// Network returns the chain parameters the key's version bytes belong to.
func (k *ExtendedPublicKey) Network() *chaincfg.Params {
	return paramsByVersion[k.Version]
}

// String re-encodes the key in base58check with its original version
// bytes.
func (k *ExtendedPublicKey) String() string {
	return k.encode(k.Version)
}

// Normalized re-encodes the key with the canonical version bytes of its
// network (xpub for mainnet, tpub for testnet), regardless of the SLIP132
// prefix it was supplied with.
func (k *ExtendedPublicKey) Normalized() string {
	return k.encode(canonicalVersionByName[k.Network().Name])
}

func (k *ExtendedPublicKey) encode(version [4]byte) string {
	payload := make([]byte, 0, serializedKeyLen+checksumLen)
	payload = append(payload, version[:]...)
	payload = append(payload, k.Depth)
	payload = append(payload, k.ParentFingerprint[:]...)
	payload = binary.BigEndian.AppendUint32(payload, k.ChildNumber)
	payload = append(payload, k.ChainCode[:]...)
	payload = append(payload, k.PublicKey[:]...)
	payload = append(payload, chainhash.DoubleHashB(payload)[:checksumLen]...)
	return base58.Encode(payload)
}
