package domain_test

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EvanJRichard/wallet-balance-tool/internal/core/domain"
)

var (
	testPrivKeyHex   = "b7c1e1a7cbe4b9bdbdc29a3dc4e04b5f36e794b8b03dfcfcb8f9c7e74a4c3d21"
	testChainCodeHex = "873dff81c02f525623fd1fe5167eac3a55a049de3d314bb42ee227ffed37d508"
)

func newTestKeyMaterial(t *testing.T) *domain.KeyMaterial {
	t.Helper()

	privKeyBytes, err := hex.DecodeString(testPrivKeyHex)
	require.NoError(t, err)
	chainCode, err := hex.DecodeString(testChainCodeHex)
	require.NoError(t, err)

	privKey, _ := btcec.PrivKeyFromBytes(privKeyBytes)
	keyMaterial, err := domain.NewKeyMaterial(
		privKey.PubKey().SerializeCompressed(),
		chainCode,
		0,
		[]byte{0x00, 0x00, 0x00, 0x00},
	)
	require.NoError(t, err)
	return keyMaterial
}

func TestNewKeyMaterial(t *testing.T) {
	keyMaterial := newTestKeyMaterial(t)

	assert.Len(t, keyMaterial.SerializedPublicKey(), 33)
	assert.Len(t, keyMaterial.ChainCode(), 32)
	assert.Len(t, keyMaterial.ParentFingerprint(), 4)
	assert.Equal(t, uint8(0), keyMaterial.Depth())
}

func TestFailingNewKeyMaterial(t *testing.T) {
	validKey := newTestKeyMaterial(t)
	pubKey := validKey.SerializedPublicKey()
	chainCode := validKey.ChainCode()
	fingerprint := validKey.ParentFingerprint()

	tests := []struct {
		name        string
		pubKey      []byte
		chainCode   []byte
		fingerprint []byte
		err         error
	}{
		{
			name:        "not a curve point",
			pubKey:      append([]byte{0x02}, make([]byte, 32)...),
			chainCode:   chainCode,
			fingerprint: fingerprint,
			err:         domain.ErrInvalidPublicKey,
		},
		{
			name:        "truncated public key",
			pubKey:      pubKey[:20],
			chainCode:   chainCode,
			fingerprint: fingerprint,
			err:         domain.ErrInvalidPublicKey,
		},
		{
			name:        "short chain code",
			pubKey:      pubKey,
			chainCode:   chainCode[:16],
			fingerprint: fingerprint,
			err:         domain.ErrInvalidChainCode,
		},
		{
			name:        "bad fingerprint",
			pubKey:      pubKey,
			chainCode:   chainCode,
			fingerprint: fingerprint[:2],
			err:         domain.ErrInvalidParentFingerprint,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyMaterial, err := domain.NewKeyMaterial(
				tt.pubKey, tt.chainCode, 0, tt.fingerprint,
			)
			assert.Nil(t, keyMaterial)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestKeyMaterialImmutability(t *testing.T) {
	keyMaterial := newTestKeyMaterial(t)
	before := keyMaterial.ChainCode()

	leaked := keyMaterial.ChainCode()
	for i := range leaked {
		leaked[i] = 0xff
	}

	assert.Equal(t, before, keyMaterial.ChainCode())
}
