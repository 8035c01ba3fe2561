package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMasterKey(t *testing.T) {
	t.Run("accepts 32 bytes", func(t *testing.T) {
		raw := bytes.Repeat([]byte{7}, KeySize)

		key, err := NewMasterKey(raw)
		require.NoError(t, err)
		assert.Equal(t, KeySize, key.Len())
		assert.Equal(t, raw, key.Bytes())

		raw[0] = 0
		assert.Equal(t, byte(7), key.Bytes()[0], "key must not alias the input")
	})

	for _, size := range []int{0, 16, 31, 33, 64} {
		_, err := NewMasterKey(make([]byte, size))
		assert.ErrorIs(t, err, ErrInvalidKeySize, "size %d", size)
	}
}

func TestMasterKey_Fingerprint(t *testing.T) {
	key, err := NewMasterKey(bytes.Repeat([]byte{1}, KeySize))
	require.NoError(t, err)

	fp := key.Fingerprint()
	assert.Len(t, fp, FingerprintLength)
	assert.Equal(t, fp, key.Clone().Fingerprint())
	assert.NotContains(t, key.String(), string(key.Bytes()))
	assert.Empty(t, MasterKey{}.Fingerprint())

	other, err := NewMasterKey(bytes.Repeat([]byte{2}, KeySize))
	require.NoError(t, err)
	assert.NotEqual(t, fp, other.Fingerprint())
}

func TestMasterKey_CloneEqualZero(t *testing.T) {
	key, err := NewMasterKey(bytes.Repeat([]byte{9}, KeySize))
	require.NoError(t, err)

	clone := key.Clone()
	assert.True(t, key.Equal(clone))

	clone.Zero()
	assert.False(t, key.Equal(clone))
	assert.Equal(t, byte(9), key.Bytes()[0])
	assert.True(t, MasterKey{}.Clone().IsZero())
}

func TestZero(t *testing.T) {
	derived := []byte("derived-aes-key-material-32bytes")
	Zero(derived)
	assert.Equal(t, make([]byte, 32), derived)

	assert.NotPanics(t, func() { Zero(nil) })
}
