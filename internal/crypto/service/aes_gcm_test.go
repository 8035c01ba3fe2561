package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
)

func newTestAESGCM(t *testing.T) *AESGCMCipher {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewAESGCM(key)
	require.NoError(t, err)
	return cipher
}

func TestNewAESGCM(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		cipher := newTestAESGCM(t)
		assert.NotNil(t, cipher)
	})

	t.Run("invalid key size", func(t *testing.T) {
		cipher, err := NewAESGCM(make([]byte, 24))
		assert.Nil(t, cipher)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

func TestAESGCMCipher_Encrypt(t *testing.T) {
	cipher := newTestAESGCM(t)

	ciphertext, nonce, tag, err := cipher.Encrypt([]byte("hello"), nil)
	require.NoError(t, err)

	assert.Len(t, ciphertext, 5)
	assert.Len(t, nonce, cryptoDomain.IVSize)
	assert.Len(t, tag, cryptoDomain.TagSize)

	_, nonce2, _, err := cipher.Encrypt([]byte("hello"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, nonce, nonce2)
}

func TestAESGCMCipher_Decrypt(t *testing.T) {
	cipher := newTestAESGCM(t)
	aad := []byte("config-id")

	ciphertext, nonce, tag, err := cipher.Encrypt([]byte("api-key-value"), aad)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		plaintext, err := cipher.Decrypt(ciphertext, nonce, tag, aad)
		require.NoError(t, err)
		assert.Equal(t, "api-key-value", string(plaintext))
	})

	t.Run("tampered tag", func(t *testing.T) {
		bad := append([]byte(nil), tag...)
		bad[0] ^= 0xFF
		plaintext, err := cipher.Decrypt(ciphertext, nonce, bad, aad)
		assert.Error(t, err)
		assert.Nil(t, plaintext)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		bad := append([]byte(nil), ciphertext...)
		bad[0] ^= 0xFF
		plaintext, err := cipher.Decrypt(bad, nonce, tag, aad)
		assert.Error(t, err)
		assert.Nil(t, plaintext)
	})

	t.Run("wrong aad", func(t *testing.T) {
		_, err := cipher.Decrypt(ciphertext, nonce, tag, []byte("other"))
		assert.Error(t, err)
	})

	t.Run("invalid nonce size", func(t *testing.T) {
		_, err := cipher.Decrypt(ciphertext, nonce[:8], tag, aad)
		assert.Error(t, err)
	})

	t.Run("invalid tag size", func(t *testing.T) {
		_, err := cipher.Decrypt(ciphertext, nonce, tag[:8], aad)
		assert.Error(t, err)
	})
}
