package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
)

func TestNewAEADManager(t *testing.T) {
	manager := NewAEADManager()
	assert.NotNil(t, manager)
}

func TestAEADManagerService_CreateCipher(t *testing.T) {
	manager := NewAEADManager()
	validKey := make([]byte, 32)
	_, err := rand.Read(validKey)
	require.NoError(t, err)

	t.Run("create AES-256-GCM cipher", func(t *testing.T) {
		cipher, err := manager.CreateCipher(validKey, cryptoDomain.AES256GCM)
		require.NoError(t, err)

		_, ok := cipher.(*AESGCMCipher)
		assert.True(t, ok, "cipher should be of type *AESGCMCipher")
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := manager.CreateCipher(validKey, cryptoDomain.Algorithm("chacha20-poly1305"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedFormat)
	})

	t.Run("invalid key size - too short", func(t *testing.T) {
		_, err := manager.CreateCipher(make([]byte, 16), cryptoDomain.AES256GCM)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})

	t.Run("invalid key size - too long", func(t *testing.T) {
		_, err := manager.CreateCipher(make([]byte, 64), cryptoDomain.AES256GCM)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})

	t.Run("cipher round trip", func(t *testing.T) {
		cipher, err := manager.CreateCipher(validKey, cryptoDomain.AES256GCM)
		require.NoError(t, err)

		ciphertext, nonce, tag, err := cipher.Encrypt([]byte("smtp-password"), nil)
		require.NoError(t, err)

		plaintext, err := cipher.Decrypt(ciphertext, nonce, tag, nil)
		require.NoError(t, err)
		assert.Equal(t, "smtp-password", string(plaintext))
	})
}
