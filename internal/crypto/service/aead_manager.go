package service

import (
	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
)

// AEADManagerService creates AEAD ciphers for the supported algorithm.
type AEADManagerService struct{}

// NewAEADManager creates a new AEAD manager.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher validates the key size and returns the cipher for alg. Only the
// current algorithm is supported; anything else is ErrUnsupportedFormat.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	switch alg {
	case cryptoDomain.AES256GCM:
		return NewAESGCM(key)
	default:
		return nil, cryptoDomain.ErrUnsupportedFormat
	}
}
