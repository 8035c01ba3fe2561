package service

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
)

// PBKDF2Deriver derives 256-bit keys with PBKDF2-HMAC-SHA256 at a fixed
// iteration count.
type PBKDF2Deriver struct{}

// NewPBKDF2Deriver creates the key deriver used by the engine.
func NewPBKDF2Deriver() *PBKDF2Deriver {
	return &PBKDF2Deriver{}
}

// DeriveKey returns a fresh 32-byte key. Callers zero it after use.
func (d *PBKDF2Deriver) DeriveKey(masterKey, salt []byte) []byte {
	return pbkdf2.Key(masterKey, salt, cryptoDomain.PBKDF2Iterations, cryptoDomain.KeySize, sha256.New)
}
