package service

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
)

// HexKeyCodec stores the master key as a plain hex string. This is the default
// key file format.
type HexKeyCodec struct{}

// NewHexKeyCodec creates a hex key codec.
func NewHexKeyCodec() *HexKeyCodec {
	return &HexKeyCodec{}
}

// Encode returns the lowercase hex form of key.
func (c *HexKeyCodec) Encode(_ context.Context, key []byte) (string, error) {
	if len(key) != cryptoDomain.KeySize {
		return "", cryptoDomain.ErrInvalidKeySize
	}
	return hex.EncodeToString(key), nil
}

// Decode parses trimmed hex text and accepts only 32-byte keys.
func (c *HexKeyCodec) Decode(_ context.Context, text string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	if len(key) != cryptoDomain.KeySize {
		cryptoDomain.Zero(key)
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return key, nil
}

// KMSKeyCodec stores the master key as base64 KMS ciphertext, so the key file is
// useless without access to the KMS key.
type KMSKeyCodec struct {
	keeper KMSKeeper
}

// NewKMSKeyCodec creates a codec that wraps keys with keeper.
func NewKMSKeyCodec(keeper KMSKeeper) *KMSKeyCodec {
	return &KMSKeyCodec{keeper: keeper}
}

// Encode encrypts key with the KMS keeper.
func (c *KMSKeyCodec) Encode(ctx context.Context, key []byte) (string, error) {
	if len(key) != cryptoDomain.KeySize {
		return "", cryptoDomain.ErrInvalidKeySize
	}
	ciphertext, err := c.keeper.Encrypt(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to wrap master key with KMS: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decode unwraps base64 KMS ciphertext and accepts only 32-byte keys.
func (c *KMSKeyCodec) Decode(ctx context.Context, text string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 key ciphertext: %w", err)
	}
	key, err := c.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap master key with KMS: %w", err)
	}
	if len(key) != cryptoDomain.KeySize {
		cryptoDomain.Zero(key)
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return key, nil
}
