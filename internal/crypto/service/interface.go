// Package service implements master key management and authenticated encryption of
// configuration secrets (PBKDF2-SHA256 key derivation + AES-256-GCM).
package service

import (
	"context"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
)

// AEAD defines an authenticated cipher with a detached authentication tag.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD under a fresh random nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce, tag []byte, err error)

	// Decrypt verifies the tag and decrypts. It never returns partial plaintext.
	Decrypt(ciphertext, nonce, tag, aad []byte) ([]byte, error)
}

// AEADManager creates AEAD cipher instances from derived keys.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyDeriver derives a per-call encryption key from the master key and a salt.
type KeyDeriver interface {
	DeriveKey(masterKey, salt []byte) []byte
}

// KeyResolver supplies the current master key to the engine.
type KeyResolver interface {
	// GetKey returns a copy of the current master key, resolving it on first use.
	GetKey(ctx context.Context) (cryptoDomain.MasterKey, error)
}

// KeyCodec converts master key material to and from its persisted text form.
type KeyCodec interface {
	Encode(ctx context.Context, key []byte) (string, error)
	Decode(ctx context.Context, text string) ([]byte, error)
}

// KMSKeeper is the subset of *secrets.Keeper used to wrap persisted master keys.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// AuditRecorder receives security events from the key provider and the engine.
// Implementations must not return errors to the caller.
type AuditRecorder interface {
	LogEvent(
		ctx context.Context,
		eventType auditDomain.EventType,
		ectx auditDomain.EventContext,
		details auditDomain.EventDetails,
	)
}

// EncryptionEngine is the encrypt/decrypt contract consumed by the rest of the system.
type EncryptionEngine interface {
	// Encrypt encrypts a non-empty UTF-8 string under the current master key.
	Encrypt(ctx context.Context, plaintext string) (*cryptoDomain.EncryptedData, error)

	// Decrypt decrypts a record produced by Encrypt.
	Decrypt(ctx context.Context, data *cryptoDomain.EncryptedData) (string, error)

	// Validate reports whether data decrypts under the current master key.
	Validate(ctx context.Context, data *cryptoDomain.EncryptedData) bool

	// Reencrypt decrypts data under oldKey and encrypts the plaintext under newKey.
	Reencrypt(
		ctx context.Context,
		data *cryptoDomain.EncryptedData,
		oldKey, newKey cryptoDomain.MasterKey,
	) (*cryptoDomain.EncryptedData, error)

	// BulkReencrypt re-encrypts every record or none of them.
	BulkReencrypt(
		ctx context.Context,
		records []cryptoDomain.EncryptedData,
		oldKey, newKey cryptoDomain.MasterKey,
	) ([]cryptoDomain.EncryptedData, error)

	// WithExclusiveLock runs fn while no Encrypt or Decrypt call is in flight.
	WithExclusiveLock(ctx context.Context, fn func(ctx context.Context) error) error
}

// MasterKeyManager is the key provider contract used by the rotation workflow,
// health checks and CLI commands.
type MasterKeyManager interface {
	KeyResolver
	GenerateNewKey(ctx context.Context) (cryptoDomain.MasterKey, error)
	RotateKey(ctx context.Context) (cryptoDomain.RotationResult, error)
	RestoreKey(ctx context.Context, key cryptoDomain.MasterKey) error
	ValidateKey(ctx context.Context) bool
	GetKeyInfo(ctx context.Context) (cryptoDomain.KeyInfo, error)
	ClearCache()
}

// noopAuditRecorder discards events. Used when no recorder is configured.
type noopAuditRecorder struct{}

func (noopAuditRecorder) LogEvent(
	context.Context,
	auditDomain.EventType,
	auditDomain.EventContext,
	auditDomain.EventDetails,
) {
}
