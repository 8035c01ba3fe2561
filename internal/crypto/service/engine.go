package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
	apperrors "github.com/allisson/credguard/internal/errors"
)

// Engine encrypts configuration secrets into EncryptedData records and back.
//
// Every call derives its own key from the master key and a fresh salt, so Encrypt
// and Decrypt need no coordination beyond a shared read lock. The write side of
// that lock is taken by WithExclusiveLock for master key rotation.
//
// Cipher faults are logged with their cause, recorded as critical audit events and
// returned as ErrEncryptionFailed or ErrDecryptionFailed only.
type Engine struct {
	keys       KeyResolver
	suite      cipherSuite
	audit      AuditRecorder
	logger     *slog.Logger
	rotationMu sync.RWMutex
}

// NewEngine creates an engine. A nil audit recorder discards events.
func NewEngine(
	keys KeyResolver,
	aeadManager AEADManager,
	deriver KeyDeriver,
	audit AuditRecorder,
	logger *slog.Logger,
) *Engine {
	if audit == nil {
		audit = noopAuditRecorder{}
	}
	return &Engine{
		keys:   keys,
		suite:  newCipherSuite(aeadManager, deriver),
		audit:  audit,
		logger: logger,
	}
}

// Encrypt encrypts a non-empty string under the current master key.
func (e *Engine) Encrypt(ctx context.Context, plaintext string) (*cryptoDomain.EncryptedData, error) {
	if plaintext == "" {
		return nil, cryptoDomain.ErrEmptyPlaintext
	}

	e.rotationMu.RLock()
	defer e.rotationMu.RUnlock()

	key, err := e.keys.GetKey(ctx)
	if err != nil {
		return nil, e.encryptionFailed(ctx, err)
	}
	defer key.Zero()

	data, err := e.suite.seal(key, []byte(plaintext))
	if err != nil {
		return nil, e.encryptionFailed(ctx, err)
	}
	return data, nil
}

// Decrypt decrypts a record under the current master key. Records with an unknown
// algorithm or version are rejected with ErrUnsupportedFormat; every other failure
// is ErrDecryptionFailed.
func (e *Engine) Decrypt(ctx context.Context, data *cryptoDomain.EncryptedData) (string, error) {
	if data == nil {
		return "", e.decryptionFailed(ctx, fmt.Errorf("nil encrypted data"))
	}
	if err := data.Validate(); err != nil {
		return "", err
	}

	e.rotationMu.RLock()
	defer e.rotationMu.RUnlock()

	key, err := e.keys.GetKey(ctx)
	if err != nil {
		return "", e.decryptionFailed(ctx, err)
	}
	defer key.Zero()

	plaintext, err := e.suite.open(key, data)
	if err != nil {
		return "", e.decryptionFailed(ctx, err)
	}
	return string(plaintext), nil
}

// Validate reports whether data decrypts under the current master key.
func (e *Engine) Validate(ctx context.Context, data *cryptoDomain.EncryptedData) bool {
	_, err := e.Decrypt(ctx, data)
	return err == nil
}

// Reencrypt decrypts data under oldKey and encrypts the plaintext under newKey.
// It does not touch the cached master key and takes no lock, so it can run inside
// WithExclusiveLock.
func (e *Engine) Reencrypt(
	ctx context.Context,
	data *cryptoDomain.EncryptedData,
	oldKey, newKey cryptoDomain.MasterKey,
) (*cryptoDomain.EncryptedData, error) {
	if data == nil {
		return nil, e.decryptionFailed(ctx, fmt.Errorf("nil encrypted data"))
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}

	plaintext, err := e.suite.open(oldKey, data)
	if err != nil {
		return nil, e.decryptionFailed(ctx, err)
	}
	defer cryptoDomain.Zero(plaintext)

	reencrypted, err := e.suite.seal(newKey, plaintext)
	if err != nil {
		return nil, e.encryptionFailed(ctx, err)
	}
	return reencrypted, nil
}

// EncryptWithKey encrypts plaintext under an explicit master key without consulting
// the key provider.
func (e *Engine) EncryptWithKey(
	ctx context.Context,
	plaintext string,
	key cryptoDomain.MasterKey,
) (*cryptoDomain.EncryptedData, error) {
	if plaintext == "" {
		return nil, cryptoDomain.ErrEmptyPlaintext
	}
	data, err := e.suite.seal(key, []byte(plaintext))
	if err != nil {
		return nil, e.encryptionFailed(ctx, err)
	}
	return data, nil
}

// DecryptWithKey decrypts data under an explicit master key without consulting
// the key provider.
func (e *Engine) DecryptWithKey(
	ctx context.Context,
	data *cryptoDomain.EncryptedData,
	key cryptoDomain.MasterKey,
) (string, error) {
	if data == nil {
		return "", e.decryptionFailed(ctx, fmt.Errorf("nil encrypted data"))
	}
	if err := data.Validate(); err != nil {
		return "", err
	}
	plaintext, err := e.suite.open(key, data)
	if err != nil {
		return "", e.decryptionFailed(ctx, err)
	}
	return string(plaintext), nil
}

// BulkReencrypt re-encrypts every record independently. If any record fails the
// whole batch fails and no records are returned, so callers never persist a
// partially rotated set.
func (e *Engine) BulkReencrypt(
	ctx context.Context,
	records []cryptoDomain.EncryptedData,
	oldKey, newKey cryptoDomain.MasterKey,
) ([]cryptoDomain.EncryptedData, error) {
	result := make([]cryptoDomain.EncryptedData, 0, len(records))
	for i := range records {
		reencrypted, err := e.Reencrypt(ctx, &records[i], oldKey, newKey)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		result = append(result, *reencrypted)
	}
	return result, nil
}

// WithExclusiveLock runs fn while no Encrypt or Decrypt call is in flight.
// fn must not call Encrypt, Decrypt or Validate.
func (e *Engine) WithExclusiveLock(ctx context.Context, fn func(ctx context.Context) error) error {
	e.rotationMu.Lock()
	defer e.rotationMu.Unlock()
	return fn(ctx)
}

func (e *Engine) encryptionFailed(ctx context.Context, cause error) error {
	if apperrors.Is(cause, cryptoDomain.ErrUnsupportedFormat) {
		return cause
	}
	e.logger.Error("encryption failed", slog.Any("error", cause))
	e.audit.LogEvent(ctx, auditDomain.EventEncryptionFailed, auditDomain.EventContext{}, auditDomain.EventDetails{
		ResourceType: "encryption",
		Success:      false,
		ErrorMessage: cryptoDomain.ErrEncryptionFailed.Error(),
		Details:      map[string]any{"operation": "encrypt"},
	})
	return cryptoDomain.ErrEncryptionFailed
}

func (e *Engine) decryptionFailed(ctx context.Context, cause error) error {
	e.logger.Error("decryption failed", slog.Any("error", cause))
	e.audit.LogEvent(ctx, auditDomain.EventDecryptionFailed, auditDomain.EventContext{}, auditDomain.EventDetails{
		ResourceType: "encryption",
		Success:      false,
		ErrorMessage: cryptoDomain.ErrDecryptionFailed.Error(),
		Details:      map[string]any{"operation": "decrypt"},
	})
	return cryptoDomain.ErrDecryptionFailed
}
