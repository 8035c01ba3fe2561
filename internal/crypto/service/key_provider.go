package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
)

const selfTestPlaintext = "credguard-key-self-test"

// KeyProviderConfig controls where the master key is looked up and persisted.
type KeyProviderConfig struct {
	// EnvVar names the environment variable holding a base64 or hex master key.
	EnvVar string
	// Candidates are key file paths in search order. Generated keys are written to
	// the first one that accepts the write.
	Candidates []string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// KeyProvider resolves, caches, persists and rotates the process-wide master key.
//
// Resolution order is environment variable, then key files, then generation. The
// first successful resolution is cached for the life of the process (or until
// ClearCache) and concurrent first callers share a single resolution.
type KeyProvider struct {
	cfg    KeyProviderConfig
	codec  KeyCodec
	suite  cipherSuite
	audit  AuditRecorder
	logger *slog.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	key    cryptoDomain.MasterKey
	source cryptoDomain.KeySource
	path   string

	// rotatedFrom is the source of the key replaced by the last RotateKey, used
	// by RestoreKey.
	rotatedFrom cryptoDomain.KeySource
}

// NewKeyProvider creates a key provider. A nil codec means hex key files and a nil
// audit recorder discards events.
func NewKeyProvider(
	cfg KeyProviderConfig,
	codec KeyCodec,
	aeadManager AEADManager,
	deriver KeyDeriver,
	audit AuditRecorder,
	logger *slog.Logger,
) *KeyProvider {
	if cfg.LookupEnv == nil {
		cfg.LookupEnv = os.LookupEnv
	}
	if codec == nil {
		codec = NewHexKeyCodec()
	}
	if audit == nil {
		audit = noopAuditRecorder{}
	}
	return &KeyProvider{
		cfg:    cfg,
		codec:  codec,
		suite:  newCipherSuite(aeadManager, deriver),
		audit:  audit,
		logger: logger,
	}
}

// GetKey returns a copy of the cached master key, resolving it on first use.
func (p *KeyProvider) GetKey(ctx context.Context) (cryptoDomain.MasterKey, error) {
	if key, ok := p.cached(); ok {
		return key, nil
	}

	_, err, _ := p.group.Do("resolve", func() (any, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.key.IsZero() {
			return nil, nil
		}
		return nil, p.resolveLocked(ctx)
	})
	if err != nil {
		return cryptoDomain.MasterKey{}, err
	}

	if key, ok := p.cached(); ok {
		return key, nil
	}
	return cryptoDomain.MasterKey{}, cryptoDomain.ErrKeyNotFound
}

// GenerateNewKey replaces the cached key with a freshly generated one. Persistence
// is best-effort, as for a first-run generated key.
func (p *KeyProvider) GenerateNewKey(ctx context.Context) (cryptoDomain.MasterKey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key, err := generateMasterKey()
	if err != nil {
		return cryptoDomain.MasterKey{}, err
	}
	path := p.persistBestEffort(ctx, key)
	p.installLocked(key, cryptoDomain.KeySourceGenerated, path)

	p.logger.Info("master key generated", slog.String("fingerprint", key.Fingerprint()))
	p.audit.LogEvent(ctx, auditDomain.EventKeyGenerated, auditDomain.EventContext{}, auditDomain.EventDetails{
		ResourceType: "master_key",
		Success:      true,
		Details:      map[string]any{"fingerprint": key.Fingerprint(), "persisted": path != ""},
	})
	return key.Clone(), nil
}

// RotateKey generates a new master key, persists it and swaps it into the cache.
// Persistence is required: if no candidate path accepts the key the cache keeps
// the old key and ErrKeyPersistenceFailed is returned. A key taken from the
// environment variable is never rotated (ErrRotationUnsupportedSource), since the
// variable would win over the new key file on the next start.
func (p *KeyProvider) RotateKey(ctx context.Context) (cryptoDomain.RotationResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.key.IsZero() {
		if err := p.resolveLocked(ctx); err != nil {
			return cryptoDomain.RotationResult{}, err
		}
	}
	if p.source == cryptoDomain.KeySourceEnvironment {
		p.logger.Error("master key rotation refused",
			slog.String("env", p.cfg.EnvVar),
			slog.Any("error", cryptoDomain.ErrRotationUnsupportedSource),
		)
		p.audit.LogEvent(ctx, auditDomain.EventKeyRotated, auditDomain.EventContext{}, auditDomain.EventDetails{
			ResourceType: "master_key",
			Success:      false,
			ErrorMessage: cryptoDomain.ErrRotationUnsupportedSource.Error(),
		})
		return cryptoDomain.RotationResult{}, cryptoDomain.ErrRotationUnsupportedSource
	}
	oldKey := p.key.Clone()
	previousSource := p.source

	newKey, err := generateMasterKey()
	if err != nil {
		oldKey.Zero()
		return cryptoDomain.RotationResult{}, err
	}

	path, err := p.persist(ctx, newKey)
	if err != nil {
		newKey.Zero()
		oldKey.Zero()
		p.logger.Error("master key rotation aborted", slog.Any("error", err))
		p.audit.LogEvent(ctx, auditDomain.EventKeyRotated, auditDomain.EventContext{}, auditDomain.EventDetails{
			ResourceType: "master_key",
			Success:      false,
			ErrorMessage: cryptoDomain.ErrKeyPersistenceFailed.Error(),
		})
		return cryptoDomain.RotationResult{}, err
	}

	p.installLocked(newKey, cryptoDomain.KeySourceGenerated, path)
	p.rotatedFrom = previousSource

	p.logger.Info("master key rotated",
		slog.String("old_fingerprint", oldKey.Fingerprint()),
		slog.String("new_fingerprint", newKey.Fingerprint()),
		slog.String("path", path),
	)
	p.audit.LogEvent(ctx, auditDomain.EventKeyRotated, auditDomain.EventContext{}, auditDomain.EventDetails{
		ResourceType: "master_key",
		Success:      true,
		Details: map[string]any{
			"old_fingerprint": oldKey.Fingerprint(),
			"new_fingerprint": newKey.Fingerprint(),
		},
	})

	return cryptoDomain.RotationResult{OldKey: oldKey, NewKey: newKey.Clone()}, nil
}

// RestoreKey re-installs a previous key, undoing a RotateKey. The key keeps the
// source it had before the rotation. It is always installed in memory; a
// persistence failure is returned so the caller can report that the key file
// still holds the newer key.
func (p *KeyProvider) RestoreKey(ctx context.Context, key cryptoDomain.MasterKey) error {
	if key.Len() != cryptoDomain.KeySize {
		return cryptoDomain.ErrInvalidKeySize
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	restored := key.Clone()
	path, err := p.persist(ctx, restored)
	source := p.rotatedFrom
	if source == "" {
		source = cryptoDomain.KeySourceFile
	}
	p.installLocked(restored, source, path)
	p.rotatedFrom = ""

	p.logger.Warn("master key restored",
		slog.String("fingerprint", restored.Fingerprint()),
		slog.Bool("persisted", err == nil),
	)
	return err
}

// ValidateKey runs an encrypt/decrypt round trip with the current key.
func (p *KeyProvider) ValidateKey(ctx context.Context) bool {
	key, err := p.GetKey(ctx)
	if err != nil {
		p.logger.Error("master key validation failed", slog.Any("error", err))
		return false
	}
	defer key.Zero()

	data, err := p.suite.seal(key, []byte(selfTestPlaintext))
	if err != nil {
		p.logger.Error("master key validation failed", slog.Any("error", err))
		return false
	}
	plaintext, err := p.suite.open(key, data)
	if err != nil {
		p.logger.Error("master key validation failed", slog.Any("error", err))
		return false
	}
	return string(plaintext) == selfTestPlaintext
}

// GetKeyInfo returns non-secret metadata about the current key.
func (p *KeyProvider) GetKeyInfo(ctx context.Context) (cryptoDomain.KeyInfo, error) {
	key, err := p.GetKey(ctx)
	if err != nil {
		return cryptoDomain.KeyInfo{}, err
	}
	defer key.Zero()

	p.mu.RLock()
	defer p.mu.RUnlock()

	return cryptoDomain.KeyInfo{
		Source:      p.source,
		Length:      key.Len(),
		Fingerprint: key.Fingerprint(),
		Path:        p.path,
	}, nil
}

// ClearCache wipes the cached key. The next GetKey resolves it again.
func (p *KeyProvider) ClearCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.key.Zero()
	p.key = cryptoDomain.MasterKey{}
	p.source = ""
	p.path = ""
	p.rotatedFrom = ""
}

func (p *KeyProvider) cached() (cryptoDomain.MasterKey, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.key.IsZero() {
		return cryptoDomain.MasterKey{}, false
	}
	return p.key.Clone(), true
}

func (p *KeyProvider) installLocked(key cryptoDomain.MasterKey, source cryptoDomain.KeySource, path string) {
	p.key.Zero()
	p.key = key
	p.source = source
	p.path = path
}

func (p *KeyProvider) resolveLocked(ctx context.Context) error {
	if key, ok := p.fromEnv(); ok {
		p.installLocked(key, cryptoDomain.KeySourceEnvironment, "")
		p.logger.Info("master key loaded",
			slog.String("source", string(cryptoDomain.KeySourceEnvironment)),
			slog.String("fingerprint", key.Fingerprint()),
		)
		return nil
	}

	if key, path, ok := p.fromFiles(ctx); ok {
		p.installLocked(key, cryptoDomain.KeySourceFile, path)
		p.logger.Info("master key loaded",
			slog.String("source", string(cryptoDomain.KeySourceFile)),
			slog.String("path", path),
			slog.String("fingerprint", key.Fingerprint()),
		)
		return nil
	}

	key, err := generateMasterKey()
	if err != nil {
		return err
	}
	path := p.persistBestEffort(ctx, key)
	p.installLocked(key, cryptoDomain.KeySourceGenerated, path)

	p.logger.Warn("no master key found, generated a new one",
		slog.String("fingerprint", key.Fingerprint()),
		slog.String("path", path),
	)
	p.audit.LogEvent(ctx, auditDomain.EventKeyGenerated, auditDomain.EventContext{}, auditDomain.EventDetails{
		ResourceType: "master_key",
		Success:      true,
		Details:      map[string]any{"fingerprint": key.Fingerprint(), "persisted": path != ""},
	})
	return nil
}

func (p *KeyProvider) fromEnv() (cryptoDomain.MasterKey, bool) {
	if p.cfg.EnvVar == "" {
		return cryptoDomain.MasterKey{}, false
	}
	value, ok := p.cfg.LookupEnv(p.cfg.EnvVar)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return cryptoDomain.MasterKey{}, false
	}

	raw, err := decodeEnvKey(value)
	if err != nil {
		p.logger.Warn("ignoring master key environment variable",
			slog.String("env", p.cfg.EnvVar),
			slog.Any("error", err),
		)
		return cryptoDomain.MasterKey{}, false
	}
	defer cryptoDomain.Zero(raw)

	key, err := cryptoDomain.NewMasterKey(raw)
	if err != nil {
		return cryptoDomain.MasterKey{}, false
	}
	return key, true
}

func (p *KeyProvider) fromFiles(ctx context.Context) (cryptoDomain.MasterKey, string, bool) {
	for _, path := range p.cfg.Candidates {
		content, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				p.logger.Warn("unable to read key file", slog.String("path", path), slog.Any("error", err))
			}
			continue
		}

		raw, err := p.codec.Decode(ctx, string(content))
		cryptoDomain.Zero(content)
		if err != nil {
			p.logger.Warn("ignoring invalid key file", slog.String("path", path), slog.Any("error", err))
			continue
		}

		key, err := cryptoDomain.NewMasterKey(raw)
		cryptoDomain.Zero(raw)
		if err != nil {
			p.logger.Warn("ignoring invalid key file", slog.String("path", path), slog.Any("error", err))
			continue
		}
		return key, path, true
	}
	return cryptoDomain.MasterKey{}, "", false
}

// persistBestEffort returns the written path, or "" after logging and auditing the failure.
func (p *KeyProvider) persistBestEffort(ctx context.Context, key cryptoDomain.MasterKey) string {
	path, err := p.persist(ctx, key)
	if err != nil {
		p.logger.Warn("master key is not persisted and will be lost on restart", slog.Any("error", err))
		p.audit.LogEvent(ctx, auditDomain.EventKeyPersistenceFailed, auditDomain.EventContext{}, auditDomain.EventDetails{
			ResourceType: "master_key",
			Success:      false,
			ErrorMessage: cryptoDomain.ErrKeyPersistenceFailed.Error(),
			Details:      map[string]any{"candidates": len(p.cfg.Candidates)},
		})
		return ""
	}
	return path
}

func (p *KeyProvider) persist(ctx context.Context, key cryptoDomain.MasterKey) (string, error) {
	text, err := p.codec.Encode(ctx, key.Bytes())
	if err != nil {
		return "", errors.Join(cryptoDomain.ErrKeyPersistenceFailed, err)
	}

	var errs []error
	for _, path := range p.cfg.Candidates {
		if err := writeKeyFile(path, text); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		return path, nil
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no key file candidates configured"))
	}
	return "", errors.Join(append([]error{cryptoDomain.ErrKeyPersistenceFailed}, errs...)...)
}

// writeKeyFile replaces path atomically with an owner-only file.
func writeKeyFile(path, text string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.WriteString(text + "\n"); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func generateMasterKey() (cryptoDomain.MasterKey, error) {
	raw := make([]byte, cryptoDomain.KeySize)
	defer cryptoDomain.Zero(raw)
	if _, err := rand.Read(raw); err != nil {
		return cryptoDomain.MasterKey{}, fmt.Errorf("failed to generate master key: %w", err)
	}
	return cryptoDomain.NewMasterKey(raw)
}

// decodeEnvKey accepts base64 (padded, raw or URL-safe) and then hex, and only a
// 32-byte result.
func decodeEnvKey(value string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		raw, err := enc.DecodeString(value)
		if err != nil {
			continue
		}
		if len(raw) == cryptoDomain.KeySize {
			return raw, nil
		}
		cryptoDomain.Zero(raw)
	}

	raw, err := hex.DecodeString(value)
	if err == nil && len(raw) == cryptoDomain.KeySize {
		return raw, nil
	}
	cryptoDomain.Zero(raw)
	return nil, fmt.Errorf("%w: expected 32 bytes encoded as base64 or hex", cryptoDomain.ErrInvalidKeySize)
}
