package usecase

import (
	"context"
	"encoding/json"
	"reflect"
	"slices"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	auditService "github.com/allisson/credguard/internal/audit/service"
	credentialDomain "github.com/allisson/credguard/internal/credential/domain"
	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
	cryptoService "github.com/allisson/credguard/internal/crypto/service"
	apperrors "github.com/allisson/credguard/internal/errors"
	"github.com/allisson/credguard/internal/masking"
)

type credentialUseCase struct {
	repo   CredentialRepository
	engine cryptoService.EncryptionEngine
	audit  AuditLogger
	now    func() time.Time
}

// NewCredentialUseCase creates a CredentialUseCase.
func NewCredentialUseCase(
	repo CredentialRepository,
	engine cryptoService.EncryptionEngine,
	audit AuditLogger,
) CredentialUseCase {
	return &credentialUseCase{
		repo:   repo,
		engine: engine,
		audit:  audit,
		now:    time.Now,
	}
}

// Create validates, encrypts and stores a provider configuration.
func (c *credentialUseCase) Create(
	ctx context.Context,
	name, provider string,
	config map[string]any,
	ectx auditDomain.EventContext,
) (*credentialDomain.MaskedCredential, error) {
	p, ok := masking.ParseProvider(provider)
	if !ok {
		return nil, credentialDomain.ErrUnknownProvider
	}
	if err := masking.ValidateProviderConfig(p, config); err != nil {
		return nil, err
	}

	encrypted, err := c.encryptConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	credential := &credentialDomain.Credential{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		Provider:  p,
		Config:    *encrypted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.repo.Create(ctx, credential); err != nil {
		return nil, err
	}

	c.audit.LogEmailEvent(ctx, auditDomain.EventEmailConfigCreated, ectx, credential.ID.String(), map[string]any{
		"name":     name,
		"provider": string(p),
		"fields":   sortedKeys(config),
	})

	return maskedView(credential, config), nil
}

// GetMasked decrypts a credential and returns it with secret fields masked.
func (c *credentialUseCase) GetMasked(
	ctx context.Context,
	id uuid.UUID,
	ectx auditDomain.EventContext,
) (*credentialDomain.MaskedCredential, error) {
	credential, config, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}

	c.audit.LogDataAccessEvent(
		ctx,
		auditDomain.EventDataRead,
		ectx,
		auditService.ResourceEmailConfig,
		id.String(),
		map[string]any{"provider": string(credential.Provider)},
	)

	return maskedView(credential, config), nil
}

// Update merges an edit-form submission into the stored configuration. Secret
// fields submitted in masked form keep their stored values. Nothing is written
// when the merge changes no field.
func (c *credentialUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	config map[string]any,
	ectx auditDomain.EventContext,
) (*credentialDomain.MaskedCredential, error) {
	credential, stored, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}

	incoming, err := normalizeConfig(config)
	if err != nil {
		return nil, err
	}

	merged := masking.MergeProviderConfig(credential.Provider, stored, incoming)
	if err := masking.ValidateProviderConfig(credential.Provider, merged); err != nil {
		return nil, err
	}

	changed := changedFields(stored, merged)
	if len(changed) == 0 {
		return maskedView(credential, stored), nil
	}

	encrypted, err := c.encryptConfig(ctx, merged)
	if err != nil {
		return nil, err
	}

	credential.Config = *encrypted
	credential.UpdatedAt = c.now().UTC()
	if err := c.repo.Update(ctx, credential); err != nil {
		return nil, err
	}

	c.audit.LogEmailEvent(ctx, auditDomain.EventEmailConfigUpdated, ectx, id.String(), map[string]any{
		"fields": changed,
	})

	return maskedView(credential, merged), nil
}

// Delete removes a credential.
func (c *credentialUseCase) Delete(ctx context.Context, id uuid.UUID, ectx auditDomain.EventContext) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}
	c.audit.LogEmailEvent(ctx, auditDomain.EventEmailConfigDeleted, ectx, id.String(), nil)
	return nil
}

// List returns credential metadata. Configs stay encrypted.
func (c *credentialUseCase) List(ctx context.Context, offset, limit int) ([]*credentialDomain.Credential, error) {
	credentials, err := c.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	return credentials, nil
}

func (c *credentialUseCase) encryptConfig(
	ctx context.Context,
	config map[string]any,
) (*cryptoDomain.EncryptedData, error) {
	plaintext, err := json.Marshal(config)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "config is not serializable")
	}
	return c.engine.Encrypt(ctx, string(plaintext))
}

func (c *credentialUseCase) load(
	ctx context.Context,
	id uuid.UUID,
) (*credentialDomain.Credential, map[string]any, error) {
	credential, err := c.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	plaintext, err := c.engine.Decrypt(ctx, &credential.Config)
	if err != nil {
		return nil, nil, err
	}

	var config map[string]any
	if err := json.Unmarshal([]byte(plaintext), &config); err != nil {
		return nil, nil, credentialDomain.ErrInvalidConfig
	}
	return credential, config, nil
}

// normalizeConfig gives config the value types it will have after a storage round
// trip, so comparisons against decrypted configs are exact.
func normalizeConfig(config map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "config is not serializable")
	}
	var normalized map[string]any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "config is not an object")
	}
	return normalized, nil
}

func maskedView(credential *credentialDomain.Credential, config map[string]any) *credentialDomain.MaskedCredential {
	return &credentialDomain.MaskedCredential{
		ID:        credential.ID,
		Name:      credential.Name,
		Provider:  credential.Provider,
		Config:    masking.MaskProviderConfig(string(credential.Provider), config),
		CreatedAt: credential.CreatedAt,
		UpdatedAt: credential.UpdatedAt,
	}
}

// changedFields lists, sorted, the keys whose values differ between before and after.
func changedFields(before, after map[string]any) []string {
	var changed []string
	for key, value := range after {
		if old, ok := before[key]; !ok || !reflect.DeepEqual(old, value) {
			changed = append(changed, key)
		}
	}
	for key := range before {
		if _, ok := after[key]; !ok {
			changed = append(changed, key)
		}
	}
	slices.Sort(changed)
	return changed
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
