// Package usecase implements encrypted storage of email provider credentials and
// the master key rotation workflow that re-encrypts them.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	credentialDomain "github.com/allisson/credguard/internal/credential/domain"
	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
)

// CredentialRepository persists credentials.
type CredentialRepository interface {
	Create(ctx context.Context, credential *credentialDomain.Credential) error
	Update(ctx context.Context, credential *credentialDomain.Credential) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*credentialDomain.Credential, error)
	List(ctx context.Context, offset, limit int) ([]*credentialDomain.Credential, error)
	ListAll(ctx context.Context) ([]*credentialDomain.Credential, error)
}

// AuditLogger is the part of the security audit logger used by credential workflows.
type AuditLogger interface {
	LogEvent(
		ctx context.Context,
		eventType auditDomain.EventType,
		ectx auditDomain.EventContext,
		details auditDomain.EventDetails,
	)
	LogDataAccessEvent(
		ctx context.Context,
		eventType auditDomain.EventType,
		ectx auditDomain.EventContext,
		resourceType, resourceID string,
		details map[string]any,
	)
	LogEmailEvent(
		ctx context.Context,
		eventType auditDomain.EventType,
		ectx auditDomain.EventContext,
		configID string,
		changes map[string]any,
	)
}

// CredentialUseCase manages provider credentials. Configs are accepted and
// returned as plain maps; secrets leave the use case masked.
type CredentialUseCase interface {
	Create(
		ctx context.Context,
		name, provider string,
		config map[string]any,
		ectx auditDomain.EventContext,
	) (*credentialDomain.MaskedCredential, error)

	GetMasked(
		ctx context.Context,
		id uuid.UUID,
		ectx auditDomain.EventContext,
	) (*credentialDomain.MaskedCredential, error)

	Update(
		ctx context.Context,
		id uuid.UUID,
		config map[string]any,
		ectx auditDomain.EventContext,
	) (*credentialDomain.MaskedCredential, error)

	Delete(ctx context.Context, id uuid.UUID, ectx auditDomain.EventContext) error

	List(ctx context.Context, offset, limit int) ([]*credentialDomain.Credential, error)
}

// RotationUseCase rotates the master key and re-encrypts every stored credential.
type RotationUseCase interface {
	RotateMasterKey(ctx context.Context, ectx auditDomain.EventContext) (*credentialDomain.RotationReport, error)
}

// KeyRotator is the part of the key provider used by the rotation workflow.
type KeyRotator interface {
	RotateKey(ctx context.Context) (cryptoDomain.RotationResult, error)
	RestoreKey(ctx context.Context, key cryptoDomain.MasterKey) error
}
