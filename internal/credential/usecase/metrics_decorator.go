package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	credentialDomain "github.com/allisson/credguard/internal/credential/domain"
	"github.com/allisson/credguard/internal/metrics"
)

func recordMetrics(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := metrics.Status(err)
	m.RecordOperation(ctx, metrics.DomainCredential, operation, status)
	m.RecordDuration(ctx, metrics.DomainCredential, operation, time.Since(start), status)
}

// credentialUseCaseWithMetrics decorates CredentialUseCase with metrics instrumentation.
type credentialUseCaseWithMetrics struct {
	next    CredentialUseCase
	metrics metrics.BusinessMetrics
}

// NewCredentialUseCaseWithMetrics wraps a CredentialUseCase with metrics recording.
func NewCredentialUseCaseWithMetrics(useCase CredentialUseCase, m metrics.BusinessMetrics) CredentialUseCase {
	return &credentialUseCaseWithMetrics{next: useCase, metrics: m}
}

func (c *credentialUseCaseWithMetrics) Create(
	ctx context.Context,
	name, provider string,
	config map[string]any,
	ectx auditDomain.EventContext,
) (*credentialDomain.MaskedCredential, error) {
	start := time.Now()
	credential, err := c.next.Create(ctx, name, provider, config, ectx)
	recordMetrics(ctx, c.metrics, "credential_create", start, err)
	return credential, err
}

func (c *credentialUseCaseWithMetrics) GetMasked(
	ctx context.Context,
	id uuid.UUID,
	ectx auditDomain.EventContext,
) (*credentialDomain.MaskedCredential, error) {
	start := time.Now()
	credential, err := c.next.GetMasked(ctx, id, ectx)
	recordMetrics(ctx, c.metrics, "credential_get", start, err)
	return credential, err
}

func (c *credentialUseCaseWithMetrics) Update(
	ctx context.Context,
	id uuid.UUID,
	config map[string]any,
	ectx auditDomain.EventContext,
) (*credentialDomain.MaskedCredential, error) {
	start := time.Now()
	credential, err := c.next.Update(ctx, id, config, ectx)
	recordMetrics(ctx, c.metrics, "credential_update", start, err)
	return credential, err
}

func (c *credentialUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID, ectx auditDomain.EventContext) error {
	start := time.Now()
	err := c.next.Delete(ctx, id, ectx)
	recordMetrics(ctx, c.metrics, "credential_delete", start, err)
	return err
}

func (c *credentialUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*credentialDomain.Credential, error) {
	start := time.Now()
	credentials, err := c.next.List(ctx, offset, limit)
	recordMetrics(ctx, c.metrics, "credential_list", start, err)
	return credentials, err
}

// rotationUseCaseWithMetrics decorates RotationUseCase with metrics instrumentation.
type rotationUseCaseWithMetrics struct {
	next    RotationUseCase
	metrics metrics.BusinessMetrics
}

// NewRotationUseCaseWithMetrics wraps a RotationUseCase with metrics recording.
func NewRotationUseCaseWithMetrics(useCase RotationUseCase, m metrics.BusinessMetrics) RotationUseCase {
	return &rotationUseCaseWithMetrics{next: useCase, metrics: m}
}

func (r *rotationUseCaseWithMetrics) RotateMasterKey(
	ctx context.Context,
	ectx auditDomain.EventContext,
) (*credentialDomain.RotationReport, error) {
	start := time.Now()
	report, err := r.next.RotateMasterKey(ctx, ectx)
	recordMetrics(ctx, r.metrics, "master_key_rotate", start, err)
	return report, err
}
