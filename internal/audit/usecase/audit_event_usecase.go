package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	apperrors "github.com/allisson/credguard/internal/errors"
)

// ErrInvalidRetention is returned when a negative retention period is requested.
var ErrInvalidRetention = apperrors.Wrap(apperrors.ErrInvalidInput, "retention days must not be negative")

type auditEventUseCase struct {
	eventRepo EventRepository
	trailRepo ConfigTrailRepository
	now       func() time.Time
}

// List retrieves security audit events newest first.
func (a *auditEventUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.SecurityAuditEvent, error) {
	events, err := a.eventRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security audit events")
	}
	return events, nil
}

// ListConfigTrail retrieves the change trail of one configuration newest first.
// Without a trail repository (document audit store) the trail is always empty.
func (a *auditEventUseCase) ListConfigTrail(
	ctx context.Context,
	configID string,
	offset, limit int,
) ([]*auditDomain.ConfigAuditEntry, error) {
	if a.trailRepo == nil {
		return []*auditDomain.ConfigAuditEntry{}, nil
	}

	entries, err := a.trailRepo.ListByConfigID(ctx, configID, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list config audit trail")
	}
	return entries, nil
}

// DeleteOlderThan removes events created more than days ago. A zero value removes
// everything older than now. When dryRun is true only the count is returned.
func (a *auditEventUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, ErrInvalidRetention
	}

	olderThan := a.now().UTC().AddDate(0, 0, -days)
	count, err := a.eventRepo.DeleteOlderThan(ctx, olderThan, dryRun)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete security audit events")
	}
	return count, nil
}

// NewAuditEventUseCase creates an AuditEventUseCase. trailRepo may be nil.
func NewAuditEventUseCase(eventRepo EventRepository, trailRepo ConfigTrailRepository) AuditEventUseCase {
	return &auditEventUseCase{
		eventRepo: eventRepo,
		trailRepo: trailRepo,
		now:       time.Now,
	}
}
