package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	"github.com/allisson/credguard/internal/metrics"
)

// auditEventUseCaseWithMetrics decorates AuditEventUseCase with metrics instrumentation.
type auditEventUseCaseWithMetrics struct {
	next    AuditEventUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditEventUseCaseWithMetrics wraps an AuditEventUseCase with metrics recording.
func NewAuditEventUseCaseWithMetrics(useCase AuditEventUseCase, m metrics.BusinessMetrics) AuditEventUseCase {
	return &auditEventUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *auditEventUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.Status(err)
	a.metrics.RecordOperation(ctx, metrics.DomainAudit, operation, status)
	a.metrics.RecordDuration(ctx, metrics.DomainAudit, operation, time.Since(start), status)
}

// List records metrics for event listing.
func (a *auditEventUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.SecurityAuditEvent, error) {
	start := time.Now()
	events, err := a.next.List(ctx, offset, limit)
	a.record(ctx, "event_list", start, err)
	return events, err
}

// ListConfigTrail records metrics for config trail listing.
func (a *auditEventUseCaseWithMetrics) ListConfigTrail(
	ctx context.Context,
	configID string,
	offset, limit int,
) ([]*auditDomain.ConfigAuditEntry, error) {
	start := time.Now()
	entries, err := a.next.ListConfigTrail(ctx, configID, offset, limit)
	a.record(ctx, "config_trail_list", start, err)
	return entries, err
}

// DeleteOlderThan records metrics for retention cleanup.
func (a *auditEventUseCaseWithMetrics) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := a.next.DeleteOlderThan(ctx, days, dryRun)
	a.record(ctx, "event_delete", start, err)
	return count, err
}
