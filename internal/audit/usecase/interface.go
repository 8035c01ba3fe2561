// Package usecase implements read and retention operations over stored security audit data.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
)

// EventRepository reads and prunes persisted security audit events.
type EventRepository interface {
	List(ctx context.Context, offset, limit int) ([]*auditDomain.SecurityAuditEvent, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// ConfigTrailRepository reads the per-configuration change trail.
type ConfigTrailRepository interface {
	ListByConfigID(
		ctx context.Context,
		configID string,
		offset, limit int,
	) ([]*auditDomain.ConfigAuditEntry, error)
}

type AuditEventUseCase interface {
	List(ctx context.Context, offset, limit int) ([]*auditDomain.SecurityAuditEvent, error)
	ListConfigTrail(
		ctx context.Context,
		configID string,
		offset, limit int,
	) ([]*auditDomain.ConfigAuditEntry, error)
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
