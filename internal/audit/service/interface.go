// Package service implements the buffered security audit logger.
package service

import (
	"context"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
)

// EventRepository persists batches of security audit events.
type EventRepository interface {
	CreateBatch(ctx context.Context, events []*auditDomain.SecurityAuditEvent) error
}

// ConfigTrailRepository persists the per-configuration change trail.
type ConfigTrailRepository interface {
	Create(ctx context.Context, entry *auditDomain.ConfigAuditEntry) error
}

// Escalator is notified of every critical event right after it is flushed.
type Escalator interface {
	Escalate(ctx context.Context, event *auditDomain.SecurityAuditEvent)
}
