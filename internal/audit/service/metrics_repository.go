package service

import (
	"context"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	"github.com/allisson/credguard/internal/metrics"
)

type eventRepositoryWithMetrics struct {
	next    EventRepository
	metrics metrics.SecurityMetrics
}

// NewEventRepositoryWithMetrics counts every event of a batch once the batch is
// stored. Failed batches are not counted; the logger retries them.
func NewEventRepositoryWithMetrics(repo EventRepository, m metrics.SecurityMetrics) EventRepository {
	return &eventRepositoryWithMetrics{next: repo, metrics: m}
}

func (r *eventRepositoryWithMetrics) CreateBatch(
	ctx context.Context,
	events []*auditDomain.SecurityAuditEvent,
) error {
	if err := r.next.CreateBatch(ctx, events); err != nil {
		return err
	}
	for _, event := range events {
		r.metrics.RecordSecurityEvent(ctx, string(event.EventType), string(event.RiskLevel), event.Success)
	}
	return nil
}
