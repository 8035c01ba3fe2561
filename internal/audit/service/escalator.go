package service

import (
	"context"
	"log/slog"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
)

// LogEscalator reports critical events on the process log at ERROR level.
type LogEscalator struct {
	logger *slog.Logger
}

// NewLogEscalator creates the default escalator.
func NewLogEscalator(logger *slog.Logger) *LogEscalator {
	return &LogEscalator{logger: logger}
}

// Escalate logs the event as a critical security event.
func (e *LogEscalator) Escalate(ctx context.Context, event *auditDomain.SecurityAuditEvent) {
	e.logger.ErrorContext(ctx, "CRITICAL SECURITY EVENT", eventAttrs(event)...)
}

func eventAttrs(event *auditDomain.SecurityAuditEvent) []any {
	attrs := []any{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.String("category", string(event.Category)),
		slog.String("risk_level", string(event.RiskLevel)),
		slog.Bool("success", event.Success),
	}
	if event.ResourceType != "" {
		attrs = append(attrs, slog.String("resource_type", event.ResourceType))
	}
	if event.ResourceID != "" {
		attrs = append(attrs, slog.String("resource_id", event.ResourceID))
	}
	if event.Context.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.Context.UserID))
	}
	if event.Context.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.Context.IPAddress))
	}
	if event.Context.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", event.Context.RequestID))
	}
	if event.ErrorMessage != "" {
		attrs = append(attrs, slog.String("error_message", event.ErrorMessage))
	}
	return attrs
}
