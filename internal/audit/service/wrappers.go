package service

import (
	"context"
	"log/slog"
	"maps"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
)

// Resource types pinned by the category wrappers.
const (
	ResourceAuthentication = "authentication"
	ResourceAuthorization  = "authorization"
	ResourceEncryption     = "encryption"
	ResourceEmailConfig    = "email_config"
)

// LogAuthenticationEvent records a sign-in related event.
func (l *SecurityAuditLogger) LogAuthenticationEvent(
	ctx context.Context,
	eventType auditDomain.EventType,
	ectx auditDomain.EventContext,
	success bool,
	details map[string]any,
) {
	l.LogEvent(ctx, eventType, ectx, auditDomain.EventDetails{
		ResourceType: ResourceAuthentication,
		ResourceID:   ectx.UserID,
		Success:      success,
		Details:      details,
	})
}

// LogAuthorizationEvent records an access decision on resource.
func (l *SecurityAuditLogger) LogAuthorizationEvent(
	ctx context.Context,
	ectx auditDomain.EventContext,
	resource, action string,
	granted bool,
) {
	eventType := auditDomain.EventAccessGranted
	if !granted {
		eventType = auditDomain.EventAccessDenied
	}
	l.LogEvent(ctx, eventType, ectx, auditDomain.EventDetails{
		ResourceType: ResourceAuthorization,
		ResourceID:   resource,
		Success:      granted,
		Details:      map[string]any{"action": action},
	})
}

// LogDataAccessEvent records a read or write of a stored resource.
func (l *SecurityAuditLogger) LogDataAccessEvent(
	ctx context.Context,
	eventType auditDomain.EventType,
	ectx auditDomain.EventContext,
	resourceType, resourceID string,
	details map[string]any,
) {
	l.LogEvent(ctx, eventType, ectx, auditDomain.EventDetails{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Success:      true,
		Details:      details,
	})
}

// LogEncryptionEvent records the outcome of an encryption or key operation.
func (l *SecurityAuditLogger) LogEncryptionEvent(
	ctx context.Context,
	eventType auditDomain.EventType,
	ectx auditDomain.EventContext,
	resourceID string,
	success bool,
	errMsg string,
) {
	l.LogEvent(ctx, eventType, ectx, auditDomain.EventDetails{
		ResourceType: ResourceEncryption,
		ResourceID:   resourceID,
		Success:      success,
		ErrorMessage: errMsg,
	})
}

// LogEmailEvent records a change to an email provider configuration. Besides the
// buffered event it writes a config trail entry straight to storage, so the
// change history does not depend on the buffer being flushed. changes must not
// contain plaintext secrets.
func (l *SecurityAuditLogger) LogEmailEvent(
	ctx context.Context,
	eventType auditDomain.EventType,
	ectx auditDomain.EventContext,
	configID string,
	changes map[string]any,
) {
	l.LogEvent(ctx, eventType, ectx, auditDomain.EventDetails{
		ResourceType: ResourceEmailConfig,
		ResourceID:   configID,
		Success:      true,
		Details:      changes,
	})

	if l.trail == nil {
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		l.logger.Error("failed to create config audit entry id", slog.Any("error", err))
		return
	}

	entry := &auditDomain.ConfigAuditEntry{
		ID:        id,
		ConfigID:  configID,
		Action:    eventType,
		UserID:    ectx.UserID,
		UserEmail: ectx.UserEmail,
		IPAddress: ectx.IPAddress,
		Changes:   maps.Clone(changes),
		CreatedAt: l.now().UTC(),
	}
	if err := l.trail.Create(context.WithoutCancel(ctx), entry); err != nil {
		l.logger.Error("failed to write config audit trail",
			slog.String("config_id", configID),
			slog.String("action", string(eventType)),
			slog.Any("error", err),
		)
	}
}
