package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// RiskLevel is a coarse severity attached to every event. It drives console
// severity, flush urgency and escalation.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// IsValid reports whether r is one of the four declared levels.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// InferRiskLevel classifies an event that was logged without an explicit risk level.
func InferRiskLevel(eventType EventType, success bool) RiskLevel {
	switch {
	case !success && eventType.Category() == CategoryAuthorization:
		return RiskHigh
	case !success && (eventType == EventEncryptionFailed || eventType == EventDecryptionFailed):
		return RiskCritical
	case success && eventType == EventDataExported:
		return RiskHigh
	case success && eventType == EventRoleChanged:
		return RiskHigh
	case !success:
		return RiskMedium
	default:
		return RiskLow
	}
}

// EventContext carries actor and request information already extracted by the
// caller. The audit core never parses requests itself.
type EventContext struct {
	UserID    string `json:"user_id,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// EventDetails is the caller-supplied part of an event. A zero RiskLevel means
// the level is inferred from the event type and outcome.
type EventDetails struct {
	ResourceID   string
	ResourceType string
	Success      bool
	RiskLevel    RiskLevel
	ErrorMessage string
	Details      map[string]any
	Metadata     map[string]any
}

// SecurityAuditEvent is an immutable record of one observed action.
type SecurityAuditEvent struct {
	ID           uuid.UUID      `json:"id"`
	EventType    EventType      `json:"event_type"`
	Category     Category       `json:"category"`
	Context      EventContext   `json:"context"`
	ResourceID   string         `json:"resource_id,omitempty"`
	ResourceType string         `json:"resource_type,omitempty"`
	Success      bool           `json:"success"`
	RiskLevel    RiskLevel      `json:"risk_level"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewSecurityAuditEvent builds an event, inferring the risk level when the details
// do not carry a valid one. The maps are copied and metadata["timestamp"] is always
// stamped with the creation time.
func NewSecurityAuditEvent(
	eventType EventType,
	ectx EventContext,
	details EventDetails,
	now time.Time,
) (*SecurityAuditEvent, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	risk := details.RiskLevel
	if !risk.IsValid() {
		risk = InferRiskLevel(eventType, details.Success)
	}

	metadata := make(map[string]any, len(details.Metadata)+1)
	maps.Copy(metadata, details.Metadata)
	metadata["timestamp"] = now.UTC().Format(time.RFC3339Nano)

	var detailsCopy map[string]any
	if details.Details != nil {
		detailsCopy = maps.Clone(details.Details)
	}

	return &SecurityAuditEvent{
		ID:           id,
		EventType:    eventType,
		Category:     eventType.Category(),
		Context:      ectx,
		ResourceID:   details.ResourceID,
		ResourceType: details.ResourceType,
		Success:      details.Success,
		RiskLevel:    risk,
		ErrorMessage: details.ErrorMessage,
		Details:      detailsCopy,
		Metadata:     metadata,
		CreatedAt:    now.UTC(),
	}, nil
}

// IsCritical reports whether the event must be flushed and escalated immediately.
func (e *SecurityAuditEvent) IsCritical() bool {
	return e.RiskLevel == RiskCritical
}

// ConfigAuditEntry is one row of the durable per-configuration change trail.
// It is written directly, outside the buffered event path.
type ConfigAuditEntry struct {
	ID        uuid.UUID      `json:"id"`
	ConfigID  string         `json:"config_id"`
	Action    EventType      `json:"action"`
	UserID    string         `json:"user_id,omitempty"`
	UserEmail string         `json:"user_email,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	Changes   map[string]any `json:"changes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
