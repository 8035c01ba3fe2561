// Package dto provides response types for the audit HTTP API.
package dto

import (
	"time"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
)

// AuditEventResponse is one security audit event.
type AuditEventResponse struct {
	ID           string                   `json:"id"`
	EventType    string                   `json:"event_type"`
	Category     string                   `json:"category"`
	Context      auditDomain.EventContext `json:"context"`
	ResourceID   string                   `json:"resource_id,omitempty"`
	ResourceType string                   `json:"resource_type,omitempty"`
	Success      bool                     `json:"success"`
	RiskLevel    string                   `json:"risk_level"`
	ErrorMessage string                   `json:"error_message,omitempty"`
	Details      map[string]any           `json:"details,omitempty"`
	Metadata     map[string]any           `json:"metadata,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
}

// ListAuditEventsResponse is a page of audit events, newest first.
type ListAuditEventsResponse struct {
	Data []AuditEventResponse `json:"data"`
}

// ConfigTrailEntryResponse is one change to a stored configuration.
type ConfigTrailEntryResponse struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	UserID    string         `json:"user_id,omitempty"`
	UserEmail string         `json:"user_email,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	Changes   map[string]any `json:"changes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListConfigTrailResponse is a page of configuration changes, newest first.
type ListConfigTrailResponse struct {
	ConfigID string                     `json:"config_id"`
	Data     []ConfigTrailEntryResponse `json:"data"`
}

// MapEventsToListResponse converts audit events to their response form.
func MapEventsToListResponse(events []*auditDomain.SecurityAuditEvent) ListAuditEventsResponse {
	data := make([]AuditEventResponse, 0, len(events))
	for _, event := range events {
		data = append(data, AuditEventResponse{
			ID:           event.ID.String(),
			EventType:    string(event.EventType),
			Category:     string(event.Category),
			Context:      event.Context,
			ResourceID:   event.ResourceID,
			ResourceType: event.ResourceType,
			Success:      event.Success,
			RiskLevel:    string(event.RiskLevel),
			ErrorMessage: event.ErrorMessage,
			Details:      event.Details,
			Metadata:     event.Metadata,
			CreatedAt:    event.CreatedAt,
		})
	}
	return ListAuditEventsResponse{Data: data}
}

// MapConfigTrailToListResponse converts trail entries to their response form.
func MapConfigTrailToListResponse(configID string, entries []*auditDomain.ConfigAuditEntry) ListConfigTrailResponse {
	data := make([]ConfigTrailEntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, ConfigTrailEntryResponse{
			ID:        entry.ID.String(),
			Action:    string(entry.Action),
			UserID:    entry.UserID,
			UserEmail: entry.UserEmail,
			IPAddress: entry.IPAddress,
			Changes:   entry.Changes,
			CreatedAt: entry.CreatedAt,
		})
	}
	return ListConfigTrailResponse{ConfigID: configID, Data: data}
}
