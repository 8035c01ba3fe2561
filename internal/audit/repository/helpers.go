// Package repository implements persistence for security audit events and the
// configuration change trail.
package repository

import (
	"encoding/json"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	apperrors "github.com/allisson/credguard/internal/errors"
)

// insertChunkSize bounds the rows of one multi-row INSERT so large batches stay
// under the drivers' placeholder limits.
const insertChunkSize = 500

// eventColumns is the column list shared by every SQL event repository.
const eventColumns = `id, event_type, category, user_id, user_email, ip_address, user_agent, session_id, request_id,
	resource_id, resource_type, success, risk_level, error_message, details, metadata, created_at`

const eventColumnCount = 17

// marshalMap encodes m as JSON, storing a nil map as NULL.
func marshalMap(m map[string]any, field string) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal "+field)
	}
	return data, nil
}

// encodingErrorKey replaces the content of an event map that cannot be encoded.
const encodingErrorKey = "encoding_error"

// eventMapJSON encodes an event's details or metadata. A map that does not
// encode is stored as {"encoding_error": "..."} so the other events of the batch
// still persist and the batch is not re-queued forever.
func eventMapJSON(m map[string]any) []byte {
	if m == nil {
		return nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		data, _ = json.Marshal(map[string]string{encodingErrorKey: err.Error()})
	}
	return data
}

// unmarshalMap decodes a JSON column, leaving the map nil for NULL.
func unmarshalMap(data []byte, field string) (map[string]any, error) {
	if data == nil {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal "+field)
	}
	return m, nil
}

// eventArgs returns the insert arguments of one event, with id already encoded
// for the target driver.
func eventArgs(id any, event *auditDomain.SecurityAuditEvent) []any {
	return []any{
		id,
		string(event.EventType),
		string(event.Category),
		event.Context.UserID,
		event.Context.UserEmail,
		event.Context.IPAddress,
		event.Context.UserAgent,
		event.Context.SessionID,
		event.Context.RequestID,
		event.ResourceID,
		event.ResourceType,
		event.Success,
		string(event.RiskLevel),
		event.ErrorMessage,
		eventMapJSON(event.Details),
		eventMapJSON(event.Metadata),
		event.CreatedAt,
	}
}

// eventRow holds the scanned columns of one event row except the id.
type eventRow struct {
	eventType, category, riskLevel string
	details, metadata              []byte
}

func (r *eventRow) targets(event *auditDomain.SecurityAuditEvent, id any) []any {
	return []any{
		id,
		&r.eventType,
		&r.category,
		&event.Context.UserID,
		&event.Context.UserEmail,
		&event.Context.IPAddress,
		&event.Context.UserAgent,
		&event.Context.SessionID,
		&event.Context.RequestID,
		&event.ResourceID,
		&event.ResourceType,
		&event.Success,
		&r.riskLevel,
		&event.ErrorMessage,
		&r.details,
		&r.metadata,
		&event.CreatedAt,
	}
}

func (r *eventRow) apply(event *auditDomain.SecurityAuditEvent) error {
	event.EventType = auditDomain.EventType(r.eventType)
	event.Category = auditDomain.Category(r.category)
	event.RiskLevel = auditDomain.RiskLevel(r.riskLevel)

	var err error
	if event.Details, err = unmarshalMap(r.details, "security audit event details"); err != nil {
		return err
	}
	if event.Metadata, err = unmarshalMap(r.metadata, "security audit event metadata"); err != nil {
		return err
	}
	return nil
}

// chunks splits events into slices of at most insertChunkSize.
func chunks(events []*auditDomain.SecurityAuditEvent) [][]*auditDomain.SecurityAuditEvent {
	var out [][]*auditDomain.SecurityAuditEvent
	for start := 0; start < len(events); start += insertChunkSize {
		end := min(start+insertChunkSize, len(events))
		out = append(out, events[start:end])
	}
	return out
}
