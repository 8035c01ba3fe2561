package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	"github.com/allisson/credguard/internal/database"
	apperrors "github.com/allisson/credguard/internal/errors"
)

// MySQLEventRepository implements security audit event persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLEventRepository struct {
	db *sql.DB
}

// NewMySQLEventRepository creates a new MySQL security audit event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}

// CreateBatch inserts events with multi-row INSERT statements. A row whose id
// already exists is left untouched, which makes re-queued batches idempotent.
func (m *MySQLEventRepository) CreateBatch(
	ctx context.Context,
	events []*auditDomain.SecurityAuditEvent,
) error {
	querier := database.GetTx(ctx, m.db)
	rowPlaceholders := mysqlPlaceholders(eventColumnCount)

	for _, chunk := range chunks(events) {
		values := make([]string, 0, len(chunk))
		args := make([]any, 0, len(chunk)*eventColumnCount)

		for _, event := range chunk {
			id, err := event.ID.MarshalBinary()
			if err != nil {
				return apperrors.Wrap(err, "failed to marshal security audit event id")
			}
			args = append(args, eventArgs(id, event)...)
			values = append(values, rowPlaceholders)
		}

		query := `INSERT INTO security_audit_events (` + eventColumns + `) VALUES ` + strings.Join(values, ", ") +
			` ON DUPLICATE KEY UPDATE id = id`
		if _, err := querier.ExecContext(ctx, query, args...); err != nil {
			return apperrors.Wrap(err, "failed to create security audit events")
		}
	}

	return nil
}

// List retrieves events ordered by creation time descending (newest first) with pagination.
func (m *MySQLEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.SecurityAuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + eventColumns + `
			  FROM security_audit_events
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list security audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.SecurityAuditEvent, 0)
	for rows.Next() {
		var event auditDomain.SecurityAuditEvent
		var row eventRow
		var idBinary []byte

		if err := rows.Scan(row.targets(&event, &idBinary)...); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan security audit event")
		}
		if err := event.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal security audit event id")
		}
		if err := row.apply(&event); err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate security audit events")
	}

	return events, nil
}

// DeleteOlderThan removes events created before olderThan. When dryRun is true,
// returns count via SELECT COUNT(*) without deletion.
func (m *MySQLEventRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		var count int64
		query := `SELECT COUNT(*) FROM security_audit_events WHERE created_at < ?`
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count security audit events")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM security_audit_events WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete security audit events")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}
	return count, nil
}

// mysqlPlaceholders renders "(?, ?, ...)" with n markers.
func mysqlPlaceholders(n int) string {
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}
