package repository

import (
	"context"
	"database/sql"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	"github.com/allisson/credguard/internal/database"
	apperrors "github.com/allisson/credguard/internal/errors"
)

// MySQLConfigTrailRepository implements the configuration change trail for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLConfigTrailRepository struct {
	db *sql.DB
}

// NewMySQLConfigTrailRepository creates a new MySQL config trail repository.
func NewMySQLConfigTrailRepository(db *sql.DB) *MySQLConfigTrailRepository {
	return &MySQLConfigTrailRepository{db: db}
}

// Create inserts one trail entry. Nil changes are stored as NULL.
func (m *MySQLConfigTrailRepository) Create(ctx context.Context, entry *auditDomain.ConfigAuditEntry) error {
	querier := database.GetTx(ctx, m.db)

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal config audit entry id")
	}

	changes, err := marshalMap(entry.Changes, "config audit entry changes")
	if err != nil {
		return err
	}

	query := `INSERT INTO config_audit_trail (id, config_id, action, user_id, user_email, ip_address, changes, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		entry.ConfigID,
		string(entry.Action),
		entry.UserID,
		entry.UserEmail,
		entry.IPAddress,
		changes,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create config audit entry")
	}
	return nil
}

// ListByConfigID retrieves the trail of one configuration, newest first.
func (m *MySQLConfigTrailRepository) ListByConfigID(
	ctx context.Context,
	configID string,
	offset, limit int,
) ([]*auditDomain.ConfigAuditEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, config_id, action, user_id, user_email, ip_address, changes, created_at
			  FROM config_audit_trail
			  WHERE config_id = ?
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, configID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list config audit entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*auditDomain.ConfigAuditEntry, 0)
	for rows.Next() {
		var entry auditDomain.ConfigAuditEntry
		var idBinary, changes []byte
		var action string

		err := rows.Scan(
			&idBinary,
			&entry.ConfigID,
			&action,
			&entry.UserID,
			&entry.UserEmail,
			&entry.IPAddress,
			&changes,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan config audit entry")
		}

		if err := entry.ID.UnmarshalBinary(idBinary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal config audit entry id")
		}
		entry.Action = auditDomain.EventType(action)
		if entry.Changes, err = unmarshalMap(changes, "config audit entry changes"); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate config audit entries")
	}
	return entries, nil
}
