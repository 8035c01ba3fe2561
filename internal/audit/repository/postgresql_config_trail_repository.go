package repository

import (
	"context"
	"database/sql"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	"github.com/allisson/credguard/internal/database"
	apperrors "github.com/allisson/credguard/internal/errors"
)

// PostgreSQLConfigTrailRepository implements the configuration change trail for PostgreSQL.
type PostgreSQLConfigTrailRepository struct {
	db *sql.DB
}

// NewPostgreSQLConfigTrailRepository creates a new PostgreSQL config trail repository.
func NewPostgreSQLConfigTrailRepository(db *sql.DB) *PostgreSQLConfigTrailRepository {
	return &PostgreSQLConfigTrailRepository{db: db}
}

// Create inserts one trail entry. Nil changes are stored as NULL.
func (p *PostgreSQLConfigTrailRepository) Create(ctx context.Context, entry *auditDomain.ConfigAuditEntry) error {
	querier := database.GetTx(ctx, p.db)

	changes, err := marshalMap(entry.Changes, "config audit entry changes")
	if err != nil {
		return err
	}

	query := `INSERT INTO config_audit_trail (id, config_id, action, user_id, user_email, ip_address, changes, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
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
func (p *PostgreSQLConfigTrailRepository) ListByConfigID(
	ctx context.Context,
	configID string,
	offset, limit int,
) ([]*auditDomain.ConfigAuditEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, config_id, action, user_id, user_email, ip_address, changes, created_at
			  FROM config_audit_trail
			  WHERE config_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2 OFFSET $3`

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
		var action string
		var changes []byte

		err := rows.Scan(
			&entry.ID,
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
