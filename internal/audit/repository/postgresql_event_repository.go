package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	"github.com/allisson/credguard/internal/database"
	apperrors "github.com/allisson/credguard/internal/errors"
)

// PostgreSQLEventRepository implements security audit event persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQL security audit event repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}

// CreateBatch inserts events with multi-row INSERT statements. Nil details or
// metadata are stored as NULL. Rows whose id already exists are skipped, so a
// batch re-queued after a partial failure does not fail on the chunks that
// were already committed.
func (p *PostgreSQLEventRepository) CreateBatch(
	ctx context.Context,
	events []*auditDomain.SecurityAuditEvent,
) error {
	querier := database.GetTx(ctx, p.db)

	for _, chunk := range chunks(events) {
		values := make([]string, 0, len(chunk))
		args := make([]any, 0, len(chunk)*eventColumnCount)

		for i, event := range chunk {
			args = append(args, eventArgs(event.ID, event)...)
			values = append(values, postgresPlaceholders(i*eventColumnCount, eventColumnCount))
		}

		query := `INSERT INTO security_audit_events (` + eventColumns + `) VALUES ` + strings.Join(values, ", ") +
			` ON CONFLICT (id) DO NOTHING`
		if _, err := querier.ExecContext(ctx, query, args...); err != nil {
			return apperrors.Wrap(err, "failed to create security audit events")
		}
	}

	return nil
}

// List retrieves events ordered by creation time descending (newest first) with pagination.
// Returns empty slice if no events are found.
func (p *PostgreSQLEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.SecurityAuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + eventColumns + `
			  FROM security_audit_events
			  ORDER BY created_at DESC, id DESC
			  LIMIT $1 OFFSET $2`

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

		if err := rows.Scan(row.targets(&event, &event.ID)...); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan security audit event")
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
func (p *PostgreSQLEventRepository) DeleteOlderThan(
	ctx context.Context,
	olderThan time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		var count int64
		query := `SELECT COUNT(*) FROM security_audit_events WHERE created_at < $1`
		if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
			return 0, apperrors.Wrap(err, "failed to count security audit events")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM security_audit_events WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete security audit events")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}
	return count, nil
}

// postgresPlaceholders renders "($n, $n+1, ...)" starting after offset.
func postgresPlaceholders(offset, n int) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", offset+i)
	}
	b.WriteByte(')')
	return b.String()
}
