package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/credguard/internal/credential/domain"
	"github.com/allisson/credguard/internal/database"
	apperrors "github.com/allisson/credguard/internal/errors"
	"github.com/allisson/credguard/internal/masking"
)

// PostgreSQLCredentialRepository implements credential persistence for PostgreSQL.
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL credential repository.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}

// Create inserts a credential. A duplicate name returns ErrCredentialAlreadyExists.
func (p *PostgreSQLCredentialRepository) Create(ctx context.Context, credential *credentialDomain.Credential) error {
	querier := database.GetTx(ctx, p.db)

	config, err := marshalConfig(credential.Config)
	if err != nil {
		return err
	}

	query := `INSERT INTO credentials (` + credentialColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = querier.ExecContext(
		ctx,
		query,
		credential.ID,
		credential.Name,
		string(credential.Provider),
		config,
		credential.CreatedAt,
		credential.UpdatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return credentialDomain.ErrCredentialAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create credential")
	}
	return nil
}

// Update replaces the encrypted config and updated_at of an existing credential.
func (p *PostgreSQLCredentialRepository) Update(ctx context.Context, credential *credentialDomain.Credential) error {
	querier := database.GetTx(ctx, p.db)

	config, err := marshalConfig(credential.Config)
	if err != nil {
		return err
	}

	query := `UPDATE credentials SET config = $1, updated_at = $2 WHERE id = $3`
	result, err := querier.ExecContext(ctx, query, config, credential.UpdatedAt, credential.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update credential")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows count")
	}
	if affected == 0 {
		return credentialDomain.ErrCredentialNotFound
	}
	return nil
}

// Delete removes a credential.
func (p *PostgreSQLCredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete credential")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows count")
	}
	if affected == 0 {
		return credentialDomain.ErrCredentialNotFound
	}
	return nil
}

// Get retrieves a credential by ID.
func (p *PostgreSQLCredentialRepository) Get(ctx context.Context, id uuid.UUID) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = $1`
	credential, err := scanPostgreSQLCredential(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credentialDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential")
	}
	return credential, nil
}

// List retrieves credentials ordered by creation time descending with pagination.
func (p *PostgreSQLCredentialRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*credentialDomain.Credential, error) {
	query := `SELECT ` + credentialColumns + `
			  FROM credentials
			  ORDER BY created_at DESC, id DESC
			  LIMIT $1 OFFSET $2`
	return p.query(ctx, query, limit, offset)
}

// ListAll retrieves every credential ordered by ID. Used by master key rotation.
func (p *PostgreSQLCredentialRepository) ListAll(ctx context.Context) ([]*credentialDomain.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials ORDER BY id`
	return p.query(ctx, query)
}

func (p *PostgreSQLCredentialRepository) query(
	ctx context.Context,
	query string,
	args ...any,
) ([]*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	defer func() {
		_ = rows.Close()
	}()

	credentials := make([]*credentialDomain.Credential, 0)
	for rows.Next() {
		credential, err := scanPostgreSQLCredential(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credential")
		}
		credentials = append(credentials, credential)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate credentials")
	}
	return credentials, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgreSQLCredential(row rowScanner) (*credentialDomain.Credential, error) {
	var credential credentialDomain.Credential
	var provider string
	var config []byte

	err := row.Scan(
		&credential.ID,
		&credential.Name,
		&provider,
		&config,
		&credential.CreatedAt,
		&credential.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	credential.Provider = masking.Provider(provider)
	if credential.Config, err = unmarshalConfig(config); err != nil {
		return nil, err
	}
	return &credential, nil
}
