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

// MySQLCredentialRepository implements credential persistence for MySQL.
// Uses BINARY(16) for UUID storage.
type MySQLCredentialRepository struct {
	db *sql.DB
}

// NewMySQLCredentialRepository creates a new MySQL credential repository.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}

// Create inserts a credential. A duplicate name returns ErrCredentialAlreadyExists.
func (m *MySQLCredentialRepository) Create(ctx context.Context, credential *credentialDomain.Credential) error {
	querier := database.GetTx(ctx, m.db)

	id, err := credential.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}
	config, err := marshalConfig(credential.Config)
	if err != nil {
		return err
	}

	query := `INSERT INTO credentials (` + credentialColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		credential.Name,
		string(credential.Provider),
		config,
		credential.CreatedAt,
		credential.UpdatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return credentialDomain.ErrCredentialAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create credential")
	}
	return nil
}

// Update replaces the encrypted config and updated_at of an existing credential.
func (m *MySQLCredentialRepository) Update(ctx context.Context, credential *credentialDomain.Credential) error {
	querier := database.GetTx(ctx, m.db)

	id, err := credential.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}
	config, err := marshalConfig(credential.Config)
	if err != nil {
		return err
	}

	// MySQL reports matched rows as affected only when the row changes, so existence
	// is checked separately when nothing was updated.
	result, err := querier.ExecContext(
		ctx,
		`UPDATE credentials SET config = ?, updated_at = ? WHERE id = ?`,
		config,
		credential.UpdatedAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update credential")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get affected rows count")
	}
	if affected == 0 {
		if _, err := m.Get(ctx, credential.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a credential.
func (m *MySQLCredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM credentials WHERE id = ?`, idBinary)
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
func (m *MySQLCredentialRepository) Get(ctx context.Context, id uuid.UUID) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	idBinary, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = ?`
	credential, err := scanMySQLCredential(querier.QueryRowContext(ctx, query, idBinary))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credentialDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential")
	}
	return credential, nil
}

// List retrieves credentials ordered by creation time descending with pagination.
func (m *MySQLCredentialRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*credentialDomain.Credential, error) {
	query := `SELECT ` + credentialColumns + `
			  FROM credentials
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`
	return m.query(ctx, query, limit, offset)
}

// ListAll retrieves every credential ordered by ID. Used by master key rotation.
func (m *MySQLCredentialRepository) ListAll(ctx context.Context) ([]*credentialDomain.Credential, error) {
	return m.query(ctx, `SELECT `+credentialColumns+` FROM credentials ORDER BY id`)
}

func (m *MySQLCredentialRepository) query(
	ctx context.Context,
	query string,
	args ...any,
) ([]*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	defer func() {
		_ = rows.Close()
	}()

	credentials := make([]*credentialDomain.Credential, 0)
	for rows.Next() {
		credential, err := scanMySQLCredential(rows)
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

func scanMySQLCredential(row rowScanner) (*credentialDomain.Credential, error) {
	var credential credentialDomain.Credential
	var idBinary, config []byte
	var provider string

	err := row.Scan(
		&idBinary,
		&credential.Name,
		&provider,
		&config,
		&credential.CreatedAt,
		&credential.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := credential.ID.UnmarshalBinary(idBinary); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal credential id")
	}
	credential.Provider = masking.Provider(provider)
	if credential.Config, err = unmarshalConfig(config); err != nil {
		return nil, err
	}
	return &credential, nil
}
