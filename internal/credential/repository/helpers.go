// Package repository implements credential persistence for PostgreSQL and MySQL.
// The encrypted config is stored as the JSON form of EncryptedData.
package repository

import (
	"encoding/json"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
	apperrors "github.com/allisson/credguard/internal/errors"
)

const credentialColumns = `id, name, provider, config, created_at, updated_at`

func marshalConfig(config cryptoDomain.EncryptedData) ([]byte, error) {
	data, err := json.Marshal(config)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal credential config")
	}
	return data, nil
}

func unmarshalConfig(data []byte) (cryptoDomain.EncryptedData, error) {
	var config cryptoDomain.EncryptedData
	if err := json.Unmarshal(data, &config); err != nil {
		return config, apperrors.Wrap(err, "failed to unmarshal credential config")
	}
	return config, nil
}

// isPostgreSQLUniqueViolation reports a unique_violation (SQLSTATE 23505).
func isPostgreSQLUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isMySQLUniqueViolation reports a duplicate entry error (1062).
func isMySQLUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
