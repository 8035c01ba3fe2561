package domain

import (
	"github.com/allisson/credguard/internal/errors"
)

var (
	// ErrCredentialNotFound indicates no credential exists with the requested ID.
	ErrCredentialNotFound = errors.Wrap(errors.ErrNotFound, "credential not found")

	// ErrCredentialAlreadyExists indicates the credential name is taken.
	ErrCredentialAlreadyExists = errors.Wrap(errors.ErrConflict, "credential already exists")

	// ErrUnknownProvider indicates the provider name is not supported.
	ErrUnknownProvider = errors.Wrap(errors.ErrInvalidInput, "unknown provider")

	// ErrInvalidConfig indicates the stored configuration did not decode as a JSON object.
	ErrInvalidConfig = errors.Wrap(errors.ErrInvalidInput, "invalid credential config")
)
