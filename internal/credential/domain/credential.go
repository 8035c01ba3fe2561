// Package domain defines stored email-provider credentials. The provider
// configuration is only ever held encrypted; plaintext exists inside use cases.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
	"github.com/allisson/credguard/internal/masking"
)

// Credential is one named provider configuration.
type Credential struct {
	ID        uuid.UUID
	Name      string
	Provider  masking.Provider
	Config    cryptoDomain.EncryptedData
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaskedCredential is the display form of a credential with its secret fields masked.
type MaskedCredential struct {
	ID        uuid.UUID
	Name      string
	Provider  masking.Provider
	Config    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RotationReport summarizes one master key rotation.
type RotationReport struct {
	OldFingerprint string
	NewFingerprint string
	Reencrypted    int
	StartedAt      time.Time
	FinishedAt     time.Time
}
