package dto

import (
	"time"

	credentialDomain "github.com/allisson/credguard/internal/credential/domain"
)

// CredentialResponse is a credential with its configuration masked.
type CredentialResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Provider  string         `json:"provider"`
	Config    map[string]any `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CredentialSummary is list metadata. It never carries the configuration.
type CredentialSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListCredentialsResponse is a page of credential metadata.
type ListCredentialsResponse struct {
	Data []CredentialSummary `json:"data"`
}

// MaskPreviewResponse is the masked form of a submitted configuration.
type MaskPreviewResponse struct {
	Provider string         `json:"provider"`
	Config   map[string]any `json:"config"`
}

// MapMaskedCredentialToResponse converts a masked credential to its response form.
func MapMaskedCredentialToResponse(credential *credentialDomain.MaskedCredential) CredentialResponse {
	return CredentialResponse{
		ID:        credential.ID.String(),
		Name:      credential.Name,
		Provider:  string(credential.Provider),
		Config:    credential.Config,
		CreatedAt: credential.CreatedAt,
		UpdatedAt: credential.UpdatedAt,
	}
}

// MapCredentialsToListResponse converts stored credentials to list metadata.
func MapCredentialsToListResponse(credentials []*credentialDomain.Credential) ListCredentialsResponse {
	data := make([]CredentialSummary, 0, len(credentials))
	for _, credential := range credentials {
		data = append(data, CredentialSummary{
			ID:        credential.ID.String(),
			Name:      credential.Name,
			Provider:  string(credential.Provider),
			CreatedAt: credential.CreatedAt,
			UpdatedAt: credential.UpdatedAt,
		})
	}
	return ListCredentialsResponse{Data: data}
}

// RotationResponse summarizes a completed master key rotation.
type RotationResponse struct {
	OldFingerprint string    `json:"old_fingerprint"`
	NewFingerprint string    `json:"new_fingerprint"`
	Reencrypted    int       `json:"reencrypted"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// MapRotationReportToResponse converts a rotation report to its response form.
func MapRotationReportToResponse(report *credentialDomain.RotationReport) RotationResponse {
	return RotationResponse{
		OldFingerprint: report.OldFingerprint,
		NewFingerprint: report.NewFingerprint,
		Reencrypted:    report.Reencrypted,
		StartedAt:      report.StartedAt,
		FinishedAt:     report.FinishedAt,
	}
}
