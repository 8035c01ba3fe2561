// Package dto provides data transfer objects for credential HTTP requests and responses.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/credguard/internal/masking"
	customValidation "github.com/allisson/credguard/internal/validation"
)

func providerNames() []any {
	providers := masking.AllProviders()
	names := make([]any, 0, len(providers))
	for _, p := range providers {
		names = append(names, string(p))
	}
	return names
}

// CreateCredentialRequest contains the parameters for storing a provider configuration.
type CreateCredentialRequest struct {
	Name     string         `json:"name"`
	Provider string         `json:"provider"`
	Config   map[string]any `json:"config"`
}

// Validate checks the request shape. Provider-specific fields are checked by the use case.
func (r *CreateCredentialRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Provider,
			validation.Required,
			validation.In(providerNames()...).Error("must be a supported email provider"),
		),
		validation.Field(&r.Config, validation.Required),
	)
}

// UpdateCredentialRequest carries an edit-form submission. Secret fields may be
// sent back in masked form to keep their stored values.
type UpdateCredentialRequest struct {
	Config map[string]any `json:"config"`
}

// Validate checks the update request.
func (r *UpdateCredentialRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Config, validation.Required),
	)
}

// MaskPreviewRequest asks for the masked display form of a configuration without storing it.
type MaskPreviewRequest struct {
	Provider string         `json:"provider"`
	Config   map[string]any `json:"config"`
}

// Validate checks the preview request.
func (r *MaskPreviewRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Provider,
			validation.Required,
			validation.In(providerNames()...).Error("must be a supported email provider"),
		),
		validation.Field(&r.Config, validation.Required),
	)
}
