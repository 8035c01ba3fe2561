// Package http provides HTTP handlers for stored email provider credentials.
// Configurations are returned masked; plaintext secrets never leave the server.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/credguard/internal/credential/http/dto"
	credentialUseCase "github.com/allisson/credguard/internal/credential/usecase"
	"github.com/allisson/credguard/internal/httputil"
	"github.com/allisson/credguard/internal/masking"
	customValidation "github.com/allisson/credguard/internal/validation"
)

// CredentialHandler handles HTTP requests for credential management.
type CredentialHandler struct {
	credentialUseCase credentialUseCase.CredentialUseCase
	logger            *slog.Logger
}

// NewCredentialHandler creates a new credential handler.
func NewCredentialHandler(
	credentialUseCase credentialUseCase.CredentialUseCase,
	logger *slog.Logger,
) *CredentialHandler {
	return &CredentialHandler{
		credentialUseCase: credentialUseCase,
		logger:            logger,
	}
}

// CreateHandler stores a new provider configuration.
// POST /v1/credentials - Returns 201 Created with the configuration masked.
func (h *CredentialHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	credential, err := h.credentialUseCase.Create(
		c.Request.Context(),
		req.Name,
		req.Provider,
		req.Config,
		httputil.EventContext(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapMaskedCredentialToResponse(credential))
}

// GetHandler returns one credential with its secret fields masked.
// GET /v1/credentials/:id
func (h *CredentialHandler) GetHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	credential, err := h.credentialUseCase.GetMasked(c.Request.Context(), id, httputil.EventContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapMaskedCredentialToResponse(credential))
}

// UpdateHandler applies an edit-form submission.
// PUT /v1/credentials/:id - Masked secret values keep the stored secret.
func (h *CredentialHandler) UpdateHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	credential, err := h.credentialUseCase.Update(c.Request.Context(), id, req.Config, httputil.EventContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapMaskedCredentialToResponse(credential))
}

// DeleteHandler removes a credential.
// DELETE /v1/credentials/:id - Returns 204 No Content.
func (h *CredentialHandler) DeleteHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.credentialUseCase.Delete(c.Request.Context(), id, httputil.EventContext(c)); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListHandler returns credential metadata.
// GET /v1/credentials?offset=0&limit=50
func (h *CredentialHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	credentials, err := h.credentialUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCredentialsToListResponse(credentials))
}

// MaskPreviewHandler returns the masked form of a configuration without storing it.
// POST /v1/credentials/mask
func (h *CredentialHandler) MaskPreviewHandler(c *gin.Context) {
	var req dto.MaskPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MaskPreviewResponse{
		Provider: req.Provider,
		Config:   masking.MaskProviderConfig(req.Provider, req.Config),
	})
}

func (h *CredentialHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid credential id: must be a UUID"), h.logger)
		return uuid.Nil, false
	}
	return id, true
}
