// Package http provides HTTP handlers for reading the security audit log.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/credguard/internal/audit/http/dto"
	auditUseCase "github.com/allisson/credguard/internal/audit/usecase"
	"github.com/allisson/credguard/internal/httputil"
)

// AuditEventHandler handles HTTP requests for audit events and configuration trails.
type AuditEventHandler struct {
	auditEventUseCase auditUseCase.AuditEventUseCase
	logger            *slog.Logger
}

// NewAuditEventHandler creates a new audit event handler.
func NewAuditEventHandler(
	auditEventUseCase auditUseCase.AuditEventUseCase,
	logger *slog.Logger,
) *AuditEventHandler {
	return &AuditEventHandler{
		auditEventUseCase: auditEventUseCase,
		logger:            logger,
	}
}

// ListHandler returns security audit events, newest first.
// GET /v1/audit-events?offset=0&limit=50
func (h *AuditEventHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	events, err := h.auditEventUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventsToListResponse(events))
}

// ConfigTrailHandler returns the change trail of one stored configuration.
// GET /v1/credentials/:id/audit-trail?offset=0&limit=50
func (h *AuditEventHandler) ConfigTrailHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid credential id: must be a UUID"), h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	entries, err := h.auditEventUseCase.ListConfigTrail(c.Request.Context(), id.String(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapConfigTrailToListResponse(id.String(), entries))
}
