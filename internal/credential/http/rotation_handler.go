package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/credguard/internal/credential/http/dto"
	credentialUseCase "github.com/allisson/credguard/internal/credential/usecase"
	"github.com/allisson/credguard/internal/httputil"
)

// RotationHandler runs master key rotation inside the serving process, so the
// engine that handles requests is the one whose key is replaced.
type RotationHandler struct {
	rotationUseCase credentialUseCase.RotationUseCase
	logger          *slog.Logger
}

// NewRotationHandler creates a new rotation handler.
func NewRotationHandler(rotationUseCase credentialUseCase.RotationUseCase, logger *slog.Logger) *RotationHandler {
	return &RotationHandler{rotationUseCase: rotationUseCase, logger: logger}
}

// RotateHandler replaces the master key and re-encrypts every stored credential.
// POST /v1/keys/rotate
func (h *RotationHandler) RotateHandler(c *gin.Context) {
	report, err := h.rotationUseCase.RotateMasterKey(c.Request.Context(), httputil.EventContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRotationReportToResponse(report))
}
