// Package httputil holds the shared request parsing and JSON error rendering used
// by the credential, key and audit handlers.
package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
	apperrors "github.com/allisson/credguard/internal/errors"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type errorMapping struct {
	targets []error
	status  int
	code    string
	// message is the public text; empty means err.Error() is safe to show.
	message string
}

// errorMappings is checked in order; the first match wins. Crypto failures never
// expose their cause since it may mention key material.
var errorMappings = []errorMapping{
	{[]error{apperrors.ErrNotFound}, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{[]error{apperrors.ErrConflict}, http.StatusConflict, "conflict", "A conflict occurred with existing data"},
	{[]error{apperrors.ErrInvalidInput}, http.StatusUnprocessableEntity, "invalid_input", ""},
	{[]error{apperrors.ErrUnauthorized}, http.StatusUnauthorized, "unauthorized", "Authentication is required"},
	{[]error{apperrors.ErrForbidden}, http.StatusForbidden, "forbidden", "Access to this resource is denied"},
	{
		[]error{cryptoDomain.ErrEncryptionFailed, cryptoDomain.ErrDecryptionFailed},
		http.StatusInternalServerError,
		"crypto_error",
		"The stored configuration could not be processed",
	},
}

func (m errorMapping) matches(err error) bool {
	for _, target := range m.targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// HandleErrorGin renders err as JSON. Unknown errors become a generic 500; the full
// chain is only logged.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status := http.StatusInternalServerError
	body := ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}
	for _, m := range errorMappings {
		if !m.matches(err) {
			continue
		}
		status = m.status
		body = ErrorResponse{Error: m.code, Message: m.message}
		if m.message == "" {
			body.Message = err.Error()
		}
		break
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", status),
			slog.String("error_code", body.Error),
			slog.Any("error", err),
		)
	}
	c.JSON(status, body)
}

// HandleBadRequestGin renders a 400 for bodies or parameters that cannot be parsed.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
}

// HandleValidationErrorGin renders a 422 with the validation messages.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation_error", Message: err.Error()})
}
