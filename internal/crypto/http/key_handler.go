// Package http exposes non-secret master key metadata over HTTP.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
	"github.com/allisson/credguard/internal/httputil"
)

// KeyInfoProvider reports metadata about the current master key.
type KeyInfoProvider interface {
	GetKeyInfo(ctx context.Context) (cryptoDomain.KeyInfo, error)
}

// KeyHandler handles master key metadata requests.
type KeyHandler struct {
	keys   KeyInfoProvider
	logger *slog.Logger
}

// NewKeyHandler creates a new key handler.
func NewKeyHandler(keys KeyInfoProvider, logger *slog.Logger) *KeyHandler {
	return &KeyHandler{keys: keys, logger: logger}
}

// keyInfoResponse omits the key file path; the host layout is only shown by the
// key-info command.
type keyInfoResponse struct {
	Source      cryptoDomain.KeySource `json:"source"`
	Length      int                    `json:"length"`
	Fingerprint string                 `json:"fingerprint"`
}

// InfoHandler returns the source, length and fingerprint of the master key.
// GET /v1/keys/info
func (h *KeyHandler) InfoHandler(c *gin.Context) {
	info, err := h.keys.GetKeyInfo(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, keyInfoResponse{
		Source:      info.Source,
		Length:      info.Length,
		Fingerprint: info.Fingerprint,
	})
}
