package httputil

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
)

// Actor headers are set by the authenticating gateway in front of the API.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderSessionID = "X-Session-Id"
)

// EventContext extracts the audit actor and request information from a request.
func EventContext(c *gin.Context) auditDomain.EventContext {
	return auditDomain.EventContext{
		UserID:    c.GetHeader(HeaderUserID),
		UserEmail: c.GetHeader(HeaderUserEmail),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		SessionID: c.GetHeader(HeaderSessionID),
		RequestID: requestid.Get(c),
	}
}
