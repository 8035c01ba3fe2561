// Package http provides the HTTP server, router and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/allisson/credguard/internal/audit/http"
	"github.com/allisson/credguard/internal/config"
	credentialHTTP "github.com/allisson/credguard/internal/credential/http"
	cryptoHTTP "github.com/allisson/credguard/internal/crypto/http"
	"github.com/allisson/credguard/internal/metrics"
)

// KeyChecker reports whether the master key resolves and passes a self-test.
type KeyChecker interface {
	ValidateKey(ctx context.Context) bool
}

// Server represents the HTTP server.
type Server struct {
	draining atomic.Bool

	db       *sql.DB
	keys     KeyChecker
	rotation *credentialHTTP.RotationHandler
	server   *http.Server
	router   *gin.Engine
	logger   *slog.Logger
}

// NewServer creates a new HTTP server. A nil db or key checker makes /ready report not ready.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// WithKeyChecker sets the master key check used by /ready.
func (s *Server) WithKeyChecker(keys KeyChecker) *Server {
	s.keys = keys
	return s
}

// WithRotationHandler mounts POST /v1/keys/rotate. Rotation has to run in the
// process that serves requests, otherwise the serving engine keeps the
// replaced key cached.
func (s *Server) WithRotationHandler(rotation *credentialHTTP.RotationHandler) *Server {
	s.rotation = rotation
	return s
}

// SetupRouter registers middleware and routes.
func (s *Server) SetupRouter(
	cfg *config.Config,
	credentialHandler *credentialHTTP.CredentialHandler,
	auditEventHandler *auditHTTP.AuditEventHandler,
	keyHandler *cryptoHTTP.KeyHandler,
	auditRecorder SecurityEventRecorder,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, auditRecorder, s.logger))
	}

	v1.GET("/keys/info", keyHandler.InfoHandler)
	if s.rotation != nil {
		v1.POST("/keys/rotate", s.rotation.RotateHandler)
	}

	credentials := v1.Group("/credentials")
	{
		credentials.POST("", credentialHandler.CreateHandler)
		credentials.GET("", credentialHandler.ListHandler)
		credentials.POST("/mask", credentialHandler.MaskPreviewHandler)
		credentials.GET("/:id", credentialHandler.GetHandler)
		credentials.PUT("/:id", credentialHandler.UpdateHandler)
		credentials.DELETE("/:id", credentialHandler.DeleteHandler)
		credentials.GET("/:id/audit-trail", auditEventHandler.ConfigTrailHandler)
	}

	v1.GET("/audit-events", auditEventHandler.ListHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server. /ready reports not ready from
// the moment it is called.
func (s *Server) Shutdown(ctx context.Context) error {
	s.draining.Store(true)
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers and the master
// key resolves.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.draining.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	components := gin.H{"database": "ok", "master_key": "ok"}
	ready := true

	if s.db == nil || s.db.PingContext(ctx) != nil {
		components["database"] = "error"
		ready = false
	}
	if s.keys == nil || !s.keys.ValidateKey(ctx) {
		components["master_key"] = "error"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
