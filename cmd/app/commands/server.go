package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/allisson/credguard/internal/app"
	"github.com/allisson/credguard/internal/config"
)

// stopper is implemented by the API and metrics servers.
type stopper interface {
	Shutdown(ctx context.Context) error
}

// RunServer starts the API and metrics servers and the security audit logger.
// The master key is resolved and self-tested before any listener opens. Blocks
// until SIGINT/SIGTERM or a fatal server error; the container shutdown then stops
// the audit logger, which flushes buffered events before storage is closed.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting credguard", slog.String("version", version))
	defer closeContainer(container, logger)

	auditLogger, err := container.AuditLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize security audit logger: %w", err)
	}
	auditLogger.Start(context.WithoutCancel(ctx))

	keyProvider, err := container.KeyProvider()
	if err != nil {
		return fmt.Errorf("failed to initialize key provider: %w", err)
	}
	if !keyProvider.ValidateKey(ctx) {
		return ErrKeyValidationFailed
	}

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	running := map[string]stopper{"api server": server}
	serverErr := make(chan error, 2)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErr <- fmt.Errorf("api server: %w", err)
		}
	}()
	if metricsServer != nil {
		running["metrics server"] = metricsServer
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				serverErr <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	var cause error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case cause = <-serverErr:
		logger.Error("server failed, shutting down", slog.Any("error", cause))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer shutdownCancel()
	return errors.Join(cause, shutdownAll(shutdownCtx, running))
}

// shutdownAll stops every server and joins their errors.
func shutdownAll(ctx context.Context, servers map[string]stopper) error {
	var errs []error
	for name, s := range servers {
		if err := s.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s shutdown: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
