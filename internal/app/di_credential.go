package app

import (
	"fmt"
	"sync"

	credentialHTTP "github.com/allisson/credguard/internal/credential/http"
	credentialRepository "github.com/allisson/credguard/internal/credential/repository"
	credentialUseCase "github.com/allisson/credguard/internal/credential/usecase"
)

type credentialComponents struct {
	credentialRepo    credentialUseCase.CredentialRepository
	credentialUseCase credentialUseCase.CredentialUseCase
	rotationUseCase   credentialUseCase.RotationUseCase
	credentialHandler *credentialHTTP.CredentialHandler
	rotationHandler   *credentialHTTP.RotationHandler

	credentialRepoInit    sync.Once
	credentialUseCaseInit sync.Once
	rotationUseCaseInit   sync.Once
	credentialHandlerInit sync.Once
	rotationHandlerInit   sync.Once
}

// CredentialRepository returns the credential repository for the configured driver.
func (c *Container) CredentialRepository() (credentialUseCase.CredentialRepository, error) {
	c.credentialRepoInit.Do(func() {
		var err error
		c.credentialRepo, err = c.initCredentialRepository()
		if err != nil {
			c.recordError("credentialRepo", err)
		}
	})
	if err := c.storedError("credentialRepo"); err != nil {
		return nil, err
	}
	return c.credentialRepo, nil
}

// CredentialUseCase returns the credential use case, decorated with metrics.
func (c *Container) CredentialUseCase() (credentialUseCase.CredentialUseCase, error) {
	c.credentialUseCaseInit.Do(func() {
		var err error
		c.credentialUseCase, err = c.initCredentialUseCase()
		if err != nil {
			c.recordError("credentialUseCase", err)
		}
	})
	if err := c.storedError("credentialUseCase"); err != nil {
		return nil, err
	}
	return c.credentialUseCase, nil
}

// RotationUseCase returns the master key rotation use case, decorated with metrics.
func (c *Container) RotationUseCase() (credentialUseCase.RotationUseCase, error) {
	c.rotationUseCaseInit.Do(func() {
		var err error
		c.rotationUseCase, err = c.initRotationUseCase()
		if err != nil {
			c.recordError("rotationUseCase", err)
		}
	})
	if err := c.storedError("rotationUseCase"); err != nil {
		return nil, err
	}
	return c.rotationUseCase, nil
}

// CredentialHandler returns the credential HTTP handler.
func (c *Container) CredentialHandler() (*credentialHTTP.CredentialHandler, error) {
	c.credentialHandlerInit.Do(func() {
		var err error
		c.credentialHandler, err = c.initCredentialHandler()
		if err != nil {
			c.recordError("credentialHandler", err)
		}
	})
	if err := c.storedError("credentialHandler"); err != nil {
		return nil, err
	}
	return c.credentialHandler, nil
}

// RotationHandler returns the HTTP handler that rotates the master key in-process.
func (c *Container) RotationHandler() (*credentialHTTP.RotationHandler, error) {
	c.rotationHandlerInit.Do(func() {
		var err error
		c.rotationHandler, err = c.initRotationHandler()
		if err != nil {
			c.recordError("rotationHandler", err)
		}
	})
	if err := c.storedError("rotationHandler"); err != nil {
		return nil, err
	}
	return c.rotationHandler, nil
}

func (c *Container) initCredentialRepository() (credentialUseCase.CredentialRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for credential repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return credentialRepository.NewMySQLCredentialRepository(db), nil
	case "postgres":
		return credentialRepository.NewPostgreSQLCredentialRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initCredentialUseCase() (credentialUseCase.CredentialUseCase, error) {
	repo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for credential use case: %w", err)
	}

	engine, err := c.Engine()
	if err != nil {
		return nil, fmt.Errorf("failed to get encryption engine for credential use case: %w", err)
	}

	auditLogger, err := c.AuditLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get security audit logger for credential use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for credential use case: %w", err)
	}

	useCase := credentialUseCase.NewCredentialUseCase(repo, engine, auditLogger)
	return credentialUseCase.NewCredentialUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initRotationUseCase() (credentialUseCase.RotationUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for rotation use case: %w", err)
	}

	repo, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for rotation use case: %w", err)
	}

	keyProvider, err := c.KeyProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get key provider for rotation use case: %w", err)
	}

	engine, err := c.Engine()
	if err != nil {
		return nil, fmt.Errorf("failed to get encryption engine for rotation use case: %w", err)
	}

	auditLogger, err := c.AuditLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get security audit logger for rotation use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for rotation use case: %w", err)
	}

	useCase := credentialUseCase.NewRotationUseCase(
		txManager,
		repo,
		keyProvider,
		engine,
		auditLogger,
		c.Logger().With("component", "key_rotation"),
	)
	return credentialUseCase.NewRotationUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initCredentialHandler() (*credentialHTTP.CredentialHandler, error) {
	useCase, err := c.CredentialUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential use case for credential handler: %w", err)
	}
	return credentialHTTP.NewCredentialHandler(useCase, c.Logger()), nil
}

func (c *Container) initRotationHandler() (*credentialHTTP.RotationHandler, error) {
	useCase, err := c.RotationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation use case for rotation handler: %w", err)
	}
	return credentialHTTP.NewRotationHandler(useCase, c.Logger()), nil
}
