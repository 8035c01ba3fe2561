package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	auditHTTP "github.com/allisson/credguard/internal/audit/http"
	auditRepository "github.com/allisson/credguard/internal/audit/repository"
	auditService "github.com/allisson/credguard/internal/audit/service"
	auditUseCase "github.com/allisson/credguard/internal/audit/usecase"
)

const mongoConnectTimeout = 10 * time.Second

// eventStore is implemented by every security audit event repository.
type eventStore interface {
	auditService.EventRepository
	auditUseCase.EventRepository
}

// configTrailStore is implemented by the SQL config trail repositories.
type configTrailStore interface {
	auditService.ConfigTrailRepository
	auditUseCase.ConfigTrailRepository
}

type auditComponents struct {
	mongoClient       *mongo.Client
	mongoDatabase     *mongo.Database
	eventRepo         eventStore
	configTrailRepo   configTrailStore
	auditLogger       *auditService.SecurityAuditLogger
	auditEventUseCase auditUseCase.AuditEventUseCase
	auditEventHandler *auditHTTP.AuditEventHandler

	mongoDatabaseInit     sync.Once
	eventRepoInit         sync.Once
	configTrailRepoInit   sync.Once
	auditLoggerInit       sync.Once
	auditEventUseCaseInit sync.Once
	auditEventHandlerInit sync.Once
}

// MongoDatabase returns the MongoDB database used by the document audit store.
func (c *Container) MongoDatabase() (*mongo.Database, error) {
	c.mongoDatabaseInit.Do(func() {
		var err error
		c.mongoDatabase, err = c.initMongoDatabase()
		if err != nil {
			c.recordError("mongoDatabase", err)
		}
	})
	if err := c.storedError("mongoDatabase"); err != nil {
		return nil, err
	}
	return c.mongoDatabase, nil
}

// EventRepository returns the security audit event repository for the configured store.
func (c *Container) EventRepository() (eventStore, error) {
	c.eventRepoInit.Do(func() {
		var err error
		c.eventRepo, err = c.initEventRepository()
		if err != nil {
			c.recordError("eventRepo", err)
		}
	})
	if err := c.storedError("eventRepo"); err != nil {
		return nil, err
	}
	return c.eventRepo, nil
}

// ConfigTrailRepository returns the config audit trail repository. It is nil with
// the document audit store, which keeps no per-configuration trail.
func (c *Container) ConfigTrailRepository() (configTrailStore, error) {
	c.configTrailRepoInit.Do(func() {
		var err error
		c.configTrailRepo, err = c.initConfigTrailRepository()
		if err != nil {
			c.recordError("configTrailRepo", err)
		}
	})
	if err := c.storedError("configTrailRepo"); err != nil {
		return nil, err
	}
	return c.configTrailRepo, nil
}

// AuditLogger returns the buffered security audit logger. Callers that need the
// periodic flush must call Start; Shutdown stops it.
func (c *Container) AuditLogger() (*auditService.SecurityAuditLogger, error) {
	c.auditLoggerInit.Do(func() {
		var err error
		c.auditLogger, err = c.initAuditLogger()
		if err != nil {
			c.recordError("auditLogger", err)
		}
	})
	if err := c.storedError("auditLogger"); err != nil {
		return nil, err
	}
	return c.auditLogger, nil
}

// AuditEventUseCase returns the audit event use case, decorated with metrics.
func (c *Container) AuditEventUseCase() (auditUseCase.AuditEventUseCase, error) {
	c.auditEventUseCaseInit.Do(func() {
		var err error
		c.auditEventUseCase, err = c.initAuditEventUseCase()
		if err != nil {
			c.recordError("auditEventUseCase", err)
		}
	})
	if err := c.storedError("auditEventUseCase"); err != nil {
		return nil, err
	}
	return c.auditEventUseCase, nil
}

// AuditEventHandler returns the audit event HTTP handler.
func (c *Container) AuditEventHandler() (*auditHTTP.AuditEventHandler, error) {
	c.auditEventHandlerInit.Do(func() {
		var err error
		c.auditEventHandler, err = c.initAuditEventHandler()
		if err != nil {
			c.recordError("auditEventHandler", err)
		}
	})
	if err := c.storedError("auditEventHandler"); err != nil {
		return nil, err
	}
	return c.auditEventHandler, nil
}

func (c *Container) initMongoDatabase() (*mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(c.config.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	c.mongoClient = client
	return client.Database(c.config.MongoDatabase), nil
}

func (c *Container) initEventRepository() (eventStore, error) {
	if c.config.AuditStore == "mongo" {
		mongoDB, err := c.MongoDatabase()
		if err != nil {
			return nil, fmt.Errorf("failed to get mongo database for event repository: %w", err)
		}

		repo := auditRepository.NewMongoEventRepository(mongoDB)

		ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
		defer cancel()
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to create security audit event indexes: %w", err)
		}
		return repo, nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return auditRepository.NewMySQLEventRepository(db), nil
	case "postgres":
		return auditRepository.NewPostgreSQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initConfigTrailRepository() (configTrailStore, error) {
	if c.config.AuditStore == "mongo" {
		return nil, nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for config trail repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return auditRepository.NewMySQLConfigTrailRepository(db), nil
	case "postgres":
		return auditRepository.NewPostgreSQLConfigTrailRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuditLogger() (*auditService.SecurityAuditLogger, error) {
	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for security audit logger: %w", err)
	}

	trailRepo, err := c.ConfigTrailRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get config trail repository for security audit logger: %w", err)
	}

	var trail auditService.ConfigTrailRepository
	if trailRepo != nil {
		trail = trailRepo
	}

	securityMetrics, err := c.SecurityMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get security metrics for security audit logger: %w", err)
	}

	logger := c.Logger().With("component", "security_audit")
	return auditService.NewSecurityAuditLogger(
		auditService.Config{
			BufferSize:        c.config.AuditBufferSize,
			FlushInterval:     c.config.AuditFlushInterval,
			MaxBufferedEvents: c.config.AuditMaxBufferedEvents,
		},
		auditService.NewEventRepositoryWithMetrics(eventRepo, securityMetrics),
		trail,
		auditService.NewLogEscalator(logger),
		logger,
	), nil
}

func (c *Container) initAuditEventUseCase() (auditUseCase.AuditEventUseCase, error) {
	eventRepo, err := c.EventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get event repository for audit event use case: %w", err)
	}

	trailRepo, err := c.ConfigTrailRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get config trail repository for audit event use case: %w", err)
	}

	var trail auditUseCase.ConfigTrailRepository
	if trailRepo != nil {
		trail = trailRepo
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for audit event use case: %w", err)
	}

	useCase := auditUseCase.NewAuditEventUseCase(eventRepo, trail)
	return auditUseCase.NewAuditEventUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initAuditEventHandler() (*auditHTTP.AuditEventHandler, error) {
	useCase, err := c.AuditEventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event use case for audit event handler: %w", err)
	}
	return auditHTTP.NewAuditEventHandler(useCase, c.Logger()), nil
}
