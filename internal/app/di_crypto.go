package app

import (
	"context"
	"fmt"
	"sync"

	cryptoHTTP "github.com/allisson/credguard/internal/crypto/http"
	cryptoService "github.com/allisson/credguard/internal/crypto/service"
)

type cryptoComponents struct {
	kmsService  cryptoService.KMSService
	kmsKeeper   cryptoService.KMSKeeper
	keyCodec    cryptoService.KeyCodec
	keyProvider *cryptoService.KeyProvider
	engine      cryptoService.EncryptionEngine
	keyHandler  *cryptoHTTP.KeyHandler

	kmsServiceInit  sync.Once
	keyCodecInit    sync.Once
	keyProviderInit sync.Once
	engineInit      sync.Once
	keyHandlerInit  sync.Once
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// KeyCodec returns the codec used for the persisted master key file: KMS wrapping
// when a KMS key URI is configured, hex otherwise.
func (c *Container) KeyCodec() (cryptoService.KeyCodec, error) {
	c.keyCodecInit.Do(func() {
		var err error
		c.keyCodec, err = c.initKeyCodec()
		if err != nil {
			c.recordError("keyCodec", err)
		}
	})
	if err := c.storedError("keyCodec"); err != nil {
		return nil, err
	}
	return c.keyCodec, nil
}

// KeyProvider returns the master key provider.
func (c *Container) KeyProvider() (*cryptoService.KeyProvider, error) {
	c.keyProviderInit.Do(func() {
		var err error
		c.keyProvider, err = c.initKeyProvider()
		if err != nil {
			c.recordError("keyProvider", err)
		}
	})
	if err := c.storedError("keyProvider"); err != nil {
		return nil, err
	}
	return c.keyProvider, nil
}

// Engine returns the encryption engine, decorated with metrics.
func (c *Container) Engine() (cryptoService.EncryptionEngine, error) {
	c.engineInit.Do(func() {
		var err error
		c.engine, err = c.initEngine()
		if err != nil {
			c.recordError("engine", err)
		}
	})
	if err := c.storedError("engine"); err != nil {
		return nil, err
	}
	return c.engine, nil
}

// KeyHandler returns the master key info HTTP handler.
func (c *Container) KeyHandler() (*cryptoHTTP.KeyHandler, error) {
	c.keyHandlerInit.Do(func() {
		var err error
		c.keyHandler, err = c.initKeyHandler()
		if err != nil {
			c.recordError("keyHandler", err)
		}
	})
	if err := c.storedError("keyHandler"); err != nil {
		return nil, err
	}
	return c.keyHandler, nil
}

func (c *Container) initKeyCodec() (cryptoService.KeyCodec, error) {
	if c.config.KMSKeyURI == "" {
		return cryptoService.NewHexKeyCodec(), nil
	}

	keeper, err := c.KMSService().OpenKeeper(context.Background(), c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper for key codec: %w", err)
	}
	c.kmsKeeper = keeper
	return cryptoService.NewKMSKeyCodec(keeper), nil
}

func (c *Container) initKeyProvider() (*cryptoService.KeyProvider, error) {
	codec, err := c.KeyCodec()
	if err != nil {
		return nil, fmt.Errorf("failed to get key codec for key provider: %w", err)
	}

	auditLogger, err := c.AuditLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get security audit logger for key provider: %w", err)
	}

	return cryptoService.NewKeyProvider(
		cryptoService.KeyProviderConfig{
			EnvVar:     c.config.MasterKeyEnvVar,
			Candidates: c.config.KeyFileCandidates(),
		},
		codec,
		cryptoService.NewAEADManager(),
		cryptoService.NewPBKDF2Deriver(),
		auditLogger,
		c.Logger().With("component", "key_provider"),
	), nil
}

func (c *Container) initEngine() (cryptoService.EncryptionEngine, error) {
	keyProvider, err := c.KeyProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get key provider for encryption engine: %w", err)
	}

	auditLogger, err := c.AuditLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get security audit logger for encryption engine: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for encryption engine: %w", err)
	}

	engine := cryptoService.NewEngine(
		keyProvider,
		cryptoService.NewAEADManager(),
		cryptoService.NewPBKDF2Deriver(),
		auditLogger,
		c.Logger().With("component", "encryption_engine"),
	)
	return cryptoService.NewEngineWithMetrics(engine, businessMetrics), nil
}

func (c *Container) initKeyHandler() (*cryptoHTTP.KeyHandler, error) {
	keyProvider, err := c.KeyProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get key provider for key handler: %w", err)
	}
	return cryptoHTTP.NewKeyHandler(keyProvider, c.Logger()), nil
}
