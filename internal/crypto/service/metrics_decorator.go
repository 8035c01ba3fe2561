package service

import (
	"context"
	"time"

	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
	"github.com/allisson/credguard/internal/metrics"
)

// engineWithMetrics decorates EncryptionEngine with metrics instrumentation.
type engineWithMetrics struct {
	next    EncryptionEngine
	metrics metrics.BusinessMetrics
}

// NewEngineWithMetrics wraps an EncryptionEngine with metrics recording.
func NewEngineWithMetrics(engine EncryptionEngine, m metrics.BusinessMetrics) EncryptionEngine {
	return &engineWithMetrics{
		next:    engine,
		metrics: m,
	}
}

func (e *engineWithMetrics) record(ctx context.Context, operation string, start time.Time, failed bool) {
	status := metrics.StatusSuccess
	if failed {
		status = metrics.StatusError
	}
	e.metrics.RecordOperation(ctx, metrics.DomainCrypto, operation, status)
	e.metrics.RecordDuration(ctx, metrics.DomainCrypto, operation, time.Since(start), status)
}

// Encrypt records metrics for encryption.
func (e *engineWithMetrics) Encrypt(ctx context.Context, plaintext string) (*cryptoDomain.EncryptedData, error) {
	start := time.Now()
	data, err := e.next.Encrypt(ctx, plaintext)
	e.record(ctx, "encrypt", start, err != nil)
	return data, err
}

// Decrypt records metrics for decryption.
func (e *engineWithMetrics) Decrypt(ctx context.Context, data *cryptoDomain.EncryptedData) (string, error) {
	start := time.Now()
	plaintext, err := e.next.Decrypt(ctx, data)
	e.record(ctx, "decrypt", start, err != nil)
	return plaintext, err
}

// Validate records metrics for validation. An invalid record counts as an error.
func (e *engineWithMetrics) Validate(ctx context.Context, data *cryptoDomain.EncryptedData) bool {
	start := time.Now()
	ok := e.next.Validate(ctx, data)
	e.record(ctx, "validate", start, !ok)
	return ok
}

// Reencrypt records metrics for single record re-encryption.
func (e *engineWithMetrics) Reencrypt(
	ctx context.Context,
	data *cryptoDomain.EncryptedData,
	oldKey, newKey cryptoDomain.MasterKey,
) (*cryptoDomain.EncryptedData, error) {
	start := time.Now()
	result, err := e.next.Reencrypt(ctx, data, oldKey, newKey)
	e.record(ctx, "reencrypt", start, err != nil)
	return result, err
}

// BulkReencrypt records metrics for batch re-encryption.
func (e *engineWithMetrics) BulkReencrypt(
	ctx context.Context,
	records []cryptoDomain.EncryptedData,
	oldKey, newKey cryptoDomain.MasterKey,
) ([]cryptoDomain.EncryptedData, error) {
	start := time.Now()
	result, err := e.next.BulkReencrypt(ctx, records, oldKey, newKey)
	e.record(ctx, "bulk_reencrypt", start, err != nil)
	return result, err
}

// WithExclusiveLock is not instrumented.
func (e *engineWithMetrics) WithExclusiveLock(ctx context.Context, fn func(ctx context.Context) error) error {
	return e.next.WithExclusiveLock(ctx, fn)
}
