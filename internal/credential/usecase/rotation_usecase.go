package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	credentialDomain "github.com/allisson/credguard/internal/credential/domain"
	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
	cryptoService "github.com/allisson/credguard/internal/crypto/service"
	"github.com/allisson/credguard/internal/database"
	apperrors "github.com/allisson/credguard/internal/errors"
)

type rotationUseCase struct {
	txManager database.TxManager
	repo      CredentialRepository
	keys      KeyRotator
	engine    cryptoService.EncryptionEngine
	audit     AuditLogger
	logger    *slog.Logger
	now       func() time.Time
}

// NewRotationUseCase creates a RotationUseCase.
func NewRotationUseCase(
	txManager database.TxManager,
	repo CredentialRepository,
	keys KeyRotator,
	engine cryptoService.EncryptionEngine,
	audit AuditLogger,
	logger *slog.Logger,
) RotationUseCase {
	return &rotationUseCase{
		txManager: txManager,
		repo:      repo,
		keys:      keys,
		engine:    engine,
		audit:     audit,
		logger:    logger,
		now:       time.Now,
	}
}

// RotateMasterKey replaces the master key and re-encrypts every credential under
// it. Encrypt and Decrypt are blocked for the duration. Records are rewritten in
// one transaction; on any failure the previous key is restored and no record
// changes.
func (r *rotationUseCase) RotateMasterKey(
	ctx context.Context,
	ectx auditDomain.EventContext,
) (*credentialDomain.RotationReport, error) {
	report := &credentialDomain.RotationReport{StartedAt: r.now().UTC()}

	err := r.engine.WithExclusiveLock(ctx, func(ctx context.Context) error {
		credentials, err := r.repo.ListAll(ctx)
		if err != nil {
			return apperrors.Wrap(err, "failed to list credentials")
		}

		rotation, err := r.keys.RotateKey(ctx)
		if err != nil {
			return apperrors.Wrap(err, "failed to rotate master key")
		}
		defer rotation.OldKey.Zero()
		defer rotation.NewKey.Zero()

		report.OldFingerprint = rotation.OldKey.Fingerprint()
		report.NewFingerprint = rotation.NewKey.Fingerprint()

		if err := r.reencryptAll(ctx, credentials, rotation); err != nil {
			return r.rollback(ctx, rotation.OldKey, err)
		}
		report.Reencrypted = len(credentials)
		return nil
	})

	report.FinishedAt = r.now().UTC()
	r.auditRotation(ctx, ectx, report, err)
	if err != nil {
		return nil, err
	}

	r.logger.Info("master key rotated",
		slog.String("old_fingerprint", report.OldFingerprint),
		slog.String("new_fingerprint", report.NewFingerprint),
		slog.Int("reencrypted", report.Reencrypted),
	)
	return report, nil
}

func (r *rotationUseCase) reencryptAll(
	ctx context.Context,
	credentials []*credentialDomain.Credential,
	rotation cryptoDomain.RotationResult,
) error {
	if len(credentials) == 0 {
		return nil
	}

	records := make([]cryptoDomain.EncryptedData, len(credentials))
	for i, credential := range credentials {
		records[i] = credential.Config
	}

	reencrypted, err := r.engine.BulkReencrypt(ctx, records, rotation.OldKey, rotation.NewKey)
	if err != nil {
		return apperrors.Wrap(err, "failed to re-encrypt credentials")
	}

	updatedAt := r.now().UTC()
	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		for i, credential := range credentials {
			updated := *credential
			updated.Config = reencrypted[i]
			updated.UpdatedAt = updatedAt
			if err := r.repo.Update(ctx, &updated); err != nil {
				return apperrors.Wrap(err, "failed to store re-encrypted credential "+credential.ID.String())
			}
		}
		return nil
	})
}

func (r *rotationUseCase) rollback(ctx context.Context, oldKey cryptoDomain.MasterKey, cause error) error {
	if restoreErr := r.keys.RestoreKey(ctx, oldKey); restoreErr != nil {
		r.logger.Error("failed to restore previous master key after rotation failure",
			slog.String("fingerprint", oldKey.Fingerprint()),
			slog.Any("error", restoreErr),
		)
		return errors.Join(cause, restoreErr)
	}
	r.logger.Warn("master key rotation rolled back", slog.Any("error", cause))
	return cause
}

func (r *rotationUseCase) auditRotation(
	ctx context.Context,
	ectx auditDomain.EventContext,
	report *credentialDomain.RotationReport,
	err error,
) {
	details := auditDomain.EventDetails{
		ResourceType: "credentials",
		Success:      err == nil,
		Details: map[string]any{
			"old_fingerprint": report.OldFingerprint,
			"new_fingerprint": report.NewFingerprint,
			"reencrypted":     report.Reencrypted,
		},
	}
	if err != nil {
		details.ErrorMessage = "master key rotation failed"
	}
	r.audit.LogEvent(ctx, auditDomain.EventKeyRotated, ectx, details)
}
