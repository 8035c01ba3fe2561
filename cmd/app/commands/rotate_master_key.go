package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/user"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	credentialUseCase "github.com/allisson/credguard/internal/credential/usecase"
)

// rotationOutput is the JSON form of rotate-master-key.
type rotationOutput struct {
	OldFingerprint string `json:"old_fingerprint"`
	NewFingerprint string `json:"new_fingerprint"`
	Reencrypted    int    `json:"reencrypted"`
	DurationMillis int64  `json:"duration_ms"`
}

// ErrServerRotationRequired is returned when rotate-master-key runs without
// --offline. A running server caches the master key, so a rotation done by a
// separate process would leave it encrypting under the replaced key.
var ErrServerRotationRequired = errors.New(
	"master key rotation must run in the serving process: call POST /v1/keys/rotate, " +
		"or stop every server and pass --offline",
)

// RunRotateMasterKey replaces the master key and re-encrypts every stored credential.
// The new key is persisted to the first writable key file. It only runs with
// offline set, which the operator asserts once no server holds the key store.
func RunRotateMasterKey(
	ctx context.Context,
	rotationUseCase credentialUseCase.RotationUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
	offline bool,
) error {
	if !offline {
		logger.Error("refusing to rotate master key outside the server")
		return ErrServerRotationRequired
	}

	logger.Info("rotating master key")

	report, err := rotationUseCase.RotateMasterKey(ctx, cliEventContext())
	if err != nil {
		return fmt.Errorf("failed to rotate master key: %w", err)
	}

	output := rotationOutput{
		OldFingerprint: report.OldFingerprint,
		NewFingerprint: report.NewFingerprint,
		Reencrypted:    report.Reencrypted,
		DurationMillis: report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	}

	logger.Info("master key rotated",
		slog.String("old_fingerprint", output.OldFingerprint),
		slog.String("new_fingerprint", output.NewFingerprint),
		slog.Int("reencrypted", output.Reencrypted),
	)

	if format == "json" {
		return writeJSON(writer, output)
	}

	_, _ = fmt.Fprintf(writer, "Master key rotated: %s -> %s\n", output.OldFingerprint, output.NewFingerprint)
	_, _ = fmt.Fprintf(writer, "Re-encrypted %d credential(s) in %dms\n", output.Reencrypted, output.DurationMillis)
	return nil
}

// cliEventContext identifies the operator running a command in audit events.
func cliEventContext() auditDomain.EventContext {
	ectx := auditDomain.EventContext{UserAgent: "credguard-cli"}
	if u, err := user.Current(); err == nil {
		ectx.UserID = u.Username
	}
	return ectx
}
