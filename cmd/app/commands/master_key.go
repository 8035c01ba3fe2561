package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/credguard/internal/config"
	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
	cryptoService "github.com/allisson/credguard/internal/crypto/service"
)

// masterKeyOutput is the JSON form of create-master-key.
type masterKeyOutput struct {
	Fingerprint    string `json:"fingerprint"`
	KeyFileContent string `json:"key_file_content"`
	EnvValue       string `json:"env_value,omitempty"`
	KMSKeyURI      string `json:"kms_key_uri,omitempty"`
}

// RunCreateMasterKey generates a 32-byte master key and prints it in key file form.
//
// Without kmsKeyURI the key file content is hex and the base64 value for the
// master key environment variable is printed too. With kmsKeyURI the key is
// wrapped by the KMS keeper and only the wrapped key file content is printed;
// the server must then run with the same KMS_KEY_URI.
func RunCreateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI, format string,
) error {
	raw := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	key, err := cryptoDomain.NewMasterKey(raw)
	cryptoDomain.Zero(raw)
	if err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	defer key.Zero()

	var codec cryptoService.KeyCodec = cryptoService.NewHexKeyCodec()
	if kmsKeyURI != "" {
		if kmsService == nil {
			return fmt.Errorf("kms service is required when --kms-key-uri is set")
		}
		keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
		if err != nil {
			return fmt.Errorf("failed to open KMS keeper: %w", err)
		}
		defer func() {
			if closeErr := keeper.Close(); closeErr != nil {
				logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
			}
		}()
		codec = cryptoService.NewKMSKeyCodec(keeper)
	}

	content, err := codec.Encode(ctx, key.Bytes())
	if err != nil {
		return fmt.Errorf("failed to encode master key: %w", err)
	}

	output := masterKeyOutput{
		Fingerprint:    key.Fingerprint(),
		KeyFileContent: content,
		KMSKeyURI:      kmsKeyURI,
	}
	if kmsKeyURI == "" {
		output.EnvValue = base64.StdEncoding.EncodeToString(key.Bytes())
	}

	logger.Info("master key generated",
		slog.String("fingerprint", output.Fingerprint),
		slog.Bool("kms_wrapped", kmsKeyURI != ""),
	)

	if format == "json" {
		return writeJSON(writer, output)
	}

	_, _ = fmt.Fprintf(writer, "# Master key fingerprint: %s\n", output.Fingerprint)
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "# Wrapped with KMS key: %s\n", kmsKeyURI)
	}
	_, _ = fmt.Fprintf(writer, "# Key file content (ENCRYPTION_KEY_FILE or <APP_ROOT>/%s):\n", config.DefaultKeyFileName)
	_, _ = fmt.Fprintln(writer, output.KeyFileContent)
	if output.EnvValue != "" {
		_, _ = fmt.Fprintln(writer, "# Or set the master key environment variable:")
		_, _ = fmt.Fprintf(writer, "ENCRYPTION_MASTER_KEY=%q\n", output.EnvValue)
	}
	return nil
}
