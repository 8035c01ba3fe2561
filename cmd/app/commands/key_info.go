package commands

import (
	"context"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
)

// KeyInfoReader reports metadata about the current master key.
type KeyInfoReader interface {
	GetKeyInfo(ctx context.Context) (cryptoDomain.KeyInfo, error)
}

// RunKeyInfo prints where the master key was resolved from and its fingerprint.
// Resolving the key may generate and persist one on first run.
func RunKeyInfo(ctx context.Context, keys KeyInfoReader, writer io.Writer, format string) error {
	info, err := keys.GetKeyInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve master key: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, info)
	}

	_, _ = fmt.Fprintf(writer, "Source:      %s\n", info.Source)
	_, _ = fmt.Fprintf(writer, "Length:      %d bytes\n", info.Length)
	_, _ = fmt.Fprintf(writer, "Fingerprint: %s\n", info.Fingerprint)
	if info.Path != "" {
		_, _ = fmt.Fprintf(writer, "Path:        %s\n", info.Path)
	}
	return nil
}
