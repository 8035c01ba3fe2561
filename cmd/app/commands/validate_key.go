package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ErrKeyValidationFailed is returned when the master key self-test fails.
var ErrKeyValidationFailed = errors.New("master key validation failed")

// KeyValidator runs the master key self-test.
type KeyValidator interface {
	ValidateKey(ctx context.Context) bool
}

// RunValidateKey resolves the master key and checks that it can encrypt and
// decrypt a sample value.
func RunValidateKey(ctx context.Context, keys KeyValidator, logger *slog.Logger, writer io.Writer) error {
	if !keys.ValidateKey(ctx) {
		logger.Error("master key validation failed")
		return ErrKeyValidationFailed
	}

	_, _ = fmt.Fprintln(writer, "Master key is valid")
	return nil
}
