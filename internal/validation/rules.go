// Package validation holds the shared jellydator/validation rules used for
// provider configurations and request payloads.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/credguard/internal/errors"
)

var senderAddress = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	// Email matches a plain sender address such as noreply@example.com.
	Email = validation.NewStringRuleWithError(
		senderAddress.MatchString,
		validation.NewError("validation_email_format", "must be a valid email address"),
	)

	// NoWhitespace rejects values with leading or trailing whitespace. Pasted API
	// keys often pick up a trailing newline.
	NoWhitespace = validation.NewStringRuleWithError(
		func(s string) bool { return s == strings.TrimSpace(s) },
		validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
	)

	// NotBlank rejects values that are empty once trimmed.
	NotBlank = validation.NewStringRuleWithError(
		func(s string) bool { return strings.TrimSpace(s) != "" },
		validation.NewError("validation_not_blank", "must not be blank"),
	)
)

// WrapValidationError maps a validation failure to ErrInvalidInput, keeping the
// field messages.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}
