// Package errors holds the sentinels that credguard's domain errors wrap.
//
// A domain package declares its own error (credential not found, key source
// cannot be rotated, retention out of range) by wrapping one of these, and
// httputil picks the status code from the sentinel alone. Cipher faults are
// deliberately not wrapped here: crypto/domain keeps them opaque.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound backs missing credentials and an unresolvable master key. 404.
	ErrNotFound = errors.New("not found")

	// ErrConflict backs duplicate credential names and refused key rotations. 409.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput backs rejected configs, key material of the wrong size and
	// unsupported record formats. 422.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is mapped to 401 for callers that front the API with auth.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is mapped to 403.
	ErrForbidden = errors.New("forbidden")
)

func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message and keeps it matchable with Is. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join is used where a rotation failure and a failed key restore must both be
// reported.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
