package domain

import (
	"github.com/allisson/credguard/internal/errors"
)

// Cryptographic error definitions.
//
// ErrEncryptionFailed and ErrDecryptionFailed are the only errors the engine returns
// for cipher faults. The underlying cause is logged but never handed to callers, so
// a wrong key and a tampered record look identical from the outside.
var (
	// ErrEncryptionFailed is returned for any internal failure while encrypting.
	ErrEncryptionFailed = errors.New("Encryption failed")

	// ErrDecryptionFailed is returned for any failure while decrypting a well-formed record:
	// bad base64, wrong component sizes, wrong key or authentication tag mismatch.
	ErrDecryptionFailed = errors.New("Decryption failed")

	// ErrEmptyPlaintext indicates Encrypt was called with an empty string.
	ErrEmptyPlaintext = errors.Wrap(errors.ErrInvalidInput, "plaintext must be a non-empty string")

	// ErrUnsupportedFormat indicates a record whose algorithm or version is not the
	// currently supported one.
	ErrUnsupportedFormat = errors.Wrap(errors.ErrInvalidInput, "unsupported encrypted data format")

	// ErrInvalidKeySize indicates key material whose length is not exactly 32 bytes.
	// Such a key is never truncated or padded.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrKeyPersistenceFailed indicates a master key could not be written to any
	// candidate path.
	ErrKeyPersistenceFailed = errors.New("master key persistence failed")

	// ErrRotationUnsupportedSource indicates the master key comes from the environment
	// variable. A rotated key written to a file would be shadowed by the variable on
	// the next start, leaving every re-encrypted record unreadable.
	ErrRotationUnsupportedSource = errors.Wrap(
		errors.ErrConflict,
		"master key is set by environment variable and cannot be rotated in place",
	)

	// ErrKeyNotFound indicates no configured source yielded a valid master key.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "master key not found")
)
