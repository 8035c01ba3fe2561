package domain

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// MasterKey is the single 256-bit process-wide key from which every per-call
// encryption key is derived. It is never stored inside encrypted records.
//
// A MasterKey owns its byte slice. Use Clone before handing the key to code that
// may outlive the owner, and Zero when the key is discarded.
type MasterKey struct {
	key []byte
}

// NewMasterKey copies b into a new MasterKey. It returns ErrInvalidKeySize unless
// b is exactly 32 bytes; short or long keys are never truncated or padded.
func NewMasterKey(b []byte) (MasterKey, error) {
	if len(b) != KeySize {
		return MasterKey{}, ErrInvalidKeySize
	}
	key := make([]byte, KeySize)
	copy(key, b)
	return MasterKey{key: key}, nil
}

// Bytes returns the raw key material. The returned slice aliases the key.
func (k MasterKey) Bytes() []byte {
	return k.key
}

// Len returns the key length in bytes.
func (k MasterKey) Len() int {
	return len(k.key)
}

// IsZero reports whether the key holds no material.
func (k MasterKey) IsZero() bool {
	return len(k.key) == 0
}

// Clone returns an independent copy of the key.
func (k MasterKey) Clone() MasterKey {
	if k.IsZero() {
		return MasterKey{}
	}
	key := make([]byte, len(k.key))
	copy(key, k.key)
	return MasterKey{key: key}
}

// Equal compares two keys in constant time.
func (k MasterKey) Equal(other MasterKey) bool {
	return subtle.ConstantTimeCompare(k.key, other.key) == 1
}

// Fingerprint returns a truncated SHA-256 of the key, safe to log and expose.
func (k MasterKey) Fingerprint() string {
	if k.IsZero() {
		return ""
	}
	sum := sha256.Sum256(k.key)
	return hex.EncodeToString(sum[:])[:FingerprintLength]
}

// Zero wipes the key material.
func (k MasterKey) Zero() {
	Zero(k.key)
}

// Zero overwrites b in place. Used on derived keys and decrypted plaintext once
// they are no longer needed.
func Zero(b []byte) {
	clear(b)
}

// String never prints key material.
func (k MasterKey) String() string {
	return "MasterKey(" + k.Fingerprint() + ")"
}

// KeyInfo is non-secret metadata about the cached master key.
type KeyInfo struct {
	Source      KeySource `json:"source"`
	Length      int       `json:"length"`
	Fingerprint string    `json:"fingerprint"`
	Path        string    `json:"path,omitempty"`
}

// RotationResult pairs the key that was replaced with the key that replaced it.
// It is only handed to the rotation workflow.
type RotationResult struct {
	OldKey MasterKey
	NewKey MasterKey
}
