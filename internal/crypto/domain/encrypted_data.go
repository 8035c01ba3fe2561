package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// EncryptedData is the durable representation of one encrypted value.
//
// The JSON shape (six named fields) is a storage format: callers persist the record
// as an opaque JSON object and hand it back verbatim for decryption. Renaming a field
// or changing the algorithm/version literals breaks every previously stored record.
//
// Records are immutable values; key rotation produces new records.
type EncryptedData struct {
	Ciphertext string    `json:"ciphertext"`
	IV         string    `json:"iv"`
	Tag        string    `json:"tag"`
	Salt       string    `json:"salt"`
	Algorithm  Algorithm `json:"algorithm"`
	Version    int       `json:"version"`
}

// Validate checks the algorithm and version guards. It does not inspect the
// encoded components; those are checked during decryption.
func (d *EncryptedData) Validate() error {
	if d.Algorithm != CurrentAlgorithm {
		return fmt.Errorf("%w: algorithm %q", ErrUnsupportedFormat, d.Algorithm)
	}
	if d.Version != CurrentVersion {
		return fmt.Errorf("%w: version %d", ErrUnsupportedFormat, d.Version)
	}
	return nil
}

// Components holds the decoded binary parts of an EncryptedData record.
type Components struct {
	Ciphertext []byte
	IV         []byte
	Tag        []byte
	Salt       []byte
}

// Decode base64-decodes every component and checks the fixed sizes.
func (d *EncryptedData) Decode() (*Components, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(d.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("invalid ciphertext encoding: %w", err)
	}
	iv, err := base64.StdEncoding.DecodeString(d.IV)
	if err != nil {
		return nil, fmt.Errorf("invalid iv encoding: %w", err)
	}
	tag, err := base64.StdEncoding.DecodeString(d.Tag)
	if err != nil {
		return nil, fmt.Errorf("invalid tag encoding: %w", err)
	}
	salt, err := base64.StdEncoding.DecodeString(d.Salt)
	if err != nil {
		return nil, fmt.Errorf("invalid salt encoding: %w", err)
	}

	switch {
	case len(iv) != IVSize:
		return nil, fmt.Errorf("invalid iv size: %d", len(iv))
	case len(tag) != TagSize:
		return nil, fmt.Errorf("invalid tag size: %d", len(tag))
	case len(salt) != SaltSize:
		return nil, fmt.Errorf("invalid salt size: %d", len(salt))
	}

	return &Components{Ciphertext: ciphertext, IV: iv, Tag: tag, Salt: salt}, nil
}

// NewEncryptedData encodes binary components into a record stamped with the current
// algorithm and version.
func NewEncryptedData(c Components) EncryptedData {
	return EncryptedData{
		Ciphertext: base64.StdEncoding.EncodeToString(c.Ciphertext),
		IV:         base64.StdEncoding.EncodeToString(c.IV),
		Tag:        base64.StdEncoding.EncodeToString(c.Tag),
		Salt:       base64.StdEncoding.EncodeToString(c.Salt),
		Algorithm:  CurrentAlgorithm,
		Version:    CurrentVersion,
	}
}

// ParseEncryptedData unmarshals a stored JSON record.
func ParseEncryptedData(raw []byte) (EncryptedData, error) {
	var data EncryptedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return EncryptedData{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return data, nil
}
