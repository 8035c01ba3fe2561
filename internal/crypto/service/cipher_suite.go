package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"unicode/utf8"

	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
)

// cipherSuite performs the raw seal/open steps with an explicit master key. It
// returns unnormalized errors; callers decide what crosses the public boundary.
type cipherSuite struct {
	aeadManager AEADManager
	deriver     KeyDeriver
}

func newCipherSuite(aeadManager AEADManager, deriver KeyDeriver) cipherSuite {
	return cipherSuite{aeadManager: aeadManager, deriver: deriver}
}

func (s cipherSuite) seal(key cryptoDomain.MasterKey, plaintext []byte) (*cryptoDomain.EncryptedData, error) {
	if key.Len() != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	salt := make([]byte, cryptoDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	derived := s.deriver.DeriveKey(key.Bytes(), salt)
	defer cryptoDomain.Zero(derived)

	aead, err := s.aeadManager.CreateCipher(derived, cryptoDomain.CurrentAlgorithm)
	if err != nil {
		return nil, err
	}

	ciphertext, iv, tag, err := aead.Encrypt(plaintext, nil)
	if err != nil {
		return nil, err
	}

	data := cryptoDomain.NewEncryptedData(cryptoDomain.Components{
		Ciphertext: ciphertext,
		IV:         iv,
		Tag:        tag,
		Salt:       salt,
	})
	return &data, nil
}

func (s cipherSuite) open(key cryptoDomain.MasterKey, data *cryptoDomain.EncryptedData) ([]byte, error) {
	if data == nil {
		return nil, errors.New("nil encrypted data")
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if key.Len() != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	components, err := data.Decode()
	if err != nil {
		return nil, err
	}

	derived := s.deriver.DeriveKey(key.Bytes(), components.Salt)
	defer cryptoDomain.Zero(derived)

	aead, err := s.aeadManager.CreateCipher(derived, data.Algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Decrypt(components.Ciphertext, components.IV, components.Tag, nil)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(plaintext) {
		cryptoDomain.Zero(plaintext)
		return nil, errors.New("decrypted payload is not valid UTF-8")
	}
	return plaintext, nil
}
