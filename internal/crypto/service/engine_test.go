package service

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
)

func TestEngine_EncryptDecrypt(t *testing.T) {
	ctx := context.Background()
	engine, audit := newTestEngine(t, randomMasterKey(t))

	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "smtp password", plaintext: "hunter2"},
		{name: "api key", plaintext: "re_1234567890abcdefghijklmnopqrstuv"},
		{name: "unicode", plaintext: "pässwörd-密码-🔑"},
		{name: "single char", plaintext: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := engine.Encrypt(ctx, tt.plaintext)
			require.NoError(t, err)

			assert.Equal(t, cryptoDomain.AES256GCM, data.Algorithm)
			assert.Equal(t, cryptoDomain.CurrentVersion, data.Version)

			components, err := data.Decode()
			require.NoError(t, err)
			assert.Len(t, components.IV, cryptoDomain.IVSize)
			assert.Len(t, components.Tag, cryptoDomain.TagSize)
			assert.Len(t, components.Salt, cryptoDomain.SaltSize)

			plaintext, err := engine.Decrypt(ctx, data)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, plaintext)
		})
	}

	assert.Empty(t, audit.types())
}

func TestEngine_Encrypt_FreshRandomness(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, randomMasterKey(t))

	first, err := engine.Encrypt(ctx, "same-secret")
	require.NoError(t, err)
	second, err := engine.Encrypt(ctx, "same-secret")
	require.NoError(t, err)

	assert.NotEqual(t, first.Salt, second.Salt)
	assert.NotEqual(t, first.IV, second.IV)
	assert.NotEqual(t, first.Ciphertext, second.Ciphertext)
}

func TestEngine_Encrypt_EmptyPlaintext(t *testing.T) {
	engine, audit := newTestEngine(t, randomMasterKey(t))

	data, err := engine.Encrypt(context.Background(), "")
	assert.Nil(t, data)
	assert.ErrorIs(t, err, cryptoDomain.ErrEmptyPlaintext)
	assert.Empty(t, audit.types())
}

func TestEngine_Encrypt_KeyUnavailable(t *testing.T) {
	audit := &recordingAuditRecorder{}
	engine := NewEngine(
		&staticKeyResolver{err: errors.New("disk on fire")},
		NewAEADManager(),
		NewPBKDF2Deriver(),
		audit,
		discardLogger(),
	)

	_, err := engine.Encrypt(context.Background(), "secret")
	assert.Equal(t, cryptoDomain.ErrEncryptionFailed, err)
	assert.Equal(t, "Encryption failed", err.Error())
	assert.Equal(t, []auditDomain.EventType{auditDomain.EventEncryptionFailed}, audit.types())
}

func TestEngine_Decrypt_Failures(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, randomMasterKey(t))

	valid, err := engine.Encrypt(ctx, "secret-value")
	require.NoError(t, err)

	flip := func(field string) string {
		raw, err := base64.StdEncoding.DecodeString(field)
		require.NoError(t, err)
		raw[0] ^= 0x01
		return base64.StdEncoding.EncodeToString(raw)
	}

	tests := []struct {
		name   string
		mutate func(d cryptoDomain.EncryptedData) *cryptoDomain.EncryptedData
	}{
		{
			name: "tampered ciphertext",
			mutate: func(d cryptoDomain.EncryptedData) *cryptoDomain.EncryptedData {
				d.Ciphertext = flip(d.Ciphertext)
				return &d
			},
		},
		{
			name: "tampered tag",
			mutate: func(d cryptoDomain.EncryptedData) *cryptoDomain.EncryptedData {
				d.Tag = flip(d.Tag)
				return &d
			},
		},
		{
			name: "tampered iv",
			mutate: func(d cryptoDomain.EncryptedData) *cryptoDomain.EncryptedData {
				d.IV = flip(d.IV)
				return &d
			},
		},
		{
			name: "tampered salt",
			mutate: func(d cryptoDomain.EncryptedData) *cryptoDomain.EncryptedData {
				d.Salt = flip(d.Salt)
				return &d
			},
		},
		{
			name: "invalid base64",
			mutate: func(d cryptoDomain.EncryptedData) *cryptoDomain.EncryptedData {
				d.Ciphertext = "!!not-base64!!"
				return &d
			},
		},
		{
			name: "short iv",
			mutate: func(d cryptoDomain.EncryptedData) *cryptoDomain.EncryptedData {
				d.IV = base64.StdEncoding.EncodeToString([]byte("short"))
				return &d
			},
		},
		{
			name: "nil record",
			mutate: func(cryptoDomain.EncryptedData) *cryptoDomain.EncryptedData {
				return nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext, err := engine.Decrypt(ctx, tt.mutate(*valid))
			assert.Empty(t, plaintext)
			assert.Equal(t, cryptoDomain.ErrDecryptionFailed, err)
			assert.Equal(t, "Decryption failed", err.Error())
		})
	}
}

func TestEngine_Decrypt_WrongKey(t *testing.T) {
	ctx := context.Background()
	encryptor, _ := newTestEngine(t, randomMasterKey(t))
	decryptor, audit := newTestEngine(t, randomMasterKey(t))

	data, err := encryptor.Encrypt(ctx, "secret")
	require.NoError(t, err)

	_, err = decryptor.Decrypt(ctx, data)
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)

	require.Len(t, audit.events, 1)
	event := audit.events[0]
	assert.Equal(t, auditDomain.EventDecryptionFailed, event.eventType)
	assert.False(t, event.details.Success)
	assert.Equal(t, "Decryption failed", event.details.ErrorMessage)
}

func TestEngine_Decrypt_UnsupportedFormat(t *testing.T) {
	ctx := context.Background()
	engine, audit := newTestEngine(t, randomMasterKey(t))

	data, err := engine.Encrypt(ctx, "secret")
	require.NoError(t, err)

	t.Run("unknown algorithm", func(t *testing.T) {
		d := *data
		d.Algorithm = "aes-128-cbc"
		_, err := engine.Decrypt(ctx, &d)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedFormat)
	})

	t.Run("unknown version", func(t *testing.T) {
		d := *data
		d.Version = 2
		_, err := engine.Decrypt(ctx, &d)
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedFormat)
	})

	assert.Empty(t, audit.types())
}

func TestEngine_Validate(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, randomMasterKey(t))
	other, _ := newTestEngine(t, randomMasterKey(t))

	data, err := engine.Encrypt(ctx, "secret")
	require.NoError(t, err)

	assert.True(t, engine.Validate(ctx, data))
	assert.False(t, other.Validate(ctx, data))
}

func TestEngine_Reencrypt(t *testing.T) {
	ctx := context.Background()
	oldKey := randomMasterKey(t)
	newKey := randomMasterKey(t)

	oldEngine, _ := newTestEngine(t, oldKey)
	newEngine, _ := newTestEngine(t, newKey)

	data, err := oldEngine.Encrypt(ctx, "rotate-me")
	require.NoError(t, err)

	reencrypted, err := oldEngine.Reencrypt(ctx, data, oldKey, newKey)
	require.NoError(t, err)

	plaintext, err := newEngine.Decrypt(ctx, reencrypted)
	require.NoError(t, err)
	assert.Equal(t, "rotate-me", plaintext)

	assert.False(t, oldEngine.Validate(ctx, reencrypted))
}

func TestEngine_BulkReencrypt(t *testing.T) {
	ctx := context.Background()
	oldKey := randomMasterKey(t)
	newKey := randomMasterKey(t)
	oldEngine, _ := newTestEngine(t, oldKey)
	newEngine, _ := newTestEngine(t, newKey)

	records := make([]cryptoDomain.EncryptedData, 0, 3)
	for _, s := range []string{"one", "two", "three"} {
		data, err := oldEngine.Encrypt(ctx, s)
		require.NoError(t, err)
		records = append(records, *data)
	}

	t.Run("all records", func(t *testing.T) {
		result, err := oldEngine.BulkReencrypt(ctx, records, oldKey, newKey)
		require.NoError(t, err)
		require.Len(t, result, 3)

		for i, want := range []string{"one", "two", "three"} {
			got, err := newEngine.Decrypt(ctx, &result[i])
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("one bad record fails the batch", func(t *testing.T) {
		broken := append([]cryptoDomain.EncryptedData(nil), records...)
		broken[1].Tag = broken[0].Tag

		result, err := oldEngine.BulkReencrypt(ctx, broken, oldKey, newKey)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.Contains(t, err.Error(), "record 1")
	})

	t.Run("empty batch", func(t *testing.T) {
		result, err := oldEngine.BulkReencrypt(ctx, nil, oldKey, newKey)
		require.NoError(t, err)
		assert.Empty(t, result)
	})
}

func TestEngine_WithExclusiveLock(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, randomMasterKey(t))

	encrypted := make(chan struct{})
	err := engine.WithExclusiveLock(ctx, func(ctx context.Context) error {
		go func() {
			_, _ = engine.Encrypt(ctx, "waits-for-rotation")
			close(encrypted)
		}()

		select {
		case <-encrypted:
			t.Error("encrypt ran while the exclusive lock was held")
		case <-time.After(50 * time.Millisecond):
		}
		return nil
	})
	require.NoError(t, err)

	select {
	case <-encrypted:
	case <-time.After(5 * time.Second):
		t.Fatal("encrypt did not resume after the lock was released")
	}

	t.Run("propagates fn error", func(t *testing.T) {
		want := errors.New("rotation failed")
		err := engine.WithExclusiveLock(ctx, func(context.Context) error { return want })
		assert.Equal(t, want, err)
	})
}

func TestEngine_Concurrent(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, randomMasterKey(t))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := engine.Encrypt(ctx, "concurrent-secret")
			if err != nil {
				errs <- err
				return
			}
			if _, err := engine.Decrypt(ctx, data); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestEngine_ExplicitKey(t *testing.T) {
	ctx := context.Background()
	current := randomMasterKey(t)
	other := randomMasterKey(t)
	engine, audit := newTestEngine(t, current)

	data, err := engine.EncryptWithKey(ctx, "smtp-password", other)
	require.NoError(t, err)

	plaintext, err := engine.DecryptWithKey(ctx, data, other)
	require.NoError(t, err)
	assert.Equal(t, "smtp-password", plaintext)

	_, err = engine.Decrypt(ctx, data)
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)

	_, err = engine.DecryptWithKey(ctx, data, current)
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)

	_, err = engine.EncryptWithKey(ctx, "", other)
	assert.ErrorIs(t, err, cryptoDomain.ErrEmptyPlaintext)

	assert.Equal(t, []auditDomain.EventType{
		auditDomain.EventDecryptionFailed,
		auditDomain.EventDecryptionFailed,
	}, audit.types())
}
