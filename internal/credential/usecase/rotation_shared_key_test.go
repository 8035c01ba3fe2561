package usecase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	credentialDomain "github.com/allisson/credguard/internal/credential/domain"
	cryptoService "github.com/allisson/credguard/internal/crypto/service"
)

func newFileKeyProvider(path string) *cryptoService.KeyProvider {
	return cryptoService.NewKeyProvider(
		cryptoService.KeyProviderConfig{
			EnvVar:     "CREDGUARD_ROTATION_TEST_KEY",
			Candidates: []string{path},
			LookupEnv:  func(string) (string, bool) { return "", false },
		},
		nil,
		cryptoService.NewAEADManager(),
		cryptoService.NewPBKDF2Deriver(),
		nil,
		discardLogger(),
	)
}

// The serving process rotates through its own engine, so records it writes
// afterwards stay readable by a process that starts later on the same key file.
func TestRotationUseCase_RotateMasterKey_SharedKeyFile(t *testing.T) {
	ctx := context.Background()
	keyPath := filepath.Join(t.TempDir(), ".encryption-key")

	serverKeys := newFileKeyProvider(keyPath)
	serverEngine := newTestEngine(t, serverKeys)
	before := storedCredentialNamed(t, serverEngine, "primary")
	require.FileExists(t, keyPath)

	repo := &mockCredentialRepository{}
	tx := &mockTxManager{}
	audit := &mockAuditLogger{}

	var rotated *credentialDomain.Credential
	repo.On("ListAll", mock.Anything).Return([]*credentialDomain.Credential{before}, nil).Once()
	tx.On("WithTx", mock.Anything).Return().Once()
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Credential")).
		Run(func(args mock.Arguments) { rotated = args.Get(1).(*credentialDomain.Credential) }).
		Return(nil).
		Once()
	audit.On("LogEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	uc := NewRotationUseCase(tx, repo, serverKeys, serverEngine, audit, discardLogger())
	report, err := uc.RotateMasterKey(ctx, testEventContext())
	require.NoError(t, err)
	assert.NotEqual(t, report.OldFingerprint, report.NewFingerprint)
	require.NotNil(t, rotated)

	after := storedCredentialNamed(t, serverEngine, "backup")

	plaintext, err := serverEngine.Decrypt(ctx, &rotated.Config)
	require.NoError(t, err)
	assert.Equal(t, `{"apiKey":"primary-secret"}`, plaintext)

	restarted := newTestEngine(t, newFileKeyProvider(keyPath))

	plaintext, err = restarted.Decrypt(ctx, &rotated.Config)
	require.NoError(t, err)
	assert.Equal(t, `{"apiKey":"primary-secret"}`, plaintext)

	plaintext, err = restarted.Decrypt(ctx, &after.Config)
	require.NoError(t, err)
	assert.Equal(t, `{"apiKey":"backup-secret"}`, plaintext)

	_, err = restarted.Decrypt(ctx, &before.Config)
	assert.Error(t, err)
}
