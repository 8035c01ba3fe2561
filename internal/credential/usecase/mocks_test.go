package usecase

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	credentialDomain "github.com/allisson/credguard/internal/credential/domain"
	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
	cryptoService "github.com/allisson/credguard/internal/crypto/service"
)

type mockCredentialRepository struct {
	mock.Mock
}

func (m *mockCredentialRepository) Create(ctx context.Context, credential *credentialDomain.Credential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

func (m *mockCredentialRepository) Update(ctx context.Context, credential *credentialDomain.Credential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

func (m *mockCredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCredentialRepository) Get(ctx context.Context, id uuid.UUID) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

func (m *mockCredentialRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*credentialDomain.Credential), args.Error(1)
}

func (m *mockCredentialRepository) ListAll(ctx context.Context) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*credentialDomain.Credential), args.Error(1)
}

type mockAuditLogger struct {
	mock.Mock
}

func (m *mockAuditLogger) LogEvent(
	ctx context.Context,
	eventType auditDomain.EventType,
	ectx auditDomain.EventContext,
	details auditDomain.EventDetails,
) {
	m.Called(ctx, eventType, ectx, details)
}

func (m *mockAuditLogger) LogDataAccessEvent(
	ctx context.Context,
	eventType auditDomain.EventType,
	ectx auditDomain.EventContext,
	resourceType, resourceID string,
	details map[string]any,
) {
	m.Called(ctx, eventType, ectx, resourceType, resourceID, details)
}

func (m *mockAuditLogger) LogEmailEvent(
	ctx context.Context,
	eventType auditDomain.EventType,
	ectx auditDomain.EventContext,
	configID string,
	changes map[string]any,
) {
	m.Called(ctx, eventType, ectx, configID, changes)
}

type mockKeyRotator struct {
	mock.Mock
}

func (m *mockKeyRotator) RotateKey(ctx context.Context) (cryptoDomain.RotationResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(cryptoDomain.RotationResult), args.Error(1)
}

func (m *mockKeyRotator) RestoreKey(ctx context.Context, key cryptoDomain.MasterKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// mockTxManager runs fn directly; rollback is simulated by the repository mock.
type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Called(ctx)
	return fn(ctx)
}

// switchableKeys serves whichever key is currently installed.
type switchableKeys struct {
	key cryptoDomain.MasterKey
}

func (s *switchableKeys) GetKey(context.Context) (cryptoDomain.MasterKey, error) {
	return s.key.Clone(), nil
}

func testKey(t *testing.T, fill byte) cryptoDomain.MasterKey {
	t.Helper()
	key, err := cryptoDomain.NewMasterKey(bytes.Repeat([]byte{fill}, cryptoDomain.KeySize))
	require.NoError(t, err)
	return key
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, keys cryptoService.KeyResolver) *cryptoService.Engine {
	t.Helper()
	return cryptoService.NewEngine(
		keys,
		cryptoService.NewAEADManager(),
		cryptoService.NewPBKDF2Deriver(),
		nil,
		discardLogger(),
	)
}

func testEventContext() auditDomain.EventContext {
	return auditDomain.EventContext{UserID: "admin-1", IPAddress: "10.0.0.1"}
}

func fixedClock() func() time.Time {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}
