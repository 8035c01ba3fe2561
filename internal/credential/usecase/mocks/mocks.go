// Package mocks provides mock implementations of the credential use cases for
// handler and command tests.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	credentialDomain "github.com/allisson/credguard/internal/credential/domain"
)

// MockCredentialUseCase is a mock implementation of CredentialUseCase.
type MockCredentialUseCase struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockCredentialUseCase) Create(
	ctx context.Context,
	name, provider string,
	config map[string]any,
	ectx auditDomain.EventContext,
) (*credentialDomain.MaskedCredential, error) {
	args := m.Called(ctx, name, provider, config, ectx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.MaskedCredential), args.Error(1)
}

// GetMasked mocks the GetMasked method.
func (m *MockCredentialUseCase) GetMasked(
	ctx context.Context,
	id uuid.UUID,
	ectx auditDomain.EventContext,
) (*credentialDomain.MaskedCredential, error) {
	args := m.Called(ctx, id, ectx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.MaskedCredential), args.Error(1)
}

// Update mocks the Update method.
func (m *MockCredentialUseCase) Update(
	ctx context.Context,
	id uuid.UUID,
	config map[string]any,
	ectx auditDomain.EventContext,
) (*credentialDomain.MaskedCredential, error) {
	args := m.Called(ctx, id, config, ectx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.MaskedCredential), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockCredentialUseCase) Delete(ctx context.Context, id uuid.UUID, ectx auditDomain.EventContext) error {
	args := m.Called(ctx, id, ectx)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockCredentialUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*credentialDomain.Credential, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*credentialDomain.Credential), args.Error(1)
}

// MockRotationUseCase is a mock implementation of RotationUseCase.
type MockRotationUseCase struct {
	mock.Mock
}

// RotateMasterKey mocks the RotateMasterKey method.
func (m *MockRotationUseCase) RotateMasterKey(
	ctx context.Context,
	ectx auditDomain.EventContext,
) (*credentialDomain.RotationReport, error) {
	args := m.Called(ctx, ectx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.RotationReport), args.Error(1)
}
