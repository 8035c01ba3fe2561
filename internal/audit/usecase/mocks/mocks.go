// Package mocks provides a mock implementation of AuditEventUseCase for handler
// and command tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
)

// MockAuditEventUseCase is a mock implementation of AuditEventUseCase.
type MockAuditEventUseCase struct {
	mock.Mock
}

// List mocks the List method.
func (m *MockAuditEventUseCase) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.SecurityAuditEvent, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.SecurityAuditEvent), args.Error(1)
}

// ListConfigTrail mocks the ListConfigTrail method.
func (m *MockAuditEventUseCase) ListConfigTrail(
	ctx context.Context,
	configID string,
	offset, limit int,
) ([]*auditDomain.ConfigAuditEntry, error) {
	args := m.Called(ctx, configID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.ConfigAuditEntry), args.Error(1)
}

// DeleteOlderThan mocks the DeleteOlderThan method.
func (m *MockAuditEventUseCase) DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}
