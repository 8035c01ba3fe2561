package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
)

type mockSecurityMetrics struct {
	mock.Mock
}

func (m *mockSecurityMetrics) RecordSecurityEvent(ctx context.Context, eventType, riskLevel string, success bool) {
	m.Called(ctx, eventType, riskLevel, success)
}

func buildEvent(t *testing.T, eventType auditDomain.EventType, success bool) *auditDomain.SecurityAuditEvent {
	t.Helper()
	event, err := auditDomain.NewSecurityAuditEvent(
		eventType,
		auditDomain.EventContext{},
		auditDomain.EventDetails{Success: success},
		time.Now(),
	)
	require.NoError(t, err)
	return event
}

func TestEventRepositoryWithMetrics_CreateBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("counts stored events", func(t *testing.T) {
		repo := &fakeEventRepository{}
		m := &mockSecurityMetrics{}
		decorated := NewEventRepositoryWithMetrics(repo, m)

		failed := buildEvent(t, auditDomain.EventDecryptionFailed, false)
		rotated := buildEvent(t, auditDomain.EventKeyRotated, true)

		m.On("RecordSecurityEvent", ctx, "DECRYPTION_FAILED", string(failed.RiskLevel), false).Once()
		m.On("RecordSecurityEvent", ctx, "KEY_ROTATED", string(rotated.RiskLevel), true).Once()

		require.NoError(t, decorated.CreateBatch(ctx, []*auditDomain.SecurityAuditEvent{failed, rotated}))
		assert.Len(t, repo.persisted(), 2)
		m.AssertExpectations(t)
	})

	t.Run("failed batch is not counted", func(t *testing.T) {
		repo := &fakeEventRepository{err: errors.New("connection refused")}
		m := &mockSecurityMetrics{}
		decorated := NewEventRepositoryWithMetrics(repo, m)

		err := decorated.CreateBatch(ctx, []*auditDomain.SecurityAuditEvent{
			buildEvent(t, auditDomain.EventKeyRotated, true),
		})
		assert.Error(t, err)
		m.AssertNotCalled(t, "RecordSecurityEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
