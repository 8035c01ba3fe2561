package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	apperrors "github.com/allisson/credguard/internal/errors"
)

type mockEventRepository struct {
	mock.Mock
}

func (m *mockEventRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*auditDomain.SecurityAuditEvent, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.SecurityAuditEvent), args.Error(1)
}

func (m *mockEventRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error) {
	args := m.Called(ctx, olderThan, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

type mockConfigTrailRepository struct {
	mock.Mock
}

func (m *mockConfigTrailRepository) ListByConfigID(
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

func newFixedClockUseCase(events *mockEventRepository, trail ConfigTrailRepository, now time.Time) *auditEventUseCase {
	uc := NewAuditEventUseCase(events, trail).(*auditEventUseCase)
	uc.now = func() time.Time { return now }
	return uc
}

func TestAuditEventUseCase_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := &mockEventRepository{}
		expected := []*auditDomain.SecurityAuditEvent{{EventType: auditDomain.EventLoginSuccess}}
		repo.On("List", ctx, 0, 50).Return(expected, nil).Once()

		uc := NewAuditEventUseCase(repo, nil)
		events, err := uc.List(ctx, 0, 50)

		require.NoError(t, err)
		assert.Equal(t, expected, events)
		repo.AssertExpectations(t)
	})

	t.Run("Error_RepositoryFailure", func(t *testing.T) {
		repo := &mockEventRepository{}
		repoErr := errors.New("db down")
		repo.On("List", ctx, 10, 5).Return(nil, repoErr).Once()

		uc := NewAuditEventUseCase(repo, nil)
		events, err := uc.List(ctx, 10, 5)

		assert.Nil(t, events)
		assert.ErrorIs(t, err, repoErr)
		assert.ErrorContains(t, err, "failed to list security audit events")
	})
}

func TestAuditEventUseCase_ListConfigTrail(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		trail := &mockConfigTrailRepository{}
		expected := []*auditDomain.ConfigAuditEntry{{ConfigID: "cred-1"}}
		trail.On("ListByConfigID", ctx, "cred-1", 0, 20).Return(expected, nil).Once()

		uc := NewAuditEventUseCase(&mockEventRepository{}, trail)
		entries, err := uc.ListConfigTrail(ctx, "cred-1", 0, 20)

		require.NoError(t, err)
		assert.Equal(t, expected, entries)
		trail.AssertExpectations(t)
	})

	t.Run("NoTrailRepository_ReturnsEmpty", func(t *testing.T) {
		uc := NewAuditEventUseCase(&mockEventRepository{}, nil)
		entries, err := uc.ListConfigTrail(ctx, "cred-1", 0, 20)

		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.NotNil(t, entries)
	})

	t.Run("Error_RepositoryFailure", func(t *testing.T) {
		trail := &mockConfigTrailRepository{}
		trail.On("ListByConfigID", ctx, "cred-1", 0, 20).Return(nil, errors.New("boom")).Once()

		uc := NewAuditEventUseCase(&mockEventRepository{}, trail)
		_, err := uc.ListConfigTrail(ctx, "cred-1", 0, 20)

		assert.ErrorContains(t, err, "failed to list config audit trail")
	})
}

func TestAuditEventUseCase_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 31, 10, 0, 0, 0, time.UTC)

	t.Run("Success_ComputesCutoff", func(t *testing.T) {
		repo := &mockEventRepository{}
		cutoff := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
		repo.On("DeleteOlderThan", ctx, cutoff, false).Return(int64(12), nil).Once()

		uc := newFixedClockUseCase(repo, nil, now)
		count, err := uc.DeleteOlderThan(ctx, 30, false)

		require.NoError(t, err)
		assert.Equal(t, int64(12), count)
		repo.AssertExpectations(t)
	})

	t.Run("Success_DryRun", func(t *testing.T) {
		repo := &mockEventRepository{}
		repo.On("DeleteOlderThan", ctx, now, true).Return(int64(3), nil).Once()

		uc := newFixedClockUseCase(repo, nil, now)
		count, err := uc.DeleteOlderThan(ctx, 0, true)

		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		repo.AssertExpectations(t)
	})

	t.Run("Error_NegativeDays", func(t *testing.T) {
		repo := &mockEventRepository{}

		uc := newFixedClockUseCase(repo, nil, now)
		_, err := uc.DeleteOlderThan(ctx, -1, false)

		assert.ErrorIs(t, err, ErrInvalidRetention)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		repo.AssertNotCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_RepositoryFailure", func(t *testing.T) {
		repo := &mockEventRepository{}
		repo.On("DeleteOlderThan", ctx, mock.AnythingOfType("time.Time"), false).
			Return(int64(0), errors.New("locked")).
			Once()

		uc := newFixedClockUseCase(repo, nil, now)
		_, err := uc.DeleteOlderThan(ctx, 7, false)

		assert.ErrorContains(t, err, "failed to delete security audit events")
	})
}
