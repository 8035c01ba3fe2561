package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
)

// captureHandler is a slog.Handler that keeps every record for assertions.
type captureHandler struct {
	mu      *sync.Mutex
	records *[]slog.Record
}

func newCaptureLogger() (*slog.Logger, *captureHandler) {
	h := &captureHandler{mu: &sync.Mutex{}, records: &[]slog.Record{}}
	return slog.New(h), h
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, r.Clone())
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

// count returns how many records carry message at level.
func (h *captureHandler) count(level slog.Level, message string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range *h.records {
		if r.Level == level && r.Message == message {
			n++
		}
	}
	return n
}

// fakeEventRepository records every batch and fails while err is set.
type fakeEventRepository struct {
	mu      sync.Mutex
	batches [][]*auditDomain.SecurityAuditEvent
	calls   int
	err     error
}

func (r *fakeEventRepository) CreateBatch(_ context.Context, events []*auditDomain.SecurityAuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	batch := make([]*auditDomain.SecurityAuditEvent, len(events))
	copy(batch, events)
	r.batches = append(r.batches, batch)
	return nil
}

func (r *fakeEventRepository) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *fakeEventRepository) persisted() []*auditDomain.SecurityAuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*auditDomain.SecurityAuditEvent
	for _, b := range r.batches {
		all = append(all, b...)
	}
	return all
}

func (r *fakeEventRepository) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

var errStorageDown = errors.New("storage down")

// mockConfigTrailRepository is a mock implementation of ConfigTrailRepository.
type mockConfigTrailRepository struct {
	mock.Mock
}

func (m *mockConfigTrailRepository) Create(ctx context.Context, entry *auditDomain.ConfigAuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// mockEscalator is a mock implementation of Escalator.
type mockEscalator struct {
	mock.Mock
}

func (m *mockEscalator) Escalate(ctx context.Context, event *auditDomain.SecurityAuditEvent) {
	m.Called(ctx, event)
}
