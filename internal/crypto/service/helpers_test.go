package service

import (
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
	cryptoDomain "github.com/allisson/credguard/internal/crypto/domain"
)

type recordedEvent struct {
	eventType auditDomain.EventType
	details   auditDomain.EventDetails
}

// recordingAuditRecorder keeps every event it receives.
type recordingAuditRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingAuditRecorder) LogEvent(
	_ context.Context,
	eventType auditDomain.EventType,
	_ auditDomain.EventContext,
	details auditDomain.EventDetails,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{eventType: eventType, details: details})
}

func (r *recordingAuditRecorder) types() []auditDomain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]auditDomain.EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.eventType)
	}
	return types
}

type staticKeyResolver struct {
	key cryptoDomain.MasterKey
	err error
}

func (s *staticKeyResolver) GetKey(context.Context) (cryptoDomain.MasterKey, error) {
	if s.err != nil {
		return cryptoDomain.MasterKey{}, s.err
	}
	return s.key.Clone(), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func randomMasterKey(t *testing.T) cryptoDomain.MasterKey {
	t.Helper()
	raw := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	key, err := cryptoDomain.NewMasterKey(raw)
	require.NoError(t, err)
	return key
}

func newTestEngine(t *testing.T, key cryptoDomain.MasterKey) (*Engine, *recordingAuditRecorder) {
	t.Helper()
	audit := &recordingAuditRecorder{}
	engine := NewEngine(
		&staticKeyResolver{key: key},
		NewAEADManager(),
		NewPBKDF2Deriver(),
		audit,
		discardLogger(),
	)
	return engine, audit
}
