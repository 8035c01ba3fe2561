package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	auditDomain "github.com/allisson/credguard/internal/audit/domain"
)

// Config holds security audit logger configuration
type Config struct {
	// BufferSize is the buffered event count that triggers a flush.
	BufferSize int
	// FlushInterval is the period of the timer-driven flush.
	FlushInterval time.Duration
	// MaxBufferedEvents bounds the buffer while persistence keeps failing. The
	// oldest events are dropped first.
	MaxBufferedEvents int
	// FlushTimeout bounds a single persistence attempt.
	FlushTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BufferSize <= 0 {
		c.BufferSize = 100
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 30 * time.Second
	}
	if c.MaxBufferedEvents < c.BufferSize {
		c.MaxBufferedEvents = 10 * c.BufferSize
	}
	if c.FlushTimeout <= 0 {
		c.FlushTimeout = 10 * time.Second
	}
	return c
}

// SecurityAuditLogger buffers security events and persists them in batches.
//
// Events are mirrored to the process log as they arrive. The buffer is flushed
// when it reaches BufferSize, on every FlushInterval tick and immediately for
// critical events, which are also escalated. Failed batches are put back at the
// front of the buffer and retried on the next flush.
//
// The logger runs until Stop. After Stop only explicit Flush calls persist events.
type SecurityAuditLogger struct {
	cfg       Config
	repo      EventRepository
	trail     ConfigTrailRepository
	escalator Escalator
	logger    *slog.Logger
	now       func() time.Time

	bufMu  sync.Mutex
	buffer []*auditDomain.SecurityAuditEvent

	// flushMu keeps timer, size and critical flushes from overlapping.
	flushMu sync.Mutex

	lifecycleMu sync.Mutex
	started     bool
	stopped     atomic.Bool
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewSecurityAuditLogger creates a logger. A nil escalator logs critical events
// through LogEscalator.
func NewSecurityAuditLogger(
	cfg Config,
	repo EventRepository,
	trail ConfigTrailRepository,
	escalator Escalator,
	logger *slog.Logger,
) *SecurityAuditLogger {
	if escalator == nil {
		escalator = NewLogEscalator(logger)
	}
	return &SecurityAuditLogger{
		cfg:       cfg.withDefaults(),
		repo:      repo,
		trail:     trail,
		escalator: escalator,
		logger:    logger,
		now:       time.Now,
	}
}

// Start arms the periodic flush. It returns immediately; calling it twice or
// after Stop does nothing.
func (l *SecurityAuditLogger) Start(ctx context.Context) {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()

	if l.started || l.stopped.Load() {
		return
	}
	l.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})

	l.logger.Info("starting security audit logger",
		slog.Int("buffer_size", l.cfg.BufferSize),
		slog.Duration("flush_interval", l.cfg.FlushInterval),
	)

	go l.run(loopCtx)
}

func (l *SecurityAuditLogger) run(ctx context.Context) {
	defer close(l.done)

	ticker := time.NewTicker(l.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = l.Flush(context.WithoutCancel(ctx))
		}
	}
}

// Stop disarms the periodic flush and flushes once. It is safe to call more than
// once; only the first call flushes.
func (l *SecurityAuditLogger) Stop(ctx context.Context) error {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()

	if l.stopped.Swap(true) {
		return nil
	}
	if l.cancel != nil {
		l.cancel()
		<-l.done
	}

	l.logger.Info("stopping security audit logger", slog.Int("buffered_events", l.BufferedCount()))
	return l.Flush(ctx)
}

// LogEvent records one security event. It never fails: persistence problems are
// logged and the event stays buffered for the next flush.
func (l *SecurityAuditLogger) LogEvent(
	ctx context.Context,
	eventType auditDomain.EventType,
	ectx auditDomain.EventContext,
	details auditDomain.EventDetails,
) {
	event, err := auditDomain.NewSecurityAuditEvent(eventType, ectx, details, l.now())
	if err != nil {
		l.logger.Error("failed to build security audit event",
			slog.String("event_type", string(eventType)),
			slog.Any("error", err),
		)
		return
	}

	buffered := l.enqueue(event)
	l.mirror(ctx, event)

	stopped := l.stopped.Load()
	if event.IsCritical() {
		if !stopped {
			_ = l.Flush(ctx)
		}
		l.escalator.Escalate(ctx, event)
		return
	}
	if !stopped && buffered >= l.cfg.BufferSize {
		_ = l.Flush(ctx)
	}
}

// Flush persists every buffered event in one batch. On failure the batch is put
// back at the front of the buffer and the error is returned.
func (l *SecurityAuditLogger) Flush(ctx context.Context) error {
	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	events := l.drain()
	if len(events) == 0 {
		return nil
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.cfg.FlushTimeout)
	defer cancel()

	if err := l.repo.CreateBatch(flushCtx, events); err != nil {
		l.requeue(events)
		l.logger.Error("failed to persist security audit events",
			slog.Int("count", len(events)),
			slog.Any("error", err),
		)
		return err
	}

	l.logger.Debug("security audit events persisted", slog.Int("count", len(events)))
	return nil
}

// BufferedCount returns the number of events waiting to be persisted.
func (l *SecurityAuditLogger) BufferedCount() int {
	l.bufMu.Lock()
	defer l.bufMu.Unlock()
	return len(l.buffer)
}

func (l *SecurityAuditLogger) enqueue(event *auditDomain.SecurityAuditEvent) int {
	l.bufMu.Lock()
	defer l.bufMu.Unlock()

	l.buffer = append(l.buffer, event)
	l.trimLocked()
	return len(l.buffer)
}

func (l *SecurityAuditLogger) drain() []*auditDomain.SecurityAuditEvent {
	l.bufMu.Lock()
	defer l.bufMu.Unlock()

	events := l.buffer
	l.buffer = nil
	return events
}

func (l *SecurityAuditLogger) requeue(events []*auditDomain.SecurityAuditEvent) {
	l.bufMu.Lock()
	defer l.bufMu.Unlock()

	buffer := make([]*auditDomain.SecurityAuditEvent, 0, len(events)+len(l.buffer))
	buffer = append(buffer, events...)
	buffer = append(buffer, l.buffer...)
	l.buffer = buffer
	l.trimLocked()
}

func (l *SecurityAuditLogger) trimLocked() {
	overflow := len(l.buffer) - l.cfg.MaxBufferedEvents
	if overflow <= 0 {
		return
	}
	l.logger.Error("security audit buffer full, dropping oldest events",
		slog.Int("dropped", overflow),
		slog.Int("max_buffered_events", l.cfg.MaxBufferedEvents),
	)
	clear(l.buffer[:overflow])
	l.buffer = l.buffer[overflow:]
}

// mirror writes the event to the process log. Critical events log at ERROR,
// failures and high risk events at WARN.
func (l *SecurityAuditLogger) mirror(ctx context.Context, event *auditDomain.SecurityAuditEvent) {
	attrs := eventAttrs(event)
	switch {
	case event.IsCritical():
		l.logger.ErrorContext(ctx, "security audit event", attrs...)
	case !event.Success || event.RiskLevel == auditDomain.RiskHigh:
		l.logger.WarnContext(ctx, "security audit event", attrs...)
	default:
		l.logger.InfoContext(ctx, "security audit event", attrs...)
	}
}
