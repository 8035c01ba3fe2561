package metrics

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SecurityMetrics counts security audit events once they are persisted.
type SecurityMetrics interface {
	RecordSecurityEvent(ctx context.Context, eventType, riskLevel string, success bool)
}

type securityMetrics struct {
	events metric.Int64Counter
}

// NewSecurityMetrics creates the <namespace>_security_events_total counter,
// labelled by event_type, risk_level and success.
func NewSecurityMetrics(meterProvider metric.MeterProvider, namespace string) (SecurityMetrics, error) {
	events, err := meterProvider.Meter(namespace).Int64Counter(
		fmt.Sprintf("%s_security_events_total", namespace),
		metric.WithDescription("Total number of persisted security audit events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create security event counter: %w", err)
	}
	return &securityMetrics{events: events}, nil
}

func (s *securityMetrics) RecordSecurityEvent(ctx context.Context, eventType, riskLevel string, success bool) {
	s.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("risk_level", riskLevel),
		attribute.String("success", strconv.FormatBool(success)),
	))
}

// NoOpSecurityMetrics discards everything.
type NoOpSecurityMetrics struct{}

// NewNoOpSecurityMetrics returns a SecurityMetrics that records nothing.
func NewNoOpSecurityMetrics() SecurityMetrics {
	return &NoOpSecurityMetrics{}
}

func (n *NoOpSecurityMetrics) RecordSecurityEvent(ctx context.Context, eventType, riskLevel string, success bool) {
}
