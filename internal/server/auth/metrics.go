package auth

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/dmitrijs2005/taskkeeper/internal/server/auth"

// Metrics counts authentication outcomes. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	failures  metric.Int64Counter
	rotations metric.Int64Counter
}

// NewMetrics registers the auth instruments on mp, or on the global meter
// provider when mp is nil.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	failures, err := meter.Int64Counter("auth.failures",
		metric.WithDescription("Rejected authentication attempts by failure kind"),
		metric.WithUnit("{failure}"))
	if err != nil {
		return nil, fmt.Errorf("auth.failures counter: %w", err)
	}

	rotations, err := meter.Int64Counter("auth.rotations",
		metric.WithDescription("Token pairs re-issued from a refresh token"),
		metric.WithUnit("{rotation}"))
	if err != nil {
		return nil, fmt.Errorf("auth.rotations counter: %w", err)
	}

	return &Metrics{failures: failures, rotations: rotations}, nil
}

func (m *Metrics) failure(ctx context.Context, kind FailureKind) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))
}

func (m *Metrics) rotation(ctx context.Context) {
	if m == nil {
		return
	}
	m.rotations.Add(ctx, 1)
}
