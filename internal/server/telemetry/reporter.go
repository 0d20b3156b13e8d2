// Package telemetry owns the server's OpenTelemetry meter provider. No
// exporter is deployed next to the server, so the counters are collected on
// a timer and written to the structured log.
package telemetry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
)

// Reporter is an SDK meter provider backed by a manual reader.
type Reporter struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
	logger   logging.Logger
}

func NewReporter(l logging.Logger) *Reporter {
	if l == nil {
		l = logging.Nop{}
	}
	reader := sdkmetric.NewManualReader()
	return &Reporter{
		reader:   reader,
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		logger:   l.With("module", "telemetry"),
	}
}

// MeterProvider is what instruments should be registered on.
func (r *Reporter) MeterProvider() metric.MeterProvider {
	return r.provider
}

// Snapshot returns the cumulative int64 sums, keyed by instrument name with
// the encoded attribute set in braces, e.g. auth.failures{kind=no_credentials}.
func (r *Reporter) Snapshot(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out[seriesKey(m.Name, dp.Attributes)] += dp.Value
			}
		}
	}
	return out, nil
}

// Report logs one line per series.
func (r *Reporter) Report(ctx context.Context) error {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		r.logger.Info(ctx, "metric", "series", k, "value", snap[k])
	}
	return nil
}

// Run reports every interval until ctx is done, then reports once more and
// shuts the provider down.
func (r *Reporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.stop()
			return
		case <-ticker.C:
			if err := r.Report(ctx); err != nil {
				r.logger.Warn(ctx, "metrics report failed", "error", err)
			}
		}
	}
}

func (r *Reporter) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.Report(ctx); err != nil {
		r.logger.Warn(ctx, "final metrics report failed", "error", err)
	}
	if err := r.provider.Shutdown(ctx); err != nil {
		r.logger.Warn(ctx, "meter provider shutdown failed", "error", err)
	}
}

func seriesKey(name string, attrs attribute.Set) string {
	if attrs.Len() == 0 {
		return name
	}
	return name + "{" + attrs.Encoded(attribute.DefaultEncoder()) + "}"
}
