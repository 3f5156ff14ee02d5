package telemetry

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const scopeName = "github.com/roach88/qrorder/internal/telemetry"

// Collector owns a private MeterProvider read on demand.
type Collector struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
	metrics  *Metrics
}

// NewCollector creates a provider with a manual reader and the counters.
func NewCollector() (*Collector, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := New(provider.Meter(scopeName))
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, fmt.Errorf("create instruments: %w", err)
	}
	return &Collector{reader: reader, provider: provider, metrics: m}, nil
}

// Metrics returns the notifier to register on a session.
func (c *Collector) Metrics() *Metrics {
	return c.metrics
}

// Snapshot collects every int64 sum as "name{key=value,...}" → value.
// Attribute keys are in sorted order.
func (c *Collector) Snapshot(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := c.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out[seriesName(m.Name, dp)] += dp.Value
			}
		}
	}
	return out, nil
}

// Lines renders a snapshot as sorted "series value" lines.
func Lines(snapshot map[string]int64) []string {
	keys := slices.Sorted(maps.Keys(snapshot))
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("%s %d", k, snapshot[k])
	}
	return lines
}

// Shutdown releases the provider.
func (c *Collector) Shutdown(ctx context.Context) error {
	return c.provider.Shutdown(ctx)
}

func seriesName(name string, dp metricdata.DataPoint[int64]) string {
	if dp.Attributes.Len() == 0 {
		return name
	}
	parts := make([]string, 0, dp.Attributes.Len())
	iter := dp.Attributes.Iter()
	for iter.Next() {
		kv := iter.Attribute()
		parts = append(parts, fmt.Sprintf("%s=%s", kv.Key, kv.Value.Emit()))
	}
	return name + "{" + strings.Join(parts, ",") + "}"
}
