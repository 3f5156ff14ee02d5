// Package telemetry counts order-session transitions with OpenTelemetry.
//
// Metrics is an order.Notifier, so it plugs into a session next to any other
// notifier. Collector wires it to an in-process ManualReader for the CLI's
// end-of-run summary; a long-running host would pass its own Meter instead.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/roach88/qrorder/internal/order"
)

// Instrument names.
const (
	MetricEvents        = "qrorder.events.total"
	MetricCommits       = "qrorder.commits.total"
	MetricInvalidations = "qrorder.invalidations.total"
	MetricStockOutItems = "qrorder.stockout.items.total"
	MetricRejections    = "qrorder.rejections.total"
)

// Metrics records session events as counters.
type Metrics struct {
	events        metric.Int64Counter
	commits       metric.Int64Counter
	invalidations metric.Int64Counter
	stockOutItems metric.Int64Counter
	rejections    metric.Int64Counter
}

// New creates the counters on meter.
func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.events, err = meter.Int64Counter(MetricEvents,
		metric.WithDescription("Session events emitted, by type"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	m.commits, err = meter.Int64Counter(MetricCommits,
		metric.WithDescription("Successful commits"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, err
	}

	m.invalidations, err = meter.Int64Counter(MetricInvalidations,
		metric.WithDescription("Commitments invalidated, by cause"),
		metric.WithUnit("{commitment}"),
	)
	if err != nil {
		return nil, err
	}

	m.stockOutItems, err = meter.Int64Counter(MetricStockOutItems,
		metric.WithDescription("Items marked sold out"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	m.rejections, err = meter.Int64Counter(MetricRejections,
		metric.WithDescription("Rejected operations, by error code"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Notify implements order.Notifier.
func (m *Metrics) Notify(e order.Event) {
	ctx := context.Background()

	m.events.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", string(e.Type))))

	switch e.Type {
	case order.EventCommitted:
		m.commits.Add(ctx, 1)
	case order.EventInvalidated:
		m.invalidations.Add(ctx, 1, metric.WithAttributes(attribute.String("cause", string(e.Cause))))
	case order.EventStockOut:
		m.stockOutItems.Add(ctx, int64(len(e.ItemIDs)))
	case order.EventRejected:
		m.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("code", string(e.Code))))
	}
}
