package metrics

import (
	"context"
	"log/slog"
	"testing"

	"storefront/config"
	"storefront/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/fx/fxtest"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			byName[m.Name] = m
		}
	}

	return byName
}

func sumFor(t *testing.T, m metricdata.Metrics, attr attribute.KeyValue) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, point := range sum.DataPoints {
		if attr.Key == "" {
			total += point.Value

			continue
		}
		if value, found := point.Attributes.Value(attr.Key); found && value == attr.Value {
			total += point.Value
		}
	}

	return total
}

func TestRecorder(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	rec, err := NewRecorder(provider.Meter(meterName))
	require.NoError(t, err)

	ctx := context.Background()
	rec.CartMutation(ctx, "add")
	rec.CartMutation(ctx, "add")
	rec.CartMutation(ctx, "remove")
	rec.MergeCompleted(ctx, service.MergeOutcomeMerged, 2)
	rec.MergeCompleted(ctx, service.MergeOutcomeNothingToMerge, 0)
	rec.OwnerConflict(ctx)
	rec.CheckoutSessionCreated(ctx)
	rec.OrderPlaced(ctx, 7476, "usd")
	rec.OrphanedPayment(ctx)
	rec.WishlistChange(ctx, "add")
	rec.WishlistChange(ctx, "remove")
	rec.WishlistChange(ctx, "add")

	metrics := collect(t, reader)

	assert.Equal(t, int64(2), sumFor(t, metrics["storefront.cart.mutations"], attribute.String("operation", "add")))
	assert.Equal(t, int64(1), sumFor(t, metrics["storefront.cart.mutations"], attribute.String("operation", "remove")))
	assert.Equal(t, int64(1), sumFor(t, metrics["storefront.cart.merges"], attribute.String("outcome", service.MergeOutcomeMerged)))
	assert.Equal(t, int64(2), sumFor(t, metrics["storefront.cart.stale_items_dropped"], attribute.KeyValue{}))
	assert.Equal(t, int64(1), sumFor(t, metrics["storefront.cart.owner_conflicts"], attribute.KeyValue{}))
	assert.Equal(t, int64(1), sumFor(t, metrics["storefront.checkout.sessions_created"], attribute.KeyValue{}))
	assert.Equal(t, int64(1), sumFor(t, metrics["storefront.orders.created"], attribute.String("currency", "usd")))
	assert.Equal(t, int64(1), sumFor(t, metrics["storefront.checkout.orphaned_payments"], attribute.KeyValue{}))
	assert.Equal(t, int64(2), sumFor(t, metrics["storefront.wishlist.changes"], attribute.String("operation", "add")))
	assert.Equal(t, int64(1), sumFor(t, metrics["storefront.wishlist.changes"], attribute.String("operation", "remove")))

	histogram, ok := metrics["storefront.orders.total"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, int64(7476), histogram.DataPoints[0].Sum)
}

func TestNewMetricsRecorder_Disabled(t *testing.T) {
	rec, err := NewMetricsRecorder(RecorderParams{
		Lc:     fxtest.NewLifecycle(t),
		Config: &config.Config{},
		Logger: slog.Default(),
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() { rec.CartMutation(context.Background(), "add") })
}

func TestParseHeaders(t *testing.T) {
	headers := parseHeaders(" signoz-ingestion-key = abc ,bad, x=1")

	assert.Equal(t, map[string]string{"signoz-ingestion-key": "abc", "x": "1"}, headers)
	assert.Empty(t, parseHeaders(""))
}
