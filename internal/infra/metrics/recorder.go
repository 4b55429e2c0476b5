// Package metrics records storefront business counters with OpenTelemetry.
package metrics

import (
	"context"

	"storefront/internal/domain/service"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "storefront"

// orderTotalBuckets are minor-unit boundaries, 1.00 to 5000.00.
var orderTotalBuckets = []float64{100, 500, 1000, 2500, 5000, 10000, 25000, 50000, 100000, 500000}

// otelRecorder implements service.MetricsRecorder.
type otelRecorder struct {
	cartMutations    metric.Int64Counter
	merges           metric.Int64Counter
	staleItems       metric.Int64Counter
	ownerConflicts   metric.Int64Counter
	checkoutSessions metric.Int64Counter
	ordersCreated    metric.Int64Counter
	orderTotal       metric.Int64Histogram
	orphanedPayments metric.Int64Counter
	wishlistChanges  metric.Int64Counter
}

// NewRecorder creates every instrument on the given meter.
func NewRecorder(meter metric.Meter) (service.MetricsRecorder, error) {
	var rec otelRecorder
	var err error

	if rec.cartMutations, err = meter.Int64Counter(
		"storefront.cart.mutations",
		metric.WithDescription("Cart write operations by kind"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, errors.Wrap(err, "failed to create cart mutations counter")
	}

	if rec.merges, err = meter.Int64Counter(
		"storefront.cart.merges",
		metric.WithDescription("Guest cart merges by outcome"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, errors.Wrap(err, "failed to create merges counter")
	}

	if rec.staleItems, err = meter.Int64Counter(
		"storefront.cart.stale_items_dropped",
		metric.WithDescription("Line items dropped during merge because their variant is gone"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, errors.Wrap(err, "failed to create stale items counter")
	}

	if rec.ownerConflicts, err = meter.Int64Counter(
		"storefront.cart.owner_conflicts",
		metric.WithDescription("Reads that found more than one cart for an owner"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, errors.Wrap(err, "failed to create owner conflicts counter")
	}

	if rec.checkoutSessions, err = meter.Int64Counter(
		"storefront.checkout.sessions_created",
		metric.WithDescription("Hosted checkout sessions opened"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, errors.Wrap(err, "failed to create checkout sessions counter")
	}

	if rec.ordersCreated, err = meter.Int64Counter(
		"storefront.orders.created",
		metric.WithDescription("Orders placed"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, errors.Wrap(err, "failed to create orders counter")
	}

	if rec.orderTotal, err = meter.Int64Histogram(
		"storefront.orders.total",
		metric.WithDescription("Order totals in minor currency units"),
		metric.WithUnit("{minor_unit}"),
		metric.WithExplicitBucketBoundaries(orderTotalBuckets...),
	); err != nil {
		return nil, errors.Wrap(err, "failed to create order total histogram")
	}

	if rec.orphanedPayments, err = meter.Int64Counter(
		"storefront.checkout.orphaned_payments",
		metric.WithDescription("Completed payments acknowledged without an order because the cart was gone"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, errors.Wrap(err, "failed to create orphaned payments counter")
	}

	if rec.wishlistChanges, err = meter.Int64Counter(
		"storefront.wishlist.changes",
		metric.WithDescription("Wishlist writes by kind"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, errors.Wrap(err, "failed to create wishlist changes counter")
	}

	return &rec, nil
}

func (r *otelRecorder) CartMutation(ctx context.Context, operation string) {
	r.cartMutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

func (r *otelRecorder) MergeCompleted(ctx context.Context, outcome string, droppedItems int) {
	r.merges.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if droppedItems > 0 {
		r.staleItems.Add(ctx, int64(droppedItems))
	}
}

func (r *otelRecorder) OwnerConflict(ctx context.Context) {
	r.ownerConflicts.Add(ctx, 1)
}

func (r *otelRecorder) CheckoutSessionCreated(ctx context.Context) {
	r.checkoutSessions.Add(ctx, 1)
}

func (r *otelRecorder) OrderPlaced(ctx context.Context, totalMinor int64, currency string) {
	attrs := metric.WithAttributes(attribute.String("currency", currency))
	r.ordersCreated.Add(ctx, 1, attrs)
	r.orderTotal.Record(ctx, totalMinor, attrs)
}

func (r *otelRecorder) OrphanedPayment(ctx context.Context) {
	r.orphanedPayments.Add(ctx, 1)
}

func (r *otelRecorder) WishlistChange(ctx context.Context, operation string) {
	r.wishlistChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}
