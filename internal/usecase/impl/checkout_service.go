package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// checkoutService implements the CheckoutUsecase interface.
type checkoutService struct {
	txManager  repository.TransactionManager
	cartRepo   repository.CartRepository
	orderRepo  repository.OrderRepository
	couponRepo repository.CouponRepository
	gateway    service.CheckoutGateway
	publisher  service.EventPublisher
	calculator *pricing.Calculator
	metrics    service.MetricsRecorder
	now        func() time.Time
	logger     *slog.Logger
}

// CheckoutServiceParams holds dependencies for CheckoutService, injected by Fx.
type CheckoutServiceParams struct {
	fx.In

	TxManager  repository.TransactionManager
	CartRepo   repository.CartRepository
	OrderRepo  repository.OrderRepository
	CouponRepo repository.CouponRepository
	Gateway    service.CheckoutGateway
	Publisher  service.EventPublisher
	Calculator *pricing.Calculator
	Metrics    service.MetricsRecorder
	Logger     *slog.Logger
}

// NewCheckoutService is the constructor for checkoutService.
func NewCheckoutService(params CheckoutServiceParams) usecase.CheckoutUsecase {
	return &checkoutService{
		txManager:  params.TxManager,
		cartRepo:   params.CartRepo,
		orderRepo:  params.OrderRepo,
		couponRepo: params.CouponRepo,
		gateway:    params.Gateway,
		publisher:  params.Publisher,
		calculator: params.Calculator,
		metrics:    params.Metrics,
		now:        time.Now,
		logger:     params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *checkoutService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateCheckout opens a hosted payment page for the owner's cart. Amounts are sent in
// minor units and computed here; the client never supplies a price.
func (srv *checkoutService) CreateCheckout(ctx context.Context, owner entity.CartOwner, input *usecase.CreateCheckoutInput) (*usecase.CheckoutOutput, error) {
	if owner.IsZero() {
		return nil, domainerrors.ErrCartNotFound.WrapMessage("checkout without a cart owner")
	}

	carts, err := srv.cartRepo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find cart by owner")
	}
	cart := pickOwnerCart(ctx, srv.log(ctx), srv.metrics, owner, carts)
	if cart == nil {
		return nil, domainerrors.ErrCartNotFound.WrapMessage("checkout without a cart")
	}

	lines, _, err := pricing.CartLines(cart.Items)
	if err != nil {
		return nil, errors.Wrap(err, "failed to price cart")
	}
	if len(lines) == 0 {
		return nil, domainerrors.ErrEmptyCart.WrapMessage("checkout rejected")
	}

	coupon, err := redeemableCoupon(ctx, srv.couponRepo, cart.CouponCode, srv.now())
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cart coupon")
	}
	totals := srv.calculator.ComputeTotals(lines, coupon)
	// The provider charges exactly the total the order will record.
	charge := pricing.ChargeFor(lines, totals)

	req := &service.CheckoutSessionRequest{
		CartID:         cart.ID,
		Owner:          owner,
		Currency:       totals.Currency,
		CustomerEmail:  strings.TrimSpace(input.CustomerEmail),
		LineItems:      checkoutLineItems(cart.Items, charge.Lines),
		ShippingAmount: charge.Shipping,
		TaxAmount:      charge.Tax,
		DiscountAmount: charge.Discount,
	}
	if coupon != nil {
		req.CouponCode = coupon.Code
	}

	session, err := srv.gateway.CreateSession(ctx, req)
	if err != nil {
		srv.log(ctx).Error("Checkout provider rejected session creation", slog.Any("cartID", cart.ID), slog.Any("error", err))

		return nil, domainerrors.ErrExternalServiceUnavailable.WrapMessage(err.Error())
	}

	srv.metrics.CheckoutSessionCreated(ctx)
	srv.log(ctx).Info("Checkout session created",
		slog.Any("cartID", cart.ID),
		slog.String("sessionRef", session.Ref),
		slog.String("total", pricing.Present(totals.Total)))

	return &usecase.CheckoutOutput{
		SessionRef: session.Ref,
		URL:        session.URL,
		Totals:     totals,
	}, nil
}

// checkoutLineItems pairs live cart items with their charged lines. The lines follow
// pricing.CartLines, which preserves order and skips stale items.
func checkoutLineItems(items []*entity.CartLineItem, lines []pricing.MinorLine) []service.CheckoutLineItem {
	out := make([]service.CheckoutLineItem, 0, len(lines))
	i := 0
	for _, item := range items {
		if item.IsStale() {
			continue
		}
		out = append(out, service.CheckoutLineItem{
			Name:        item.Variant.ProductName(),
			Description: variantDescription(item.Variant),
			UnitAmount:  lines[i].UnitAmount,
			Quantity:    lines[i].Quantity,
		})
		i++
	}

	return out
}

func variantDescription(variant *entity.ProductVariant) string {
	parts := make([]string, 0, 2)
	if name := variant.ColorName(); name != "" {
		parts = append(parts, fmt.Sprintf("Color: %s", name))
	}
	if name := variant.SizeName(); name != "" {
		parts = append(parts, fmt.Sprintf("Size: %s", name))
	}

	return strings.Join(parts, ", ")
}

// FinalizeOrder places the order for a session the shopper returned from.
func (srv *checkoutService) FinalizeOrder(ctx context.Context, sessionRef string) (*entity.Order, error) {
	sessionRef = strings.TrimSpace(sessionRef)
	if sessionRef == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("session reference is required")
	}

	order, err := srv.orderRepo.FindBySessionRef(ctx, sessionRef)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, repository.ErrOrderNotFound) {
		return nil, errors.Wrap(err, "failed to find order by session")
	}

	details, err := srv.gateway.RetrieveSession(ctx, sessionRef)
	if err != nil {
		srv.log(ctx).Error("Failed to retrieve checkout session", slog.String("sessionRef", sessionRef), slog.Any("error", err))

		return nil, domainerrors.ErrExternalServiceUnavailable.WrapMessage(err.Error())
	}

	return srv.finalize(ctx, details)
}

// HandlePaymentEvent verifies and dispatches a provider webhook.
func (srv *checkoutService) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) (*usecase.PaymentEventResult, error) {
	event, err := srv.gateway.ParseEvent(payload, signature)
	if err != nil {
		if errors.Is(err, service.ErrGatewayNotConfigured) {
			return nil, domainerrors.ErrExternalServiceUnavailable.WrapMessage("payment events are not configured")
		}
		srv.log(ctx).Warn("Rejected payment webhook", slog.Any("error", err))

		return nil, domainerrors.ErrWebhookInvalid.WrapMessage(err.Error())
	}

	result := &usecase.PaymentEventResult{EventID: event.ID, Type: event.Type, Kind: event.Kind}
	logger := srv.log(ctx).With(slog.String("eventID", event.ID), slog.String("eventType", event.Type))

	switch event.Kind {
	case service.PaymentEventCompleted:
		if event.Session == nil {
			return nil, domainerrors.ErrWebhookInvalid.WrapMessage("completed event without a checkout session")
		}
		if !event.Session.IsSettled() {
			// Delayed payment methods complete the session before funds arrive; a later
			// async_payment_succeeded event finalizes.
			logger.Info("Checkout completed with payment pending", slog.String("sessionRef", event.Session.SessionRef))

			return result, nil
		}

		order, err := srv.finalize(ctx, event.Session)
		if errors.Is(err, domainerrors.ErrCartNotFound) || errors.Is(err, domainerrors.ErrEmptyCart) {
			// Redelivery cannot bring the cart back; acknowledge so the provider stops retrying.
			logger.Error("Paid checkout has no cart to convert, needs manual reconciliation",
				slog.String("sessionRef", event.Session.SessionRef),
				slog.Any("cartID", event.Session.CartID),
				slog.Any("error", err),
			)
			srv.metrics.OrphanedPayment(ctx)
			result.Orphaned = true

			return result, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to finalize order from webhook")
		}
		result.Order = order
	case service.PaymentEventExpired:
		logger.Info("Checkout session expired, cart left intact")
	case service.PaymentEventFailed:
		logger.Warn("Payment failed, cart left intact")
	default:
		logger.Debug("Ignoring payment event")
	}

	return result, nil
}

// finalize converts the session's cart into an order and deletes the cart in one
// transaction. It is idempotent on the session reference.
func (srv *checkoutService) finalize(ctx context.Context, details *service.CheckoutSessionDetails) (*entity.Order, error) {
	if !details.IsSettled() {
		return nil, domainerrors.ErrPaymentNotCompleted.WrapMessage(fmt.Sprintf("payment status %q", details.PaymentStatus))
	}

	var order *entity.Order
	created := false

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.NewOrderRepository()
		cartRepo := repoFactory.NewCartRepository()

		existing, err := findOrderBySession(ctx, orderRepo, details.SessionRef)
		if err != nil || existing != nil {
			order = existing

			return err
		}

		cart, err := cartRepo.FindByIDForUpdate(ctx, details.CartID)
		if errors.Is(err, repository.ErrCartNotFound) {
			// A concurrent finalize may have committed while this one waited on the lock.
			existing, err = findOrderBySession(ctx, orderRepo, details.SessionRef)
			if err != nil || existing != nil {
				order = existing

				return err
			}

			return domainerrors.ErrCartNotFound.WrapMessage("checkout cart no longer exists")
		}
		if err != nil {
			return errors.Wrap(err, "failed to lock checkout cart")
		}

		lines, _, err := pricing.CartLines(cart.Items)
		if err != nil {
			return errors.Wrap(err, "failed to price checkout cart")
		}
		if len(lines) == 0 {
			return domainerrors.ErrEmptyCart.WrapMessage("checkout cart has no purchasable items")
		}

		coupon, err := redeemableCoupon(ctx, repoFactory.NewCouponRepository(), cart.CouponCode, srv.now())
		if err != nil {
			return errors.Wrap(err, "failed to load checkout coupon")
		}

		order = srv.buildOrder(details, cart, lines, coupon)
		if err := orderRepo.Create(ctx, order); err != nil {
			return errors.Wrap(err, "failed to create order")
		}

		if err := cartRepo.Delete(ctx, cart.ID); err != nil {
			return errors.Wrap(err, "failed to delete converted cart")
		}
		created = true

		return nil
	})

	if errors.Is(err, repository.ErrDuplicateOrder) {
		// Lost the insert race; the winner's order is the answer.
		return srv.orderRepo.FindBySessionRef(ctx, details.SessionRef)
	}
	if err != nil {
		srv.log(ctx).Error("Failed to finalize order", slog.String("sessionRef", details.SessionRef), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute finalize order transaction")
	}

	if created {
		srv.afterOrderPlaced(ctx, order)
	}

	return order, nil
}

func findOrderBySession(ctx context.Context, orderRepo repository.OrderRepository, sessionRef string) (*entity.Order, error) {
	order, err := orderRepo.FindBySessionRef(ctx, sessionRef)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order by session")
	}

	return order, nil
}

// buildOrder snapshots the cart. Line totals and the grand total come from the same
// calculator used for cart reads, so the order matches what the shopper was shown.
func (srv *checkoutService) buildOrder(
	details *service.CheckoutSessionDetails,
	cart *entity.Cart,
	lines []pricing.Line,
	coupon *entity.Coupon,
) *entity.Order {
	totals := srv.calculator.ComputeTotals(lines, coupon)

	order := &entity.Order{
		SessionRef:      details.SessionRef,
		Status:          entity.OrderStatusPaid,
		Subtotal:        totals.Subtotal.Round(pricing.MoneyScale),
		Discount:        totals.Discount.Round(pricing.MoneyScale),
		Shipping:        totals.Shipping.Round(pricing.MoneyScale),
		Tax:             totals.Tax.Round(pricing.MoneyScale),
		Total:           totals.Total,
		Currency:        totals.Currency,
		CustomerEmail:   details.CustomerEmail,
		ShippingAddress: details.ShippingAddress,
		BillingAddress:  details.BillingAddress,
	}
	if coupon != nil {
		order.CouponCode = coupon.Code
	}

	switch {
	case cart.Owner.IsUser():
		userID := cart.Owner.UserID
		order.UserID = &userID
	case details.UserID != nil:
		userID := *details.UserID
		order.UserID = &userID
	}

	i := 0
	for _, item := range cart.Items {
		if item.IsStale() {
			continue
		}
		line := lines[i]
		i++
		order.Items = append(order.Items, &entity.OrderItem{
			ProductVariantID: item.ProductVariantID,
			ProductName:      item.Variant.ProductName(),
			ColorName:        item.Variant.ColorName(),
			SizeName:         item.Variant.SizeName(),
			UnitPrice:        line.UnitPrice,
			Quantity:         line.Quantity,
			LineTotal:        line.Amount(),
		})
	}

	return order
}

// afterOrderPlaced runs best-effort side effects once the order is committed.
func (srv *checkoutService) afterOrderPlaced(ctx context.Context, order *entity.Order) {
	srv.metrics.OrderPlaced(ctx, pricing.ToMinorUnits(order.Total), order.Currency)

	event := &service.OrderPlacedEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		OrderID:    order.ID.String(),
		SessionRef: order.SessionRef,
		Total:      pricing.Present(order.Total),
		TotalMinor: pricing.ToMinorUnits(order.Total),
		Currency:   order.Currency,
		PlacedAt:   order.CreatedAt,
	}
	if order.UserID != nil {
		event.UserID = order.UserID.String()
	}
	for _, item := range order.Items {
		event.ItemCount += item.Quantity
	}

	if err := srv.publisher.PublishOrderPlaced(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish order placed event", slog.Any("orderID", order.ID), slog.Any("error", err))
	}

	srv.log(ctx).Info("Order placed",
		slog.Any("orderID", order.ID),
		slog.String("sessionRef", order.SessionRef),
		slog.String("total", pricing.Present(order.Total)))
}
