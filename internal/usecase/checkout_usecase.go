package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/service"
)

// CreateCheckoutInput holds optional shopper details forwarded to the payment page.
type CreateCheckoutInput struct {
	CustomerEmail string
}

// CheckoutOutput is an opened payment page for the owner's cart.
type CheckoutOutput struct {
	SessionRef string
	URL        string
	Totals     pricing.Totals
}

// PaymentEventResult reports how a webhook was handled.
type PaymentEventResult struct {
	EventID string
	Type    string
	Kind    service.PaymentEventKind
	Order   *entity.Order // set when the event placed (or had already placed) an order

	// Orphaned marks a settled payment acknowledged without an order because its cart
	// was gone or held nothing purchasable.
	Orphaned bool
}

// CheckoutUsecase bridges carts to the hosted payment provider and turns paid sessions into orders.
type CheckoutUsecase interface {
	CreateCheckout(ctx context.Context, owner entity.CartOwner, input *CreateCheckoutInput) (*CheckoutOutput, error)

	// FinalizeOrder places the order for a paid session. Calling it again for the same
	// session returns the order created the first time.
	FinalizeOrder(ctx context.Context, sessionRef string) (*entity.Order, error)

	HandlePaymentEvent(ctx context.Context, payload []byte, signature string) (*PaymentEventResult, error)
}
