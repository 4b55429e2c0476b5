package service

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrGatewayNotConfigured is returned by a gateway that has no payment provider behind it.
var ErrGatewayNotConfigured = errors.New("checkout gateway not configured")

// Payment statuses reported by the provider for a checkout session.
const (
	PaymentStatusPaid              = "paid"
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

// PaymentEventKind classifies provider webhook events.
type PaymentEventKind string

const (
	// PaymentEventCompleted means the session finished and payment is settled.
	PaymentEventCompleted PaymentEventKind = "completed"
	// PaymentEventExpired means the shopper abandoned the hosted page.
	PaymentEventExpired PaymentEventKind = "expired"
	// PaymentEventFailed means the payment attempt was declined.
	PaymentEventFailed PaymentEventKind = "failed"
	// PaymentEventIgnored covers event types the storefront does not act on.
	PaymentEventIgnored PaymentEventKind = "ignored"
)

// CheckoutLineItem is one priced row on the hosted payment page.
// Amounts are integer minor units.
type CheckoutLineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
}

// CheckoutSessionRequest describes the session to open for a cart. Amounts are minor
// units and add up to the order total:
// sum(line items) + TaxAmount + ShippingAmount - DiscountAmount.
type CheckoutSessionRequest struct {
	CartID         uuid.UUID
	Owner          entity.CartOwner
	Currency       string
	CustomerEmail  string
	LineItems      []CheckoutLineItem
	ShippingAmount int64
	TaxAmount      int64
	// DiscountAmount is taken off the line items and tax line, never off shipping.
	DiscountAmount int64
	// CouponCode labels the discount on the payment page.
	CouponCode string
}

// CheckoutSession is an opened hosted payment page.
type CheckoutSession struct {
	Ref string
	URL string
}

// CheckoutSessionDetails is what the provider reports about a session after the shopper returns.
type CheckoutSessionDetails struct {
	SessionRef      string
	PaymentStatus   string
	CartID          uuid.UUID
	UserID          *uuid.UUID
	CustomerEmail   string
	ShippingAddress *entity.PostalAddress
	BillingAddress  *entity.PostalAddress
}

// IsSettled reports whether the order can be placed for this session.
func (d *CheckoutSessionDetails) IsSettled() bool {
	return d.PaymentStatus == PaymentStatusPaid || d.PaymentStatus == PaymentStatusNoPaymentRequired
}

// PaymentEvent is a verified provider webhook.
type PaymentEvent struct {
	ID      string
	Type    string
	Kind    PaymentEventKind
	Session *CheckoutSessionDetails // nil unless the event carries a checkout session
}

// CheckoutGateway talks to the hosted payment provider.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionRef string) (*CheckoutSessionDetails, error)

	// ParseEvent verifies the webhook signature and decodes the event.
	ParseEvent(payload []byte, signature string) (*PaymentEvent, error)
}
