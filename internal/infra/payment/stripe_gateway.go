// Package payment adapts hosted checkout providers to service.CheckoutGateway.
package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Metadata keys written on every checkout session.
const (
	metadataCartID = "cartId"
	metadataUserID = "userId"
)

const (
	shippingDisplayName = "Standard shipping"
	maxCouponNameLength = 40
)

// stripeGateway implements service.CheckoutGateway with Stripe Checkout.
type stripeGateway struct {
	api              *client.API
	webhookSecret    string
	successURL       string
	cancelURL        string
	allowedCountries []string
	logger           *slog.Logger
}

// NewStripeGateway builds a gateway around an initialized Stripe client.
func NewStripeGateway(api *client.API, cfg *config.CheckoutConfig, logger *slog.Logger) service.CheckoutGateway {
	return &stripeGateway{
		api:              api,
		webhookSecret:    cfg.WebhookSecret,
		successURL:       cfg.SuccessURL,
		cancelURL:        cfg.CancelURL,
		allowedCountries: splitCountries(cfg.AllowedCountries),
		logger:           logger,
	}
}

func (g *stripeGateway) CreateSession(ctx context.Context, req *service.CheckoutSessionRequest) (*service.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:                     stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:               stripe.String(g.successURL),
		CancelURL:                stripe.String(g.cancelURL),
		ClientReferenceID:        stripe.String(req.CartID.String()),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
	}
	params.Context = ctx

	for _, item := range req.LineItems {
		params.LineItems = append(params.LineItems, lineItemParams(req.Currency, item.Name, item.Description, item.UnitAmount, item.Quantity))
	}
	if req.TaxAmount > 0 {
		params.LineItems = append(params.LineItems, lineItemParams(req.Currency, "Sales tax", "", req.TaxAmount, 1))
	}

	params.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{{
		ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
			DisplayName: stripe.String(shippingDisplayName),
			Type:        stripe.String("fixed_amount"),
			FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
				Amount:   stripe.Int64(req.ShippingAmount),
				Currency: stripe.String(req.Currency),
			},
		},
	}}
	if len(g.allowedCountries) > 0 {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(g.allowedCountries),
		}
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.DiscountAmount > 0 {
		couponID, err := g.oneOffCoupon(ctx, req)
		if err != nil {
			return nil, err
		}
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{{Coupon: stripe.String(couponID)}}
	}

	params.AddMetadata(metadataCartID, req.CartID.String())
	if req.Owner.IsUser() {
		params.AddMetadata(metadataUserID, req.Owner.UserID.String())
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "stripe: create checkout session")
	}

	return &service.CheckoutSession{Ref: session.ID, URL: session.URL}, nil
}

// oneOffCoupon creates a single-use amount-off coupon for the discount already
// computed for the cart. Store coupon codes never need to exist in Stripe.
func (g *stripeGateway) oneOffCoupon(ctx context.Context, req *service.CheckoutSessionRequest) (string, error) {
	params := &stripe.CouponParams{
		AmountOff:      stripe.Int64(req.DiscountAmount),
		Currency:       stripe.String(req.Currency),
		Duration:       stripe.String(string(stripe.CouponDurationOnce)),
		MaxRedemptions: stripe.Int64(1),
	}
	params.Context = ctx
	if name := strings.TrimSpace(req.CouponCode); name != "" && len(name) <= maxCouponNameLength {
		params.Name = stripe.String(name)
	}
	params.AddMetadata(metadataCartID, req.CartID.String())

	coupon, err := g.api.Coupons.New(params)
	if err != nil {
		return "", errors.Wrap(err, "stripe: create checkout discount")
	}

	return coupon.ID, nil
}

func (g *stripeGateway) RetrieveSession(ctx context.Context, sessionRef string) (*service.CheckoutSessionDetails, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.Get(sessionRef, params)
	if err != nil {
		return nil, errors.Wrapf(err, "stripe: retrieve checkout session %s", sessionRef)
	}

	return sessionDetails(session)
}

// ParseEvent verifies the Stripe-Signature header. API version mismatches are tolerated
// because only session fields that are stable across versions are read.
func (g *stripeGateway) ParseEvent(payload []byte, signature string) (*service.PaymentEvent, error) {
	if g.webhookSecret == "" {
		return nil, errors.Wrap(service.ErrGatewayNotConfigured, "webhook secret is empty")
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "stripe: verify webhook")
	}

	result := &service.PaymentEvent{
		ID:   event.ID,
		Type: string(event.Type),
		Kind: eventKind(event.Type),
	}
	if result.Kind != service.PaymentEventCompleted || event.Data == nil {
		return result, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, errors.Wrap(err, "stripe: decode checkout session")
	}
	result.Session, err = sessionDetails(&session)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func eventKind(eventType stripe.EventType) service.PaymentEventKind {
	switch eventType {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		return service.PaymentEventCompleted
	case stripe.EventTypeCheckoutSessionExpired:
		return service.PaymentEventExpired
	case stripe.EventTypePaymentIntentPaymentFailed, stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		return service.PaymentEventFailed
	default:
		return service.PaymentEventIgnored
	}
}

// sessionDetails reads the cart back from metadata, falling back to the client reference.
func sessionDetails(session *stripe.CheckoutSession) (*service.CheckoutSessionDetails, error) {
	rawCartID := session.Metadata[metadataCartID]
	if rawCartID == "" {
		rawCartID = session.ClientReferenceID
	}
	cartID, err := uuid.Parse(rawCartID)
	if err != nil {
		return nil, errors.Wrapf(err, "stripe: session %s has no cart reference", session.ID)
	}

	details := &service.CheckoutSessionDetails{
		SessionRef:    session.ID,
		PaymentStatus: string(session.PaymentStatus),
		CartID:        cartID,
		CustomerEmail: session.CustomerEmail,
	}
	if rawUserID := session.Metadata[metadataUserID]; rawUserID != "" {
		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			return nil, errors.Wrapf(err, "stripe: session %s has a malformed user reference", session.ID)
		}
		details.UserID = &userID
	}
	if session.CustomerDetails != nil {
		if session.CustomerDetails.Email != "" {
			details.CustomerEmail = session.CustomerDetails.Email
		}
		details.BillingAddress = postalAddress(session.CustomerDetails.Name, session.CustomerDetails.Address)
	}
	if session.CollectedInformation != nil && session.CollectedInformation.ShippingDetails != nil {
		shipping := session.CollectedInformation.ShippingDetails
		details.ShippingAddress = postalAddress(shipping.Name, shipping.Address)
	}

	return details, nil
}

func postalAddress(name string, address *stripe.Address) *entity.PostalAddress {
	if address == nil {
		return nil
	}

	result := &entity.PostalAddress{
		Name:       name,
		Line1:      address.Line1,
		Line2:      address.Line2,
		City:       address.City,
		State:      address.State,
		PostalCode: address.PostalCode,
		Country:    address.Country,
	}
	if result.IsZero() {
		return nil
	}

	return result
}

func lineItemParams(currency, name, description string, unitAmount, quantity int64) *stripe.CheckoutSessionLineItemParams {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{Name: stripe.String(name)}
	if description != "" {
		product.Description = stripe.String(description)
	}

	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:    stripe.String(currency),
			ProductData: product,
			UnitAmount:  stripe.Int64(unitAmount),
		},
		Quantity: stripe.Int64(quantity),
	}
}

func splitCountries(raw string) []string {
	var countries []string
	for _, part := range strings.Split(raw, ",") {
		if country := strings.ToUpper(strings.TrimSpace(part)); country != "" {
			countries = append(countries, country)
		}
	}

	return countries
}
