package payment

import (
	"context"
	"log/slog"

	"storefront/config"
	"storefront/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82/client"
	"go.uber.org/fx"
)

// ProviderStripe selects Stripe Checkout.
const ProviderStripe = "stripe"

// unconfiguredGateway keeps the cart usable when no payment provider is set up.
type unconfiguredGateway struct{}

func (unconfiguredGateway) CreateSession(context.Context, *service.CheckoutSessionRequest) (*service.CheckoutSession, error) {
	return nil, service.ErrGatewayNotConfigured
}

func (unconfiguredGateway) RetrieveSession(context.Context, string) (*service.CheckoutSessionDetails, error) {
	return nil, service.ErrGatewayNotConfigured
}

func (unconfiguredGateway) ParseEvent([]byte, string) (*service.PaymentEvent, error) {
	return nil, service.ErrGatewayNotConfigured
}

// GatewayParams holds dependencies for CheckoutGateway, injected by Fx
type GatewayParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewCheckoutGateway creates a CheckoutGateway based on configuration
func NewCheckoutGateway(params GatewayParams) (service.CheckoutGateway, error) {
	cfg := params.Config.Checkout
	if cfg == nil || cfg.Provider == "" {
		params.Logger.Warn("Checkout provider not configured, checkout is disabled")

		return unconfiguredGateway{}, nil
	}

	switch cfg.Provider {
	case ProviderStripe:
		if cfg.SecretKey == "" {
			return nil, errors.New("secret key is required for stripe provider")
		}
		if cfg.SuccessURL == "" || cfg.CancelURL == "" {
			return nil, errors.New("success and cancel URLs are required for stripe provider")
		}
		if cfg.WebhookSecret == "" {
			params.Logger.Warn("Stripe webhook secret is empty, payment events will be rejected")
		}

		return NewStripeGateway(client.New(cfg.SecretKey, nil), cfg, params.Logger), nil
	default:
		return nil, errors.Errorf("unknown checkout provider: %s", cfg.Provider)
	}
}

// Module provides the payment FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewCheckoutGateway),
)
