package handler

import (
	"io"
	"log/slog"
	"net/http"

	"storefront/internal/delivery/api/response"
	deliverycontext "storefront/internal/delivery/context"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	headerStripeSignature = "Stripe-Signature"

	// maxWebhookBody caps what is read from a webhook delivery.
	maxWebhookBody = 256 << 10
)

type createCheckoutRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

type checkoutResponse struct {
	URL        string         `json:"url"`
	SessionRef string         `json:"sessionRef"`
	Totals     totalsResponse `json:"totals"`
}

type webhookResponse struct {
	Received bool   `json:"received"`
	EventID  string `json:"eventId"`
	Type     string `json:"type"`
	OrderID  string `json:"orderId,omitempty"`
}

// CheckoutHandler opens payment pages and turns paid sessions into orders.
type CheckoutHandler struct {
	checkout usecase.CheckoutUsecase
	orders   usecase.OrderUsecase
	logger   *slog.Logger
}

// NewCheckoutHandler is the constructor for CheckoutHandler, injected by Fx.
func NewCheckoutHandler(checkout usecase.CheckoutUsecase, orders usecase.OrderUsecase, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, orders: orders, logger: logger}
}

// CreateCheckout opens a hosted payment page for the owner's cart.
func (h *CheckoutHandler) CreateCheckout(c echo.Context) error {
	var req createCheckoutRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req, "Invalid checkout input"); err != nil {
			return err
		}
	}

	output, err := h.checkout.CreateCheckout(c.Request().Context(), owner(c), &usecase.CreateCheckoutInput{
		CustomerEmail: req.Email,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, checkoutResponse{
		URL:        output.URL,
		SessionRef: output.SessionRef,
		Totals:     presentTotals(output.Totals),
	})
}

// Success is where the payment page redirects after payment. The order may already
// exist because the webhook arrived first.
func (h *CheckoutHandler) Success(c echo.Context) error {
	sessionRef := c.QueryParam("session_id")
	if sessionRef == "" {
		return domainerrors.ErrValidationFailed.WithDetails("session_id is required")
	}

	ctx := c.Request().Context()
	order, err := h.orders.GetOrderBySession(ctx, sessionRef)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrOrderNotFound) {
			return errors.WithStack(err)
		}

		order, err = h.checkout.FinalizeOrder(ctx, sessionRef)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return response.Success(c, http.StatusOK, presentOrder(order))
}

// Webhook receives payment provider events. The raw body is needed for signature
// verification, so it is never bound.
func (h *CheckoutHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return domainerrors.ErrWebhookInvalid.WrapMessage("read body")
	}

	result, err := h.checkout.HandlePaymentEvent(c.Request().Context(), payload, c.Request().Header.Get(headerStripeSignature))
	if err != nil {
		return errors.WithStack(err)
	}

	resp := webhookResponse{Received: true, EventID: result.EventID, Type: result.Type}
	if result.Order != nil {
		resp.OrderID = result.Order.ID.String()
	}

	deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger).Info("Payment event handled",
		slog.String("event_id", result.EventID),
		slog.String("type", result.Type),
		slog.String("order_id", resp.OrderID),
	)

	return response.Success(c, http.StatusOK, resp)
}
