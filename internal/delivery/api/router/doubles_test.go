package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/config"
	apimiddleware "storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/router/handler"
	"storefront/internal/delivery/api/validator"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/internal/infra/auth"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testGuestToken = "guest-token-1"

type mockUserUsecase struct{ mock.Mock }

func (m *mockUserUsecase) RegisterUser(ctx context.Context, input *usecase.RegisterUserInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.AuthOutput)

	return out, args.Error(1)
}

func (m *mockUserUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.AuthOutput)

	return out, args.Error(1)
}

func (m *mockUserUsecase) GoogleCallback(ctx context.Context, input *usecase.GoogleCallbackInput) (*usecase.AuthOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.AuthOutput)

	return out, args.Error(1)
}

func (m *mockUserUsecase) RefreshToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.RefreshTokenOutput)

	return out, args.Error(1)
}

func (m *mockUserUsecase) Logout(ctx context.Context, input *usecase.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *mockUserUsecase) LogoutAllDevices(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type mockCartUsecase struct{ mock.Mock }

func (m *mockCartUsecase) view(args mock.Arguments) (*usecase.CartView, error) {
	out, _ := args.Get(0).(*usecase.CartView)

	return out, args.Error(1)
}

func (m *mockCartUsecase) GetCart(ctx context.Context, owner entity.CartOwner) (*usecase.CartView, error) {
	return m.view(m.Called(ctx, owner))
}

func (m *mockCartUsecase) AddItem(ctx context.Context, owner entity.CartOwner, input *usecase.AddItemInput) (*usecase.CartView, error) {
	return m.view(m.Called(ctx, owner, input))
}

func (m *mockCartUsecase) UpdateItem(ctx context.Context, owner entity.CartOwner, itemID uuid.UUID, quantity int) (*usecase.CartView, error) {
	return m.view(m.Called(ctx, owner, itemID, quantity))
}

func (m *mockCartUsecase) RemoveItem(ctx context.Context, owner entity.CartOwner, itemID uuid.UUID) (*usecase.CartView, error) {
	return m.view(m.Called(ctx, owner, itemID))
}

func (m *mockCartUsecase) Clear(ctx context.Context, owner entity.CartOwner, cartID uuid.UUID) (*usecase.CartView, error) {
	return m.view(m.Called(ctx, owner, cartID))
}

func (m *mockCartUsecase) ApplyCoupon(ctx context.Context, owner entity.CartOwner, code string) (*usecase.CartView, error) {
	return m.view(m.Called(ctx, owner, code))
}

func (m *mockCartUsecase) RemoveCoupon(ctx context.Context, owner entity.CartOwner) (*usecase.CartView, error) {
	return m.view(m.Called(ctx, owner))
}

type mockCheckoutUsecase struct{ mock.Mock }

func (m *mockCheckoutUsecase) CreateCheckout(ctx context.Context, owner entity.CartOwner, input *usecase.CreateCheckoutInput) (*usecase.CheckoutOutput, error) {
	args := m.Called(ctx, owner, input)
	out, _ := args.Get(0).(*usecase.CheckoutOutput)

	return out, args.Error(1)
}

func (m *mockCheckoutUsecase) FinalizeOrder(ctx context.Context, sessionRef string) (*entity.Order, error) {
	args := m.Called(ctx, sessionRef)
	out, _ := args.Get(0).(*entity.Order)

	return out, args.Error(1)
}

func (m *mockCheckoutUsecase) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) (*usecase.PaymentEventResult, error) {
	args := m.Called(ctx, payload, signature)
	out, _ := args.Get(0).(*usecase.PaymentEventResult)

	return out, args.Error(1)
}

type mockOrderUsecase struct{ mock.Mock }

func (m *mockOrderUsecase) order(args mock.Arguments) (*entity.Order, error) {
	out, _ := args.Get(0).(*entity.Order)

	return out, args.Error(1)
}

func (m *mockOrderUsecase) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error) {
	return m.order(m.Called(ctx, userID, orderID))
}

func (m *mockOrderUsecase) GetOrderBySession(ctx context.Context, sessionRef string) (*entity.Order, error) {
	return m.order(m.Called(ctx, sessionRef))
}

func (m *mockOrderUsecase) ListOrders(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]*entity.Order)

	return out, args.Error(1)
}

func (m *mockOrderUsecase) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status entity.OrderStatus) (*entity.Order, error) {
	return m.order(m.Called(ctx, orderID, status))
}

func (m *mockOrderUsecase) ReceiptQR(ctx context.Context, userID, orderID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, userID, orderID)
	out, _ := args.Get(0).([]byte)

	return out, args.Error(1)
}

func (m *mockOrderUsecase) LookupReceipt(ctx context.Context, qrData string) (*entity.Order, error) {
	return m.order(m.Called(ctx, qrData))
}

type mockWishlistUsecase struct{ mock.Mock }

func (m *mockWishlistUsecase) status(args mock.Arguments) (*usecase.WishlistStatus, error) {
	out, _ := args.Get(0).(*usecase.WishlistStatus)

	return out, args.Error(1)
}

func (m *mockWishlistUsecase) List(ctx context.Context, userID uuid.UUID) ([]*entity.WishlistItem, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]*entity.WishlistItem)

	return out, args.Error(1)
}

func (m *mockWishlistUsecase) Add(ctx context.Context, userID, productID uuid.UUID) (*usecase.WishlistStatus, error) {
	return m.status(m.Called(ctx, userID, productID))
}

func (m *mockWishlistUsecase) Remove(ctx context.Context, userID, productID uuid.UUID) (*usecase.WishlistStatus, error) {
	return m.status(m.Called(ctx, userID, productID))
}

func (m *mockWishlistUsecase) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, productID)

	return args.Bool(0), args.Error(1)
}

func (m *mockWishlistUsecase) Toggle(ctx context.Context, userID, productID uuid.UUID) (*usecase.WishlistStatus, error) {
	return m.status(m.Called(ctx, userID, productID))
}

// fakeIdentity resolves bearer tokens through the real token service and knows one guest.
type fakeIdentity struct {
	tokens service.TokenService
	guest  *entity.GuestIdentity
	minted int
}

func (f *fakeIdentity) Resolve(ctx context.Context, input *usecase.ResolveIdentityInput) (*usecase.ResolvedIdentity, error) {
	resolved := &usecase.ResolvedIdentity{}
	if input.BearerToken != "" {
		if claims, err := f.tokens.ValidateToken(input.BearerToken); err == nil && claims.Type == service.TokenTypeAccess {
			resolved.Owner = entity.UserOwner(claims.UserID)
			resolved.Roles = entity.RolesFromStrings(claims.Roles)
		}
	}

	guest, _ := f.ResolveGuest(ctx, input.GuestToken)
	resolved.Guest = guest
	resolved.StaleGuestToken = input.GuestToken != "" && guest == nil
	if resolved.Owner.IsZero() && guest != nil {
		resolved.Owner = entity.GuestOwner(guest.ID)
	}

	return resolved, nil
}

func (f *fakeIdentity) ResolveGuest(_ context.Context, token string) (*entity.GuestIdentity, error) {
	if token == "" || token != f.guest.SessionToken {
		return nil, nil
	}

	return f.guest, nil
}

func (f *fakeIdentity) MintGuest(context.Context) (*entity.GuestIdentity, error) {
	f.minted++

	return &entity.GuestIdentity{
		ID:           uuid.New(),
		SessionToken: "minted-token",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

type harness struct {
	e        *echo.Echo
	tokens   service.TokenService
	identity *fakeIdentity
	users    *mockUserUsecase
	carts    *mockCartUsecase
	checkout *mockCheckoutUsecase
	orders   *mockOrderUsecase
	wishlist *mockWishlistUsecase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &config.Config{
		GuestSession: &config.GuestSessionConfig{CookieName: "guest_session", TTL: time.Hour, Secure: true},
	}
	cfg.SecretKey.Access = "access-secret"
	cfg.SecretKey.Refresh = "refresh-secret"

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{
		e:      echo.New(),
		tokens: tokens,
		identity: &fakeIdentity{tokens: tokens, guest: &entity.GuestIdentity{
			ID:           uuid.New(),
			SessionToken: testGuestToken,
			ExpiresAt:    time.Now().Add(time.Hour),
		}},
		users:    &mockUserUsecase{},
		carts:    &mockCartUsecase{},
		checkout: &mockCheckoutUsecase{},
		orders:   &mockOrderUsecase{},
		wishlist: &mockWishlistUsecase{},
	}

	identityMiddleware := apimiddleware.NewIdentityMiddleware(h.identity, cfg, logger)
	h.e.Validator = validator.New()
	h.e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(logger).HandleHTTPError

	NewRouter(RouterParams{
		AuthHandler:        handler.NewAuthHandler(h.users, identityMiddleware, logger),
		CartHandler:        handler.NewCartHandler(h.carts),
		CheckoutHandler:    handler.NewCheckoutHandler(h.checkout, h.orders, logger),
		OrderHandler:       handler.NewOrderHandler(h.orders),
		SessionHandler:     handler.NewSessionHandler(),
		WishlistHandler:    handler.NewWishlistHandler(h.wishlist),
		AuthMiddleware:     apimiddleware.NewAuthMiddleware(tokens),
		IdentityMiddleware: identityMiddleware,
	}).RegisterRoutes(h.e)

	return h
}

// bearer issues an access token for a user with the given roles.
func (h *harness) bearer(t *testing.T, userID uuid.UUID, roles ...entity.Role) string {
	t.Helper()

	access, _, err := h.tokens.GenerateTokens(userID, entity.Roles(roles).ToStrings())
	require.NoError(t, err)

	return "Bearer " + access
}

type requestOption func(*http.Request)

func withBearer(token string) requestOption {
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, token) }
}

func withGuestCookie(value string) requestOption {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "guest_session", Value: value}) }
}

func (h *harness) do(method, target, body string, opts ...requestOption) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)

	return rec
}

func guestCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "guest_session" {
			return cookie
		}
	}

	return nil
}
