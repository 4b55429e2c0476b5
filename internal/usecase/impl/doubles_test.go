package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/pricing"
	"storefront/internal/domain/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCalculator() *pricing.Calculator {
	settings, err := pricing.ParseSettings("usd", "100", "9.99", "0.08")
	if err != nil {
		panic(err)
	}

	return pricing.NewCalculator(settings)
}

func strPtr(s string) *string { return &s }

// recordingMetrics counts calls so tests can assert on business signals.
type recordingMetrics struct {
	mu              sync.Mutex
	mutations       map[string]int
	merges          map[string]int
	dropped         int
	ownerConflicts  int
	sessionsCreated int
	ordersPlaced    int
	orphaned        int
	wishlist        map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{mutations: map[string]int{}, merges: map[string]int{}, wishlist: map[string]int{}}
}

func (m *recordingMetrics) CartMutation(_ context.Context, op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations[op]++
}

func (m *recordingMetrics) MergeCompleted(_ context.Context, outcome string, dropped int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.merges[outcome]++
	m.dropped += dropped
}

func (m *recordingMetrics) OwnerConflict(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ownerConflicts++
}

func (m *recordingMetrics) CheckoutSessionCreated(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsCreated++
}

func (m *recordingMetrics) OrderPlaced(context.Context, int64, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ordersPlaced++
}

func (m *recordingMetrics) OrphanedPayment(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orphaned++
}

func (m *recordingMetrics) WishlistChange(_ context.Context, op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wishlist[op]++
}

// mockGateway is a testify mock of service.CheckoutGateway.
type mockGateway struct{ mock.Mock }

func (m *mockGateway) CreateSession(ctx context.Context, req *service.CheckoutSessionRequest) (*service.CheckoutSession, error) {
	args := m.Called(ctx, req)
	session, _ := args.Get(0).(*service.CheckoutSession)

	return session, args.Error(1)
}

func (m *mockGateway) RetrieveSession(ctx context.Context, sessionRef string) (*service.CheckoutSessionDetails, error) {
	args := m.Called(ctx, sessionRef)
	details, _ := args.Get(0).(*service.CheckoutSessionDetails)

	return details, args.Error(1)
}

func (m *mockGateway) ParseEvent(payload []byte, signature string) (*service.PaymentEvent, error) {
	args := m.Called(payload, signature)
	event, _ := args.Get(0).(*service.PaymentEvent)

	return event, args.Error(1)
}

// mockPublisher is a testify mock of service.EventPublisher.
type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, event *service.OrderPlacedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

// mockTokenService is a testify mock of service.TokenService.
type mockTokenService struct{ mock.Mock }

func (m *mockTokenService) GenerateTokens(userID uuid.UUID, roles []string) (string, string, error) {
	args := m.Called(userID, roles)

	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockTokenService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*service.Claims)

	return claims, args.Error(1)
}

func (m *mockTokenService) HashToken(token string) string {
	return "hash:" + token
}

func (m *mockTokenService) GetRefreshTokenDuration() time.Duration {
	return 24 * time.Hour
}

// mockHasher is a testify mock of service.PasswordHasher.
type mockHasher struct{ mock.Mock }

func (m *mockHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *mockHasher) Check(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

func (m *mockHasher) ValidatePasswordStrength(password string) error {
	return m.Called(password).Error(0)
}

// mockOAuth is a testify mock of service.OAuthAuthService.
type mockOAuth struct{ mock.Mock }

func (m *mockOAuth) VerifyIDToken(ctx context.Context, idToken string) (*service.OAuthUser, error) {
	args := m.Called(ctx, idToken)
	user, _ := args.Get(0).(*service.OAuthUser)

	return user, args.Error(1)
}

func (m *mockOAuth) GetProvider() entity.ProviderType { return entity.ProviderTypeGoogle }

// mockQRCode is a testify mock of service.QRCodeService.
type mockQRCode struct{ mock.Mock }

func (m *mockQRCode) GenerateOrderReceiptQR(orderID uuid.UUID) ([]byte, error) {
	args := m.Called(orderID)
	png, _ := args.Get(0).([]byte)

	return png, args.Error(1)
}

func (m *mockQRCode) ParseOrderReceiptQR(qrData string) (uuid.UUID, error) {
	args := m.Called(qrData)
	id, _ := args.Get(0).(uuid.UUID)

	return id, args.Error(1)
}

func decimalFromString(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
