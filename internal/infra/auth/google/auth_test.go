package google

import (
	"context"
	"log/slog"
	"testing"

	"storefront/config"
	"storefront/internal/domain/entity"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func newTestAuthService(validate validateFunc) *AuthServiceImpl {
	cfg := &config.Config{GoogleOAuth: &config.GoogleOAuthConfig{ClientID: "test_client_id"}}
	svc := NewAuthService(cfg, slog.Default()).(*AuthServiceImpl)
	svc.validate = validate

	return svc
}

func TestAuthService_VerifyIDToken(t *testing.T) {
	var gotAudience string
	svc := newTestAuthService(func(_ context.Context, _ string, audience string) (*idtoken.Payload, error) {
		gotAudience = audience

		return &idtoken.Payload{
			Issuer:  "https://accounts.google.com",
			Subject: "google-sub-123",
			Claims: map[string]any{
				"email":          " Shopper@Example.com ",
				"name":           "Shopper",
				"email_verified": true,
			},
		}, nil
	})

	user, err := svc.VerifyIDToken(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "test_client_id", gotAudience)
	assert.Equal(t, "google-sub-123", user.ID)
	assert.Equal(t, "shopper@example.com", user.Email)
	assert.True(t, user.EmailVerified)
	assert.Equal(t, entity.ProviderTypeGoogle, user.Provider)
}

func TestAuthService_VerifyIDTokenRejects(t *testing.T) {
	tests := []struct {
		name    string
		payload *idtoken.Payload
		err     error
	}{
		{name: "bad signature", err: errors.New("idtoken: invalid signature")},
		{name: "foreign issuer", payload: &idtoken.Payload{Issuer: "https://evil.example", Subject: "x"}},
		{name: "no subject", payload: &idtoken.Payload{Issuer: "accounts.google.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAuthService(func(context.Context, string, string) (*idtoken.Payload, error) {
				return tt.payload, tt.err
			})

			user, err := svc.VerifyIDToken(context.Background(), "id-token")
			assert.Error(t, err)
			assert.Nil(t, user)
		})
	}
}

func TestAuthService_RequiresClientID(t *testing.T) {
	svc := NewAuthService(&config.Config{}, slog.Default())

	_, err := svc.VerifyIDToken(context.Background(), "id-token")
	assert.Error(t, err)
}

func TestClaimBool(t *testing.T) {
	assert.True(t, claimBool(map[string]any{"v": "true"}, "v"))
	assert.False(t, claimBool(map[string]any{"v": 1}, "v"))
	assert.False(t, claimBool(nil, "v"))
}

func TestAuthService_GetProvider(t *testing.T) {
	svc := NewAuthService(&config.Config{}, slog.Default())

	assert.Equal(t, entity.ProviderTypeGoogle, svc.GetProvider())
}
