// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterUserInput defines the data required to register a new user.
// GuestID is uuid.Nil when the request carried no live guest session.
type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
	GuestID  uuid.UUID
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
	GuestID  uuid.UUID
}

// GoogleCallbackInput carries the ID token produced by Google Sign-In on the client.
type GoogleCallbackInput struct {
	IDToken string
	GuestID uuid.UUID
}

// RefreshTokenInput defines the data required to refresh an access token.
type RefreshTokenInput struct {
	RefreshToken string
}

// LogoutInput defines the data required to end a session.
type LogoutInput struct {
	RefreshToken string
}

// --- Output DTOs ---

// AuthOutput is returned by every sign-in and sign-up path.
type AuthOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User

	// GuestMerged reports that the guest cart was folded into the user's cart and
	// the guest session no longer exists. When false with a guest present, the
	// guest session is still valid and the merge will be retried on the next sign-in.
	GuestMerged  bool
	MergeOutcome string
}

// RefreshTokenOutput returns a freshly issued access token.
type RefreshTokenOutput struct {
	AccessToken string
}

// UserUsecase defines the interface for user-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	RegisterUser(ctx context.Context, input *RegisterUserInput) (*AuthOutput, error)
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
	GoogleCallback(ctx context.Context, input *GoogleCallbackInput) (*AuthOutput, error)
	RefreshToken(ctx context.Context, input *RefreshTokenInput) (*RefreshTokenOutput, error)
	Logout(ctx context.Context, input *LogoutInput) error
	LogoutAllDevices(ctx context.Context, userID uuid.UUID) error
}
