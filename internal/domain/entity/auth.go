package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProviderType names the way a user proves their identity.
type ProviderType string

const (
	// ProviderTypeEmail is email and password sign-in.
	ProviderTypeEmail ProviderType = "email"
	// ProviderTypeGoogle is Google Sign-In via ID token.
	ProviderTypeGoogle ProviderType = "google"
)

// Authentication represents a single method of logging in (a credential).
// For example, a user's email/password is one record, while a linked Google account is another.
type Authentication struct {
	ID             uuid.UUID    // The unique ID for this specific authentication record itself.
	UserID         uuid.UUID    // Links this authentication method to the User it belongs to.
	Provider       ProviderType // The authentication provider.
	ProviderUserID string       // Email for the email provider, the 'sub' claim for Google.
	PasswordHash   string       // bcrypt hash, only used when the Provider is "email".
	CreatedAt      time.Time
}

// RefreshToken represents a long-lived, authorized user session.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string // SHA-256 of the raw token; the raw token is never stored
	ExpiresAt time.Time
	CreatedAt time.Time
}
