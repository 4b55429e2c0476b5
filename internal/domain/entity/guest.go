package entity

import (
	"time"

	"github.com/google/uuid"
)

// GuestIdentity is an anonymous, cookie-backed session that can own one cart.
type GuestIdentity struct {
	ID           uuid.UUID
	SessionToken string // opaque cookie value, unique
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// IsExpired reports whether the identity is no longer usable at now.
func (g *GuestIdentity) IsExpired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}
