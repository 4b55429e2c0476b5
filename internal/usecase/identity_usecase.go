package usecase

import (
	"context"

	"storefront/internal/domain/entity"
)

// ResolveIdentityInput is the raw request credential material.
type ResolveIdentityInput struct {
	BearerToken string // access token without the "Bearer " prefix, may be empty
	GuestToken  string // guest session cookie value, may be empty
}

// ResolvedIdentity is the single owner a request acts as.
type ResolvedIdentity struct {
	Owner entity.CartOwner
	Roles entity.Roles

	// Guest is set when the request carried a live guest session, even if a user
	// token took precedence for Owner.
	Guest *entity.GuestIdentity

	// StaleGuestToken is true when a guest cookie was sent but no longer maps to a
	// live identity; the caller should clear the cookie.
	StaleGuestToken bool
}

// IdentityUsecase turns request credentials into a cart owner.
type IdentityUsecase interface {
	// Resolve never fails because of a bad access token; it falls back to the guest session.
	Resolve(ctx context.Context, input *ResolveIdentityInput) (*ResolvedIdentity, error)

	// ResolveGuest returns the live guest identity for a cookie value, or nil when the
	// token is empty, unknown or expired. Expired identities are removed on lookup.
	ResolveGuest(ctx context.Context, token string) (*entity.GuestIdentity, error)

	// MintGuest creates a new guest identity. Nothing else creates guests.
	MintGuest(ctx context.Context) (*entity.GuestIdentity, error)
}
