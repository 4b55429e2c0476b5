package repository

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrGuestNotFound is returned when no guest identity matches the token or id.
var ErrGuestNotFound = errors.New("guest identity not found")

// GuestRepository persists anonymous guest identities.
type GuestRepository interface {
	Create(ctx context.Context, guest *entity.GuestIdentity) error

	// FindByToken looks up the identity behind a session cookie value.
	FindByToken(ctx context.Context, token string) (*entity.GuestIdentity, error)

	FindByID(ctx context.Context, id uuid.UUID) (*entity.GuestIdentity, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
