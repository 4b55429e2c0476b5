package impl

import (
	"context"
	"log/slog"
	"time"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultGuestTTL = 7 * 24 * time.Hour

// identityService implements the IdentityUsecase interface.
type identityService struct {
	txManager    repository.TransactionManager
	guestRepo    repository.GuestRepository
	tokenService service.TokenService
	guestTTL     time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// IdentityServiceParams holds dependencies for IdentityService, injected by Fx.
type IdentityServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	GuestRepo    repository.GuestRepository
	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewIdentityService is the constructor for identityService.
func NewIdentityService(params IdentityServiceParams) usecase.IdentityUsecase {
	guestTTL := defaultGuestTTL
	if params.Config != nil && params.Config.GuestSession != nil && params.Config.GuestSession.TTL > 0 {
		guestTTL = params.Config.GuestSession.TTL
	}

	return &identityService{
		txManager:    params.TxManager,
		guestRepo:    params.GuestRepo,
		tokenService: params.TokenService,
		guestTTL:     guestTTL,
		now:          time.Now,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *identityService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Resolve picks the authenticated user when the access token is valid and otherwise
// falls back to the guest session.
func (srv *identityService) Resolve(ctx context.Context, input *usecase.ResolveIdentityInput) (*usecase.ResolvedIdentity, error) {
	resolved := &usecase.ResolvedIdentity{}

	if input.BearerToken != "" {
		claims, err := srv.tokenService.ValidateToken(input.BearerToken)
		switch {
		case err != nil:
			srv.log(ctx).Warn("Access token rejected, resolving as guest", slog.Any("error", err))
		case claims.Type != service.TokenTypeAccess:
			srv.log(ctx).Warn("Non-access token presented as bearer, resolving as guest", slog.String("type", claims.Type))
		default:
			resolved.Owner = entity.UserOwner(claims.UserID)
			resolved.Roles = entity.RolesFromStrings(claims.Roles)
		}
	}

	guest, err := srv.ResolveGuest(ctx, input.GuestToken)
	if err != nil {
		if !resolved.Owner.IsZero() {
			// The user is already known; a guest lookup failure must not block the request.
			srv.log(ctx).Warn("Guest lookup failed for authenticated request", slog.Any("error", err))

			return resolved, nil
		}

		return nil, errors.Wrap(err, "failed to resolve guest identity")
	}

	resolved.Guest = guest
	resolved.StaleGuestToken = input.GuestToken != "" && guest == nil
	if resolved.Owner.IsZero() && guest != nil {
		resolved.Owner = entity.GuestOwner(guest.ID)
	}

	return resolved, nil
}

// ResolveGuest maps a guest cookie value to a live identity.
func (srv *identityService) ResolveGuest(ctx context.Context, token string) (*entity.GuestIdentity, error) {
	if token == "" {
		return nil, nil
	}

	guest, err := srv.guestRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrGuestNotFound) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to find guest by token")
	}

	if !guest.IsExpired(srv.now()) {
		return guest, nil
	}

	if err := srv.expireGuest(ctx, guest.ID); err != nil {
		// Collection is lazy; a failed cleanup is retried on the next lookup.
		srv.log(ctx).Warn("Failed to collect expired guest", slog.Any("guestID", guest.ID), slog.Any("error", err))
	}

	return nil, nil
}

// expireGuest deletes an expired guest together with any cart it still owns.
func (srv *identityService) expireGuest(ctx context.Context, guestID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		cartRepo := repoFactory.NewCartRepository()
		guestRepo := repoFactory.NewGuestRepository()

		carts, err := cartRepo.FindByOwnerForUpdate(ctx, entity.GuestOwner(guestID))
		if err != nil {
			return errors.Wrap(err, "failed to find expired guest carts")
		}
		for _, cart := range carts {
			if err := cartRepo.Delete(ctx, cart.ID); err != nil {
				return errors.Wrap(err, "failed to delete expired guest cart")
			}
		}

		if err := guestRepo.Delete(ctx, guestID); err != nil && !errors.Is(err, repository.ErrGuestNotFound) {
			return errors.Wrap(err, "failed to delete expired guest")
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute guest expiry transaction")
	}

	srv.log(ctx).Info("Expired guest identity collected", slog.Any("guestID", guestID))

	return nil
}

// MintGuest creates a guest identity with a fresh opaque session token.
func (srv *identityService) MintGuest(ctx context.Context) (*entity.GuestIdentity, error) {
	now := srv.now()
	guest := &entity.GuestIdentity{
		ID:           uuid.New(),
		SessionToken: uuid.NewString(),
		ExpiresAt:    now.Add(srv.guestTTL),
		CreatedAt:    now,
	}

	if err := srv.guestRepo.Create(ctx, guest); err != nil {
		srv.log(ctx).Error("Failed to create guest identity", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create guest identity")
	}

	srv.log(ctx).Debug("Guest identity minted", slog.Any("guestID", guest.ID))

	return guest, nil
}
