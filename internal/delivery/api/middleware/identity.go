package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const contextKeyIdentity = "identity"

// IdentityMiddleware resolves the cart owner of a request: a valid access token wins,
// otherwise the guest session cookie.
type IdentityMiddleware struct {
	identity usecase.IdentityUsecase
	cookie   config.GuestSessionConfig
	logger   *slog.Logger
}

// NewIdentityMiddleware is the constructor for IdentityMiddleware.
func NewIdentityMiddleware(identity usecase.IdentityUsecase, cfg *config.Config, logger *slog.Logger) *IdentityMiddleware {
	cookie := config.GuestSessionConfig{CookieName: "guest_session", TTL: 7 * 24 * time.Hour, Secure: true}
	if cfg.GuestSession != nil {
		cookie = *cfg.GuestSession
	}

	return &IdentityMiddleware{identity: identity, cookie: cookie, logger: logger}
}

// Resolve stores the request's identity on the context. It never rejects a request;
// handlers that need an owner call EnsureOwner.
func (m *IdentityMiddleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &usecase.ResolveIdentityInput{BearerToken: BearerToken(c)}
		if cookie, err := c.Cookie(m.cookie.CookieName); err == nil {
			input.GuestToken = cookie.Value
		}

		resolved, err := m.identity.Resolve(c.Request().Context(), input)
		if err != nil {
			return errors.Wrap(err, "failed to resolve identity")
		}
		if resolved.StaleGuestToken {
			m.ClearGuestCookie(c)
		}

		c.Set(contextKeyIdentity, resolved)
		if !resolved.Owner.IsZero() {
			ctx := deliverycontext.WithLogAttrs(c.Request().Context(), m.logger, slog.String("owner", resolved.Owner.String()))
			c.SetRequest(c.Request().WithContext(ctx))
		}

		return next(c)
	}
}

// EnsureOwner mints a guest identity for requests that have no owner yet, so a cart
// write always has somewhere to land. It must be used AFTER Resolve.
func (m *IdentityMiddleware) EnsureOwner(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		resolved := Identity(c)
		if resolved == nil {
			return domainerrors.ErrInternalError.WrapMessage("identity not resolved")
		}

		if resolved.Owner.IsZero() {
			guest, err := m.identity.MintGuest(c.Request().Context())
			if err != nil {
				return errors.Wrap(err, "failed to mint guest identity")
			}
			m.SetGuestCookie(c, guest)
			resolved.Guest = guest
			resolved.Owner = entity.GuestOwner(guest.ID)

			deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).
				Info("Guest session started", slog.Any("guestID", guest.ID))
		}

		return next(c)
	}
}

// SetGuestCookie issues the session cookie for a guest identity.
func (m *IdentityMiddleware) SetGuestCookie(c echo.Context, guest *entity.GuestIdentity) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookie.CookieName,
		Value:    guest.SessionToken,
		Path:     "/",
		Expires:  guest.ExpiresAt,
		MaxAge:   int(m.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearGuestCookie expires the session cookie in the browser.
func (m *IdentityMiddleware) ClearGuestCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookie.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Identity returns what Resolve stored, or nil.
func Identity(c echo.Context) *usecase.ResolvedIdentity {
	resolved, _ := c.Get(contextKeyIdentity).(*usecase.ResolvedIdentity)

	return resolved
}
