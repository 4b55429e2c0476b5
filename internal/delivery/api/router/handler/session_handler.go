package handler

import (
	"net/http"
	"time"

	"storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/response"

	"github.com/labstack/echo/v4"
)

type sessionResponse struct {
	OwnerKind    string     `json:"ownerKind,omitempty"`
	UserID       string     `json:"userId,omitempty"`
	Roles        []string   `json:"roles,omitempty"`
	GuestSession bool       `json:"guestSession"`
	GuestExpires *time.Time `json:"guestExpiresAt,omitempty"`
}

// SessionHandler reports who a request acts as.
type SessionHandler struct{}

// NewSessionHandler creates a new SessionHandler instance
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Current describes the resolved identity. It never mints a guest.
func (h *SessionHandler) Current(c echo.Context) error {
	resp := sessionResponse{}
	if resolved := middleware.Identity(c); resolved != nil {
		if !resolved.Owner.IsZero() {
			resp.OwnerKind = string(resolved.Owner.Kind)
		}
		if resolved.Owner.IsUser() {
			resp.UserID = resolved.Owner.UserID.String()
			resp.Roles = resolved.Roles.ToStrings()
		}
		if resolved.Guest != nil {
			resp.GuestSession = true
			resp.GuestExpires = &resolved.Guest.ExpiresAt
		}
	}

	return response.Success(c, http.StatusOK, resp)
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}
