// Package handler contains the HTTP handlers for the storefront API.
package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/response"
	deliverycontext "storefront/internal/delivery/context"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleCallbackRequest struct {
	IDToken string `json:"idToken" form:"id_token" validate:"required"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type authResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	User         *userResponse `json:"user"`
	GuestMerged  bool          `json:"guestMerged"`
	MergeOutcome string        `json:"mergeOutcome,omitempty"`
}

// AuthHandler serves sign-up, sign-in and token endpoints. Every sign-in path
// carries the guest session along so the guest cart can be merged.
type AuthHandler struct {
	uc       usecase.UserUsecase
	identity *middleware.IdentityMiddleware
	logger   *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.UserUsecase, identity *middleware.IdentityMiddleware, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, identity: identity, logger: logger}
}

// Register handles the account registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req, "Invalid registration input"); err != nil {
		return err
	}

	output, err := h.uc.RegisterUser(c.Request().Context(), &usecase.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		GuestID:  guestID(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return h.signedIn(c, http.StatusCreated, output)
}

// Login handles the email/password login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req, "Invalid login input"); err != nil {
		return err
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		GuestID:  guestID(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return h.signedIn(c, http.StatusOK, output)
}

// GoogleCallback accepts the ID token produced by Google Sign-In, as JSON or as
// the id_token form field.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	var req googleCallbackRequest
	if err := bindAndValidate(c, &req, "ID token is required"); err != nil {
		return err
	}

	output, err := h.uc.GoogleCallback(c.Request().Context(), &usecase.GoogleCallbackInput{
		IDToken: req.IDToken,
		GuestID: guestID(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return h.signedIn(c, http.StatusOK, output)
}

// RefreshToken handles the token refresh request.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshTokenRequest
	if err := bindAndValidate(c, &req, "Invalid refresh token input"); err != nil {
		return err
	}

	output, err := h.uc.RefreshToken(c.Request().Context(), &usecase.RefreshTokenInput{RefreshToken: req.RefreshToken})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"accessToken": output.AccessToken})
}

// Logout revokes a single refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshTokenRequest
	if err := bindAndValidate(c, &req, "Invalid logout input"); err != nil {
		return err
	}

	if err := h.uc.Logout(c.Request().Context(), &usecase.LogoutInput{RefreshToken: req.RefreshToken}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

// LogoutAll revokes every refresh token of the authenticated user.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}

	if err := h.uc.LogoutAllDevices(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Logged out of all devices"})
}

// signedIn clears the guest cookie once the guest cart has been merged; if the merge
// failed the cookie stays so the next sign-in can retry it.
func (h *AuthHandler) signedIn(c echo.Context, status int, output *usecase.AuthOutput) error {
	if output.GuestMerged {
		h.identity.ClearGuestCookie(c)
	} else if guestID(c) != uuid.Nil {
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger).Warn("Guest cart not merged at sign-in",
			slog.String("outcome", output.MergeOutcome))
	}

	return response.Success(c, status, authResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
		User:         presentUser(output.User),
		GuestMerged:  output.GuestMerged,
		MergeOutcome: output.MergeOutcome,
	})
}

// guestID is the live guest session of the request, if any.
func guestID(c echo.Context) uuid.UUID {
	resolved := middleware.Identity(c)
	if resolved == nil || resolved.Guest == nil {
		return uuid.Nil
	}

	return resolved.Guest.ID
}

func bindAndValidate(c echo.Context, req any, message string) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(message)
	}

	return errors.WithStack(c.Validate(req))
}
