package handler

import (
	"context"
	"net/http"

	"storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/response"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type addWishlistRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}

// WishlistHandler serves the signed-in user's saved products.
type WishlistHandler struct {
	uc usecase.WishlistUsecase
}

// NewWishlistHandler is the constructor for WishlistHandler, injected by Fx.
func NewWishlistHandler(uc usecase.WishlistUsecase) *WishlistHandler {
	return &WishlistHandler{uc: uc}
}

// List returns the user's wishlist, newest first.
func (h *WishlistHandler) List(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}

	items, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	data := make([]wishlistItemResponse, 0, len(items))
	for _, item := range items {
		data = append(data, presentWishlistItem(item))
	}

	return response.Success(c, http.StatusOK, data)
}

// Add saves a product. Saving it twice is not an error.
func (h *WishlistHandler) Add(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}
	var req addWishlistRequest
	if err := bindAndValidate(c, &req, "Invalid wishlist input"); err != nil {
		return err
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("productId must be a UUID")
	}

	status, err := h.uc.Add(c.Request().Context(), userID, productID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, presentWishlistStatus(status))
}

func (h *WishlistHandler) Remove(c echo.Context) error {
	return h.productAction(c, h.uc.Remove)
}

func (h *WishlistHandler) Toggle(c echo.Context) error {
	return h.productAction(c, h.uc.Toggle)
}

// Contains answers whether the product is saved.
func (h *WishlistHandler) Contains(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}
	productID, err := pathUUID(c, "productId")
	if err != nil {
		return err
	}

	found, err := h.uc.Contains(c.Request().Context(), userID, productID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, wishlistStatusResponse{ProductID: productID, InWishlist: found})
}

func (h *WishlistHandler) productAction(c echo.Context, action func(ctx context.Context, userID, productID uuid.UUID) (*usecase.WishlistStatus, error)) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return domainerrors.ErrUnauthorized
	}
	productID, err := pathUUID(c, "productId")
	if err != nil {
		return err
	}

	status, err := action(c.Request().Context(), userID, productID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, presentWishlistStatus(status))
}

func presentWishlistStatus(status *usecase.WishlistStatus) wishlistStatusResponse {
	return wishlistStatusResponse{ProductID: status.ProductID, InWishlist: status.InWishlist}
}
