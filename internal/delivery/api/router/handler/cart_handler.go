package handler

import (
	"net/http"

	"storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/response"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type addItemRequest struct {
	VariantID string `json:"variantId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

type updateItemRequest struct {
	// Zero or less removes the line.
	Quantity int `json:"quantity"`
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// CartHandler serves the cart of whichever owner the identity middleware resolved.
type CartHandler struct {
	uc usecase.CartUsecase
}

// NewCartHandler is the constructor for CartHandler, injected by Fx.
func NewCartHandler(uc usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// GetCart returns the owner's cart; a request with no owner gets an empty cart.
func (h *CartHandler) GetCart(c echo.Context) error {
	view, err := h.uc.GetCart(c.Request().Context(), owner(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return renderCart(c, http.StatusOK, view)
}

// AddItem adds a variant, summing quantities if the variant is already in the cart.
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := bindAndValidate(c, &req, "Invalid cart item input"); err != nil {
		return err
	}
	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("variantId must be a UUID")
	}

	view, err := h.uc.AddItem(c.Request().Context(), owner(c), &usecase.AddItemInput{
		VariantID: variantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return renderCart(c, http.StatusOK, view)
}

// UpdateItem sets a line's quantity.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	itemID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req updateItemRequest
	if err := bindAndValidate(c, &req, "Invalid quantity"); err != nil {
		return err
	}

	view, err := h.uc.UpdateItem(c.Request().Context(), owner(c), itemID, req.Quantity)
	if err != nil {
		return errors.WithStack(err)
	}

	return renderCart(c, http.StatusOK, view)
}

// RemoveItem deletes one line.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	itemID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.uc.RemoveItem(c.Request().Context(), owner(c), itemID)
	if err != nil {
		return errors.WithStack(err)
	}

	return renderCart(c, http.StatusOK, view)
}

// ClearCart empties the cart named in the path, which must be the owner's.
func (h *CartHandler) ClearCart(c echo.Context) error {
	cartID, err := pathUUID(c, "cartId")
	if err != nil {
		return err
	}

	view, err := h.uc.Clear(c.Request().Context(), owner(c), cartID)
	if err != nil {
		return errors.WithStack(err)
	}

	return renderCart(c, http.StatusOK, view)
}

// ApplyCoupon attaches a redeemable coupon code.
func (h *CartHandler) ApplyCoupon(c echo.Context) error {
	var req applyCouponRequest
	if err := bindAndValidate(c, &req, "Invalid coupon input"); err != nil {
		return err
	}

	view, err := h.uc.ApplyCoupon(c.Request().Context(), owner(c), req.Code)
	if err != nil {
		return errors.WithStack(err)
	}

	return renderCart(c, http.StatusOK, view)
}

// RemoveCoupon detaches any coupon.
func (h *CartHandler) RemoveCoupon(c echo.Context) error {
	view, err := h.uc.RemoveCoupon(c.Request().Context(), owner(c))
	if err != nil {
		return errors.WithStack(err)
	}

	return renderCart(c, http.StatusOK, view)
}

func renderCart(c echo.Context, status int, view *usecase.CartView) error {
	return response.Cart(c, status, presentCart(view), presentTotals(view.Totals))
}

// owner is the zero CartOwner when the request has neither a user nor a guest session.
func owner(c echo.Context) entity.CartOwner {
	resolved := middleware.Identity(c)
	if resolved == nil {
		return entity.CartOwner{}
	}

	return resolved.Owner
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domainerrors.ErrValidationFailed.WithDetails(name + " must be a UUID")
	}

	return id, nil
}
