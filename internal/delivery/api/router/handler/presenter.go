package handler

import (
	"strings"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/pricing"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Amounts leave the API as fixed two-decimal strings.

type totalsResponse struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type namedResponse struct {
	Name string `json:"name"`
}

// variantResponse mirrors the catalog join the storefront UI renders from.
type variantResponse struct {
	ID        uuid.UUID      `json:"id"`
	Price     string         `json:"price"`
	SalePrice *string        `json:"salePrice"`
	Product   *namedResponse `json:"product"`
	Color     *namedResponse `json:"color"`
	Size      *namedResponse `json:"size"`
}

// cartItemResponse carries the stored line plus its live variant. Variant is null
// for stale lines whose variant was deleted.
type cartItemResponse struct {
	ID               uuid.UUID        `json:"id"`
	ProductVariantID uuid.UUID        `json:"productVariantId"`
	Quantity         int              `json:"quantity"`
	Variant          *variantResponse `json:"variant"`
	UnitPrice        string           `json:"unitPrice,omitempty"`
	LineTotal        string           `json:"lineTotal,omitempty"`
	Stale            bool             `json:"stale,omitempty"`
}

type couponResponse struct {
	Code  string `json:"code"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type cartResponse struct {
	ID        uuid.UUID          `json:"id"`
	Items     []cartItemResponse `json:"items"`
	ItemCount int                `json:"itemCount"`
	Coupon    *couponResponse    `json:"coupon,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type orderItemResponse struct {
	VariantID   uuid.UUID `json:"variantId"`
	ProductName string    `json:"productName"`
	Color       string    `json:"color,omitempty"`
	Size        string    `json:"size,omitempty"`
	UnitPrice   string    `json:"unitPrice"`
	Quantity    int       `json:"quantity"`
	LineTotal   string    `json:"lineTotal"`
}

type orderResponse struct {
	ID              uuid.UUID             `json:"id"`
	Status          entity.OrderStatus    `json:"status"`
	SessionRef      string                `json:"sessionRef"`
	Totals          totalsResponse        `json:"totals"`
	CouponCode      string                `json:"couponCode,omitempty"`
	CustomerEmail   string                `json:"customerEmail,omitempty"`
	ShippingAddress *entity.PostalAddress `json:"shippingAddress,omitempty"`
	BillingAddress  *entity.PostalAddress `json:"billingAddress,omitempty"`
	Items           []orderItemResponse   `json:"items"`
	CreatedAt       time.Time             `json:"createdAt"`
}

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Roles []string  `json:"roles"`
}

func presentTotals(t pricing.Totals) totalsResponse {
	return totalsResponse{
		Subtotal: pricing.Present(t.Subtotal),
		Discount: pricing.Present(t.Discount),
		Shipping: pricing.Present(t.Shipping),
		Tax:      pricing.Present(t.Tax),
		Total:    pricing.Present(t.Total),
		Currency: t.Currency,
	}
}

// presentCart returns nil when the owner has no cart yet.
func presentCart(view *usecase.CartView) *cartResponse {
	if view == nil || view.Cart == nil {
		return nil
	}

	cart := &cartResponse{
		ID:        view.Cart.ID,
		Items:     make([]cartItemResponse, 0, len(view.Cart.Items)),
		ItemCount: view.Cart.ItemCount(),
		UpdatedAt: view.Cart.UpdatedAt,
	}
	for _, item := range view.Cart.Items {
		cart.Items = append(cart.Items, presentCartItem(item))
	}
	if view.Coupon != nil {
		cart.Coupon = &couponResponse{
			Code:  view.Coupon.Code,
			Kind:  string(view.Coupon.Kind),
			Value: view.Coupon.Value.String(),
		}
	}

	return cart
}

func presentCartItem(item *entity.CartLineItem) cartItemResponse {
	resp := cartItemResponse{
		ID:               item.ID,
		ProductVariantID: item.ProductVariantID,
		Quantity:         item.Quantity,
		Stale:            item.IsStale(),
	}
	if item.IsStale() {
		return resp
	}

	resp.Variant = presentVariant(item.Variant)
	if price, err := item.Variant.EffectivePrice(); err == nil {
		resp.UnitPrice = pricing.Present(price)
		resp.LineTotal = pricing.Present(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return resp
}

func presentVariant(variant *entity.ProductVariant) *variantResponse {
	resp := &variantResponse{
		ID:    variant.ID,
		Price: presentPrice(variant.Price),
	}
	if variant.SalePrice != nil && strings.TrimSpace(*variant.SalePrice) != "" {
		sale := presentPrice(*variant.SalePrice)
		resp.SalePrice = &sale
	}
	if variant.Product != nil {
		resp.Product = &namedResponse{Name: variant.Product.Name}
	}
	if variant.Color != nil {
		resp.Color = &namedResponse{Name: variant.Color.Name}
	}
	if variant.Size != nil {
		resp.Size = &namedResponse{Name: variant.Size.Name}
	}

	return resp
}

// presentPrice formats a catalog price string, passing through anything unparsable.
func presentPrice(raw string) string {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}

	return pricing.Present(price)
}

func presentOrder(order *entity.Order) orderResponse {
	resp := orderResponse{
		ID:         order.ID,
		Status:     order.Status,
		SessionRef: order.SessionRef,
		Totals: presentTotals(pricing.Totals{
			Subtotal: order.Subtotal,
			Discount: order.Discount,
			Shipping: order.Shipping,
			Tax:      order.Tax,
			Total:    order.Total,
			Currency: order.Currency,
		}),
		CouponCode:      order.CouponCode,
		CustomerEmail:   order.CustomerEmail,
		ShippingAddress: order.ShippingAddress,
		BillingAddress:  order.BillingAddress,
		Items:           make([]orderItemResponse, 0, len(order.Items)),
		CreatedAt:       order.CreatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			VariantID:   item.ProductVariantID,
			ProductName: item.ProductName,
			Color:       item.ColorName,
			Size:        item.SizeName,
			UnitPrice:   pricing.Present(item.UnitPrice),
			Quantity:    item.Quantity,
			LineTotal:   pricing.Present(item.LineTotal),
		})
	}

	return resp
}

func presentUser(user *entity.User) *userResponse {
	if user == nil {
		return nil
	}

	return &userResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Roles: user.Roles().ToStrings(),
	}
}

type wishlistProductResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price *string   `json:"price,omitempty"`
}

type wishlistItemResponse struct {
	ID        uuid.UUID               `json:"id"`
	ProductID uuid.UUID               `json:"productId"`
	AddedAt   time.Time               `json:"addedAt"`
	Product   wishlistProductResponse `json:"product"`
}

type wishlistStatusResponse struct {
	ProductID  uuid.UUID `json:"productId"`
	InWishlist bool      `json:"isInWishlist"`
}

// presentWishlistItem prices the entry from its first variant, sale price first.
func presentWishlistItem(item *entity.WishlistItem) wishlistItemResponse {
	resp := wishlistItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		AddedAt:   item.AddedAt,
		Product:   wishlistProductResponse{ID: item.ProductID},
	}
	if item.Product != nil {
		resp.Product.Name = item.Product.Name
	}
	if price, err := item.Variant.EffectivePrice(); err == nil {
		formatted := pricing.Present(price)
		resp.Product.Price = &formatted
	}

	return resp
}
