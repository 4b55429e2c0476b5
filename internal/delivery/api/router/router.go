// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/router/handler"
	"storefront/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler        *handler.AuthHandler
	CartHandler        *handler.CartHandler
	CheckoutHandler    *handler.CheckoutHandler
	OrderHandler       *handler.OrderHandler
	SessionHandler     *handler.SessionHandler
	WishlistHandler    *handler.WishlistHandler
	AuthMiddleware     *middleware.AuthMiddleware
	IdentityMiddleware *middleware.IdentityMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler        *handler.AuthHandler
	cartHandler        *handler.CartHandler
	checkoutHandler    *handler.CheckoutHandler
	orderHandler       *handler.OrderHandler
	sessionHandler     *handler.SessionHandler
	wishlistHandler    *handler.WishlistHandler
	authMiddleware     *middleware.AuthMiddleware
	identityMiddleware *middleware.IdentityMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:        params.AuthHandler,
		cartHandler:        params.CartHandler,
		checkoutHandler:    params.CheckoutHandler,
		orderHandler:       params.OrderHandler,
		sessionHandler:     params.SessionHandler,
		wishlistHandler:    params.WishlistHandler,
		authMiddleware:     params.AuthMiddleware,
		identityMiddleware: params.IdentityMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	// Sign-in paths resolve the identity so a guest cart can be merged
	authGroup := e.Group("/auth", r.identityMiddleware.Resolve)
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.RefreshToken)
		authGroup.POST("/logout", r.authHandler.Logout)
		authGroup.POST("/logout/all", r.authHandler.LogoutAll, r.authMiddleware.Authenticate)
	}

	oauthGroup := e.Group("/oauth", r.identityMiddleware.Resolve)
	{
		oauthGroup.POST("/google/callback", r.authHandler.GoogleCallback)
	}

	// Signature-verified by the payment gateway, no session
	e.POST("/webhooks/payments", r.checkoutHandler.Webhook)

	apiV1 := e.Group("/api/v1")

	shopper := apiV1.Group("", r.identityMiddleware.Resolve)
	{
		shopper.GET("/session", r.sessionHandler.Current)
		shopper.GET("/cart", r.cartHandler.GetCart)
		shopper.GET("/checkout/success", r.checkoutHandler.Success)
	}

	// Writes mint a guest session when the request has no owner yet
	cartGroup := apiV1.Group("/cart", r.identityMiddleware.Resolve, r.identityMiddleware.EnsureOwner)
	{
		cartGroup.POST("/items", r.cartHandler.AddItem)
		cartGroup.PATCH("/items/:id", r.cartHandler.UpdateItem)
		cartGroup.DELETE("/items/:id", r.cartHandler.RemoveItem)
		cartGroup.POST("/coupon", r.cartHandler.ApplyCoupon)
		cartGroup.DELETE("/coupon", r.cartHandler.RemoveCoupon)
		cartGroup.DELETE("/:cartId", r.cartHandler.ClearCart)
	}

	apiV1.POST("/checkout", r.checkoutHandler.CreateCheckout, r.identityMiddleware.Resolve)

	ordersGroup := apiV1.Group("/orders", r.authMiddleware.Authenticate)
	{
		ordersGroup.GET("", r.orderHandler.ListOrders)
		ordersGroup.GET("/:id", r.orderHandler.GetOrder)
		ordersGroup.GET("/:id/qr", r.orderHandler.ReceiptQR)
	}

	wishlistGroup := apiV1.Group("/wishlist", r.authMiddleware.Authenticate)
	{
		wishlistGroup.GET("", r.wishlistHandler.List)
		wishlistGroup.POST("", r.wishlistHandler.Add)
		wishlistGroup.GET("/:productId", r.wishlistHandler.Contains)
		wishlistGroup.DELETE("/:productId", r.wishlistHandler.Remove)
		wishlistGroup.POST("/:productId/toggle", r.wishlistHandler.Toggle)
	}

	adminGroup := apiV1.Group("/admin", r.authMiddleware.Authenticate, r.authMiddleware.RequireRole(entity.RoleAdmin))
	{
		adminGroup.PATCH("/orders/:id/status", r.orderHandler.UpdateStatus)
		adminGroup.POST("/receipts/lookup", r.orderHandler.LookupReceipt)
	}
}
