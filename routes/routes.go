package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Bishal-code0731/ecom/controllers"
	"github.com/Bishal-code0731/ecom/middleware"
	"github.com/Bishal-code0731/ecom/services"
)

type Controllers struct {
	Auth    *controllers.AuthController
	Product *controllers.ProductController
	Order   *controllers.OrderController
	Payment *controllers.PaymentController
}

// Register wires every route group onto the engine.
func Register(r *gin.Engine, ctrl Controllers, tokens *services.TokenService, auth *services.AuthService) {
	authenticated := middleware.Authenticate(tokens, auth)

	// Auth
	r.POST("/register", ctrl.Auth.Register)
	r.POST("/login", ctrl.Auth.Login)
	r.POST("/logout", authenticated, ctrl.Auth.Logout)
	r.GET("/user", authenticated, ctrl.Auth.Me)

	// Catalog: browsing is public, mutations are admin-only
	productRoutes := r.Group("/products")
	productRoutes.GET("", ctrl.Product.Index)
	productRoutes.GET("/:id", ctrl.Product.Show)

	adminProducts := productRoutes.Group("")
	adminProducts.Use(authenticated, middleware.AdminOnly())
	adminProducts.POST("", ctrl.Product.Store)
	adminProducts.PUT("/:id", ctrl.Product.Update)
	adminProducts.DELETE("/:id", ctrl.Product.Destroy)

	// Orders
	orderRoutes := r.Group("/orders")
	orderRoutes.Use(authenticated)
	orderRoutes.GET("", ctrl.Order.Index)
	orderRoutes.POST("", ctrl.Order.Store)
	orderRoutes.GET("/:id", ctrl.Order.Show)
	orderRoutes.PATCH("/:id/status", ctrl.Order.UpdateStatus)

	adminOrders := r.Group("/admin/orders")
	adminOrders.Use(authenticated, middleware.AdminOnly())
	adminOrders.GET("", ctrl.Order.AdminIndex)
	adminOrders.PUT("/:id", ctrl.Order.AdminUpdate)

	// Payments; the Stripe webhook authenticates by signature, not JWT
	paymentRoutes := r.Group("/payment")
	paymentRoutes.GET("/methods", ctrl.Payment.Methods)
	paymentRoutes.POST("/create-intent", authenticated, ctrl.Payment.CreateIntent)
	paymentRoutes.POST("/confirm", authenticated, ctrl.Payment.Confirm)
	paymentRoutes.POST("/webhook", ctrl.Payment.Webhook)
}
