package routes

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"shopsphere/controllers"
	"shopsphere/middleware"
)

type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter builds the engine with the shared middleware chain and every
// API route.
func NewRouter(h *controllers.Controller, auth middleware.Authenticator, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	r := gin.New()
	r.SetTrustedProxies(nil)
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log), corsMiddleware(opts.CORSOrigins))
	r.Use(middleware.Timeout(opts.RequestTimeout))
	RegisterRoutes(r, h, auth)
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func RegisterRoutes(r *gin.Engine, h *controllers.Controller, auth middleware.Authenticator) {
	requireUser := middleware.AuthMiddleware(auth)
	requireAdmin := middleware.AdminMiddleware()

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.POST("/logout", requireUser, h.Logout)
		}

		products := api.Group("/products")
		{
			products.GET("", h.GetProducts)
			products.GET("/:slug", h.GetProduct)
			products.POST("/:slug/reviews", requireUser, h.CreateProductReview)
			products.POST("", requireUser, requireAdmin, h.CreateProduct)
			products.PUT("/:slug", requireUser, requireAdmin, h.UpdateProduct)
			products.DELETE("/:slug", requireUser, requireAdmin, h.DeleteProduct)
		}

		orders := api.Group("/orders", requireUser)
		{
			orders.POST("", h.Checkout)
			orders.GET("/myorders", h.GetMyOrders)
			orders.GET("/:id", h.GetOrderByID)
			orders.PUT("/:id/pay", h.PayOrder)
			orders.PUT("/:id/address", h.UpdateOrderAddress)
			orders.PUT("/:id/cancel", h.CancelOrder)
			orders.GET("", requireAdmin, h.GetOrdersAdmin)
		}

		pay := api.Group("/payment")
		{
			pay.POST("/create-payment-intent", requireUser, h.CreatePaymentIntent)
			pay.POST("/webhook", h.HandleWebhook)
		}

		shipping := api.Group("/shipping", requireUser)
		{
			shipping.POST("", requireAdmin, h.CreateShipping)
			shipping.PUT("/:id", requireAdmin, h.UpdateShippingStatus)
			shipping.GET("/:id", h.GetShipping)
			shipping.GET("/order/:orderId", h.GetShippingByOrder)
		}
	}
}
