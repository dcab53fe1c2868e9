package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/MikeMC777/construmarket/internal/auth"
	_ "github.com/MikeMC777/construmarket/internal/docs"
	"github.com/MikeMC777/construmarket/internal/health"
	"github.com/MikeMC777/construmarket/internal/httpx"
	"github.com/MikeMC777/construmarket/internal/metrics"
	"github.com/MikeMC777/construmarket/internal/order"
	"github.com/MikeMC777/construmarket/internal/product"
	"github.com/MikeMC777/construmarket/internal/user"
)

// app bundles what the HTTP layer needs.
type app struct {
	log        *logrus.Logger
	users      *user.Service
	products   *product.Service
	orders     *order.Service
	gateway    *auth.Gateway
	health     *health.Checker
	metrics    *metrics.Registry
	corsOrigin string
}

func newRouter(a app) *gin.Engine {
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(a.log), httpx.Recovery(a.log), httpx.CORS(a.corsOrigin))
	if a.metrics != nil {
		r.Use(a.metrics.Middleware())
		r.GET("/metrics", gin.WrapH(a.metrics.Handler()))
	}

	r.GET("/health", a.health.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := auth.RequireAuth(a.gateway, a.log)

	api := r.Group("/api")
	api.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "ConstruMarket API",
			"version":   "1.0",
			"timestamp": time.Now().UTC(),
			"endpoints": gin.H{
				"auth":     "/api/auth",
				"products": "/api/products",
				"orders":   "/api/orders",
				"docs":     "/swagger/index.html",
			},
		})
	})

	authG := api.Group("/auth")
	authG.POST("/register", registerHandler(a.users, a.gateway, a.log))
	authG.POST("/login", loginHandler(a.users, a.gateway, a.log))
	authG.GET("/me", requireAuth, meHandler(a.users, a.log))
	authG.PUT("/profile", requireAuth, updateProfileHandler(a.users, a.log))
	authG.PUT("/change-password", requireAuth, changePasswordHandler(a.users, a.log))

	products := api.Group("/products")
	products.GET("", auth.OptionalAuth(a.gateway), listProductsHandler(a.products, a.log))
	products.GET("/categories", categoriesHandler(a.products, a.log))
	products.GET("/supplier/:supplierId", supplierProductsHandler(a.products, a.log))
	products.GET("/:id", getProductHandler(a.products, a.log))
	products.POST("", requireAuth, auth.RequireRoles(a.log, user.RoleSupplier), createProductHandler(a.products, a.log))
	products.PUT("/:id", requireAuth, updateProductHandler(a.products, a.log))
	products.DELETE("/:id", requireAuth, deleteProductHandler(a.products, a.log))

	orders := api.Group("/orders", requireAuth)
	orders.POST("", createOrderHandler(a.orders, a.log))
	orders.GET("", myOrdersHandler(a.orders, a.log))
	orders.GET("/all", auth.RequireRoles(a.log, user.RoleAdmin), allOrdersHandler(a.orders, a.log))
	orders.GET("/:id", getOrderHandler(a.orders, a.log))
	orders.PUT("/:id/status", auth.RequireRoles(a.log, user.RoleAdmin, user.RoleSupplier), updateOrderStatusHandler(a.orders, a.log))
	orders.PUT("/:id/cancel", cancelOrderHandler(a.orders, a.log))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, httpx.Envelope{Message: "Route not found"})
	})
	return r
}
