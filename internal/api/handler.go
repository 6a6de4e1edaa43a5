package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"pos-terminal/internal/service"
	"pos-terminal/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services are the terminal components the HTTP layer drives.
type Services struct {
	Auth     *service.AuthService
	Products *service.ProductService
	Receipts *service.ReceiptService
	Audit    *service.AuditService
	Register *service.Register
	Checkout *service.CheckoutService
}

// ReadinessCheck reports whether an optional dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// Handler contains HTTP handlers
type Handler struct {
	auth     *service.AuthService
	products *service.ProductService
	receipts *service.ReceiptService
	audit    *service.AuditService
	register *service.Register
	checkout *service.CheckoutService
	feeder   service.CartFeeder
	checks   map[string]ReadinessCheck
	now      func() time.Time
}

// NewHandler creates a new HTTP handler
func NewHandler(s Services, checks map[string]ReadinessCheck) *Handler {
	return &Handler{
		auth:     s.Auth,
		products: s.Products,
		receipts: s.Receipts,
		audit:    s.Audit,
		register: s.Register,
		checkout: s.Checkout,
		feeder:   s.Register,
		checks:   checks,
		now:      time.Now,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(requestLogger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/login", h.login)
		auth.POST("/register", h.registerAccount)
		auth.POST("/logout", h.logout)
		auth.POST("/forgot-password", h.forgotPassword)
		auth.POST("/verify-reset-code", h.verifyResetCode)
		auth.POST("/reset-password", h.resetPassword)
		auth.GET("/me", h.me)

		products := v1.Group("/products")
		products.GET("", h.listProducts)
		products.POST("", h.createProduct)
		products.PUT("/:id", h.updateProduct)
		products.DELETE("/:id", h.deleteProduct)
		products.POST("/:id/add-to-cart", h.addToCart)

		carts := v1.Group("/carts")
		carts.GET("", h.listCarts)
		carts.POST("", h.newCart)
		carts.DELETE("/:index", h.closeCart)
		carts.PUT("/active", h.selectCart)
		carts.PUT("/active/note", h.setNote)
		carts.PUT("/active/payment-method", h.setPaymentMethod)
		carts.POST("/active/items/:index/increase", h.increaseQuantity)
		carts.POST("/active/items/:index/decrease", h.decreaseQuantity)
		carts.DELETE("/active/items/:index", h.removeItem)
		carts.POST("/active/checkout", h.checkoutActive)
		carts.POST("/active/qr/retry", h.retryQR)
		carts.POST("/active/qr/confirm", h.confirmQR)
		carts.DELETE("/active/qr", h.closeQR)

		v1.GET("/receipts", h.listReceipts)
		v1.GET("/receipts/:id", h.getReceipt)
		v1.DELETE("/receipts/:id", h.deleteReceipt)

		v1.GET("/auditlogs", h.listAuditLogs)

		reports := v1.Group("/reports")
		reports.GET("/revenue", h.revenueReport)
		reports.GET("/hot-products", h.hotProducts)
		reports.GET("/chart", h.revenueChart)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every configured dependency
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	components := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			components[name] = err.Error()
			continue
		}
		components[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	c.JSON(status, gin.H{
		"status":     state,
		"components": components,
		"time":       time.Now().Unix(),
	})
}

func parseIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "Dữ liệu không hợp lệ", "Vị trí không hợp lệ")
		return 0, false
	}
	return index, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		util.GetLogger().Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
