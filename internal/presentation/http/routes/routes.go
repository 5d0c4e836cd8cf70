package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-billing-api/internal/config"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/handler"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/middleware"
	"github.com/sangkips/salon-billing-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth       *handler.AuthHandler
	Catalog    *handler.CatalogHandler
	Customer   *handler.CustomerHandler
	Settings   *handler.SettingsHandler
	Billing    *handler.BillingHandler
	Invoice    *handler.InvoiceHandler
	Report     *handler.ReportHandler
	Printer    *handler.PrinterHandler
	Employee   *handler.EmployeeHandler
	Attendance *handler.AttendanceHandler
	Finance    *handler.FinanceHandler
	Dashboard  *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.RateLimiter
	Logger          *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))
	router.Use(middleware.Notifications(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfigFor(deps.Cfg.RateLimit.Requests, deps.Cfg.RateLimit.Duration))
	}

	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		public := v1.Group("")
		public.Use(rateLimiter.Middleware())
		registerAuthRoutes(public, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps, logger)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps, logger *zap.Logger) {
	protected.GET("/auth/me", h.Auth.Me)

	// Settings
	protected.GET("/settings", h.Settings.GetSettings)
	protected.PUT("/settings", middleware.RequireRole(entity.RoleAdmin), h.Settings.UpdateSettings)

	registerCatalogRoutes(protected, h)
	registerCustomerRoutes(protected, h)
	registerBillingRoutes(protected, h, middleware.IdempotencyConfig{
		Repo:   deps.IdempotencyRepo,
		Logger: logger,
	})
	registerInvoiceRoutes(protected, h)
	registerReportRoutes(protected, h)
	registerPrinterRoutes(protected, h)
	registerStaffRoutes(protected, h)
	registerFinanceRoutes(protected, h)

	protected.GET("/dashboard/stats", h.Dashboard.GetStats)
}

func registerCatalogRoutes(protected *gin.RouterGroup, h *Handlers) {
	catalog := protected.Group("/catalog")
	{
		catalog.GET("/services", h.Catalog.ListServices)
		catalog.POST("/services", h.Catalog.CreateService)
		catalog.PUT("/services/:id", h.Catalog.UpdateService)

		catalog.GET("/products", h.Catalog.ListProducts)
		catalog.POST("/products", h.Catalog.CreateProduct)
		catalog.PUT("/products/:id", h.Catalog.UpdateProduct)
	}
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
	}
}

func registerBillingRoutes(protected *gin.RouterGroup, h *Handlers, idem middleware.IdempotencyConfig) {
	sessions := protected.Group("/billing/sessions")
	{
		sessions.POST("", h.Billing.OpenSession)
		sessions.GET("/:id", h.Billing.GetSession)
		sessions.DELETE("/:id", h.Billing.CloseSession)

		sessions.POST("/:id/items", h.Billing.AddItem)
		sessions.PUT("/:id/items/:index", h.Billing.SetQuantity)
		sessions.DELETE("/:id/items/:index", h.Billing.RemoveLine)
		sessions.DELETE("/:id/items", h.Billing.ClearCart)

		sessions.PUT("/:id/tax", h.Billing.SetTax)
		sessions.PUT("/:id/discount", h.Billing.SetDiscount)
		sessions.PUT("/:id/customer", h.Billing.SelectCustomer)
		sessions.DELETE("/:id/customer", h.Billing.ClearCustomer)

		// Invoice and payment creation replay on a repeated Idempotency-Key
		sessions.POST("/:id/checkout", middleware.IdempotencyRequired(idem), h.Billing.Checkout)
		sessions.POST("/:id/payments", middleware.IdempotencyRequired(idem), h.Billing.RecordPayment)
		sessions.POST("/:id/pay-later", h.Billing.PayLater)
	}
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers) {
	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.GET("/:id/payments", h.Invoice.ListPayments)
		invoices.GET("/:id/receipt", h.Printer.GetReceipt)
		invoices.POST("/:id/print", h.Printer.PrintReceipt)
		invoices.GET("/:id/items/export", h.Report.ExportInvoiceItems)
	}
}

func registerReportRoutes(protected *gin.RouterGroup, h *Handlers) {
	reports := protected.Group("/reports")
	{
		reports.GET("/invoices/export", h.Report.ExportInvoices)
		reports.GET("/customers/export", h.Report.ExportCustomers)
		reports.GET("/attendance/export", h.Report.ExportAttendance)
		reports.GET("/sales/export", h.Report.ExportSales)
		reports.GET("/profit-loss/export", h.Report.ExportProfitLoss)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printerGroup := protected.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
	}
}

func registerStaffRoutes(protected *gin.RouterGroup, h *Handlers) {
	employees := protected.Group("/employees")
	employees.Use(middleware.RequireRole(entity.RoleAdmin))
	{
		employees.GET("", h.Employee.List)
		employees.POST("", h.Employee.Create)
		employees.GET("/:id", h.Employee.Get)
		employees.PUT("/:id", h.Employee.Update)
		employees.DELETE("/:id", h.Employee.Delete)
	}

	attendance := protected.Group("/attendance")
	{
		attendance.GET("", h.Attendance.List)
		attendance.GET("/today", h.Attendance.Today)
		attendance.POST("/check-in", h.Attendance.CheckIn)
		attendance.POST("/check-out", h.Attendance.CheckOut)
	}
}

func registerFinanceRoutes(protected *gin.RouterGroup, h *Handlers) {
	finance := protected.Group("/finance")
	{
		finance.GET("/summary", h.Finance.Summary)
		finance.GET("/expenses", h.Finance.ListExpenses)
		finance.POST("/expenses", h.Finance.CreateExpense)
		finance.DELETE("/expenses/:id", h.Finance.DeleteExpense)
	}
}
