package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salon-billing-api/internal/application/service"
	"github.com/sangkips/salon-billing-api/internal/config"
	"github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/internal/infrastructure/database"
	infraRepo "github.com/sangkips/salon-billing-api/internal/infrastructure/repository"
	"github.com/sangkips/salon-billing-api/internal/infrastructure/session"
	"github.com/sangkips/salon-billing-api/internal/infrastructure/tablestore"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/handler"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/middleware"
	"github.com/sangkips/salon-billing-api/internal/presentation/http/routes"
	"github.com/sangkips/salon-billing-api/pkg/logger"
	"github.com/sangkips/salon-billing-api/pkg/printer"
	"github.com/sangkips/salon-billing-api/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	appLogger, err := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Money is emitted as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, appLogger)
	if err != nil {
		appLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.AutoMigrate(db, appLogger); err != nil {
		appLogger.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := database.SeedDefaultData(ctx, db, cfg.Admin, appLogger); err != nil {
		appLogger.Warn("failed to seed default data", zap.Error(err))
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	numbers, err := utils.NewInvoiceNumberGenerator(cfg.Billing.InvoicePrefix, cfg.Billing.InvoiceNodeID)
	if err != nil {
		appLogger.Fatal("failed to create invoice number generator", zap.Error(err))
	}

	// Initialize repositories
	userRepo := infraRepo.NewUserRepository(db)
	catalogRepo := infraRepo.NewCatalogRepository(db)
	customerRepo := infraRepo.NewCustomerRepository(db)
	invoiceRepo := infraRepo.NewInvoiceRepository(db)
	settingsRepo := infraRepo.NewSettingsRepository(db)
	idempotencyRepo := infraRepo.NewIdempotencyRepository(db)
	attendanceRepo := infraRepo.NewAttendanceRepository(db)
	expenseRepo := infraRepo.NewExpenseRepository(db)
	analyticsRepo := infraRepo.NewAnalyticsRepository(db)
	transactor := tablestore.NewTransactor(db)

	// Initialize thermal printer
	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		appLogger.Warn("failed to initialize printer", zap.Error(err))
		thermalPrinter = printer.Discard()
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	catalogService := service.NewCatalogService(catalogRepo)
	customerService := service.NewCustomerService(customerRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo)
	exportService := service.NewExportService(invoiceRepo, customerRepo, attendanceRepo, expenseRepo, analyticsRepo)
	employeeService := service.NewEmployeeService(userRepo)
	attendanceService := service.NewAttendanceService(attendanceRepo)
	financeService := service.NewFinanceService(expenseRepo, analyticsRepo)
	dashboardService := service.NewDashboardService(analyticsRepo, invoiceRepo)
	printerService := service.NewPrinterService(thermalPrinter, invoiceRepo, settingsRepo, cfg.Printer.Width, appLogger)
	billingService := service.NewBillingService(
		session.NewStore(cfg.Session.MaxSessions, cfg.Session.TTL),
		catalogRepo, customerRepo, invoiceRepo, settingsRepo, transactor,
		numbers,
		service.BillingPolicy{
			Consistency:        cfg.Billing.Consistency,
			AllowNegativeTotal: cfg.Billing.AllowNegativeTotal,
			AllowZeroPayment:   cfg.Billing.AllowZeroPayment,
		},
		appLogger,
	)

	handlers := &routes.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Catalog:    handler.NewCatalogHandler(catalogService),
		Customer:   handler.NewCustomerHandler(customerService),
		Settings:   handler.NewSettingsHandler(settingsService),
		Billing:    handler.NewBillingHandler(billingService),
		Invoice:    handler.NewInvoiceHandler(invoiceService),
		Report:     handler.NewReportHandler(exportService),
		Printer:    handler.NewPrinterHandler(printerService),
		Employee:   handler.NewEmployeeHandler(employeeService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Finance:    handler.NewFinanceHandler(financeService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFor(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Logger:          appLogger,
	})

	go purgeIdempotencyKeys(ctx, idempotencyRepo, time.Hour, appLogger)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("starting server",
			zap.String("app", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.String("consistency", cfg.Billing.Consistency),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// purgeIdempotencyKeys deletes expired idempotency keys until ctx is done
func purgeIdempotencyKeys(ctx context.Context, repo repository.IdempotencyRepository, every time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.DeleteExpired(ctx, now)
			if err != nil {
				log.Warn("failed to purge idempotency keys", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("purged idempotency keys", zap.Int64("count", n))
			}
		}
	}
}
