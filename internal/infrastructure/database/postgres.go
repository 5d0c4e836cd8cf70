package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/sangkips/salon-billing-api/internal/config"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		// Staff
		&entity.User{},
		&entity.Attendance{},

		// Catalog
		&entity.Service{},
		&entity.Product{},

		&entity.Customer{},

		// Billing
		&entity.Invoice{},
		&entity.InvoiceItem{},
		&entity.Payment{},
		&entity.Expense{},

		// System
		&entity.BusinessSettings{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedDefaultData creates the business settings row and the configured
// admin account when they do not exist yet.
func SeedDefaultData(ctx context.Context, db *gorm.DB, admin config.AdminConfig, log *zap.Logger) error {
	db = db.WithContext(ctx)

	var settingsCount int64
	if err := db.Model(&entity.BusinessSettings{}).Count(&settingsCount).Error; err != nil {
		return fmt.Errorf("failed to count settings: %w", err)
	}
	if settingsCount == 0 {
		if err := db.Create(entity.DefaultBusinessSettings()).Error; err != nil {
			return fmt.Errorf("failed to create default settings: %w", err)
		}
		log.Info("default business settings created")
	}

	if admin.Email == "" || admin.Password == "" {
		return nil
	}

	var existing int64
	if err := db.Model(&entity.User{}).Where("email = ?", strings.ToLower(admin.Email)).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	if existing > 0 {
		log.Debug("admin user already exists", zap.String("email", admin.Email))
		return nil
	}

	hashed, err := utils.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	name := admin.Name
	if name == "" {
		name = "Administrator"
	}
	user := entity.User{
		Name:     name,
		Email:    strings.ToLower(admin.Email),
		Password: hashed,
		Role:     entity.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Info("admin user created", zap.String("email", admin.Email))
	return nil
}
