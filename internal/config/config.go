package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Consistency modes for the invoice workflow
const (
	ConsistencyTransactional = "transactional"
	ConsistencySequential    = "sequential"
)

type Config struct {
	App       AppConfig
	Log       LogConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Billing   BillingConfig
	Session   SessionConfig
	Printer   PrinterConfig
	Admin     AdminConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type LogConfig struct {
	Level string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// BillingConfig holds the invoice workflow policies
type BillingConfig struct {
	Consistency        string
	AllowNegativeTotal bool
	AllowZeroPayment   bool
	InvoicePrefix      string
	InvoiceNodeID      int64
}

type SessionConfig struct {
	TTL         time.Duration
	MaxSessions int
}

type PrinterConfig struct {
	Type    string
	USBPath string
	Address string
	Width   int
}

type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	setDefaults()

	cfg := &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Billing: BillingConfig{
			Consistency:        viper.GetString("INVOICE_CONSISTENCY"),
			AllowNegativeTotal: viper.GetBool("BILLING_ALLOW_NEGATIVE_TOTAL"),
			AllowZeroPayment:   viper.GetBool("BILLING_ALLOW_ZERO_PAYMENT"),
			InvoicePrefix:      viper.GetString("INVOICE_PREFIX"),
			InvoiceNodeID:      viper.GetInt64("INVOICE_NODE_ID"),
		},
		Session: SessionConfig{
			TTL:         time.Duration(viper.GetInt("SESSION_TTL_MINUTES")) * time.Minute,
			MaxSessions: viper.GetInt("SESSION_MAX"),
		},
		Printer: PrinterConfig{
			Type:    viper.GetString("PRINTER_TYPE"),
			USBPath: viper.GetString("PRINTER_USB_PATH"),
			Address: viper.GetString("PRINTER_ADDRESS"),
			Width:   viper.GetInt("PRINTER_WIDTH"),
		},
		Admin: AdminConfig{
			Name:     viper.GetString("ADMIN_NAME"),
			Email:    viper.GetString("ADMIN_EMAIL"),
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
	}

	if err := cfg.Billing.Validate(); err != nil {
		log.Printf("Warning: %v, falling back to %s", err, ConsistencyTransactional)
		cfg.Billing.Consistency = ConsistencyTransactional
	}

	return cfg
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "salon-billing-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "salon")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("INVOICE_CONSISTENCY", ConsistencyTransactional)
	viper.SetDefault("BILLING_ALLOW_NEGATIVE_TOTAL", true)
	viper.SetDefault("BILLING_ALLOW_ZERO_PAYMENT", true)
	viper.SetDefault("INVOICE_PREFIX", "INV")
	viper.SetDefault("INVOICE_NODE_ID", 1)
	viper.SetDefault("SESSION_TTL_MINUTES", 120)
	viper.SetDefault("SESSION_MAX", 1024)
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_WIDTH", 32)
}

// Validate checks the billing policy values
func (c *BillingConfig) Validate() error {
	switch c.Consistency {
	case ConsistencyTransactional, ConsistencySequential:
		return nil
	default:
		return fmt.Errorf("unknown INVOICE_CONSISTENCY %q", c.Consistency)
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
