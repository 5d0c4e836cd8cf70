package repository

import (
	"context"
	"time"

	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// StockSummary counts active products and those at or below their threshold
type StockSummary struct {
	ActiveProducts   int64
	LowStockProducts int64
}

// AnalyticsRepository defines interface for aggregation queries
type AnalyticsRepository interface {
	CountCustomers(ctx context.Context) (int64, error)

	// CountInvoices counts invoices, optionally only those with status
	CountInvoices(ctx context.Context, status *enum.PaymentStatus) (int64, error)

	CountActiveEmployees(ctx context.Context) (int64, error)

	CountActiveServices(ctx context.Context) (int64, error)

	GetStockSummary(ctx context.Context) (StockSummary, error)

	// GetRevenue sums invoice totals created in [from, to). A nil bound is open.
	GetRevenue(ctx context.Context, from, to *time.Time) (decimal.Decimal, error)
}
