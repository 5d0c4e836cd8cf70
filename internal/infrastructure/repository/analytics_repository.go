package repository

import (
	"context"
	"time"

	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/internal/infrastructure/tablestore"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	customers *tablestore.Table[entity.Customer]
	invoices  *tablestore.Table[entity.Invoice]
	users     *tablestore.Table[entity.User]
	services  *tablestore.Table[entity.Service]
	products  *tablestore.Table[entity.Product]
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{
		customers: tablestore.NewTable[entity.Customer](db),
		invoices:  tablestore.NewTable[entity.Invoice](db),
		users:     tablestore.NewTable[entity.User](db),
		services:  tablestore.NewTable[entity.Service](db),
		products:  tablestore.NewTable[entity.Product](db),
	}
}

func (r *analyticsRepository) CountCustomers(ctx context.Context) (int64, error) {
	return r.customers.Count(ctx)
}

func (r *analyticsRepository) CountInvoices(ctx context.Context, status *enum.PaymentStatus) (int64, error) {
	if status == nil {
		return r.invoices.Count(ctx)
	}
	return r.invoices.Count(ctx, tablestore.Eq("payment_status", *status))
}

func (r *analyticsRepository) CountActiveEmployees(ctx context.Context) (int64, error) {
	return r.users.Count(ctx, tablestore.Eq("is_active", true))
}

func (r *analyticsRepository) CountActiveServices(ctx context.Context) (int64, error) {
	return r.services.Count(ctx, tablestore.Eq("is_active", true))
}

func (r *analyticsRepository) GetStockSummary(ctx context.Context) (domainRepo.StockSummary, error) {
	var summary domainRepo.StockSummary
	active := tablestore.Eq("is_active", true)

	n, err := r.products.Count(ctx, active)
	if err != nil {
		return summary, err
	}
	summary.ActiveProducts = n

	low := tablestore.Filter{Column: "stock_quantity", Op: tablestore.OpLte, Value: gorm.Expr("low_stock_threshold")}
	n, err = r.products.Count(ctx, active, low)
	if err != nil {
		return summary, err
	}
	summary.LowStockProducts = n
	return summary, nil
}

func (r *analyticsRepository) GetRevenue(ctx context.Context, from, to *time.Time) (decimal.Decimal, error) {
	var filters []tablestore.Filter
	if from != nil {
		filters = append(filters, tablestore.Gte("created_at", *from))
	}
	if to != nil {
		filters = append(filters, tablestore.Lt("created_at", *to))
	}
	return r.invoices.Sum(ctx, "total_amount", filters...)
}
