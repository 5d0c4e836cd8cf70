package service

import (
	"context"
	"time"

	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	"github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const dailyRevenueDays = 7

// DashboardService provides dashboard statistics
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	invoiceRepo   repository.InvoiceRepository
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(analyticsRepo repository.AnalyticsRepository, invoiceRepo repository.InvoiceRepository) *DashboardService {
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		invoiceRepo:   invoiceRepo,
		now:           time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TodayRevenue     decimal.Decimal     `json:"today_revenue"`
	MonthlyRevenue   decimal.Decimal     `json:"monthly_revenue"`
	TotalCustomers   int64               `json:"total_customers"`
	TotalInvoices    int64               `json:"total_invoices"`
	PendingInvoices  int64               `json:"pending_invoices"`
	ActiveEmployees  int64               `json:"active_employees"`
	ActiveServices   int64               `json:"active_services"`
	ActiveProducts   int64               `json:"active_products"`
	LowStockProducts int64               `json:"low_stock_products"`
	DailyRevenue     []DailyRevenuePoint `json:"daily_revenue"`
}

// DailyRevenuePoint is the invoiced total of one day
type DailyRevenuePoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// GetDashboardStats returns dashboard statistics. Employee counts are only
// reported to admins.
func (s *DashboardService) GetDashboardStats(ctx context.Context, isAdmin bool) (*DashboardStats, error) {
	now := s.now()
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &DashboardStats{}
	var err error

	if stats.TodayRevenue, err = s.analyticsRepo.GetRevenue(ctx, &today, &tomorrow); err != nil {
		return nil, err
	}
	if stats.MonthlyRevenue, err = s.analyticsRepo.GetRevenue(ctx, &monthStart, &tomorrow); err != nil {
		return nil, err
	}
	if stats.TotalCustomers, err = s.analyticsRepo.CountCustomers(ctx); err != nil {
		return nil, err
	}
	if stats.TotalInvoices, err = s.analyticsRepo.CountInvoices(ctx, nil); err != nil {
		return nil, err
	}
	pending := enum.PaymentStatusPending
	if stats.PendingInvoices, err = s.analyticsRepo.CountInvoices(ctx, &pending); err != nil {
		return nil, err
	}
	if isAdmin {
		if stats.ActiveEmployees, err = s.analyticsRepo.CountActiveEmployees(ctx); err != nil {
			return nil, err
		}
	}
	if stats.ActiveServices, err = s.analyticsRepo.CountActiveServices(ctx); err != nil {
		return nil, err
	}
	stock, err := s.analyticsRepo.GetStockSummary(ctx)
	if err != nil {
		return nil, err
	}
	stats.ActiveProducts = stock.ActiveProducts
	stats.LowStockProducts = stock.LowStockProducts

	if stats.DailyRevenue, err = s.dailyRevenue(ctx, today); err != nil {
		return nil, err
	}
	return stats, nil
}

// dailyRevenue buckets the invoices of the last week by day, oldest first
func (s *DashboardService) dailyRevenue(ctx context.Context, today time.Time) ([]DailyRevenuePoint, error) {
	start := today.AddDate(0, 0, -(dailyRevenueDays - 1))
	invoices, err := s.invoiceRepo.ListForExport(ctx, repository.InvoiceFilterParams{
		StartDate: &start,
		EndDate:   &today,
	})
	if err != nil {
		return nil, err
	}

	points := make([]DailyRevenuePoint, dailyRevenueDays)
	index := make(map[string]int, dailyRevenueDays)
	for i := range points {
		day := start.AddDate(0, 0, i).Format(time.DateOnly)
		points[i] = DailyRevenuePoint{Date: day, Revenue: decimal.Zero}
		index[day] = i
	}
	for _, inv := range invoices {
		if i, ok := index[inv.CreatedAt.In(today.Location()).Format(time.DateOnly)]; ok {
			points[i].Revenue = points[i].Revenue.Add(inv.TotalAmount)
		}
	}
	return points, nil
}
