package service

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	"github.com/sangkips/salon-billing-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	db := testutil.NewMemDB()
	svc := NewDashboardService(db.Analytics(), db.InvoiceRepo())
	now := time.Date(2026, 7, 3, 16, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	db.AddUser(entity.User{Name: "Owner", IsActive: true})
	db.AddUser(entity.User{Name: "Former", IsActive: false})
	db.AddCustomer(entity.Customer{Name: "Asha", PhoneNumber: "9800000001"})
	db.AddService(entity.Service{Name: "Cut", IsActive: true})
	db.AddService(entity.Service{Name: "Perm", IsActive: false})
	db.AddProduct(entity.Product{Name: "Oil", StockQuantity: 2, LowStockThreshold: 5, IsActive: true})
	db.AddProduct(entity.Product{Name: "Gel", StockQuantity: 40, LowStockThreshold: 5, IsActive: true})

	db.AddInvoice(entity.Invoice{InvoiceNumber: "INV-1", TotalAmount: dec("500"), PaymentStatus: enum.PaymentStatusPaid, CreatedAt: now.Add(-2 * time.Hour)})
	db.AddInvoice(entity.Invoice{InvoiceNumber: "INV-2", TotalAmount: dec("300"), PaymentStatus: enum.PaymentStatusPending, CreatedAt: now.Add(-3 * time.Hour)})
	db.AddInvoice(entity.Invoice{InvoiceNumber: "INV-3", TotalAmount: dec("200"), PaymentStatus: enum.PaymentStatusPaid, CreatedAt: now.AddDate(0, 0, -2)})
	db.AddInvoice(entity.Invoice{InvoiceNumber: "INV-4", TotalAmount: dec("900"), PaymentStatus: enum.PaymentStatusPaid, CreatedAt: now.AddDate(0, 0, -10)})

	stats, err := svc.GetDashboardStats(context.Background(), true)
	require.NoError(t, err)
	assertMoney(t, "800", stats.TodayRevenue)
	assertMoney(t, "1000", stats.MonthlyRevenue)
	assert.Equal(t, int64(1), stats.TotalCustomers)
	assert.Equal(t, int64(4), stats.TotalInvoices)
	assert.Equal(t, int64(1), stats.PendingInvoices)
	assert.Equal(t, int64(1), stats.ActiveEmployees)
	assert.Equal(t, int64(1), stats.ActiveServices)
	assert.Equal(t, int64(2), stats.ActiveProducts)
	assert.Equal(t, int64(1), stats.LowStockProducts)

	require.Len(t, stats.DailyRevenue, 7)
	assert.Equal(t, "2026-06-27", stats.DailyRevenue[0].Date)
	assert.Equal(t, "2026-07-03", stats.DailyRevenue[6].Date)
	assertMoney(t, "800", stats.DailyRevenue[6].Revenue)
	assertMoney(t, "200", stats.DailyRevenue[4].Revenue)
	assertMoney(t, "0", stats.DailyRevenue[5].Revenue)

	staff, err := svc.GetDashboardStats(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, staff.ActiveEmployees)
	assert.Equal(t, int64(1), staff.ActiveServices)
}
