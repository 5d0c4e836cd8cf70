package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// recorder opens a dry-run connection and collects the SQL of every
// statement built against it.
func recorder(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var statements []string
	capture := func(tx *gorm.DB) {
		statements = append(statements, tx.Dialector.Explain(tx.Statement.SQL.String(), tx.Statement.Vars...))
	}
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:capture_update", capture))
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture_query", capture))
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("test:capture_create", capture))
	return db, &statements
}

func TestDecrementStockIsConditional(t *testing.T) {
	db, statements := recorder(t)
	repo := NewCatalogRepository(db)

	_, _, err := repo.DecrementStock(context.Background(), uuid.New(), 2)
	require.NoError(t, err)

	require.NotEmpty(t, *statements)
	update := (*statements)[0]
	assert.Contains(t, update, `UPDATE "products"`)
	assert.Contains(t, update, "stock_quantity - 2")
	assert.Contains(t, update, "stock_quantity >= 2")
}

func TestIncrementVisitStatsUsesColumnExpressions(t *testing.T) {
	db, statements := recorder(t)
	repo := NewCustomerRepository(db)

	// dry run reports zero rows affected
	_ = repo.IncrementVisitStats(context.Background(), uuid.New(), decimal.RequireFromString("1012"), time.Now())

	require.NotEmpty(t, *statements)
	update := (*statements)[0]
	assert.Contains(t, update, "total_visits + 1")
	assert.Contains(t, update, "total_spent + ")
	assert.Contains(t, update, "1012")
}

func TestInvoiceListFilters(t *testing.T) {
	db, statements := recorder(t)
	repo := NewInvoiceRepository(db)

	status := enum.PaymentStatusPartial
	_, err := repo.ListForExport(context.Background(), domainRepo.InvoiceFilterParams{
		Search: "INV-7",
		Status: &status,
	})
	require.NoError(t, err)

	require.NotEmpty(t, *statements)
	query := (*statements)[0]
	assert.Contains(t, query, `FROM "invoices"`)
	assert.Contains(t, query, "invoice_number ILIKE '%INV-7%'")
	assert.Contains(t, query, "payment_status = 'partial'")
	assert.Contains(t, query, "ORDER BY created_at DESC")
}

func TestInvoiceItemsOrderedByPosition(t *testing.T) {
	db, statements := recorder(t)
	repo := NewInvoiceRepository(db)

	_, err := repo.ListItems(context.Background(), uuid.New())
	require.NoError(t, err)

	require.NotEmpty(t, *statements)
	query := (*statements)[0]
	assert.Contains(t, query, `FROM "invoice_items"`)
	assert.Contains(t, query, "ORDER BY position ASC,created_at ASC")
}

func TestCustomerSearchMatchesNamePhoneEmail(t *testing.T) {
	db, statements := recorder(t)
	repo := NewCustomerRepository(db)

	_, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	_, _, err = repo.List(context.Background(), domainRepo.CustomerFilterParams{Search: "98"})
	require.NoError(t, err)

	var found bool
	for _, s := range *statements {
		if containsAll(s, "name ILIKE '%98%'", "phone_number ILIKE '%98%'", "LIMIT 15") {
			found = true
		}
	}
	assert.True(t, found, "search statement not captured: %v", *statements)
}

func TestEmployeeSearchMatchesNameEmailCode(t *testing.T) {
	db, statements := recorder(t)
	repo := NewUserRepository(db)

	_, _, err := repo.List(context.Background(), domainRepo.UserFilterParams{Search: "emp1"})
	require.NoError(t, err)

	var found bool
	for _, s := range *statements {
		if containsAll(s, `FROM "users"`, "name ILIKE '%emp1%'", "email ILIKE '%emp1%'", "employee_id ILIKE '%emp1%'", "ORDER BY created_at DESC") {
			found = true
		}
	}
	assert.True(t, found, "search statement not captured: %v", *statements)
}

func TestAttendanceMatchesCalendarDay(t *testing.T) {
	db, statements := recorder(t)
	repo := NewAttendanceRepository(db)
	day := time.Date(2026, 5, 4, 18, 30, 0, 0, time.UTC)

	_, err := repo.GetForDay(context.Background(), uuid.New(), day)
	require.NoError(t, err)
	_, err = repo.SetCheckOut(context.Background(), uuid.New(), day)
	require.NoError(t, err)

	require.Len(t, *statements, 2)
	assert.Contains(t, (*statements)[0], "date = '2026-05-04'")
	assert.True(t, containsAll((*statements)[1], `UPDATE "attendance"`, "check_out IS NULL"), (*statements)[1])
}

func TestAnalyticsQueries(t *testing.T) {
	db, statements := recorder(t)
	repo := NewAnalyticsRepository(db)
	from := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	_, err := repo.GetStockSummary(context.Background())
	require.NoError(t, err)
	_, err = repo.GetRevenue(context.Background(), &from, &to)
	require.NoError(t, err)

	require.Len(t, *statements, 3)
	assert.Contains(t, (*statements)[1], "stock_quantity <= low_stock_threshold")
	assert.True(t, containsAll((*statements)[2], "COALESCE(SUM(total_amount), 0)", `FROM "invoices"`, "created_at >= ", "created_at < "), (*statements)[2])
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
