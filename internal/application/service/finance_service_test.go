package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/testutil"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/sangkips/salon-billing-api/pkg/notify"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var financeClock = time.Date(2026, 6, 15, 11, 0, 0, 0, time.UTC)

func newFinanceService(db *testutil.MemDB) *FinanceService {
	svc := NewFinanceService(db.Expenses(), db.Analytics())
	svc.now = func() time.Time { return financeClock }
	return svc
}

func day(s string) time.Time {
	d, _ := time.Parse(time.DateOnly, s)
	return d
}

func TestCreateExpense(t *testing.T) {
	db := testutil.NewMemDB()
	svc := newFinanceService(db)
	notes := notify.NewCollector(nil)
	ctx := notify.WithNotifier(context.Background(), notes)
	user := uuid.New()
	amount := dec("1200.50")

	e, err := svc.CreateExpense(ctx, user, &CreateExpenseInput{Amount: &amount, Description: " Towels "})
	require.NoError(t, err)
	assert.Equal(t, entity.ExpenseOther, e.Category)
	assert.Equal(t, "Towels", e.Description)
	assert.Equal(t, "2026-06-15", e.ExpenseDate.Format(time.DateOnly))
	require.NotNil(t, e.CreatedBy)
	assert.Equal(t, user, *e.CreatedBy)
	assert.Equal(t, "Expense added successfully", notes.Items()[0].Message)

	e, err = svc.CreateExpense(ctx, user, &CreateExpenseInput{Category: entity.ExpenseRent, Amount: &amount, Description: "June", ExpenseDate: "2026-06-01"})
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", e.ExpenseDate.Format(time.DateOnly))
}

func TestCreateExpenseValidation(t *testing.T) {
	svc := newFinanceService(testutil.NewMemDB())
	ctx := context.Background()
	amount := dec("10")
	zero := decimal.Zero

	tests := []struct {
		name  string
		input CreateExpenseInput
		want  string
	}{
		{"missing amount", CreateExpenseInput{Description: "x"}, "Please fill in required fields"},
		{"missing description", CreateExpenseInput{Amount: &amount, Description: "  "}, "Please fill in required fields"},
		{"zero amount", CreateExpenseInput{Amount: &zero, Description: "x"}, "amount must be greater than zero"},
		{"unknown category", CreateExpenseInput{Amount: &amount, Description: "x", Category: "travel"}, "category must be one of rent, salary, electricity, supplies, maintenance, other"},
		{"bad date", CreateExpenseInput{Amount: &amount, Description: "x", ExpenseDate: "15/06/2026"}, "expense_date must be YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExpense(ctx, uuid.New(), &tt.input)
			assert.True(t, apperror.IsCode(err, http.StatusUnprocessableEntity))
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestListAndDeleteExpenses(t *testing.T) {
	db := testutil.NewMemDB()
	svc := newFinanceService(db)
	ctx := context.Background()
	rent := db.AddExpense(entity.Expense{Category: entity.ExpenseRent, Amount: dec("5000"), Description: "Rent", ExpenseDate: day("2026-06-01")})
	db.AddExpense(entity.Expense{Category: entity.ExpenseSupplies, Amount: dec("300"), Description: "Shampoo", ExpenseDate: day("2026-06-10")})
	db.AddExpense(entity.Expense{Category: entity.ExpenseSupplies, Amount: dec("200"), Description: "Foil", ExpenseDate: day("2026-05-20")})

	page, err := svc.ListExpenses(ctx, &pagination.PaginationParams{}, ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Shampoo", page.Items[0].Description)

	page, err = svc.ListExpenses(ctx, &pagination.PaginationParams{}, ExpenseFilter{Category: entity.ExpenseSupplies, StartDate: "2026-06-01"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Shampoo", page.Items[0].Description)

	_, err = svc.ListExpenses(ctx, &pagination.PaginationParams{}, ExpenseFilter{Category: "travel"})
	assert.True(t, apperror.IsCode(err, http.StatusUnprocessableEntity))

	require.NoError(t, svc.DeleteExpense(ctx, rent.ID))
	err = svc.DeleteExpense(ctx, rent.ID)
	assert.True(t, apperror.IsCode(err, http.StatusNotFound))
}

func TestFinancialSummary(t *testing.T) {
	db := testutil.NewMemDB()
	svc := newFinanceService(db)
	ctx := context.Background()
	db.AddInvoice(entity.Invoice{InvoiceNumber: "INV-1", TotalAmount: dec("8000"), CreatedAt: day("2026-06-02").Add(10 * time.Hour)})
	db.AddInvoice(entity.Invoice{InvoiceNumber: "INV-2", TotalAmount: dec("1000"), CreatedAt: day("2026-05-30").Add(10 * time.Hour)})
	db.AddExpense(entity.Expense{Category: entity.ExpenseSupplies, Amount: dec("300"), ExpenseDate: day("2026-06-10")})
	db.AddExpense(entity.Expense{Category: entity.ExpenseRent, Amount: dec("5000"), ExpenseDate: day("2026-06-01")})
	db.AddExpense(entity.Expense{Category: entity.ExpenseSupplies, Amount: dec("200"), ExpenseDate: day("2026-05-20")})

	all, err := svc.Summary(ctx, "", "")
	require.NoError(t, err)
	assertMoney(t, "9000.00", all.TotalIncome)
	assertMoney(t, "5500.00", all.TotalExpenses)
	assertMoney(t, "3500.00", all.NetProfit)
	require.Len(t, all.ExpensesByCategory, 2)
	assert.Equal(t, entity.ExpenseRent, all.ExpensesByCategory[0].Category)
	assertMoney(t, "5000.00", all.ExpensesByCategory[0].Amount)
	assert.Equal(t, entity.ExpenseSupplies, all.ExpensesByCategory[1].Category)
	assertMoney(t, "500.00", all.ExpensesByCategory[1].Amount)

	june, err := svc.Summary(ctx, "2026-06-01", "")
	require.NoError(t, err)
	assertMoney(t, "8000.00", june.TotalIncome)
	assertMoney(t, "5300.00", june.TotalExpenses)
	assertMoney(t, "2700.00", june.NetProfit)

	_, err = svc.Summary(ctx, "2026-06-10", "2026-06-01")
	assert.True(t, apperror.IsCode(err, http.StatusUnprocessableEntity))
}

func TestParseDateRangeDefaults(t *testing.T) {
	r, err := ParseDateRange("", "", financeClock)
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", r.Start.Format(time.DateOnly))
	assert.Equal(t, "2026-06-15", r.End.Format(time.DateOnly))
	assert.Equal(t, "2026-06-01_to_2026-06-15", r.label())
	assert.Equal(t, "2026-06-16", r.endExclusive().Format(time.DateOnly))

	_, err = ParseDateRange("June", "", financeClock)
	assert.EqualError(t, err, "start_date must be YYYY-MM-DD")
}
