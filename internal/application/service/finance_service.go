package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/sangkips/salon-billing-api/pkg/notify"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// DateRange is an inclusive range of calendar days
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses YYYY-MM-DD bounds in now's location. A missing
// start is the first of the current month and a missing end is today.
func ParseDateRange(start, end string, now time.Time) (DateRange, error) {
	loc := now.Location()
	r := DateRange{
		Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc),
		End:   startOfDay(now),
	}
	if start != "" {
		d, err := time.ParseInLocation(time.DateOnly, start, loc)
		if err != nil {
			return r, apperror.NewValidationMessage("start_date must be YYYY-MM-DD")
		}
		r.Start = d
	}
	if end != "" {
		d, err := time.ParseInLocation(time.DateOnly, end, loc)
		if err != nil {
			return r, apperror.NewValidationMessage("end_date must be YYYY-MM-DD")
		}
		r.End = d
	}
	if r.End.Before(r.Start) {
		return r, apperror.NewValidationMessage("end_date must not be before start_date")
	}
	return r, nil
}

// endExclusive is midnight after the last day
func (r DateRange) endExclusive() time.Time {
	return r.End.AddDate(0, 0, 1)
}

func (r DateRange) label() string {
	return r.Start.Format(time.DateOnly) + "_to_" + r.End.Format(time.DateOnly)
}

// CategoryAmount is the expense total of one category
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// FinancialSummary compares invoice income with expenses
type FinancialSummary struct {
	TotalIncome        decimal.Decimal  `json:"total_income"`
	TotalExpenses      decimal.Decimal  `json:"total_expenses"`
	NetProfit          decimal.Decimal  `json:"net_profit"`
	ExpensesByCategory []CategoryAmount `json:"expenses_by_category"`
}

// profitAndLoss totals income and expenses over r, or over all time when r is nil
func profitAndLoss(ctx context.Context, analytics repository.AnalyticsRepository, expenses repository.ExpenseRepository, r *DateRange) (*FinancialSummary, error) {
	var (
		from, to *time.Time
		params   repository.ExpenseFilterParams
	)
	if r != nil {
		end := r.endExclusive()
		from, to = &r.Start, &end
		params.StartDate, params.EndDate = &r.Start, &r.End
	}

	income, err := analytics.GetRevenue(ctx, from, to)
	if err != nil {
		return nil, err
	}
	rows, err := expenses.ListAll(ctx, params)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, e := range rows {
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
		total = total.Add(e.Amount)
	}

	summary := &FinancialSummary{
		TotalIncome:        income,
		TotalExpenses:      total,
		NetProfit:          income.Sub(total),
		ExpensesByCategory: []CategoryAmount{},
	}
	for _, c := range entity.ExpenseCategories() {
		if amount, ok := byCategory[c]; ok {
			summary.ExpensesByCategory = append(summary.ExpensesByCategory, CategoryAmount{Category: c, Amount: amount})
		}
	}
	return summary, nil
}

// FinanceService records expenses and reports profit and loss
type FinanceService struct {
	expenseRepo   repository.ExpenseRepository
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewFinanceService creates a new finance service
func NewFinanceService(expenseRepo repository.ExpenseRepository, analyticsRepo repository.AnalyticsRepository) *FinanceService {
	return &FinanceService{
		expenseRepo:   expenseRepo,
		analyticsRepo: analyticsRepo,
		now:           time.Now,
	}
}

// CreateExpenseInput represents the create expense input. An empty date is today.
type CreateExpenseInput struct {
	Category    string
	Amount      *decimal.Decimal
	Description string
	ExpenseDate string
}

// CreateExpense records an expense paid by the business
func (s *FinanceService) CreateExpense(ctx context.Context, userID uuid.UUID, input *CreateExpenseInput) (*entity.Expense, error) {
	description := strings.TrimSpace(input.Description)
	if input.Amount == nil || description == "" {
		return nil, apperror.NewValidationMessage("Please fill in required fields")
	}
	if !input.Amount.IsPositive() {
		return nil, apperror.NewValidationMessage("amount must be greater than zero")
	}

	category := input.Category
	if category == "" {
		category = entity.ExpenseOther
	}
	if !entity.IsValidExpenseCategory(category) {
		return nil, apperror.NewValidationMessage("category must be one of " + strings.Join(entity.ExpenseCategories(), ", "))
	}

	now := s.now()
	date := startOfDay(now)
	if input.ExpenseDate != "" {
		d, err := time.ParseInLocation(time.DateOnly, input.ExpenseDate, now.Location())
		if err != nil {
			return nil, apperror.NewValidationMessage("expense_date must be YYYY-MM-DD")
		}
		date = d
	}

	expense := &entity.Expense{
		Category:    category,
		Amount:      *input.Amount,
		Description: description,
		ExpenseDate: date,
		CreatedBy:   &userID,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}

	notify.Success(ctx, "Expense added successfully")
	return expense, nil
}

// ExpenseFilter carries raw query values for expense listings
type ExpenseFilter struct {
	Category  string
	StartDate string
	EndDate   string
}

// ListExpenses lists expenses, latest first
func (s *FinanceService) ListExpenses(ctx context.Context, page *pagination.PaginationParams, filter ExpenseFilter) (*pagination.PaginatedResult[entity.Expense], error) {
	params := repository.ExpenseFilterParams{Category: filter.Category}
	if filter.Category != "" && !entity.IsValidExpenseCategory(filter.Category) {
		return nil, apperror.NewValidationMessage("category must be one of " + strings.Join(entity.ExpenseCategories(), ", "))
	}
	if filter.StartDate != "" || filter.EndDate != "" {
		r, err := ParseDateRange(filter.StartDate, filter.EndDate, s.now())
		if err != nil {
			return nil, err
		}
		params.StartDate, params.EndDate = &r.Start, &r.End
	}
	page.Validate()
	params.Pagination = page

	expenses, total, err := s.expenseRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(expenses, page, total), nil
}

// DeleteExpense removes an expense
func (s *FinanceService) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if expense == nil {
		return apperror.NewNotFoundError("Expense")
	}
	if err := s.expenseRepo.Delete(ctx, id); err != nil {
		return err
	}
	notify.Success(ctx, "Expense deleted")
	return nil
}

// Summary totals income and expenses. Without dates it covers all time.
func (s *FinanceService) Summary(ctx context.Context, startDate, endDate string) (*FinancialSummary, error) {
	if startDate == "" && endDate == "" {
		return profitAndLoss(ctx, s.analyticsRepo, s.expenseRepo, nil)
	}
	r, err := ParseDateRange(startDate, endDate, s.now())
	if err != nil {
		return nil, err
	}
	return profitAndLoss(ctx, s.analyticsRepo, s.expenseRepo, &r)
}
