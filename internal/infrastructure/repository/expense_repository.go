package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/internal/infrastructure/tablestore"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
	"gorm.io/gorm"
)

type expenseRepository struct {
	table *tablestore.Table[entity.Expense]
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) domainRepo.ExpenseRepository {
	return &expenseRepository{table: tablestore.NewTable[entity.Expense](db)}
}

var latestExpenseFirst = []tablestore.Order{{Column: "expense_date", Desc: true}, {Column: "created_at", Desc: true}}

func (r *expenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	return r.table.Insert(ctx, expense)
}

func (r *expenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error) {
	return r.table.First(ctx, tablestore.Query{}, tablestore.Eq("id", id))
}

func (r *expenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.table.Delete(ctx, tablestore.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("expense %s not found", id)
	}
	return nil
}

func (r *expenseRepository) List(ctx context.Context, params domainRepo.ExpenseFilterParams) ([]entity.Expense, int64, error) {
	filters := expenseFilters(params)

	total, err := r.table.Count(ctx, filters...)
	if err != nil {
		return nil, 0, err
	}

	page := params.Pagination
	if page == nil {
		page = &pagination.PaginationParams{}
	}
	page.Validate()

	expenses, err := r.table.Select(ctx, tablestore.Query{
		OrderBy: latestExpenseFirst,
		Limit:   page.PerPage,
		Offset:  page.Offset(),
	}, filters...)
	return expenses, total, err
}

func (r *expenseRepository) ListAll(ctx context.Context, params domainRepo.ExpenseFilterParams) ([]entity.Expense, error) {
	return r.table.Select(ctx, tablestore.Query{OrderBy: latestExpenseFirst}, expenseFilters(params)...)
}

func expenseFilters(params domainRepo.ExpenseFilterParams) []tablestore.Filter {
	var filters []tablestore.Filter
	if params.Category != "" {
		filters = append(filters, tablestore.Eq("category", params.Category))
	}
	if params.StartDate != nil {
		filters = append(filters, tablestore.Gte("expense_date", params.StartDate.Format(time.DateOnly)))
	}
	if params.EndDate != nil {
		filters = append(filters, tablestore.Lte("expense_date", params.EndDate.Format(time.DateOnly)))
	}
	return filters
}
