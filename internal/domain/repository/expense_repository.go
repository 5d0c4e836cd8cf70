package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
)

// ExpenseFilterParams narrows expense listings. Dates are inclusive.
type ExpenseFilterParams struct {
	Pagination *pagination.PaginationParams
	Category   string
	StartDate  *time.Time
	EndDate    *time.Time
}

// ExpenseRepository defines the interface for expense data operations
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns a page of matching expenses, latest expense date first
	List(ctx context.Context, params ExpenseFilterParams) ([]entity.Expense, int64, error)
	// ListAll returns every matching expense, ignoring pagination
	ListAll(ctx context.Context, params ExpenseFilterParams) ([]entity.Expense, error)
}
