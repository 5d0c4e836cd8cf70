package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// CustomerFilterParams narrows customer listings
type CustomerFilterParams struct {
	Pagination   *pagination.PaginationParams
	Search       string
	CustomerType string
}

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	List(ctx context.Context, params CustomerFilterParams) ([]entity.Customer, int64, error)
	ListAll(ctx context.Context) ([]entity.Customer, error)
	// SetVisitStats overwrites the stats with values computed by the caller
	SetVisitStats(ctx context.Context, id uuid.UUID, visits int, spent decimal.Decimal, lastVisit time.Time) error
	// IncrementVisitStats adds one visit and amount in a single update expression
	IncrementVisitStats(ctx context.Context, id uuid.UUID, amount decimal.Decimal, lastVisit time.Time) error
}
