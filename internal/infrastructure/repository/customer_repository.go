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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type customerRepository struct {
	table *tablestore.Table[entity.Customer]
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{table: tablestore.NewTable[entity.Customer](db)}
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return r.table.Insert(ctx, customer)
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	return r.table.First(ctx, tablestore.Query{}, tablestore.Eq("id", id))
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	return r.table.First(ctx, tablestore.Query{}, tablestore.Eq("phone_number", phone))
}

func (r *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return r.table.Save(ctx, customer)
}

func (r *customerRepository) List(ctx context.Context, params domainRepo.CustomerFilterParams) ([]entity.Customer, int64, error) {
	filters := customerFilters(params)

	total, err := r.table.Count(ctx, filters...)
	if err != nil {
		return nil, 0, err
	}

	page := params.Pagination
	if page == nil {
		page = &pagination.PaginationParams{}
	}
	page.Validate()

	customers, err := r.table.Select(ctx, tablestore.Query{
		OrderBy: []tablestore.Order{{Column: "name"}},
		Limit:   page.PerPage,
		Offset:  page.Offset(),
	}, filters...)
	return customers, total, err
}

func (r *customerRepository) ListAll(ctx context.Context) ([]entity.Customer, error) {
	return r.table.Select(ctx, tablestore.Query{OrderBy: []tablestore.Order{{Column: "name"}}})
}

func (r *customerRepository) SetVisitStats(ctx context.Context, id uuid.UUID, visits int, spent decimal.Decimal, lastVisit time.Time) error {
	return r.updateStats(ctx, id, map[string]any{
		"total_visits":    visits,
		"total_spent":     spent,
		"last_visit_date": lastVisit,
	})
}

func (r *customerRepository) IncrementVisitStats(ctx context.Context, id uuid.UUID, amount decimal.Decimal, lastVisit time.Time) error {
	return r.updateStats(ctx, id, map[string]any{
		"total_visits":    gorm.Expr("total_visits + ?", 1),
		"total_spent":     gorm.Expr("total_spent + ?", amount),
		"last_visit_date": lastVisit,
	})
}

func (r *customerRepository) updateStats(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	n, err := r.table.Update(ctx, patch, tablestore.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("customer %s not found", id)
	}
	return nil
}

func customerFilters(params domainRepo.CustomerFilterParams) []tablestore.Filter {
	var filters []tablestore.Filter
	if params.Search != "" {
		filters = append(filters, tablestore.Any(
			tablestore.ILike("name", params.Search),
			tablestore.ILike("phone_number", params.Search),
			tablestore.ILike("email", params.Search),
		))
	}
	if params.CustomerType != "" {
		filters = append(filters, tablestore.Eq("customer_type", params.CustomerType))
	}
	return filters
}
