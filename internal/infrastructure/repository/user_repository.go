package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/internal/infrastructure/tablestore"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
	"gorm.io/gorm"
)

type userRepository struct {
	table *tablestore.Table[entity.User]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{table: tablestore.NewTable[entity.User](db)}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.table.Insert(ctx, user)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.table.First(ctx, tablestore.Query{}, tablestore.Eq("id", id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.table.First(ctx, tablestore.Query{}, tablestore.Eq("email", email))
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.table.Save(ctx, user)
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.table.Delete(ctx, tablestore.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %s not found", id)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, params domainRepo.UserFilterParams) ([]entity.User, int64, error) {
	var filters []tablestore.Filter
	if params.Search != "" {
		filters = append(filters, tablestore.Any(
			tablestore.ILike("name", params.Search),
			tablestore.ILike("email", params.Search),
			tablestore.ILike("employee_id", params.Search),
		))
	}

	total, err := r.table.Count(ctx, filters...)
	if err != nil {
		return nil, 0, err
	}

	page := params.Pagination
	if page == nil {
		page = &pagination.PaginationParams{}
	}
	page.Validate()

	users, err := r.table.Select(ctx, tablestore.Query{
		OrderBy: newestFirst,
		Limit:   page.PerPage,
		Offset:  page.Offset(),
	}, filters...)
	return users, total, err
}
