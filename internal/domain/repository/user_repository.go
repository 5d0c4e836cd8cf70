package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
)

// UserFilterParams narrows employee listings
type UserFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns users newest first
	List(ctx context.Context, params UserFilterParams) ([]entity.User, int64, error)
}
