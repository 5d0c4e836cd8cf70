package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
)

// CatalogFilterParams narrows catalog listings
type CatalogFilterParams struct {
	ActiveOnly bool
	Search     string
	LowStock   bool
}

// CatalogRepository defines the interface for services and products
type CatalogRepository interface {
	ListServices(ctx context.Context, params CatalogFilterParams) ([]entity.Service, error)
	GetService(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	CreateService(ctx context.Context, service *entity.Service) error
	UpdateService(ctx context.Context, service *entity.Service) error

	ListProducts(ctx context.Context, params CatalogFilterParams) ([]entity.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) error
	UpdateProduct(ctx context.Context, product *entity.Product) error

	// SetStock overwrites the stock quantity
	SetStock(ctx context.Context, id uuid.UUID, quantity int) error
	// DecrementStock subtracts amount only if enough stock remains. It
	// reports false when the row was not updated.
	DecrementStock(ctx context.Context, id uuid.UUID, amount int) (bool, int, error)
}
