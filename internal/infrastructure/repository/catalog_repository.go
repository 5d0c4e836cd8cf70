package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/internal/infrastructure/tablestore"
	"gorm.io/gorm"
)

type catalogRepository struct {
	services *tablestore.Table[entity.Service]
	products *tablestore.Table[entity.Product]
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) domainRepo.CatalogRepository {
	return &catalogRepository{
		services: tablestore.NewTable[entity.Service](db),
		products: tablestore.NewTable[entity.Product](db),
	}
}

var byName = tablestore.Query{OrderBy: []tablestore.Order{{Column: "name"}}}

func (r *catalogRepository) ListServices(ctx context.Context, params domainRepo.CatalogFilterParams) ([]entity.Service, error) {
	return r.services.Select(ctx, byName, catalogFilters(params)...)
}

func (r *catalogRepository) GetService(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	return r.services.First(ctx, tablestore.Query{}, tablestore.Eq("id", id))
}

func (r *catalogRepository) CreateService(ctx context.Context, service *entity.Service) error {
	return r.services.Insert(ctx, service)
}

func (r *catalogRepository) UpdateService(ctx context.Context, service *entity.Service) error {
	return r.services.Save(ctx, service)
}

func (r *catalogRepository) ListProducts(ctx context.Context, params domainRepo.CatalogFilterParams) ([]entity.Product, error) {
	filters := catalogFilters(params)
	if params.LowStock {
		filters = append(filters, tablestore.Filter{Column: "stock_quantity", Op: tablestore.OpLte, Value: gorm.Expr("low_stock_threshold")})
	}
	return r.products.Select(ctx, byName, filters...)
}

func (r *catalogRepository) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.products.First(ctx, tablestore.Query{}, tablestore.Eq("id", id))
}

func (r *catalogRepository) CreateProduct(ctx context.Context, product *entity.Product) error {
	return r.products.Insert(ctx, product)
}

func (r *catalogRepository) UpdateProduct(ctx context.Context, product *entity.Product) error {
	return r.products.Save(ctx, product)
}

func (r *catalogRepository) SetStock(ctx context.Context, id uuid.UUID, quantity int) error {
	n, err := r.products.Update(ctx, map[string]any{"stock_quantity": quantity}, tablestore.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %s not found", id)
	}
	return nil
}

func (r *catalogRepository) DecrementStock(ctx context.Context, id uuid.UUID, amount int) (bool, int, error) {
	n, err := r.products.Update(ctx,
		map[string]any{"stock_quantity": gorm.Expr("stock_quantity - ?", amount)},
		tablestore.Eq("id", id),
		tablestore.Gte("stock_quantity", amount),
	)
	if err != nil {
		return false, 0, err
	}

	product, err := r.GetProduct(ctx, id)
	if err != nil {
		return false, 0, err
	}
	if product == nil {
		return false, 0, fmt.Errorf("product %s not found", id)
	}
	return n > 0, product.StockQuantity, nil
}

func catalogFilters(params domainRepo.CatalogFilterParams) []tablestore.Filter {
	var filters []tablestore.Filter
	if params.ActiveOnly {
		filters = append(filters, tablestore.Eq("is_active", true))
	}
	if params.Search != "" {
		filters = append(filters, tablestore.ILike("name", params.Search))
	}
	return filters
}
