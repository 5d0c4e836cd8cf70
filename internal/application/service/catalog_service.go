package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/sangkips/salon-billing-api/pkg/notify"
	"github.com/shopspring/decimal"
)

// CatalogService manages the services and products sold at the desk
type CatalogService struct {
	catalogRepo repository.CatalogRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogRepo repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo}
}

// ListServices lists services, optionally only active ones matching search
func (s *CatalogService) ListServices(ctx context.Context, activeOnly bool, search string) ([]entity.Service, error) {
	services, err := s.catalogRepo.ListServices(ctx, repository.CatalogFilterParams{
		ActiveOnly: activeOnly,
		Search:     strings.TrimSpace(search),
	})
	if err != nil {
		return nil, err
	}
	if services == nil {
		services = []entity.Service{}
	}
	return services, nil
}

// ListProducts lists products. lowStock keeps those at or below their threshold.
func (s *CatalogService) ListProducts(ctx context.Context, activeOnly bool, search string, lowStock bool) ([]entity.Product, error) {
	products, err := s.catalogRepo.ListProducts(ctx, repository.CatalogFilterParams{
		ActiveOnly: activeOnly,
		Search:     strings.TrimSpace(search),
		LowStock:   lowStock,
	})
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []entity.Product{}
	}
	return products, nil
}

// ServiceInput carries service fields. On update nil fields are left unchanged.
type ServiceInput struct {
	Name            *string
	Description     *string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	DurationMinutes *int
	IsActive        *bool
}

// CreateService creates a service
func (s *CatalogService) CreateService(ctx context.Context, input *ServiceInput) (*entity.Service, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" || input.MinPrice == nil {
		return nil, apperror.NewValidationMessage("Name and price are required")
	}
	svc := &entity.Service{IsActive: true}
	if err := applyService(svc, input); err != nil {
		return nil, err
	}
	if err := s.catalogRepo.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	notify.Success(ctx, "Service "+svc.Name+" created")
	return svc, nil
}

// UpdateService updates a service
func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, input *ServiceInput) (*entity.Service, error) {
	svc, err := s.catalogRepo.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, apperror.NewNotFoundError("Service")
	}
	if err := applyService(svc, input); err != nil {
		return nil, err
	}
	if err := s.catalogRepo.UpdateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func applyService(svc *entity.Service, input *ServiceInput) error {
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return apperror.NewValidationMessage("Name is required")
		}
		svc.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		svc.Description = *input.Description
	}
	if input.MinPrice != nil {
		if input.MinPrice.IsNegative() {
			return apperror.NewValidationMessage("price cannot be negative")
		}
		svc.MinPrice = *input.MinPrice
	}
	if input.MaxPrice != nil {
		if input.MaxPrice.LessThan(svc.MinPrice) {
			return apperror.NewValidationMessage("max_price cannot be below min_price")
		}
		upper := *input.MaxPrice
		svc.MaxPrice = &upper
	}
	if input.DurationMinutes != nil {
		if *input.DurationMinutes < 0 {
			return apperror.NewValidationMessage("duration cannot be negative")
		}
		d := *input.DurationMinutes
		svc.DurationMinutes = &d
	}
	if input.IsActive != nil {
		svc.IsActive = *input.IsActive
	}
	return nil
}

// ProductInput carries product fields. On update nil fields are left unchanged.
type ProductInput struct {
	Name              *string
	Description       *string
	Price             *decimal.Decimal
	StockQuantity     *int
	LowStockThreshold *int
	IsActive          *bool
}

// CreateProduct creates a product
func (s *CatalogService) CreateProduct(ctx context.Context, input *ProductInput) (*entity.Product, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" || input.Price == nil {
		return nil, apperror.NewValidationMessage("Name and price are required")
	}
	p := &entity.Product{IsActive: true, LowStockThreshold: 10}
	if err := applyProduct(p, input); err != nil {
		return nil, err
	}
	if err := s.catalogRepo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	notify.Success(ctx, "Product "+p.Name+" created")
	return p, nil
}

// UpdateProduct updates a product
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input *ProductInput) (*entity.Product, error) {
	p, err := s.catalogRepo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	if err := applyProduct(p, input); err != nil {
		return nil, err
	}
	if err := s.catalogRepo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func applyProduct(p *entity.Product, input *ProductInput) error {
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return apperror.NewValidationMessage("Name is required")
		}
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return apperror.NewValidationMessage("price cannot be negative")
		}
		p.Price = *input.Price
	}
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return apperror.NewValidationMessage("stock quantity cannot be negative")
		}
		p.StockQuantity = *input.StockQuantity
	}
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return apperror.NewValidationMessage("low stock threshold cannot be negative")
		}
		p.LowStockThreshold = *input.LowStockThreshold
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	return nil
}
