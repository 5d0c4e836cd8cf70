package request

import "github.com/shopspring/decimal"

// ServiceRequest creates or updates a service. On update omitted fields are kept.
type ServiceRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Description     *string          `json:"description"`
	MinPrice        *decimal.Decimal `json:"min_price"`
	MaxPrice        *decimal.Decimal `json:"max_price"`
	DurationMinutes *int             `json:"duration_minutes" binding:"omitempty,min=0"`
	IsActive        *bool            `json:"is_active"`
}

// ProductRequest creates or updates a product. On update omitted fields are kept.
type ProductRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Description       *string          `json:"description"`
	Price             *decimal.Decimal `json:"price"`
	StockQuantity     *int             `json:"stock_quantity" binding:"omitempty,min=0"`
	LowStockThreshold *int             `json:"low_stock_threshold" binding:"omitempty,min=0"`
	IsActive          *bool            `json:"is_active"`
}

// CatalogFilterRequest represents catalog list filters
type CatalogFilterRequest struct {
	Search     string `form:"search"`
	ActiveOnly bool   `form:"active_only"`
	LowStock   bool   `form:"low_stock"`
}
