package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
)

// InvoiceFilterParams narrows invoice listings
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.PaymentStatus
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// InvoiceRepository defines the interface for invoices, their items and payments
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateItems(ctx context.Context, items []entity.InvoiceItem) error
	CreatePayment(ctx context.Context, payment *entity.Payment) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enum.PaymentStatus) error

	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	// GetWithDetails loads the customer, items and payments
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, params InvoiceFilterParams) ([]entity.Invoice, int64, error)
	// ListForExport returns every matching invoice with its customer
	ListForExport(ctx context.Context, params InvoiceFilterParams) ([]entity.Invoice, error)
	ListItems(ctx context.Context, invoiceID uuid.UUID) ([]entity.InvoiceItem, error)
	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error)
}
