package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	"github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
)

// InvoiceService reads persisted invoices
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(invoiceRepo repository.InvoiceRepository) *InvoiceService {
	return &InvoiceService{invoiceRepo: invoiceRepo}
}

// InvoiceFilter holds the raw list filters. Dates are YYYY-MM-DD.
type InvoiceFilter struct {
	Search     string
	Status     string
	CustomerID string
	StartDate  string
	EndDate    string
}

// ParseInvoiceFilter validates filter values into repository params
func ParseInvoiceFilter(f InvoiceFilter) (repository.InvoiceFilterParams, error) {
	params := repository.InvoiceFilterParams{Search: strings.TrimSpace(f.Search)}

	if f.Status != "" {
		status, err := enum.ParsePaymentStatus(f.Status)
		if err != nil {
			return params, apperror.NewValidationMessage("status must be pending, partial or paid")
		}
		params.Status = &status
	}
	if f.CustomerID != "" {
		id, err := uuid.Parse(f.CustomerID)
		if err != nil {
			return params, apperror.NewValidationMessage("invalid customer_id")
		}
		params.CustomerID = &id
	}
	if f.StartDate != "" {
		d, err := time.Parse(time.DateOnly, f.StartDate)
		if err != nil {
			return params, apperror.NewValidationMessage("start_date must be YYYY-MM-DD")
		}
		params.StartDate = &d
	}
	if f.EndDate != "" {
		d, err := time.Parse(time.DateOnly, f.EndDate)
		if err != nil {
			return params, apperror.NewValidationMessage("end_date must be YYYY-MM-DD")
		}
		params.EndDate = &d
	}
	return params, nil
}

// ListInvoices lists invoices newest first
func (s *InvoiceService) ListInvoices(ctx context.Context, page *pagination.PaginationParams, filter InvoiceFilter) (*pagination.PaginatedResult[entity.Invoice], error) {
	params, err := ParseInvoiceFilter(filter)
	if err != nil {
		return nil, err
	}
	page.Validate()
	params.Pagination = page

	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(invoices, page, total), nil
}

// GetInvoice returns an invoice with its customer, items and payments
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListPayments lists the payments of an invoice
func (s *InvoiceService) ListPayments(ctx context.Context, id uuid.UUID) ([]entity.Payment, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	payments, err := s.invoiceRepo.ListPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []entity.Payment{}
	}
	return payments, nil
}
