package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/internal/infrastructure/tablestore"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
	"gorm.io/gorm"
)

type invoiceRepository struct {
	invoices *tablestore.Table[entity.Invoice]
	items    *tablestore.Table[entity.InvoiceItem]
	payments *tablestore.Table[entity.Payment]
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{
		invoices: tablestore.NewTable[entity.Invoice](db),
		items:    tablestore.NewTable[entity.InvoiceItem](db),
		payments: tablestore.NewTable[entity.Payment](db),
	}
}

var (
	newestFirst = []tablestore.Order{{Column: "created_at", Desc: true}}
	lineOrder   = []tablestore.Order{{Column: "position"}, {Column: "created_at"}}
)

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return r.invoices.Insert(ctx, invoice)
}

func (r *invoiceRepository) CreateItems(ctx context.Context, items []entity.InvoiceItem) error {
	rows := make([]*entity.InvoiceItem, len(items))
	for i := range items {
		rows[i] = &items[i]
	}
	return r.items.Insert(ctx, rows...)
}

func (r *invoiceRepository) CreatePayment(ctx context.Context, payment *entity.Payment) error {
	return r.payments.Insert(ctx, payment)
}

func (r *invoiceRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enum.PaymentStatus) error {
	n, err := r.invoices.Update(ctx, map[string]any{"payment_status": status}, tablestore.Eq("id", id))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("invoice %s not found", id)
	}
	return nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.invoices.First(ctx, tablestore.Query{}, tablestore.Eq("id", id))
}

func (r *invoiceRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, err := r.invoices.First(ctx, tablestore.Query{Preload: []string{"Customer", "Items", "Payments"}}, tablestore.Eq("id", id))
	if err != nil || inv == nil {
		return inv, err
	}
	entity.SortItems(inv.Items)
	return inv, nil
}

func (r *invoiceRepository) List(ctx context.Context, params domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	filters := invoiceFilters(params)

	total, err := r.invoices.Count(ctx, filters...)
	if err != nil {
		return nil, 0, err
	}

	page := params.Pagination
	if page == nil {
		page = &pagination.PaginationParams{}
	}
	page.Validate()

	invoices, err := r.invoices.Select(ctx, tablestore.Query{
		Preload: []string{"Customer"},
		OrderBy: newestFirst,
		Limit:   page.PerPage,
		Offset:  page.Offset(),
	}, filters...)
	return invoices, total, err
}

func (r *invoiceRepository) ListForExport(ctx context.Context, params domainRepo.InvoiceFilterParams) ([]entity.Invoice, error) {
	return r.invoices.Select(ctx, tablestore.Query{
		Preload: []string{"Customer"},
		OrderBy: newestFirst,
	}, invoiceFilters(params)...)
}

func (r *invoiceRepository) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]entity.InvoiceItem, error) {
	return r.items.Select(ctx, tablestore.Query{OrderBy: lineOrder}, tablestore.Eq("invoice_id", invoiceID))
}

func (r *invoiceRepository) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	return r.payments.Select(ctx, tablestore.Query{OrderBy: []tablestore.Order{{Column: "payment_date"}}}, tablestore.Eq("invoice_id", invoiceID))
}

func invoiceFilters(params domainRepo.InvoiceFilterParams) []tablestore.Filter {
	var filters []tablestore.Filter
	if params.Search != "" {
		filters = append(filters, tablestore.ILike("invoice_number", params.Search))
	}
	if params.Status != nil {
		filters = append(filters, tablestore.Eq("payment_status", *params.Status))
	}
	if params.CustomerID != nil {
		filters = append(filters, tablestore.Eq("customer_id", *params.CustomerID))
	}
	if params.StartDate != nil {
		filters = append(filters, tablestore.Gte("created_at", *params.StartDate))
	}
	if params.EndDate != nil {
		filters = append(filters, tablestore.Lt("created_at", params.EndDate.AddDate(0, 0, 1)))
	}
	return filters
}
