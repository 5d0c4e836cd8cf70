package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/sangkips/salon-billing-api/pkg/printer"
	"github.com/sangkips/salon-billing-api/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer      printer.Printer
	invoiceRepo  repository.InvoiceRepository
	settingsRepo repository.SettingsRepository
	width        int
	logger       *zap.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	invoiceRepo repository.InvoiceRepository,
	settingsRepo repository.SettingsRepository,
	width int,
	logger *zap.Logger,
) *PrinterService {
	if p == nil {
		p = printer.Discard()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrinterService{
		printer:      p,
		invoiceRepo:  invoiceRepo,
		settingsRepo: settingsRepo,
		width:        width,
		logger:       logger.Named("printer"),
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	kind := s.printer.Kind()
	return &PrinterStatus{
		Configured: kind != printer.KindNone,
		Connected:  s.printer.Connected(ctx),
		Type:       string(kind),
	}
}

// RenderInvoiceReceipt builds the receipt of an invoice and its ESC/POS bytes.
func (s *PrinterService) RenderInvoiceReceipt(ctx context.Context, invoiceID uuid.UUID) (*entity.Receipt, []byte, error) {
	invoice, err := s.invoiceRepo.GetWithDetails(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if invoice == nil {
		return nil, nil, apperror.NewNotFoundError("Invoice")
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	if settings == nil {
		settings = entity.DefaultBusinessSettings()
	}

	receipt := BuildReceipt(invoice, settings)
	return receipt, FormatReceipt(receipt, s.width), nil
}

// PrintInvoiceReceipt renders an invoice receipt and sends it to the printer.
// The receipt is returned even when printing fails.
func (s *PrinterService) PrintInvoiceReceipt(ctx context.Context, invoiceID uuid.UUID) (*entity.Receipt, error) {
	receipt, data, err := s.RenderInvoiceReceipt(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(ctx, data); err != nil {
		s.logger.Error("print failed", zap.Stringer("invoice_id", invoiceID), zap.Error(err))
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}

// BuildReceipt composes the printable view of an invoice
func BuildReceipt(inv *entity.Invoice, settings *entity.BusinessSettings) *entity.Receipt {
	paid := inv.AmountPaid()
	due := inv.TotalAmount.Sub(paid)
	if due.IsNegative() {
		due = decimal.Zero
	}

	r := &entity.Receipt{
		Header: entity.ReceiptHeader{
			BusinessName: settings.BusinessName,
			Address:      settings.Address,
			Phone:        settings.Phone,
			GSTNumber:    settings.GSTNumber,
		},
		InvoiceNumber: inv.InvoiceNumber,
		Date:          inv.CreatedAt.Format("2006-01-02 15:04"),
		CustomerName:  "Walk-in",
		Subtotal:      utils.FormatMoney(inv.Subtotal),
		Total:         utils.FormatMoney(inv.TotalAmount),
		Paid:          utils.FormatMoney(paid),
		Due:           utils.FormatMoney(due),
		PaymentStatus: inv.PaymentStatus.String(),
	}
	if inv.Customer != nil {
		r.CustomerName = inv.Customer.Name
		r.CustomerPhone = inv.Customer.PhoneNumber
	}
	if inv.GSTAmount.IsPositive() {
		r.GSTPercentage = inv.GSTPercentage.String()
		r.GSTAmount = utils.FormatMoney(inv.GSTAmount)
	}
	if inv.Discount.IsPositive() {
		r.Discount = utils.FormatMoney(inv.Discount)
	}

	for _, it := range inv.Items {
		r.Lines = append(r.Lines, entity.ReceiptLine{
			Name:      it.ItemName,
			Kind:      it.ItemType.String(),
			Quantity:  it.Quantity,
			UnitPrice: utils.FormatMoney(it.UnitPrice),
			Total:     utils.FormatMoney(it.TotalPrice),
		})
	}
	return r
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)

	// Header
	doc.Align(printer.AlignCenter).
		Bold(true).
		Size(printer.FontDouble).
		Line(r.Header.BusinessName).
		Size(printer.FontNormal).
		Bold(false)

	if r.Header.Address != "" {
		doc.Line(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Line(r.Header.Phone)
	}
	if r.Header.GSTNumber != "" {
		doc.Linef("GSTIN: %s", r.Header.GSTNumber)
	}

	doc.Align(printer.AlignLeft).
		Rule('-')

	doc.Pair("Invoice:", r.InvoiceNumber).
		Pair("Date:", r.Date).
		Pair("Customer:", r.CustomerName)
	if r.CustomerPhone != "" {
		doc.Pair("Phone:", r.CustomerPhone)
	}

	doc.Rule('-')

	for _, line := range r.Lines {
		doc.Item(line.Quantity, line.Name, line.Total)
		if line.Quantity > 1 {
			doc.Linef("  @ %s each", line.UnitPrice)
		}
	}

	doc.Rule('-')

	// Totals
	doc.Pair("Subtotal:", r.Subtotal)
	if r.GSTAmount != "" {
		doc.Pair(fmt.Sprintf("GST (%s%%):", r.GSTPercentage), r.GSTAmount)
	}
	if r.Discount != "" {
		doc.Pair("Discount:", "-"+r.Discount)
	}
	doc.Bold(true).
		Pair("TOTAL:", r.Total).
		Bold(false).
		Pair("Paid:", r.Paid)
	if r.Due != "0.00" {
		doc.Pair("Due:", r.Due)
	}

	doc.Rule('-')

	// Footer
	doc.Align(printer.AlignCenter).
		Feed(1).
		Line("Thank you for visiting!").
		Feed(1).
		Align(printer.AlignLeft)

	doc.Feed(3).
		Cut(true)

	return doc.Bytes()
}
