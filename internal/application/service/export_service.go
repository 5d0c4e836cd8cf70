package service

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/sangkips/salon-billing-api/pkg/export"
	"github.com/sangkips/salon-billing-api/pkg/utils"
)

const (
	exportDateFormat     = "2006-01-02 15:04"
	attendanceTimeFormat = "03:04 PM"
)

// ExportFile is a rendered spreadsheet ready for download
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders billing data and reports as XLSX workbooks
type ExportService struct {
	invoiceRepo    repository.InvoiceRepository
	customerRepo   repository.CustomerRepository
	attendanceRepo repository.AttendanceRepository
	expenseRepo    repository.ExpenseRepository
	analyticsRepo  repository.AnalyticsRepository
	now            func() time.Time
}

// NewExportService creates a new export service
func NewExportService(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	attendanceRepo repository.AttendanceRepository,
	expenseRepo repository.ExpenseRepository,
	analyticsRepo repository.AnalyticsRepository,
) *ExportService {
	return &ExportService{
		invoiceRepo:    invoiceRepo,
		customerRepo:   customerRepo,
		attendanceRepo: attendanceRepo,
		expenseRepo:    expenseRepo,
		analyticsRepo:  analyticsRepo,
		now:            time.Now,
	}
}

// ExportInvoices exports every invoice matching filter
func (s *ExportService) ExportInvoices(ctx context.Context, filter InvoiceFilter) (*ExportFile, error) {
	params, err := ParseInvoiceFilter(filter)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.ListForExport(ctx, params)
	if err != nil {
		return nil, err
	}

	sheet := export.Sheet{
		Name: "Invoices",
		Headers: []string{
			"Invoice Number", "Customer Name", "Customer Phone", "Subtotal", "GST (%)",
			"GST Amount", "Discount", "Total Amount", "Payment Status", "GST Invoice", "Created At",
		},
	}
	for _, inv := range invoices {
		name, phone := "Walk-in", "N/A"
		if inv.Customer != nil {
			name = inv.Customer.Name
			if inv.Customer.PhoneNumber != "" {
				phone = inv.Customer.PhoneNumber
			}
		}
		gst := "No"
		if inv.IsGSTInvoice {
			gst = "Yes"
		}
		sheet.Rows = append(sheet.Rows, []any{
			inv.InvoiceNumber,
			name,
			phone,
			utils.FormatMoney(inv.Subtotal),
			utils.FormatMoney(inv.GSTPercentage),
			utils.FormatMoney(inv.GSTAmount),
			utils.FormatMoney(inv.Discount),
			utils.FormatMoney(inv.TotalAmount),
			inv.PaymentStatus.String(),
			gst,
			inv.CreatedAt.Format(exportDateFormat),
		})
	}

	return s.file("billing_invoices_"+s.stamp(), sheet)
}

// ExportCustomers exports every customer
func (s *ExportService) ExportCustomers(ctx context.Context) (*ExportFile, error) {
	customers, err := s.customerRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	sheet := export.Sheet{
		Name: "Customers",
		Headers: []string{
			"Customer ID", "Name", "Phone Number", "Email", "Customer Type",
			"Total Visits", "Total Spent", "Last Visit Date", "Created At",
		},
	}
	for _, c := range customers {
		email := "N/A"
		if c.Email != nil && *c.Email != "" {
			email = *c.Email
		}
		customerType := c.CustomerType
		if customerType == "" {
			customerType = entity.CustomerTypeNew
		}
		lastVisit := "Never"
		if c.LastVisitDate != nil {
			lastVisit = c.LastVisitDate.Format(time.DateOnly)
		}
		sheet.Rows = append(sheet.Rows, []any{
			c.ID.String(),
			c.Name,
			c.PhoneNumber,
			email,
			customerType,
			c.TotalVisits,
			utils.FormatMoney(c.TotalSpent),
			lastVisit,
			c.CreatedAt.Format(exportDateFormat),
		})
	}

	return s.file("customers_"+s.stamp(), sheet)
}

// ExportInvoiceItems exports the line items of one invoice
func (s *ExportService) ExportInvoiceItems(ctx context.Context, invoiceID uuid.UUID) (*ExportFile, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	items, err := s.invoiceRepo.ListItems(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	sheet := export.Sheet{
		Name:    "Items",
		Headers: []string{"Item Name", "Item Type", "Quantity", "Unit Price", "Total Price"},
	}
	for _, it := range items {
		sheet.Rows = append(sheet.Rows, []any{
			it.ItemName,
			it.ItemType.String(),
			strconv.Itoa(it.Quantity),
			utils.FormatMoney(it.UnitPrice),
			utils.FormatMoney(it.TotalPrice),
		})
	}

	return s.file("invoice_"+invoice.InvoiceNumber+"_items", sheet)
}

// ExportAttendance exports the attendance records between startDate and endDate
func (s *ExportService) ExportAttendance(ctx context.Context, startDate, endDate string) (*ExportFile, error) {
	r, err := ParseDateRange(startDate, endDate, s.now())
	if err != nil {
		return nil, err
	}
	records, err := s.attendanceRepo.List(ctx, repository.AttendanceFilterParams{StartDate: &r.Start, EndDate: &r.End})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperror.NewAppError(http.StatusNotFound, "No attendance records found for this period")
	}

	sheet := export.Sheet{
		Name:    "Attendance",
		Headers: []string{"Date", "Employee Name", "Employee ID", "Check In", "Check Out", "Status"},
	}
	for _, a := range records {
		name, employeeID := "N/A", "N/A"
		if a.User != nil {
			name = a.User.Name
			if a.User.EmployeeID != "" {
				employeeID = a.User.EmployeeID
			}
		}
		checkOut := "-"
		if a.CheckOut != nil {
			checkOut = a.CheckOut.Format(attendanceTimeFormat)
		}
		sheet.Rows = append(sheet.Rows, []any{
			a.Date.Format(time.DateOnly),
			name,
			employeeID,
			a.CheckIn.Format(attendanceTimeFormat),
			checkOut,
			a.Status,
		})
	}

	return s.file("Attendance_Report_"+r.label(), sheet)
}

// ExportSales exports the invoices between startDate and endDate, oldest first
func (s *ExportService) ExportSales(ctx context.Context, startDate, endDate string) (*ExportFile, error) {
	r, err := ParseDateRange(startDate, endDate, s.now())
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.ListForExport(ctx, repository.InvoiceFilterParams{StartDate: &r.Start, EndDate: &r.End})
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, apperror.NewAppError(http.StatusNotFound, "No sales records found for this period")
	}
	slices.Reverse(invoices)

	sheet := export.Sheet{
		Name:    "Sales",
		Headers: []string{"Date", "Invoice #", "Customer", "Subtotal", "GST", "Discount", "Total", "Status"},
	}
	for _, inv := range invoices {
		customer := "Walk-in"
		if inv.Customer != nil {
			customer = inv.Customer.Name
		}
		sheet.Rows = append(sheet.Rows, []any{
			inv.CreatedAt.Format(time.DateOnly),
			inv.InvoiceNumber,
			customer,
			utils.FormatMoney(inv.Subtotal),
			utils.FormatMoney(inv.GSTAmount),
			utils.FormatMoney(inv.Discount),
			utils.FormatMoney(inv.TotalAmount),
			inv.PaymentStatus.String(),
		})
	}

	return s.file("Sales_Report_"+r.label(), sheet)
}

// ExportProfitLoss exports income against expenses between startDate and endDate
func (s *ExportService) ExportProfitLoss(ctx context.Context, startDate, endDate string) (*ExportFile, error) {
	r, err := ParseDateRange(startDate, endDate, s.now())
	if err != nil {
		return nil, err
	}
	summary, err := profitAndLoss(ctx, s.analyticsRepo, s.expenseRepo, &r)
	if err != nil {
		return nil, err
	}

	sheet := export.Sheet{
		Name:    "Profit & Loss",
		Headers: []string{"Item", "Amount"},
		Rows: [][]any{
			{"Total Revenue", utils.FormatMoney(summary.TotalIncome)},
			{"Total Expenses", utils.FormatMoney(summary.TotalExpenses)},
			{"----------------", "----"},
			{"NET PROFIT/LOSS", utils.FormatMoney(summary.NetProfit)},
			{"", ""},
			{"Expense Breakdown:", ""},
		},
	}
	for _, c := range summary.ExpensesByCategory {
		sheet.Rows = append(sheet.Rows, []any{capitalize(c.Category), utils.FormatMoney(c.Amount)})
	}

	return s.file("Profit_Loss_Report_"+r.label(), sheet)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (s *ExportService) stamp() string {
	return s.now().Format("2006-01-02")
}

func (s *ExportService) file(name string, sheet export.Sheet) (*ExportFile, error) {
	data, err := export.ExportRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return &ExportFile{
		Filename:    name + ".xlsx",
		ContentType: export.ContentType,
		Data:        data,
	}, nil
}
