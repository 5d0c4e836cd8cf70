package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/config"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	"github.com/sangkips/salon-billing-api/internal/testutil"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
	"github.com/sangkips/salon-billing-api/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type capturePrinter struct {
	data []byte
	err  error
}

func (p *capturePrinter) Print(_ context.Context, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.data = append(p.data[:0], data...)
	return nil
}

func (p *capturePrinter) Kind() printer.Kind             { return printer.KindNetwork }
func (p *capturePrinter) Connected(context.Context) bool { return p.err == nil }

// paidReferenceInvoice checks out and pays the reference cart
func paidReferenceInvoice(t *testing.T, f *fixture) uuid.UUID {
	t.Helper()
	sid, _, _ := f.referenceCart()
	out, err := f.svc.Checkout(f.ctx, f.user, sid)
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(f.ctx, f.user, sid, RecordPaymentInput{Method: "cash"})
	require.NoError(t, err)
	return out.Invoice.ID
}

func newExports(db *testutil.MemDB) *ExportService {
	return NewExportService(db.InvoiceRepo(), db.Customers(), db.Attendance(), db.Expenses(), db.Analytics())
}

func readSheet(t *testing.T, file *ExportFile, sheet string) [][]string {
	t.Helper()
	wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestExportInvoices(t *testing.T) {
	f := newFixture(t, config.ConsistencyTransactional)
	paidReferenceInvoice(t, f)

	exports := newExports(f.db)
	exports.now = func() time.Time { return time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) }

	file, err := exports.ExportInvoices(context.Background(), InvoiceFilter{Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, "billing_invoices_2026-03-09.xlsx", file.Filename)

	rows := readSheet(t, file, "Invoices")
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 11)
	row := rows[1]
	assert.Equal(t, "Asha", row[1])
	assert.Equal(t, "9800000001", row[2])
	assert.Equal(t, []string{"900.00", "18.00", "162.00", "50.00", "1012.00", "paid", "Yes"}, row[3:10])

	file, err = exports.ExportInvoices(context.Background(), InvoiceFilter{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, readSheet(t, file, "Invoices"), 1)

	_, err = exports.ExportInvoices(context.Background(), InvoiceFilter{StartDate: "09/03/2026"})
	assert.True(t, apperror.IsCode(err, http.StatusUnprocessableEntity))
}

func TestExportCustomers(t *testing.T) {
	f := newFixture(t, config.ConsistencyTransactional)
	paidReferenceInvoice(t, f)
	f.db.AddCustomer(entity.Customer{Name: "Zoya", PhoneNumber: "9800000009"})

	file, err := newExports(f.db).ExportCustomers(context.Background())
	require.NoError(t, err)

	rows := readSheet(t, file, "Customers")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Asha", "9800000001", "N/A", "new", "1", "1012.00"}, rows[1][1:7])
	assert.Equal(t, []string{"0", "0.00", "Never"}, rows[2][5:8])
}

func TestExportInvoiceItems(t *testing.T) {
	f := newFixture(t, config.ConsistencyTransactional)
	id := paidReferenceInvoice(t, f)
	exports := newExports(f.db)

	file, err := exports.ExportInvoiceItems(context.Background(), id)
	require.NoError(t, err)
	rows := readSheet(t, file, "Items")
	assert.Equal(t, [][]string{
		{"Item Name", "Item Type", "Quantity", "Unit Price", "Total Price"},
		{"Service A", "service", "1", "500.00", "500.00"},
		{"Product B", "product", "2", "200.00", "400.00"},
	}, rows)

	_, err = exports.ExportInvoiceItems(context.Background(), uuid.New())
	assert.True(t, apperror.IsCode(err, http.StatusNotFound))
}

func TestInvoiceQueries(t *testing.T) {
	f := newFixture(t, config.ConsistencyTransactional)
	id := paidReferenceInvoice(t, f)
	invoices := NewInvoiceService(f.db.InvoiceRepo())
	ctx := context.Background()

	inv, err := invoices.GetInvoice(ctx, id)
	require.NoError(t, err)
	assert.Len(t, inv.Items, 2)
	require.Len(t, inv.Payments, 1)
	assert.Equal(t, enum.PaymentMethodCash, inv.Payments[0].PaymentMethod)
	require.NotNil(t, inv.Customer)

	page, err := invoices.ListInvoices(ctx, &pagination.PaginationParams{Page: 1, PerPage: 15}, InvoiceFilter{CustomerID: inv.CustomerID.String()})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = invoices.ListInvoices(ctx, &pagination.PaginationParams{Page: 1, PerPage: 15}, InvoiceFilter{Search: "nomatch"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = invoices.ListInvoices(ctx, &pagination.PaginationParams{}, InvoiceFilter{Status: "void"})
	assert.True(t, apperror.IsCode(err, http.StatusUnprocessableEntity))

	payments, err := invoices.ListPayments(ctx, id)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestPrintInvoiceReceipt(t *testing.T) {
	f := newFixture(t, config.ConsistencyTransactional)
	id := paidReferenceInvoice(t, f)
	p := &capturePrinter{}
	printing := NewPrinterService(p, f.db.InvoiceRepo(), f.db.Settings(), 32, nil)

	receipt, err := printing.PrintInvoiceReceipt(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Asha", receipt.CustomerName)
	assert.Equal(t, "1012.00", receipt.Total)
	assert.Equal(t, "1012.00", receipt.Paid)
	assert.Equal(t, "0.00", receipt.Due)
	assert.Equal(t, "162.00", receipt.GSTAmount)
	assert.Equal(t, "50.00", receipt.Discount)
	assert.Len(t, receipt.Lines, 2)

	out := string(p.data)
	assert.Contains(t, out, "GST (18%):")
	assert.Contains(t, out, "-50.00")
	assert.Contains(t, out, "Thank you for visiting!")
	assert.NotContains(t, out, "Due:")

	status := printing.GetStatus(context.Background())
	assert.True(t, status.Configured)
	assert.True(t, status.Connected)

	p.err = errors.New("printer offline")
	receipt, err = printing.PrintInvoiceReceipt(context.Background(), id)
	require.Error(t, err)
	assert.NotNil(t, receipt)

	_, err = printing.PrintInvoiceReceipt(context.Background(), uuid.New())
	assert.True(t, apperror.IsCode(err, http.StatusNotFound))
}

func TestBuildReceiptWalkInAndDue(t *testing.T) {
	inv := &entity.Invoice{
		InvoiceNumber: "INV-7",
		Subtotal:      dec("100"),
		TotalAmount:   dec("100"),
		PaymentStatus: enum.PaymentStatusPartial,
		Payments:      []entity.Payment{{Amount: dec("40")}},
		CreatedAt:     time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC),
	}

	r := BuildReceipt(inv, entity.DefaultBusinessSettings())
	assert.Equal(t, "Walk-in", r.CustomerName)
	assert.Equal(t, "2026-01-02 15:04", r.Date)
	assert.Equal(t, "60.00", r.Due)
	assert.Empty(t, r.GSTAmount)
	assert.Empty(t, r.Discount)

	out := string(FormatReceipt(r, 32))
	assert.Contains(t, out, "Due:")
	assert.NotContains(t, out, "GST (")
}

func TestExportAttendance(t *testing.T) {
	db := testutil.NewMemDB()
	exports := newExports(db)
	exports.now = func() time.Time { return time.Date(2026, 4, 20, 18, 0, 0, 0, time.UTC) }
	ravi := db.AddUser(entity.User{Name: "Ravi", EmployeeID: "EMP1001"})
	d := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	out := d.Add(17*time.Hour + 30*time.Minute)
	db.AddAttendance(entity.Attendance{UserID: ravi.ID, Date: d, CheckIn: d.Add(9 * time.Hour), CheckOut: &out, Status: entity.AttendancePresent})
	db.AddAttendance(entity.Attendance{UserID: uuid.New(), Date: d.AddDate(0, 0, 1), CheckIn: d.Add(33 * time.Hour), Status: entity.AttendancePresent})

	file, err := exports.ExportAttendance(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "Attendance_Report_2026-04-01_to_2026-04-20.xlsx", file.Filename)
	assert.Equal(t, [][]string{
		{"Date", "Employee Name", "Employee ID", "Check In", "Check Out", "Status"},
		{"2026-04-02", "Ravi", "EMP1001", "09:00 AM", "05:30 PM", "present"},
		{"2026-04-03", "N/A", "N/A", "09:00 AM", "-", "present"},
	}, readSheet(t, file, "Attendance"))

	_, err = exports.ExportAttendance(context.Background(), "2026-03-01", "2026-03-31")
	assert.True(t, apperror.IsCode(err, http.StatusNotFound))
	assert.EqualError(t, err, "No attendance records found for this period")
}

func TestExportSales(t *testing.T) {
	f := newFixture(t, config.ConsistencyTransactional)
	today := time.Now().Format(time.DateOnly)
	f.db.AddInvoice(entity.Invoice{InvoiceNumber: "INV-OLD", Subtotal: dec("100"), TotalAmount: dec("100")})
	paidReferenceInvoice(t, f)
	exports := newExports(f.db)

	file, err := exports.ExportSales(context.Background(), today, today)
	require.NoError(t, err)
	assert.Equal(t, "Sales_Report_"+today+"_to_"+today+".xlsx", file.Filename)

	rows := readSheet(t, file, "Sales")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Invoice #", "Customer", "Subtotal", "GST", "Discount", "Total", "Status"}, rows[0])
	assert.Equal(t, []string{today, "INV-OLD", "Walk-in", "100.00", "0.00", "0.00", "100.00", "pending"}, rows[1])
	assert.Equal(t, []string{"Asha", "900.00", "162.00", "50.00", "1012.00", "paid"}, rows[2][2:])

	_, err = exports.ExportSales(context.Background(), "2020-01-01", "2020-01-31")
	assert.EqualError(t, err, "No sales records found for this period")
}

func TestExportProfitLoss(t *testing.T) {
	db := testutil.NewMemDB()
	exports := newExports(db)
	exports.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	db.AddInvoice(entity.Invoice{InvoiceNumber: "INV-1", TotalAmount: dec("4000"), CreatedAt: time.Date(2026, 8, 5, 10, 0, 0, 0, time.UTC)})
	db.AddExpense(entity.Expense{Category: entity.ExpenseSalary, Amount: dec("2500"), ExpenseDate: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)})
	db.AddExpense(entity.Expense{Category: entity.ExpenseElectricity, Amount: dec("400"), ExpenseDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)})

	file, err := exports.ExportProfitLoss(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "Profit_Loss_Report_2026-08-01_to_2026-08-31.xlsx", file.Filename)
	rows := readSheet(t, file, "Profit & Loss")
	require.Len(t, rows, 9)
	assert.Equal(t, [][]string{
		{"Item", "Amount"},
		{"Total Revenue", "4000.00"},
		{"Total Expenses", "2900.00"},
		{"----------------", "----"},
		{"NET PROFIT/LOSS", "1100.00"},
	}, rows[:5])
	assert.Empty(t, rows[5])
	assert.Equal(t, "Expense Breakdown:", rows[6][0])
	assert.Equal(t, [][]string{{"Salary", "2500.00"}, {"Electricity", "400.00"}}, rows[7:])
}
