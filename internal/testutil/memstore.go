// Package testutil provides an in-memory backend implementing the domain
// repositories, with per-operation failure injection and a transactor
// that rolls back by restoring a snapshot.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// Operation names usable with Fail
const (
	OpCreateInvoice       = "invoice.create"
	OpCreateItems         = "invoice.create_items"
	OpCreatePayment       = "invoice.create_payment"
	OpUpdatePaymentStatus = "invoice.update_payment_status"
	OpDecrementStock      = "catalog.decrement_stock"
	OpSetStock            = "catalog.set_stock"
	OpSetVisitStats       = "customer.set_visit_stats"
	OpIncrementVisitStats = "customer.increment_visit_stats"

	// OpGetProduct fails reads without recording them in Calls
	OpGetProduct = "catalog.get_product"
)

// MemDB is an in-memory backend. The zero value is not usable; call NewMemDB.
type MemDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	data     memData
	failures map[string]error
	calls    []string
}

type memData struct {
	users     map[uuid.UUID]entity.User
	customers map[uuid.UUID]entity.Customer
	services  map[uuid.UUID]entity.Service
	products  map[uuid.UUID]entity.Product
	invoices  map[uuid.UUID]entity.Invoice
	items     []entity.InvoiceItem
	payments  []entity.Payment
	settings  *entity.BusinessSettings
	idem      map[string]entity.IdempotencyKey

	attendance map[uuid.UUID]entity.Attendance
	expenses   map[uuid.UUID]entity.Expense
}

// NewMemDB creates an empty backend
func NewMemDB() *MemDB {
	return &MemDB{
		data: memData{
			users:     make(map[uuid.UUID]entity.User),
			customers: make(map[uuid.UUID]entity.Customer),
			services:  make(map[uuid.UUID]entity.Service),
			products:  make(map[uuid.UUID]entity.Product),
			invoices:  make(map[uuid.UUID]entity.Invoice),
			idem:      make(map[string]entity.IdempotencyKey),

			attendance: make(map[uuid.UUID]entity.Attendance),
			expenses:   make(map[uuid.UUID]entity.Expense),
		},
		failures: make(map[string]error),
	}
}

// Fail makes every later call of op return err. A nil err clears it.
func (m *MemDB) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Calls returns the names of the mutating operations made so far
func (m *MemDB) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MemDB) op(name string) error {
	m.calls = append(m.calls, name)
	return m.failures[name]
}

func (m *MemDB) snapshot() memData {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := memData{
		users:     make(map[uuid.UUID]entity.User, len(m.data.users)),
		customers: make(map[uuid.UUID]entity.Customer, len(m.data.customers)),
		services:  make(map[uuid.UUID]entity.Service, len(m.data.services)),
		products:  make(map[uuid.UUID]entity.Product, len(m.data.products)),
		invoices:  make(map[uuid.UUID]entity.Invoice, len(m.data.invoices)),
		items:     append([]entity.InvoiceItem(nil), m.data.items...),
		payments:  append([]entity.Payment(nil), m.data.payments...),
		idem:      make(map[string]entity.IdempotencyKey, len(m.data.idem)),

		attendance: make(map[uuid.UUID]entity.Attendance, len(m.data.attendance)),
		expenses:   make(map[uuid.UUID]entity.Expense, len(m.data.expenses)),
	}
	for k, v := range m.data.users {
		d.users[k] = v
	}
	for k, v := range m.data.customers {
		d.customers[k] = v
	}
	for k, v := range m.data.services {
		d.services[k] = v
	}
	for k, v := range m.data.products {
		d.products[k] = v
	}
	for k, v := range m.data.invoices {
		d.invoices[k] = v
	}
	for k, v := range m.data.idem {
		d.idem[k] = v
	}
	for k, v := range m.data.attendance {
		d.attendance[k] = v
	}
	for k, v := range m.data.expenses {
		d.expenses[k] = v
	}
	if m.data.settings != nil {
		s := *m.data.settings
		d.settings = &s
	}
	return d
}

func (m *MemDB) restore(d memData) {
	m.mu.Lock()
	m.data = d
	m.mu.Unlock()
}

type txKey struct{}

// WithinTransaction serializes transactions and restores the pre-transaction
// state when fn fails. Nested calls join the outer transaction.
func (m *MemDB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

// Seeding and inspection

// AddUser stores u and returns it with its id set
func (m *MemDB) AddUser(u entity.User) entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	m.data.users[u.ID] = u
	return u
}

// AddCustomer stores c and returns it with its id set
func (m *MemDB) AddCustomer(c entity.Customer) entity.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CustomerType == "" {
		c.CustomerType = entity.CustomerTypeNew
	}
	m.data.customers[c.ID] = c
	return c
}

// AddService stores s and returns it with its id set
func (m *MemDB) AddService(s entity.Service) entity.Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.data.services[s.ID] = s
	return s
}

// AddProduct stores p and returns it with its id set
func (m *MemDB) AddProduct(p entity.Product) entity.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.data.products[p.ID] = p
	return p
}

// AddInvoice stores an invoice header and returns it with its id set
func (m *MemDB) AddInvoice(inv entity.Invoice) entity.Invoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	m.data.invoices[inv.ID] = inv
	return inv
}

// AddExpense stores e and returns it with its id set
func (m *MemDB) AddExpense(e entity.Expense) entity.Expense {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	m.data.expenses[e.ID] = e
	return e
}

// AddAttendance stores a and returns it with its id set
func (m *MemDB) AddAttendance(a entity.Attendance) entity.Attendance {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.data.attendance[a.ID] = a
	return a
}

// User returns the stored user
func (m *MemDB) User(id uuid.UUID) (entity.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.data.users[id]
	return u, ok
}

// Product returns the stored product
func (m *MemDB) Product(id uuid.UUID) entity.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.products[id]
}

// Customer returns the stored customer
func (m *MemDB) Customer(id uuid.UUID) entity.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.customers[id]
}

// Invoices returns every stored invoice header
func (m *MemDB) Invoices() []entity.Invoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Invoice, 0, len(m.data.invoices))
	for _, inv := range m.data.invoices {
		out = append(out, inv)
	}
	return out
}

// Items returns every stored invoice item
func (m *MemDB) Items() []entity.InvoiceItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.InvoiceItem(nil), m.data.items...)
}

// Payments returns every stored payment
func (m *MemDB) Payments() []entity.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Payment(nil), m.data.payments...)
}

// Repository views

func (m *MemDB) Users() domainRepo.UserRepository              { return memUsers{m} }
func (m *MemDB) Customers() domainRepo.CustomerRepository      { return memCustomers{m} }
func (m *MemDB) Catalog() domainRepo.CatalogRepository         { return memCatalog{m} }
func (m *MemDB) InvoiceRepo() domainRepo.InvoiceRepository     { return memInvoices{m} }
func (m *MemDB) Settings() domainRepo.SettingsRepository       { return memSettings{m} }
func (m *MemDB) Idempotency() domainRepo.IdempotencyRepository { return memIdempotency{m} }
func (m *MemDB) Attendance() domainRepo.AttendanceRepository   { return memAttendance{m} }
func (m *MemDB) Expenses() domainRepo.ExpenseRepository        { return memExpenses{m} }
func (m *MemDB) Analytics() domainRepo.AnalyticsRepository     { return memAnalytics{m} }

type memUsers struct{ m *MemDB }

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	*u = r.m.AddUser(*u)
	return nil
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if u, ok := r.m.data.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUsers) Update(_ context.Context, u *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.data.users[u.ID] = *u
	return nil
}

func (r memUsers) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.data.users[id]; !ok {
		return fmt.Errorf("user %s not found", id)
	}
	delete(r.m.data.users, id)
	return nil
}

func (r memUsers) List(_ context.Context, params domainRepo.UserFilterParams) ([]entity.User, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var matched []entity.User
	for _, u := range r.m.data.users {
		if params.Search != "" && !containsFold(u.Name, params.Search) &&
			!containsFold(u.Email, params.Search) && !containsFold(u.EmployeeID, params.Search) {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, params.Pagination), int64(len(matched)), nil
}

type memCustomers struct{ m *MemDB }

func (r memCustomers) Create(_ context.Context, c *entity.Customer) error {
	stored := r.m.AddCustomer(*c)
	*c = stored
	return nil
}

func (r memCustomers) GetByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if c, ok := r.m.data.customers[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r memCustomers) GetByPhone(_ context.Context, phone string) (*entity.Customer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.data.customers {
		if c.PhoneNumber == phone {
			return &c, nil
		}
	}
	return nil, nil
}

func (r memCustomers) Update(_ context.Context, c *entity.Customer) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.data.customers[c.ID] = *c
	return nil
}

func (r memCustomers) List(ctx context.Context, params domainRepo.CustomerFilterParams) ([]entity.Customer, int64, error) {
	all, _ := r.ListAll(ctx)
	var matched []entity.Customer
	for _, c := range all {
		if params.CustomerType != "" && c.CustomerType != params.CustomerType {
			continue
		}
		if params.Search != "" && !containsFold(c.Name, params.Search) && !strings.Contains(c.PhoneNumber, params.Search) {
			continue
		}
		matched = append(matched, c)
	}
	return paginate(matched, params.Pagination), int64(len(matched)), nil
}

func (r memCustomers) ListAll(_ context.Context) ([]entity.Customer, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]entity.Customer, 0, len(r.m.data.customers))
	for _, c := range r.m.data.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCustomers) SetVisitStats(_ context.Context, id uuid.UUID, visits int, spent decimal.Decimal, lastVisit time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.op(OpSetVisitStats); err != nil {
		return err
	}
	c := r.m.data.customers[id]
	c.TotalVisits = visits
	c.TotalSpent = spent
	c.LastVisitDate = &lastVisit
	r.m.data.customers[id] = c
	return nil
}

func (r memCustomers) IncrementVisitStats(_ context.Context, id uuid.UUID, amount decimal.Decimal, lastVisit time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.op(OpIncrementVisitStats); err != nil {
		return err
	}
	c := r.m.data.customers[id]
	c.TotalVisits++
	c.TotalSpent = c.TotalSpent.Add(amount)
	c.LastVisitDate = &lastVisit
	r.m.data.customers[id] = c
	return nil
}

type memCatalog struct{ m *MemDB }

func (r memCatalog) ListServices(_ context.Context, params domainRepo.CatalogFilterParams) ([]entity.Service, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []entity.Service
	for _, s := range r.m.data.services {
		if params.ActiveOnly && !s.IsActive {
			continue
		}
		if params.Search != "" && !containsFold(s.Name, params.Search) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCatalog) GetService(_ context.Context, id uuid.UUID) (*entity.Service, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if s, ok := r.m.data.services[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r memCatalog) CreateService(_ context.Context, s *entity.Service) error {
	*s = r.m.AddService(*s)
	return nil
}

func (r memCatalog) UpdateService(_ context.Context, s *entity.Service) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.data.services[s.ID] = *s
	return nil
}

func (r memCatalog) ListProducts(_ context.Context, params domainRepo.CatalogFilterParams) ([]entity.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []entity.Product
	for _, p := range r.m.data.products {
		if params.ActiveOnly && !p.IsActive {
			continue
		}
		if params.Search != "" && !containsFold(p.Name, params.Search) {
			continue
		}
		if params.LowStock && !p.IsLowStock() {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCatalog) GetProduct(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.failures[OpGetProduct]; err != nil {
		return nil, err
	}
	if p, ok := r.m.data.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r memCatalog) CreateProduct(_ context.Context, p *entity.Product) error {
	*p = r.m.AddProduct(*p)
	return nil
}

func (r memCatalog) UpdateProduct(_ context.Context, p *entity.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.data.products[p.ID] = *p
	return nil
}

func (r memCatalog) SetStock(_ context.Context, id uuid.UUID, quantity int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.op(OpSetStock); err != nil {
		return err
	}
	p := r.m.data.products[id]
	p.StockQuantity = quantity
	r.m.data.products[id] = p
	return nil
}

func (r memCatalog) DecrementStock(_ context.Context, id uuid.UUID, amount int) (bool, int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.op(OpDecrementStock); err != nil {
		return false, 0, err
	}
	p := r.m.data.products[id]
	if p.StockQuantity < amount {
		return false, p.StockQuantity, nil
	}
	p.StockQuantity -= amount
	r.m.data.products[id] = p
	return true, p.StockQuantity, nil
}

type memInvoices struct{ m *MemDB }

func (r memInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.op(OpCreateInvoice); err != nil {
		return err
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	now := time.Now()
	inv.CreatedAt, inv.UpdatedAt = now, now
	stored := *inv
	stored.Customer, stored.Items, stored.Payments = nil, nil, nil
	r.m.data.invoices[inv.ID] = stored
	return nil
}

func (r memInvoices) CreateItems(_ context.Context, items []entity.InvoiceItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.op(OpCreateItems); err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].CreatedAt = time.Now()
		r.m.data.items = append(r.m.data.items, items[i])
	}
	return nil
}

func (r memInvoices) CreatePayment(_ context.Context, p *entity.Payment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.op(OpCreatePayment); err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.m.data.payments = append(r.m.data.payments, *p)
	return nil
}

func (r memInvoices) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status enum.PaymentStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.op(OpUpdatePaymentStatus); err != nil {
		return err
	}
	inv := r.m.data.invoices[id]
	inv.PaymentStatus = status
	inv.UpdatedAt = time.Now()
	r.m.data.invoices[id] = inv
	return nil
}

func (r memInvoices) GetByID(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if inv, ok := r.m.data.invoices[id]; ok {
		return &inv, nil
	}
	return nil, nil
}

func (r memInvoices) GetWithDetails(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	inv, ok := r.m.data.invoices[id]
	if !ok {
		return nil, nil
	}
	r.attachCustomer(&inv)
	for _, it := range r.m.data.items {
		if it.InvoiceID == id {
			inv.Items = append(inv.Items, it)
		}
	}
	entity.SortItems(inv.Items)
	for _, p := range r.m.data.payments {
		if p.InvoiceID == id {
			inv.Payments = append(inv.Payments, p)
		}
	}
	return &inv, nil
}

func (r memInvoices) List(ctx context.Context, params domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	matched, _ := r.ListForExport(ctx, params)
	return paginate(matched, params.Pagination), int64(len(matched)), nil
}

func (r memInvoices) ListForExport(_ context.Context, params domainRepo.InvoiceFilterParams) ([]entity.Invoice, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []entity.Invoice
	for _, inv := range r.m.data.invoices {
		if params.Search != "" && !containsFold(inv.InvoiceNumber, params.Search) {
			continue
		}
		if params.Status != nil && inv.PaymentStatus != *params.Status {
			continue
		}
		if params.CustomerID != nil && inv.CustomerID != *params.CustomerID {
			continue
		}
		if params.StartDate != nil && inv.CreatedAt.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && !inv.CreatedAt.Before(params.EndDate.AddDate(0, 0, 1)) {
			continue
		}
		r.attachCustomer(&inv)
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memInvoices) ListItems(_ context.Context, invoiceID uuid.UUID) ([]entity.InvoiceItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []entity.InvoiceItem
	for _, it := range r.m.data.items {
		if it.InvoiceID == invoiceID {
			out = append(out, it)
		}
	}
	entity.SortItems(out)
	return out, nil
}

func (r memInvoices) ListPayments(_ context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []entity.Payment
	for _, p := range r.m.data.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memInvoices) attachCustomer(inv *entity.Invoice) {
	if c, ok := r.m.data.customers[inv.CustomerID]; ok {
		inv.Customer = &c
	}
}

type memSettings struct{ m *MemDB }

func (r memSettings) Get(_ context.Context) (*entity.BusinessSettings, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.data.settings == nil {
		return nil, nil
	}
	s := *r.m.data.settings
	return &s, nil
}

func (r memSettings) Create(_ context.Context, s *entity.BusinessSettings) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	stored := *s
	r.m.data.settings = &stored
	return nil
}

func (r memSettings) Update(ctx context.Context, s *entity.BusinessSettings) error {
	return r.Create(ctx, s)
}

type memIdempotency struct{ m *MemDB }

func idemKey(userID uuid.UUID, key string) string { return userID.String() + "/" + key }

func (r memIdempotency) Find(_ context.Context, userID uuid.UUID, key string) (*entity.IdempotencyKey, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if k, ok := r.m.data.idem[idemKey(userID, key)]; ok {
		return &k, nil
	}
	return nil, nil
}

func (r memIdempotency) Save(_ context.Context, k *entity.IdempotencyKey) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	r.m.data.idem[idemKey(k.UserID, k.Key)] = *k
	return nil
}

func (r memIdempotency) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for k, v := range r.m.data.idem {
		if v.ExpiresAt.Before(cutoff) {
			delete(r.m.data.idem, k)
			n++
		}
	}
	return n, nil
}

type memAttendance struct{ m *MemDB }

func (r memAttendance) Create(_ context.Context, a *entity.Attendance) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.data.attendance {
		if existing.UserID == a.UserID && sameDay(existing.Date, a.Date) {
			return fmt.Errorf("duplicate attendance for user %s on %s", a.UserID, a.Date.Format(time.DateOnly))
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.m.data.attendance[a.ID] = *a
	return nil
}

func (r memAttendance) GetForDay(_ context.Context, userID uuid.UUID, date time.Time) (*entity.Attendance, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, a := range r.m.data.attendance {
		if a.UserID == userID && sameDay(a.Date, date) {
			return &a, nil
		}
	}
	return nil, nil
}

func (r memAttendance) SetCheckOut(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.data.attendance[id]
	if !ok || a.CheckOut != nil {
		return false, nil
	}
	a.CheckOut = &at
	r.m.data.attendance[id] = a
	return true, nil
}

func (r memAttendance) List(_ context.Context, params domainRepo.AttendanceFilterParams) ([]entity.Attendance, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []entity.Attendance
	for _, a := range r.m.data.attendance {
		if params.UserID != nil && a.UserID != *params.UserID {
			continue
		}
		if params.StartDate != nil && dayBefore(a.Date, *params.StartDate) {
			continue
		}
		if params.EndDate != nil && dayBefore(*params.EndDate, a.Date) {
			continue
		}
		if u, ok := r.m.data.users[a.UserID]; ok {
			a.User = &u
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !sameDay(out[i].Date, out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CheckIn.Before(out[j].CheckIn)
	})
	return out, nil
}

type memExpenses struct{ m *MemDB }

func (r memExpenses) Create(_ context.Context, e *entity.Expense) error {
	*e = r.m.AddExpense(*e)
	return nil
}

func (r memExpenses) GetByID(_ context.Context, id uuid.UUID) (*entity.Expense, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if e, ok := r.m.data.expenses[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (r memExpenses) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.data.expenses[id]; !ok {
		return fmt.Errorf("expense %s not found", id)
	}
	delete(r.m.data.expenses, id)
	return nil
}

func (r memExpenses) List(ctx context.Context, params domainRepo.ExpenseFilterParams) ([]entity.Expense, int64, error) {
	matched, _ := r.ListAll(ctx, params)
	return paginate(matched, params.Pagination), int64(len(matched)), nil
}

func (r memExpenses) ListAll(_ context.Context, params domainRepo.ExpenseFilterParams) ([]entity.Expense, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []entity.Expense
	for _, e := range r.m.data.expenses {
		if params.Category != "" && e.Category != params.Category {
			continue
		}
		if params.StartDate != nil && dayBefore(e.ExpenseDate, *params.StartDate) {
			continue
		}
		if params.EndDate != nil && dayBefore(*params.EndDate, e.ExpenseDate) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !sameDay(out[i].ExpenseDate, out[j].ExpenseDate) {
			return out[i].ExpenseDate.After(out[j].ExpenseDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type memAnalytics struct{ m *MemDB }

func (r memAnalytics) CountCustomers(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(len(r.m.data.customers)), nil
}

func (r memAnalytics) CountInvoices(_ context.Context, status *enum.PaymentStatus) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, inv := range r.m.data.invoices {
		if status == nil || inv.PaymentStatus == *status {
			n++
		}
	}
	return n, nil
}

func (r memAnalytics) CountActiveEmployees(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, u := range r.m.data.users {
		if u.IsActive {
			n++
		}
	}
	return n, nil
}

func (r memAnalytics) CountActiveServices(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for _, s := range r.m.data.services {
		if s.IsActive {
			n++
		}
	}
	return n, nil
}

func (r memAnalytics) GetStockSummary(_ context.Context) (domainRepo.StockSummary, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var summary domainRepo.StockSummary
	for _, p := range r.m.data.products {
		if !p.IsActive {
			continue
		}
		summary.ActiveProducts++
		if p.IsLowStock() {
			summary.LowStockProducts++
		}
	}
	return summary, nil
}

func (r memAnalytics) GetRevenue(_ context.Context, from, to *time.Time) (decimal.Decimal, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	total := decimal.Zero
	for _, inv := range r.m.data.invoices {
		if from != nil && inv.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !inv.CreatedAt.Before(*to) {
			continue
		}
		total = total.Add(inv.TotalAmount)
	}
	return total, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}

// dayBefore reports whether a falls on an earlier calendar day than b
func dayBefore(a, b time.Time) bool {
	return a.Format(time.DateOnly) < b.Format(time.DateOnly)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func paginate[T any](rows []T, params *pagination.PaginationParams) []T {
	if params == nil {
		params = &pagination.PaginationParams{}
	}
	params.Validate()
	start := params.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := start + params.PerPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
