package billing

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// State is a billing session's position in the checkout flow
type State int

const (
	StateIdle State = iota
	StateCustomerSelected
	StateCheckoutRequested
	StateInvoiceCreated
	StatePaymentPending
	StatePaymentRecorded
)

var stateNames = [...]string{
	"idle",
	"customer_selected",
	"checkout_requested",
	"invoice_created",
	"payment_pending",
	"payment_recorded",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Step names a backend call of the workflow
type Step string

const (
	StepCreateInvoice  Step = "create_invoice"
	StepCreateItems    Step = "create_items"
	StepDecrementStock Step = "decrement_stock"
	StepRecordPayment  Step = "record_payment"
	StepUpdateStatus   Step = "update_invoice_status"
	StepUpdateCustomer Step = "update_customer"
)

// Failure records the step at which a workflow call stopped. InvoiceID is
// set when a header was already persisted.
type Failure struct {
	Step      Step       `json:"step"`
	InvoiceID *uuid.UUID `json:"invoice_id,omitempty"`
	Message   string     `json:"message"`
	At        time.Time  `json:"at"`
}

// CustomerSnapshot is the customer as read at selection time. Payment
// stats in sequential mode are computed from it.
type CustomerSnapshot struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	PhoneNumber   string          `json:"phone_number"`
	TotalVisits   int             `json:"total_visits"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	LastVisitDate *time.Time      `json:"last_visit_date,omitempty"`
}

// SnapshotCustomer copies the fields the workflow needs
func SnapshotCustomer(c *entity.Customer) CustomerSnapshot {
	return CustomerSnapshot{
		ID:            c.ID,
		Name:          c.Name,
		PhoneNumber:   c.PhoneNumber,
		TotalVisits:   c.TotalVisits,
		TotalSpent:    c.TotalSpent,
		LastVisitDate: c.LastVisitDate,
	}
}

// PendingInvoice is the created invoice awaiting payment
type PendingInvoice struct {
	ID                   uuid.UUID       `json:"id"`
	InvoiceNumber        string          `json:"invoice_number"`
	CustomerID           uuid.UUID       `json:"customer_id"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	DefaultPaymentAmount decimal.Decimal `json:"default_payment_amount"`
}

// PaymentResult summarizes a recorded payment
type PaymentResult struct {
	PaymentID     uuid.UUID          `json:"payment_id"`
	InvoiceID     uuid.UUID          `json:"invoice_id"`
	InvoiceNumber string             `json:"invoice_number"`
	Method        enum.PaymentMethod `json:"payment_method"`
	Amount        decimal.Decimal    `json:"amount"`
	Status        enum.PaymentStatus `json:"payment_status"`
	PaidAt        time.Time          `json:"paid_at"`
}

// CheckoutDraft is the immutable input of one checkout
type CheckoutDraft struct {
	SessionID uuid.UUID
	OwnerID   uuid.UUID
	Customer  CustomerSnapshot
	Lines     []CartLine
	Tax       TaxConfig
	Totals    Totals
	Stock     map[uuid.UUID]int
}

// PaymentDraft is the input of one payment
type PaymentDraft struct {
	Invoice  PendingInvoice
	Customer CustomerSnapshot
}

// Policy holds the session-level checkout rules
type Policy struct {
	AllowNegativeTotal bool
}

// Transition is one recorded state change
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

const maxHistory = 20

// Session is the context of one checkout desk: cart, tax, discount,
// selected customer and workflow state. All methods are safe for
// concurrent use. While a checkout or payment is in flight the session is
// busy and rejects every other mutation.
type Session struct {
	id      uuid.UUID
	ownerID uuid.UUID

	mu          sync.Mutex
	state       State
	busy        bool
	cart        Cart
	tax         TaxConfig
	discount    decimal.Decimal
	customer    *CustomerSnapshot
	stock       map[uuid.UUID]int
	pending     *PendingInvoice
	lastPayment *PaymentResult
	lastFailure *Failure
	history     []Transition
	createdAt   time.Time
	updatedAt   time.Time
	now         func() time.Time
}

// NewSession creates an idle session owned by ownerID
func NewSession(ownerID uuid.UUID, tax TaxConfig) *Session {
	now := time.Now().UTC()
	return &Session{
		id:        uuid.New(),
		ownerID:   ownerID,
		state:     StateIdle,
		tax:       tax,
		discount:  decimal.Zero,
		stock:     make(map[uuid.UUID]int),
		createdAt: now,
		updatedAt: now,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ID returns the session id
func (s *Session) ID() uuid.UUID { return s.id }

// OwnerID returns the user that opened the session
func (s *Session) OwnerID() uuid.UUID { return s.ownerID }

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AddItem adds one unit of item to the cart. Product stock is cached for
// later snapshot-based decrements.
func (s *Session) AddItem(item CatalogItem) (CartLine, error) {
	var line CartLine
	err := s.mutate(func() error {
		line = s.cart.AddItem(item)
		if item.StockQuantity != nil {
			s.stock[item.ID] = *item.StockQuantity
		}
		return nil
	})
	return line, err
}

// SetQuantity sets the quantity of a line; quantities below one are ignored
func (s *Session) SetQuantity(index, quantity int) (bool, error) {
	var changed bool
	err := s.mutate(func() error {
		var err error
		changed, err = s.cart.SetQuantity(index, quantity)
		return err
	})
	return changed, err
}

// RemoveLine removes a cart line
func (s *Session) RemoveLine(index int) (CartLine, error) {
	var removed CartLine
	err := s.mutate(func() error {
		var err error
		removed, err = s.cart.RemoveLine(index)
		return err
	})
	return removed, err
}

// ClearCart empties the cart
func (s *Session) ClearCart() error {
	return s.mutate(func() error {
		s.cart.Clear()
		return nil
	})
}

// SetTax replaces the GST configuration
func (s *Session) SetTax(tax TaxConfig) error {
	if tax.GSTPercentage.IsNegative() {
		return apperror.NewValidationMessage("gst percentage cannot be negative")
	}
	return s.mutate(func() error {
		s.tax = tax
		return nil
	})
}

// SetDiscount replaces the discount
func (s *Session) SetDiscount(discount decimal.Decimal) error {
	if discount.IsNegative() {
		return apperror.NewValidationMessage("discount cannot be negative")
	}
	return s.mutate(func() error {
		s.discount = discount
		return nil
	})
}

// SelectCustomer makes c the customer of the next checkout
func (s *Session) SelectCustomer(c CustomerSnapshot) error {
	return s.mutate(func() error {
		s.customer = &c
		s.transition(StateCustomerSelected)
		return nil
	})
}

// ClearCustomer deselects the customer
func (s *Session) ClearCustomer() error {
	return s.mutate(func() error {
		s.customer = nil
		s.transition(StateIdle)
		return nil
	})
}

// Totals computes the current totals
func (s *Session) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Calculate(s.cart.lines, s.tax, s.discount)
}

// BeginCheckout validates the session and enters CheckoutRequested. No
// backend call may be made if it fails.
func (s *Session) BeginCheckout(policy Policy) (*CheckoutDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return nil, err
	}
	if s.customer == nil {
		return nil, apperror.ErrNoCustomer
	}
	if s.cart.IsEmpty() {
		return nil, apperror.ErrEmptyCart
	}

	totals := Calculate(s.cart.lines, s.tax, s.discount)
	if totals.IsNegative() && !policy.AllowNegativeTotal {
		return nil, apperror.NewValidationMessage("total cannot be negative")
	}

	stock := make(map[uuid.UUID]int, len(s.stock))
	for id, q := range s.stock {
		stock[id] = q
	}

	s.busy = true
	s.transition(StateCheckoutRequested)

	return &CheckoutDraft{
		SessionID: s.id,
		OwnerID:   s.ownerID,
		Customer:  *s.customer,
		Lines:     s.cart.Lines(),
		Tax:       s.tax,
		Totals:    totals,
		Stock:     stock,
	}, nil
}

// CompleteCheckout records the created invoice and moves on to
// PaymentPending. The cart and discount are cleared; the customer stays.
// remaining replaces cached stock for the given products. A non-nil
// failure notes a non-fatal step that did not complete.
func (s *Session) CompleteCheckout(inv PendingInvoice, remaining map[uuid.UUID]int, failure *Failure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCheckoutRequested {
		return stateConflict(s.state)
	}

	s.transition(StateInvoiceCreated)
	inv.DefaultPaymentAmount = inv.TotalAmount
	s.pending = &inv
	for id, q := range remaining {
		s.stock[id] = q
	}
	s.cart.Clear()
	s.discount = decimal.Zero
	s.lastPayment = nil
	s.lastFailure = failure
	s.busy = false
	s.transition(StatePaymentPending)
	return nil
}

// FailCheckout returns to CustomerSelected with the cart intact
func (s *Session) FailCheckout(f Failure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCheckoutRequested {
		return stateConflict(s.state)
	}
	if f.At.IsZero() {
		f.At = s.now()
	}
	s.lastFailure = &f
	s.busy = false
	s.transition(StateCustomerSelected)
	return nil
}

// BeginPayment marks the session busy and returns the pending invoice
func (s *Session) BeginPayment() (*PaymentDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return nil, apperror.ErrSessionBusy
	}
	if s.state != StatePaymentPending || s.pending == nil {
		return nil, apperror.NewConflictError("no invoice is awaiting payment")
	}

	draft := &PaymentDraft{Invoice: *s.pending}
	if s.customer != nil {
		draft.Customer = *s.customer
	}
	s.busy = true
	s.updatedAt = s.now()
	return draft, nil
}

// CompletePayment moves to PaymentRecorded and deselects the customer. A
// non-nil failure notes a step after the payment row that did not complete.
func (s *Session) CompletePayment(res PaymentResult, failure *Failure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaymentPending || !s.busy {
		return stateConflict(s.state)
	}

	s.pending = nil
	s.customer = nil
	s.lastPayment = &res
	s.lastFailure = failure
	s.busy = false
	s.transition(StatePaymentRecorded)
	return nil
}

// FailPayment leaves the session in PaymentPending so the payment can be retried
func (s *Session) FailPayment(f Failure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaymentPending || !s.busy {
		return stateConflict(s.state)
	}
	if f.At.IsZero() {
		f.At = s.now()
	}
	s.lastFailure = &f
	s.busy = false
	s.updatedAt = s.now()
	return nil
}

// PayLater abandons the pending payment. The invoice stays pending.
func (s *Session) PayLater() (*PendingInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return nil, apperror.ErrSessionBusy
	}
	if s.state != StatePaymentPending || s.pending == nil {
		return nil, apperror.NewConflictError("no invoice is awaiting payment")
	}

	abandoned := s.pending
	s.pending = nil
	if s.customer != nil {
		s.transition(StateCustomerSelected)
	} else {
		s.transition(StateIdle)
	}
	return abandoned, nil
}

// View is a point-in-time copy of the session for rendering
type View struct {
	ID             uuid.UUID         `json:"id"`
	OwnerID        uuid.UUID         `json:"owner_id"`
	State          State             `json:"state"`
	Busy           bool              `json:"busy"`
	Customer       *CustomerSnapshot `json:"customer,omitempty"`
	Lines          []CartLine        `json:"lines"`
	Tax            TaxConfig         `json:"tax"`
	Discount       decimal.Decimal   `json:"discount"`
	Totals         Totals            `json:"totals"`
	PendingInvoice *PendingInvoice   `json:"pending_invoice,omitempty"`
	LastPayment    *PaymentResult    `json:"last_payment,omitempty"`
	LastFailure    *Failure          `json:"last_failure,omitempty"`
	History        []Transition      `json:"history"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// View returns a snapshot of the session
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:        s.id,
		OwnerID:   s.ownerID,
		State:     s.state,
		Busy:      s.busy,
		Lines:     s.cart.Lines(),
		Tax:       s.tax,
		Discount:  s.discount,
		Totals:    Calculate(s.cart.lines, s.tax, s.discount),
		History:   append([]Transition(nil), s.history...),
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	if s.customer != nil {
		c := *s.customer
		v.Customer = &c
	}
	if s.pending != nil {
		p := *s.pending
		v.PendingInvoice = &p
	}
	if s.lastPayment != nil {
		p := *s.lastPayment
		v.LastPayment = &p
	}
	if s.lastFailure != nil {
		f := *s.lastFailure
		v.LastFailure = &f
	}
	return v
}

func (s *Session) mutate(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	s.updatedAt = s.now()
	return nil
}

func (s *Session) editable() error {
	if s.busy {
		return apperror.ErrSessionBusy
	}
	if s.state == StatePaymentPending {
		return apperror.NewConflictError("payment pending: record the payment or choose pay later")
	}
	return nil
}

func (s *Session) transition(to State) {
	now := s.now()
	if s.state != to {
		s.history = append(s.history, Transition{From: s.state, To: to, At: now})
		if len(s.history) > maxHistory {
			s.history = s.history[len(s.history)-maxHistory:]
		}
	}
	s.state = to
	s.updatedAt = now
}

func stateConflict(st State) error {
	return apperror.NewConflictError("billing session is in state " + st.String())
}
