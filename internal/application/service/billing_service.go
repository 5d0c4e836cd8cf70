package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/config"
	"github.com/sangkips/salon-billing-api/internal/domain/billing"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	"github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/sangkips/salon-billing-api/pkg/notify"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SessionStore keeps billing sessions between requests
type SessionStore interface {
	Put(sess *billing.Session)
	Get(id uuid.UUID) (*billing.Session, bool)
	Delete(id uuid.UUID) bool
}

// InvoiceNumberer hands out unique invoice numbers
type InvoiceNumberer interface {
	Next() string
}

// BillingPolicy holds the workflow rules taken from configuration
type BillingPolicy struct {
	Consistency        string
	AllowNegativeTotal bool
	AllowZeroPayment   bool
}

func (p BillingPolicy) sequential() bool {
	return p.Consistency == config.ConsistencySequential
}

// BillingService drives the checkout desk: cart edits, checkout and payment
type BillingService struct {
	sessions     SessionStore
	catalogRepo  repository.CatalogRepository
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
	settingsRepo repository.SettingsRepository
	tx           repository.Transactor
	numbers      InvoiceNumberer
	policy       BillingPolicy
	logger       *zap.Logger
	now          func() time.Time
}

// NewBillingService creates a new billing service
func NewBillingService(
	sessions SessionStore,
	catalogRepo repository.CatalogRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	settingsRepo repository.SettingsRepository,
	tx repository.Transactor,
	numbers InvoiceNumberer,
	policy BillingPolicy,
	logger *zap.Logger,
) *BillingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{
		sessions:     sessions,
		catalogRepo:  catalogRepo,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		settingsRepo: settingsRepo,
		tx:           tx,
		numbers:      numbers,
		policy:       policy,
		logger:       logger.Named("billing"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// OpenSession starts a billing session with GST enabled at the business default rate
func (s *BillingService) OpenSession(ctx context.Context, userID uuid.UUID) (*billing.View, error) {
	pct := entity.DefaultGSTPercentage
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		pct = settings.DefaultGSTPercentage
	}

	sess := billing.NewSession(userID, billing.TaxConfig{GSTEnabled: true, GSTPercentage: pct})
	s.sessions.Put(sess)
	s.logger.Debug("session opened", zap.Stringer("session_id", sess.ID()), zap.Stringer("user_id", userID))
	return view(sess), nil
}

// GetSession returns the current view of a session
func (s *BillingService) GetSession(userID, sessionID uuid.UUID) (*billing.View, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return view(sess), nil
}

// CloseSession discards a session. A pending invoice stays pending.
func (s *BillingService) CloseSession(userID, sessionID uuid.UUID) error {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return err
	}
	if sess.View().Busy {
		return apperror.ErrSessionBusy
	}
	s.sessions.Delete(sessionID)
	return nil
}

// AddItem adds one unit of an active service or product to the cart
func (s *BillingService) AddItem(ctx context.Context, userID, sessionID uuid.UUID, kind enum.ItemKind, itemID uuid.UUID) (*billing.View, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}

	item, err := s.catalogItem(ctx, kind, itemID)
	if err != nil {
		return nil, err
	}

	if _, err := sess.AddItem(item); err != nil {
		return nil, err
	}
	notify.Success(ctx, item.Name+" added to cart")
	return view(sess), nil
}

// SetQuantity changes the quantity of a cart line. Quantities below one are ignored.
func (s *BillingService) SetQuantity(ctx context.Context, userID, sessionID uuid.UUID, index, quantity int) (*billing.View, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := sess.SetQuantity(index, quantity); err != nil {
		return nil, err
	}
	return view(sess), nil
}

// RemoveLine deletes a cart line
func (s *BillingService) RemoveLine(ctx context.Context, userID, sessionID uuid.UUID, index int) (*billing.View, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := sess.RemoveLine(index); err != nil {
		return nil, err
	}
	notify.Success(ctx, "Item removed from cart")
	return view(sess), nil
}

// ClearCart empties the cart
func (s *BillingService) ClearCart(ctx context.Context, userID, sessionID uuid.UUID) (*billing.View, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.ClearCart(); err != nil {
		return nil, err
	}
	notify.Success(ctx, "Cart cleared")
	return view(sess), nil
}

// SetTax replaces the session's GST configuration
func (s *BillingService) SetTax(ctx context.Context, userID, sessionID uuid.UUID, tax billing.TaxConfig) (*billing.View, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.SetTax(tax); err != nil {
		return nil, err
	}
	return view(sess), nil
}

// SetDiscount replaces the session's flat discount
func (s *BillingService) SetDiscount(ctx context.Context, userID, sessionID uuid.UUID, discount decimal.Decimal) (*billing.View, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.SetDiscount(discount); err != nil {
		return nil, err
	}
	return view(sess), nil
}

// SelectCustomer snapshots the customer for the next checkout
func (s *BillingService) SelectCustomer(ctx context.Context, userID, sessionID, customerID uuid.UUID) (*billing.View, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	if err := sess.SelectCustomer(billing.SnapshotCustomer(customer)); err != nil {
		return nil, err
	}
	return view(sess), nil
}

// ClearCustomer deselects the customer
func (s *BillingService) ClearCustomer(ctx context.Context, userID, sessionID uuid.UUID) (*billing.View, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.ClearCustomer(); err != nil {
		return nil, err
	}
	return view(sess), nil
}

// CheckoutOutput is the result of a successful checkout
type CheckoutOutput struct {
	Invoice *entity.Invoice `json:"invoice"`
	Session *billing.View   `json:"session"`
}

// Checkout persists the cart as an invoice, its items and the stock
// decrements, then moves the session to PaymentPending.
func (s *BillingService) Checkout(ctx context.Context, userID, sessionID uuid.UUID) (*CheckoutOutput, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}

	draft, err := sess.BeginCheckout(billing.Policy{AllowNegativeTotal: s.policy.AllowNegativeTotal})
	if err != nil {
		return nil, err
	}

	invoice := newInvoice(draft, s.numbers.Next())
	items := invoiceItems(invoice.ID, draft.Lines)
	log := s.logger.With(zap.Stringer("session_id", sessionID), zap.String("invoice_number", invoice.InvoiceNumber))

	var (
		remaining map[uuid.UUID]int
		partial   *billing.Failure
	)
	if s.policy.sequential() {
		remaining, partial, err = s.checkoutSequential(ctx, log, draft, invoice, items)
	} else {
		remaining, err = s.checkoutTransactional(ctx, draft, invoice, items)
	}
	if err != nil {
		return nil, s.failCheckout(ctx, log, sess, err)
	}

	pending := billing.PendingInvoice{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		CustomerID:    invoice.CustomerID,
		TotalAmount:   invoice.TotalAmount,
	}
	if err := sess.CompleteCheckout(pending, remaining, partial); err != nil {
		return nil, err
	}

	log.Info("invoice created",
		zap.String("total", invoice.TotalAmount.String()),
		zap.Int("lines", len(items)),
		zap.String("consistency", s.policy.Consistency),
	)
	notify.Success(ctx, "Invoice "+invoice.InvoiceNumber+" created")

	invoice.Items = items
	return &CheckoutOutput{Invoice: invoice, Session: view(sess)}, nil
}

func (s *BillingService) checkoutTransactional(ctx context.Context, draft *billing.CheckoutDraft, invoice *entity.Invoice, items []entity.InvoiceItem) (map[uuid.UUID]int, error) {
	var remaining map[uuid.UUID]int
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
			return &stepError{step: billing.StepCreateInvoice, err: err}
		}
		if err := s.invoiceRepo.CreateItems(ctx, items); err != nil {
			return &stepError{step: billing.StepCreateItems, err: err}
		}

		remaining = make(map[uuid.UUID]int)
		var short []string
		for _, line := range productLines(draft.Lines) {
			ok, left, err := s.catalogRepo.DecrementStock(ctx, line.ItemID, line.Quantity)
			if err != nil {
				return &stepError{step: billing.StepDecrementStock, err: err}
			}
			if !ok {
				short = append(short, line.ItemName)
				continue
			}
			remaining[line.ItemID] = left
		}
		if len(short) > 0 {
			return &stepError{
				step: billing.StepDecrementStock,
				err:  apperror.NewConflictError("Insufficient stock for: " + strings.Join(short, ", ")),
			}
		}
		return nil
	})
	return remaining, err
}

// checkoutSequential issues each write on its own. A failure after the
// header leaves it in place; stock writes are computed from the snapshot
// cached when the item was added and never fail the checkout.
func (s *BillingService) checkoutSequential(ctx context.Context, log *zap.Logger, draft *billing.CheckoutDraft, invoice *entity.Invoice, items []entity.InvoiceItem) (map[uuid.UUID]int, *billing.Failure, error) {
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, nil, &stepError{step: billing.StepCreateInvoice, err: err}
	}
	if err := s.invoiceRepo.CreateItems(ctx, items); err != nil {
		id := invoice.ID
		return nil, nil, &stepError{step: billing.StepCreateItems, invoiceID: &id, err: err}
	}

	remaining := make(map[uuid.UUID]int)
	var failure *billing.Failure
	for _, line := range productLines(draft.Lines) {
		snapshot, ok := draft.Stock[line.ItemID]
		if !ok {
			product, err := s.catalogRepo.GetProduct(ctx, line.ItemID)
			if err != nil || product == nil {
				if err == nil {
					err = errors.New("product not found")
				}
				log.Error("stock lookup failed", zap.Stringer("product_id", line.ItemID), zap.Error(err))
				notify.Error(ctx, "Failed to update stock for "+line.ItemName)
				failure = s.stockFailure(invoice.ID, err)
				continue
			}
			snapshot = product.StockQuantity
		}
		left := snapshot - line.Quantity
		if left < 0 {
			left = 0
		}

		if err := s.catalogRepo.SetStock(ctx, line.ItemID, left); err != nil {
			log.Error("stock update failed", zap.Stringer("product_id", line.ItemID), zap.Error(err))
			notify.Error(ctx, "Failed to update stock for "+line.ItemName)
			failure = s.stockFailure(invoice.ID, err)
			continue
		}
		remaining[line.ItemID] = left
	}
	return remaining, failure, nil
}

func (s *BillingService) stockFailure(invoiceID uuid.UUID, err error) *billing.Failure {
	return &billing.Failure{
		Step:      billing.StepDecrementStock,
		InvoiceID: &invoiceID,
		Message:   err.Error(),
		At:        s.now(),
	}
}

func (s *BillingService) failCheckout(ctx context.Context, log *zap.Logger, sess *billing.Session, err error) error {
	f, clientErr := s.failure(err)
	if ferr := sess.FailCheckout(f); ferr != nil {
		log.Warn("session left checkout unexpectedly", zap.Error(ferr))
	}
	log.Error("checkout failed", zap.String("step", string(f.Step)), zap.Error(err))
	notify.Error(ctx, clientErr.Error())
	return clientErr
}

// RecordPaymentInput is a payment against the session's pending invoice.
// A nil Amount pays the invoice total.
type RecordPaymentInput struct {
	Method string
	Amount *decimal.Decimal
}

// PaymentOutput is the result of a recorded payment
type PaymentOutput struct {
	Payment billing.PaymentResult `json:"payment"`
	Session *billing.View         `json:"session"`
}

// RecordPayment persists a payment, settles the invoice status and updates
// the customer's visit stats.
func (s *BillingService) RecordPayment(ctx context.Context, userID, sessionID uuid.UUID, input RecordPaymentInput) (*PaymentOutput, error) {
	method, err := enum.ParsePaymentMethod(input.Method)
	if err != nil {
		return nil, apperror.NewValidationMessage("payment method must be one of cash, card, upi, bank_transfer")
	}

	sess, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}

	current := sess.View()
	if current.PendingInvoice == nil {
		return nil, apperror.NewConflictError("no invoice is awaiting payment")
	}
	amount := current.PendingInvoice.DefaultPaymentAmount
	if input.Amount != nil {
		amount = *input.Amount
	}
	if err := s.validateAmount(amount); err != nil {
		return nil, err
	}

	draft, err := sess.BeginPayment()
	if err != nil {
		return nil, err
	}

	now := s.now()
	inv := draft.Invoice
	payment := &entity.Payment{
		InvoiceID:     inv.ID,
		PaymentMethod: method,
		Amount:        amount,
		PaymentDate:   now,
	}
	status := enum.PaymentStatusPartial
	if amount.GreaterThanOrEqual(inv.TotalAmount) {
		status = enum.PaymentStatusPaid
	}
	log := s.logger.With(zap.Stringer("session_id", sessionID), zap.String("invoice_number", inv.InvoiceNumber))

	var partial *billing.Failure
	if s.policy.sequential() {
		partial, err = s.paySequential(ctx, log, draft, payment, status)
	} else {
		err = s.payTransactional(ctx, draft, payment, status)
	}
	if err != nil {
		f, clientErr := s.failure(err)
		if ferr := sess.FailPayment(f); ferr != nil {
			log.Warn("session left payment unexpectedly", zap.Error(ferr))
		}
		log.Error("payment failed", zap.String("step", string(f.Step)), zap.Error(err))
		notify.Error(ctx, clientErr.Error())
		return nil, clientErr
	}

	result := billing.PaymentResult{
		PaymentID:     payment.ID,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Method:        method,
		Amount:        amount,
		Status:        status,
		PaidAt:        now,
	}
	if err := sess.CompletePayment(result, partial); err != nil {
		return nil, err
	}

	log.Info("payment recorded",
		zap.String("amount", amount.String()),
		zap.Stringer("status", status),
		zap.Stringer("method", method),
	)
	notify.Success(ctx, "Payment recorded successfully")
	return &PaymentOutput{Payment: result, Session: view(sess)}, nil
}

func (s *BillingService) validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperror.NewValidationMessage("payment amount cannot be negative")
	}
	if amount.IsZero() && !s.policy.AllowZeroPayment {
		return apperror.NewValidationMessage("payment amount must be greater than zero")
	}
	return nil
}

func (s *BillingService) payTransactional(ctx context.Context, draft *billing.PaymentDraft, payment *entity.Payment, status enum.PaymentStatus) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.invoiceRepo.CreatePayment(ctx, payment); err != nil {
			return &stepError{step: billing.StepRecordPayment, err: err}
		}
		if err := s.invoiceRepo.UpdatePaymentStatus(ctx, draft.Invoice.ID, status); err != nil {
			return &stepError{step: billing.StepUpdateStatus, err: err}
		}
		if err := s.customerRepo.IncrementVisitStats(ctx, draft.Invoice.CustomerID, payment.Amount, payment.PaymentDate); err != nil {
			return &stepError{step: billing.StepUpdateCustomer, err: err}
		}
		return nil
	})
}

// paySequential writes the payment, the status and the customer stats as
// independent calls. A failed status write aborts with the payment row left
// in place; a failed stats write is recorded but does not fail the payment.
// Stats are computed from the snapshot taken when the customer was selected.
func (s *BillingService) paySequential(ctx context.Context, log *zap.Logger, draft *billing.PaymentDraft, payment *entity.Payment, status enum.PaymentStatus) (*billing.Failure, error) {
	if err := s.invoiceRepo.CreatePayment(ctx, payment); err != nil {
		return nil, &stepError{step: billing.StepRecordPayment, err: err}
	}

	invoiceID := draft.Invoice.ID
	var failure *billing.Failure
	record := func(step billing.Step, err error, message string) {
		log.Error(message, zap.String("step", string(step)), zap.Error(err))
		notify.Error(ctx, message)
		failure = &billing.Failure{Step: step, InvoiceID: &invoiceID, Message: err.Error(), At: s.now()}
	}

	if err := s.invoiceRepo.UpdatePaymentStatus(ctx, invoiceID, status); err != nil {
		return nil, &stepError{step: billing.StepUpdateStatus, invoiceID: &invoiceID, err: err}
	}

	snap := draft.Customer
	customerID := draft.Invoice.CustomerID
	if snap.ID == customerID {
		err := s.customerRepo.SetVisitStats(ctx, customerID, snap.TotalVisits+1, snap.TotalSpent.Add(payment.Amount), payment.PaymentDate)
		if err != nil {
			record(billing.StepUpdateCustomer, err, "Failed to update customer stats")
		}
	} else if err := s.customerRepo.IncrementVisitStats(ctx, customerID, payment.Amount, payment.PaymentDate); err != nil {
		record(billing.StepUpdateCustomer, err, "Failed to update customer stats")
	}
	return failure, nil
}

// PayLater leaves the pending invoice unpaid and frees the session
func (s *BillingService) PayLater(ctx context.Context, userID, sessionID uuid.UUID) (*billing.View, error) {
	sess, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	abandoned, err := sess.PayLater()
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment deferred", zap.String("invoice_number", abandoned.InvoiceNumber))
	notify.Success(ctx, "Invoice "+abandoned.InvoiceNumber+" saved as pending")
	return view(sess), nil
}

func (s *BillingService) session(userID, sessionID uuid.UUID) (*billing.Session, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok || sess.OwnerID() != userID {
		return nil, apperror.NewNotFoundError("Billing session")
	}
	return sess, nil
}

func (s *BillingService) catalogItem(ctx context.Context, kind enum.ItemKind, id uuid.UUID) (billing.CatalogItem, error) {
	switch kind {
	case enum.ItemKindService:
		svc, err := s.catalogRepo.GetService(ctx, id)
		if err != nil {
			return billing.CatalogItem{}, err
		}
		if svc == nil || !svc.IsActive {
			return billing.CatalogItem{}, apperror.NewNotFoundError("Service")
		}
		return billing.ServiceItem(svc), nil
	case enum.ItemKindProduct:
		p, err := s.catalogRepo.GetProduct(ctx, id)
		if err != nil {
			return billing.CatalogItem{}, err
		}
		if p == nil || !p.IsActive {
			return billing.CatalogItem{}, apperror.NewNotFoundError("Product")
		}
		return billing.ProductItem(p), nil
	default:
		return billing.CatalogItem{}, apperror.NewValidationMessage("item type must be service or product")
	}
}

// failure converts a workflow error into the session failure record and
// the error returned to the caller.
func (s *BillingService) failure(err error) (billing.Failure, error) {
	f := billing.Failure{Message: err.Error(), At: s.now()}
	var se *stepError
	if !errors.As(err, &se) {
		return f, apperror.GetAppError(err)
	}
	f.Step = se.step
	f.InvoiceID = se.invoiceID
	f.Message = se.err.Error()
	if apperror.IsAppError(se.err) {
		return f, se.err
	}
	return f, apperror.NewBackendError(string(se.step), se.err)
}

type stepError struct {
	step      billing.Step
	invoiceID *uuid.UUID
	err       error
}

func (e *stepError) Error() string { return fmt.Sprintf("%s: %v", e.step, e.err) }

func (e *stepError) Unwrap() error { return e.err }

func newInvoice(draft *billing.CheckoutDraft, number string) *entity.Invoice {
	owner := draft.OwnerID
	t := draft.Totals
	return &entity.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: number,
		CustomerID:    draft.Customer.ID,
		CreatedBy:     &owner,
		Subtotal:      t.Subtotal,
		GSTPercentage: t.EffectiveGSTPercentage,
		GSTAmount:     t.GSTAmount,
		Discount:      t.Discount,
		TotalAmount:   t.Total,
		PaymentStatus: enum.PaymentStatusPending,
		IsGSTInvoice:  t.GSTApplied,
	}
}

func invoiceItems(invoiceID uuid.UUID, lines []billing.CartLine) []entity.InvoiceItem {
	items := make([]entity.InvoiceItem, len(lines))
	for i, l := range lines {
		items[i] = entity.InvoiceItem{
			InvoiceID:  invoiceID,
			Position:   i,
			ItemType:   l.Kind,
			ItemID:     l.ItemID,
			ItemName:   l.ItemName,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.LineTotal,
		}
	}
	return items
}

func productLines(lines []billing.CartLine) []billing.CartLine {
	var out []billing.CartLine
	for _, l := range lines {
		if l.Kind == enum.ItemKindProduct {
			out = append(out, l)
		}
	}
	return out
}

func view(sess *billing.Session) *billing.View {
	v := sess.View()
	return &v
}
