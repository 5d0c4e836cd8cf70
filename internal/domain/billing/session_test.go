package billing

import (
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return NewSession(uuid.New(), TaxConfig{GSTEnabled: true, GSTPercentage: dec("18")})
}

func customer() CustomerSnapshot {
	return CustomerSnapshot{ID: uuid.New(), Name: "Asha", PhoneNumber: "9800000000"}
}

func TestBeginCheckoutPreconditions(t *testing.T) {
	t.Run("no customer", func(t *testing.T) {
		s := newTestSession()
		_, err := s.AddItem(service("Cut", 100))
		require.NoError(t, err)

		_, err = s.BeginCheckout(Policy{AllowNegativeTotal: true})
		assert.ErrorIs(t, err, apperror.ErrNoCustomer)
		assert.Equal(t, StateIdle, s.State())
	})

	t.Run("empty cart", func(t *testing.T) {
		s := newTestSession()
		require.NoError(t, s.SelectCustomer(customer()))

		_, err := s.BeginCheckout(Policy{AllowNegativeTotal: true})
		assert.ErrorIs(t, err, apperror.ErrEmptyCart)
		assert.Equal(t, StateCustomerSelected, s.State())
	})

	t.Run("negative total rejected by policy", func(t *testing.T) {
		s := newTestSession()
		require.NoError(t, s.SelectCustomer(customer()))
		_, err := s.AddItem(service("Cut", 100))
		require.NoError(t, err)
		require.NoError(t, s.SetDiscount(dec("500")))

		_, err = s.BeginCheckout(Policy{AllowNegativeTotal: false})
		assert.True(t, apperror.IsCode(err, http.StatusUnprocessableEntity))

		draft, err := s.BeginCheckout(Policy{AllowNegativeTotal: true})
		require.NoError(t, err)
		assert.True(t, draft.Totals.IsNegative())
	})
}

func TestCheckoutHappyPath(t *testing.T) {
	s := newTestSession()
	cust := customer()
	require.NoError(t, s.SelectCustomer(cust))
	_, err := s.AddItem(service("Service A", 500))
	require.NoError(t, err)
	b := product("Product B", 200, 7)
	_, _ = s.AddItem(b)
	_, _ = s.AddItem(b)
	require.NoError(t, s.SetDiscount(dec("50")))

	draft, err := s.BeginCheckout(Policy{AllowNegativeTotal: true})
	require.NoError(t, err)
	assert.Equal(t, StateCheckoutRequested, s.State())
	assert.True(t, draft.Totals.Total.Equal(dec("1012")))
	assert.Equal(t, 7, draft.Stock[b.ID])

	// busy while in flight
	_, err = s.AddItem(service("Other", 1))
	assert.ErrorIs(t, err, apperror.ErrSessionBusy)
	_, err = s.BeginCheckout(Policy{AllowNegativeTotal: true})
	assert.ErrorIs(t, err, apperror.ErrSessionBusy)

	inv := PendingInvoice{ID: uuid.New(), InvoiceNumber: "INV-1", CustomerID: cust.ID, TotalAmount: draft.Totals.Total}
	require.NoError(t, s.CompleteCheckout(inv, map[uuid.UUID]int{b.ID: 5}, nil))

	v := s.View()
	assert.Equal(t, StatePaymentPending, v.State)
	assert.Empty(t, v.Lines)
	assert.True(t, v.Discount.IsZero())
	require.NotNil(t, v.Customer)
	assert.Equal(t, cust.ID, v.Customer.ID)
	require.NotNil(t, v.PendingInvoice)
	assert.True(t, v.PendingInvoice.DefaultPaymentAmount.Equal(dec("1012")))

	var states []State
	for _, tr := range v.History {
		states = append(states, tr.To)
	}
	assert.Equal(t, []State{StateCustomerSelected, StateCheckoutRequested, StateInvoiceCreated, StatePaymentPending}, states)

	// cart is locked until the payment is resolved
	_, err = s.AddItem(service("Other", 1))
	assert.True(t, apperror.IsCode(err, http.StatusConflict))

	pd, err := s.BeginPayment()
	require.NoError(t, err)
	assert.Equal(t, inv.ID, pd.Invoice.ID)
	assert.Equal(t, cust.ID, pd.Customer.ID)

	require.NoError(t, s.CompletePayment(PaymentResult{
		InvoiceID: inv.ID,
		Method:    enum.PaymentMethodCash,
		Amount:    dec("1012"),
		Status:    enum.PaymentStatusPaid,
	}, nil))

	v = s.View()
	assert.Equal(t, StatePaymentRecorded, v.State)
	assert.Nil(t, v.Customer)
	assert.Nil(t, v.PendingInvoice)
	require.NotNil(t, v.LastPayment)
	assert.Equal(t, enum.PaymentStatusPaid, v.LastPayment.Status)

	// next sale can start
	_, err = s.AddItem(service("Next", 10))
	assert.NoError(t, err)
}

func TestFailCheckoutKeepsCart(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.SelectCustomer(customer()))
	_, _ = s.AddItem(service("Cut", 100))

	_, err := s.BeginCheckout(Policy{})
	require.NoError(t, err)

	orphan := uuid.New()
	require.NoError(t, s.FailCheckout(Failure{Step: StepCreateItems, InvoiceID: &orphan, Message: "boom"}))

	v := s.View()
	assert.Equal(t, StateCustomerSelected, v.State)
	assert.Len(t, v.Lines, 1)
	require.NotNil(t, v.LastFailure)
	assert.Equal(t, StepCreateItems, v.LastFailure.Step)
	assert.Equal(t, orphan, *v.LastFailure.InvoiceID)
	assert.False(t, v.LastFailure.At.IsZero())
	assert.False(t, v.Busy)
}

func TestPayLater(t *testing.T) {
	s := newTestSession()
	cust := customer()
	require.NoError(t, s.SelectCustomer(cust))
	_, _ = s.AddItem(service("Cut", 100))
	_, err := s.BeginCheckout(Policy{})
	require.NoError(t, err)
	require.NoError(t, s.CompleteCheckout(PendingInvoice{ID: uuid.New(), TotalAmount: dec("118")}, nil, nil))

	abandoned, err := s.PayLater()
	require.NoError(t, err)
	assert.True(t, abandoned.TotalAmount.Equal(dec("118")))
	assert.Equal(t, StateCustomerSelected, s.State())

	_, err = s.BeginPayment()
	assert.True(t, apperror.IsCode(err, http.StatusConflict))
}

func TestFailPaymentAllowsRetry(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.SelectCustomer(customer()))
	_, _ = s.AddItem(service("Cut", 100))
	_, err := s.BeginCheckout(Policy{})
	require.NoError(t, err)
	require.NoError(t, s.CompleteCheckout(PendingInvoice{ID: uuid.New(), TotalAmount: dec("118")}, nil, nil))

	_, err = s.BeginPayment()
	require.NoError(t, err)
	_, err = s.BeginPayment()
	assert.ErrorIs(t, err, apperror.ErrSessionBusy)

	require.NoError(t, s.FailPayment(Failure{Step: StepRecordPayment, Message: "timeout"}))
	assert.Equal(t, StatePaymentPending, s.State())

	_, err = s.BeginPayment()
	assert.NoError(t, err)
}

func TestSetTaxAndDiscountValidation(t *testing.T) {
	s := newTestSession()
	assert.Error(t, s.SetTax(TaxConfig{GSTEnabled: true, GSTPercentage: dec("-1")}))
	assert.Error(t, s.SetDiscount(dec("-0.01")))
	assert.NoError(t, s.SetTax(TaxConfig{GSTEnabled: false, GSTPercentage: decimal.Zero}))
}

func TestConcurrentBeginCheckoutOnlyOneWins(t *testing.T) {
	s := newTestSession()
	require.NoError(t, s.SelectCustomer(customer()))
	_, _ = s.AddItem(service("Cut", 100))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.BeginCheckout(Policy{}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
