package billing

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateReferenceScenario(t *testing.T) {
	var c Cart
	c.AddItem(service("Service A", 500))
	b := product("Product B", 200, 10)
	c.AddItem(b)
	c.AddItem(b)

	got := Calculate(c.Lines(), TaxConfig{GSTEnabled: true, GSTPercentage: dec("18")}, dec("50"))

	assert.True(t, got.Subtotal.Equal(dec("900")), got.Subtotal.String())
	assert.True(t, got.GSTAmount.Equal(dec("162")), got.GSTAmount.String())
	assert.True(t, got.Total.Equal(dec("1012")), got.Total.String())
	assert.Equal(t, "162.00", got.GSTAmount.StringFixed(2))
	assert.Equal(t, "1012.00", got.Total.StringFixed(2))
	assert.True(t, got.EffectiveGSTPercentage.Equal(dec("18")))
}

func TestCalculate(t *testing.T) {
	var c Cart
	c.AddItem(service("Cut", 333))

	tests := map[string]struct {
		tax       TaxConfig
		discount  string
		wantGST   string
		wantTotal string
	}{
		"gst disabled ignores percentage": {
			tax:       TaxConfig{GSTEnabled: false, GSTPercentage: dec("18")},
			discount:  "0",
			wantGST:   "0",
			wantTotal: "333",
		},
		"fractional gst stays unrounded": {
			tax:       TaxConfig{GSTEnabled: true, GSTPercentage: dec("5")},
			discount:  "0",
			wantGST:   "16.65",
			wantTotal: "349.65",
		},
		"discount may exceed subtotal": {
			tax:       TaxConfig{GSTEnabled: false},
			discount:  "400",
			wantGST:   "0",
			wantTotal: "-67",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := Calculate(c.Lines(), tc.tax, dec(tc.discount))
			assert.True(t, got.GSTAmount.Equal(dec(tc.wantGST)), got.GSTAmount.String())
			assert.True(t, got.Total.Equal(dec(tc.wantTotal)), got.Total.String())
			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.GSTAmount).Sub(got.Discount)))
		})
	}
}

func TestSubtotalIsOrderIndependent(t *testing.T) {
	var c Cart
	for i := 1; i <= 8; i++ {
		c.AddItem(service("S", int64(i*37)))
	}
	for i := range c.Lines() {
		_, _ = c.SetQuantity(i, i+1)
	}
	lines := c.Lines()

	want := decimal.Zero
	for _, l := range lines {
		want = want.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]CartLine(nil), lines...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Calculate(shuffled, TaxConfig{}, decimal.Zero)
		assert.True(t, got.Subtotal.Equal(want))
	}
}

func TestEmptyCartTotals(t *testing.T) {
	got := Calculate(nil, TaxConfig{GSTEnabled: true, GSTPercentage: dec("18")}, decimal.Zero)
	assert.True(t, got.Total.IsZero())
	assert.False(t, got.IsNegative())
}
