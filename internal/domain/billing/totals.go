package billing

import (
	"github.com/sangkips/salon-billing-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// TaxConfig is the GST setting of a session
type TaxConfig struct {
	GSTEnabled    bool            `json:"gst_enabled"`
	GSTPercentage decimal.Decimal `json:"gst_percentage"`
}

// Totals is the computed money summary of a cart. Values are unrounded.
type Totals struct {
	Subtotal               decimal.Decimal `json:"subtotal"`
	GSTPercentage          decimal.Decimal `json:"gst_percentage"`
	GSTAmount              decimal.Decimal `json:"gst_amount"`
	Discount               decimal.Decimal `json:"discount"`
	Total                  decimal.Decimal `json:"total"`
	GSTApplied             bool            `json:"gst_applied"`
	EffectiveGSTPercentage decimal.Decimal `json:"effective_gst_percentage"`
}

// Calculate computes subtotal, GST and total:
//
//	subtotal  = Σ lineTotal
//	gstAmount = gstEnabled ? subtotal × gstPercentage / 100 : 0
//	total     = subtotal + gstAmount − discount
//
// The total is not floored; callers decide whether a negative total is acceptable.
func Calculate(lines []CartLine, tax TaxConfig, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
	}

	gst := decimal.Zero
	effective := decimal.Zero
	if tax.GSTEnabled {
		gst = utils.Percentage(subtotal, tax.GSTPercentage)
		effective = tax.GSTPercentage
	}

	return Totals{
		Subtotal:               subtotal,
		GSTPercentage:          tax.GSTPercentage,
		GSTAmount:              gst,
		Discount:               discount,
		Total:                  subtotal.Add(gst).Sub(discount),
		GSTApplied:             tax.GSTEnabled,
		EffectiveGSTPercentage: effective,
	}
}

// IsNegative reports whether the discount exceeds subtotal plus tax
func (t Totals) IsNegative() bool {
	return t.Total.IsNegative()
}
