package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds one unit of a catalog item to the cart
type AddItemRequest struct {
	ItemType string    `json:"item_type" binding:"required,oneof=service product"`
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
}

// SetQuantityRequest overwrites a cart line quantity
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetTaxRequest replaces the session GST settings
type SetTaxRequest struct {
	GSTEnabled    bool            `json:"gst_enabled"`
	GSTPercentage decimal.Decimal `json:"gst_percentage"`
}

// SetDiscountRequest replaces the flat discount
type SetDiscountRequest struct {
	Discount decimal.Decimal `json:"discount"`
}

// SelectCustomerRequest selects the customer of the next checkout
type SelectCustomerRequest struct {
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
}

// RecordPaymentRequest records a payment. A missing amount pays the invoice total.
type RecordPaymentRequest struct {
	PaymentMethod string           `json:"payment_method" binding:"required"`
	Amount        *decimal.Decimal `json:"amount"`
}
