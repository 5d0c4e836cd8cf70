package entity

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is the persisted header of one checkout. Only PaymentStatus
// changes after creation.
type Invoice struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNumber string             `gorm:"size:100;uniqueIndex;not null" json:"invoice_number"`
	CustomerID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	CreatedBy     *uuid.UUID         `gorm:"type:uuid;index" json:"created_by,omitempty"`
	Subtotal      decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	GSTPercentage decimal.Decimal    `gorm:"column:gst_percentage;type:numeric(5,2);not null;default:0" json:"gst_percentage"`
	GSTAmount     decimal.Decimal    `gorm:"column:gst_amount;type:numeric(12,2);not null;default:0" json:"gst_amount"`
	Discount      decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	TotalAmount   decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	PaymentStatus enum.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	IsGSTInvoice  bool               `gorm:"column:is_gst_invoice;default:false" json:"is_gst_invoice"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// AmountPaid sums the loaded payments
func (i *Invoice) AmountPaid() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range i.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// InvoiceItem is an immutable snapshot of one cart line
type InvoiceItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Position   int             `gorm:"not null;default:0" json:"position"`
	ItemType   enum.ItemKind   `gorm:"type:varchar(20);not null" json:"item_type"`
	ItemID     uuid.UUID       `gorm:"type:uuid;not null" json:"item_id"`
	ItemName   string          `gorm:"size:255;not null" json:"item_name"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new invoice item
func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// SortItems orders items by their cart position
func SortItems(items []InvoiceItem) {
	slices.SortStableFunc(items, func(a, b InvoiceItem) int { return cmp.Compare(a.Position, b.Position) })
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// Payment is an append-only amount applied against an invoice
type Payment struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"invoice_id"`
	PaymentMethod enum.PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	Amount        decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentDate   time.Time          `gorm:"not null" json:"payment_date"`
	CreatedAt     time.Time          `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
