package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer types
const (
	CustomerTypeNew     = "new"
	CustomerTypeRegular = "regular"
	CustomerTypeVIP     = "vip"
)

// Customer is a salon client. Visit stats are maintained by payment recording.
type Customer struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	PhoneNumber   string          `gorm:"size:30;uniqueIndex;not null" json:"phone_number"`
	Email         *string         `gorm:"size:255" json:"email,omitempty"`
	CustomerType  string          `gorm:"size:20;not null;default:'new'" json:"customer_type"`
	TotalVisits   int             `gorm:"not null;default:0" json:"total_visits"`
	TotalSpent    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_spent"`
	LastVisitDate *time.Time      `gorm:"type:date" json:"last_visit_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// IsValidCustomerType reports whether t is a known customer type
func IsValidCustomerType(t string) bool {
	return t == CustomerTypeNew || t == CustomerTypeRegular || t == CustomerTypeVIP
}
