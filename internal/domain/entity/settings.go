package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultGSTPercentage applies until the business configures its own rate
var DefaultGSTPercentage = decimal.NewFromInt(18)

// BusinessSettings is the single-row business profile printed on invoices
type BusinessSettings struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BusinessName         string          `gorm:"size:255" json:"business_name"`
	Address              string          `gorm:"type:text" json:"address"`
	Phone                string          `gorm:"size:30" json:"phone"`
	Email                string          `gorm:"size:255" json:"email"`
	GSTNumber            string          `gorm:"column:gst_number;size:50" json:"gst_number"`
	DefaultGSTPercentage decimal.Decimal `gorm:"column:default_gst_percentage;type:numeric(5,2);not null;default:18" json:"default_gst_percentage"`
	LogoURL              string          `gorm:"size:500" json:"logo_url"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating the settings row
func (s *BusinessSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BusinessSettings model
func (BusinessSettings) TableName() string {
	return "business_settings"
}

// DefaultBusinessSettings returns the settings used before any are saved
func DefaultBusinessSettings() *BusinessSettings {
	return &BusinessSettings{
		BusinessName:         "Salon",
		DefaultGSTPercentage: DefaultGSTPercentage,
	}
}
