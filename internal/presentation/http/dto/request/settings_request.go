package request

import "github.com/shopspring/decimal"

// UpdateSettingsRequest is a partial update of the business profile
type UpdateSettingsRequest struct {
	BusinessName         *string          `json:"business_name" binding:"omitempty,min=1,max=255"`
	Address              *string          `json:"address"`
	Phone                *string          `json:"phone"`
	Email                *string          `json:"email" binding:"omitempty,email"`
	GSTNumber            *string          `json:"gst_number"`
	DefaultGSTPercentage *decimal.Decimal `json:"default_gst_percentage"`
	LogoURL              *string          `json:"logo_url"`
}
