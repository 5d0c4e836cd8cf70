package service

import (
	"context"

	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/sangkips/salon-billing-api/pkg/notify"
	"github.com/shopspring/decimal"
)

// SettingsService handles the business profile
type SettingsService struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
	}
}

// GetSettings retrieves the business settings, creating defaults if none exist
func (s *SettingsService) GetSettings(ctx context.Context) (*entity.BusinessSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if settings == nil {
		settings = entity.DefaultBusinessSettings()
		if err := s.settingsRepo.Create(ctx, settings); err != nil {
			return nil, err
		}
	}

	return settings, nil
}

// UpdateSettingsInput is a partial update; nil fields are left unchanged
type UpdateSettingsInput struct {
	BusinessName         *string
	Address              *string
	Phone                *string
	Email                *string
	GSTNumber            *string
	DefaultGSTPercentage *decimal.Decimal
	LogoURL              *string
}

// UpdateSettings applies the non-nil fields of input
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.BusinessSettings, error) {
	if input.DefaultGSTPercentage != nil && input.DefaultGSTPercentage.IsNegative() {
		return nil, apperror.NewValidationMessage("default_gst_percentage cannot be negative")
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	setString(&settings.BusinessName, input.BusinessName)
	setString(&settings.Address, input.Address)
	setString(&settings.Phone, input.Phone)
	setString(&settings.Email, input.Email)
	setString(&settings.GSTNumber, input.GSTNumber)
	setString(&settings.LogoURL, input.LogoURL)
	if input.DefaultGSTPercentage != nil {
		settings.DefaultGSTPercentage = *input.DefaultGSTPercentage
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}
	notify.Success(ctx, "Settings updated successfully")
	return settings, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
