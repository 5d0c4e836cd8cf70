package repository

import (
	"context"

	"github.com/sangkips/salon-billing-api/internal/domain/entity"
)

// SettingsRepository defines the interface for the business settings row
type SettingsRepository interface {
	Get(ctx context.Context) (*entity.BusinessSettings, error)
	Create(ctx context.Context, settings *entity.BusinessSettings) error
	Update(ctx context.Context, settings *entity.BusinessSettings) error
}
