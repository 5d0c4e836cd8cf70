package repository

import (
	"context"

	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/internal/infrastructure/tablestore"
	"gorm.io/gorm"
)

type settingsRepository struct {
	table *tablestore.Table[entity.BusinessSettings]
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) domainRepo.SettingsRepository {
	return &settingsRepository{table: tablestore.NewTable[entity.BusinessSettings](db)}
}

// Get returns the oldest settings row, or nil when none exists
func (r *settingsRepository) Get(ctx context.Context) (*entity.BusinessSettings, error) {
	return r.table.First(ctx, tablestore.Query{OrderBy: []tablestore.Order{{Column: "created_at"}}})
}

func (r *settingsRepository) Create(ctx context.Context, settings *entity.BusinessSettings) error {
	return r.table.Insert(ctx, settings)
}

func (r *settingsRepository) Update(ctx context.Context, settings *entity.BusinessSettings) error {
	return r.table.Save(ctx, settings)
}
