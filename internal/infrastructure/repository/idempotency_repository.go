package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	domainRepo "github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/internal/infrastructure/tablestore"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	table *tablestore.Table[entity.IdempotencyKey]
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{table: tablestore.NewTable[entity.IdempotencyKey](db)}
}

func (r *idempotencyRepository) Find(ctx context.Context, userID uuid.UUID, key string) (*entity.IdempotencyKey, error) {
	return r.table.First(ctx, tablestore.Query{}, tablestore.Eq("key", key), tablestore.Eq("user_id", userID))
}

// Save inserts a new key or overwrites an expired one that carries its ID
func (r *idempotencyRepository) Save(ctx context.Context, ikey *entity.IdempotencyKey) error {
	if ikey.ID == uuid.Nil {
		return r.table.Insert(ctx, ikey)
	}
	return r.table.Save(ctx, ikey)
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.table.Delete(ctx, tablestore.Lt("expires_at", cutoff))
}
