package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
)

// IdempotencyRepository stores replayable responses keyed by user and key
type IdempotencyRepository interface {
	Find(ctx context.Context, userID uuid.UUID, key string) (*entity.IdempotencyKey, error)
	Save(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired removes keys that expired before cutoff
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
