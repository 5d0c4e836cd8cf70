package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
)

// AttendanceFilterParams narrows attendance listings. Dates are inclusive.
type AttendanceFilterParams struct {
	UserID    *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// AttendanceRepository defines the interface for attendance records
type AttendanceRepository interface {
	Create(ctx context.Context, record *entity.Attendance) error
	// GetForDay returns the user's record for date, or nil
	GetForDay(ctx context.Context, userID uuid.UUID, date time.Time) (*entity.Attendance, error)
	// SetCheckOut closes an open record. It reports false when the record
	// was already closed.
	SetCheckOut(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// List returns matching records with their user, oldest day first
	List(ctx context.Context, params AttendanceFilterParams) ([]entity.Attendance, error)
}
