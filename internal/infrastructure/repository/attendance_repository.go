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

type attendanceRepository struct {
	table *tablestore.Table[entity.Attendance]
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *gorm.DB) domainRepo.AttendanceRepository {
	return &attendanceRepository{table: tablestore.NewTable[entity.Attendance](db)}
}

var byDayThenCheckIn = []tablestore.Order{{Column: "date"}, {Column: "check_in"}}

func (r *attendanceRepository) Create(ctx context.Context, record *entity.Attendance) error {
	return r.table.Insert(ctx, record)
}

func (r *attendanceRepository) GetForDay(ctx context.Context, userID uuid.UUID, date time.Time) (*entity.Attendance, error) {
	return r.table.First(ctx, tablestore.Query{},
		tablestore.Eq("user_id", userID),
		tablestore.Eq("date", date.Format(time.DateOnly)),
	)
}

func (r *attendanceRepository) SetCheckOut(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	n, err := r.table.Update(ctx, map[string]any{"check_out": at},
		tablestore.Eq("id", id),
		tablestore.IsNull("check_out"),
	)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *attendanceRepository) List(ctx context.Context, params domainRepo.AttendanceFilterParams) ([]entity.Attendance, error) {
	var filters []tablestore.Filter
	if params.UserID != nil {
		filters = append(filters, tablestore.Eq("user_id", *params.UserID))
	}
	if params.StartDate != nil {
		filters = append(filters, tablestore.Gte("date", params.StartDate.Format(time.DateOnly)))
	}
	if params.EndDate != nil {
		filters = append(filters, tablestore.Lte("date", params.EndDate.Format(time.DateOnly)))
	}
	return r.table.Select(ctx, tablestore.Query{Preload: []string{"User"}, OrderBy: byDayThenCheckIn}, filters...)
}
