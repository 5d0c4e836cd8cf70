package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/repository"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/sangkips/salon-billing-api/pkg/notify"
)

// AttendanceService records employee check-ins and check-outs
type AttendanceService struct {
	attendanceRepo repository.AttendanceRepository
	now            func() time.Time
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(attendanceRepo repository.AttendanceRepository) *AttendanceService {
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		now:            time.Now,
	}
}

// startOfDay truncates t to midnight in its own location
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CheckIn opens today's record for userID
func (s *AttendanceService) CheckIn(ctx context.Context, userID uuid.UUID) (*entity.Attendance, error) {
	now := s.now()
	today := startOfDay(now)

	existing, err := s.attendanceRepo.GetForDay(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Already checked in today")
	}

	record := &entity.Attendance{
		UserID:  userID,
		Date:    today,
		CheckIn: now,
		Status:  entity.AttendancePresent,
	}
	if err := s.attendanceRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	notify.Success(ctx, "Checked in successfully!")
	return record, nil
}

// CheckOut closes today's record for userID
func (s *AttendanceService) CheckOut(ctx context.Context, userID uuid.UUID) (*entity.Attendance, error) {
	now := s.now()

	record, err := s.attendanceRepo.GetForDay(ctx, userID, startOfDay(now))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperror.NewConflictError("You have not checked in today")
	}

	closed, err := s.attendanceRepo.SetCheckOut(ctx, record.ID, now)
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, apperror.NewConflictError("Already checked out today")
	}
	record.CheckOut = &now

	notify.Success(ctx, "Checked out successfully!")
	return record, nil
}

// Today returns userID's record for the current day, or nil
func (s *AttendanceService) Today(ctx context.Context, userID uuid.UUID) (*entity.Attendance, error) {
	return s.attendanceRepo.GetForDay(ctx, userID, startOfDay(s.now()))
}

// ListDay returns the records of one day. Admins see everyone; staff see
// only their own.
func (s *AttendanceService) ListDay(ctx context.Context, userID uuid.UUID, isAdmin bool, date *time.Time) ([]entity.Attendance, error) {
	day := startOfDay(s.now())
	if date != nil {
		day = startOfDay(*date)
	}

	params := repository.AttendanceFilterParams{StartDate: &day, EndDate: &day}
	if !isAdmin {
		params.UserID = &userID
	}
	records, err := s.attendanceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []entity.Attendance{}
	}
	return records, nil
}
