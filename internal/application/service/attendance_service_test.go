package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/testutil"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInAndOut(t *testing.T) {
	db := testutil.NewMemDB()
	svc := NewAttendanceService(db.Attendance())
	clock := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	ctx := context.Background()
	ravi := db.AddUser(entity.User{Name: "Ravi", Email: "ravi@salon.test", IsActive: true})

	_, err := svc.CheckOut(ctx, ravi.ID)
	assert.True(t, apperror.IsCode(err, http.StatusConflict))
	assert.EqualError(t, err, "You have not checked in today")

	rec, err := svc.CheckIn(ctx, ravi.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-04", rec.Date.Format(time.DateOnly))
	assert.Equal(t, clock, rec.CheckIn)
	assert.Equal(t, entity.AttendancePresent, rec.Status)
	assert.False(t, rec.CheckedOut())

	_, err = svc.CheckIn(ctx, ravi.ID)
	assert.True(t, apperror.IsCode(err, http.StatusConflict))
	assert.EqualError(t, err, "Already checked in today")

	clock = clock.Add(8 * time.Hour)
	rec, err = svc.CheckOut(ctx, ravi.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.CheckOut)
	assert.Equal(t, clock, *rec.CheckOut)

	_, err = svc.CheckOut(ctx, ravi.ID)
	assert.EqualError(t, err, "Already checked out today")

	today, err := svc.Today(ctx, ravi.ID)
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.True(t, today.CheckedOut())

	clock = clock.AddDate(0, 0, 1)
	today, err = svc.Today(ctx, ravi.ID)
	require.NoError(t, err)
	assert.Nil(t, today)
	_, err = svc.CheckIn(ctx, ravi.ID)
	assert.NoError(t, err)
}

func TestListDayScopesStaffToThemselves(t *testing.T) {
	db := testutil.NewMemDB()
	svc := NewAttendanceService(db.Attendance())
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day.Add(12 * time.Hour) }
	ravi := db.AddUser(entity.User{Name: "Ravi"})
	sita := db.AddUser(entity.User{Name: "Sita"})
	db.AddAttendance(entity.Attendance{UserID: sita.ID, Date: day, CheckIn: day.Add(9 * time.Hour), Status: entity.AttendancePresent})
	db.AddAttendance(entity.Attendance{UserID: ravi.ID, Date: day, CheckIn: day.Add(10 * time.Hour), Status: entity.AttendancePresent})
	db.AddAttendance(entity.Attendance{UserID: ravi.ID, Date: day.AddDate(0, 0, -1), CheckIn: day.Add(-14 * time.Hour), Status: entity.AttendancePresent})
	ctx := context.Background()

	all, err := svc.ListDay(ctx, ravi.ID, true, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Sita", all[0].User.Name)
	assert.Equal(t, "Ravi", all[1].User.Name)

	own, err := svc.ListDay(ctx, ravi.ID, false, nil)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, ravi.ID, own[0].UserID)

	earlier := day.AddDate(0, 0, -3)
	none, err := svc.ListDay(ctx, ravi.ID, true, &earlier)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
