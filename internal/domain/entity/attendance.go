package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttendancePresent is the status of a checked-in day
const AttendancePresent = "present"

// Attendance is one employee's working day. There is at most one row per
// user and date.
type Attendance struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_user_date" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Date      time.Time  `gorm:"type:date;not null;uniqueIndex:idx_attendance_user_date;index" json:"date"`
	CheckIn   time.Time  `gorm:"not null" json:"check_in"`
	CheckOut  *time.Time `json:"check_out,omitempty"`
	Status    string     `gorm:"size:20;not null;default:'present'" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new attendance record
func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Attendance model
func (Attendance) TableName() string {
	return "attendance"
}

// CheckedOut reports whether the day has been closed
func (a *Attendance) CheckedOut() bool {
	return a.CheckOut != nil
}
