package attendance

import (
	"time"

	"github.com/frahmantamala/hr-portal/internal"
)

const (
	StatusPresent = "present"
	StatusLate    = "late"
)

// lateAfter is the local clock-in cutoff; later check-ins are marked late.
var lateAfter = 9*time.Hour + 30*time.Minute

// Attendance is one employee-day row. Date is stored as a plain YYYY-MM-DD
// string so the daily uniqueness constraint is timezone-stable.
type Attendance struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	EmployeeID string     `json:"employeeId" gorm:"column:employee_id;uniqueIndex:idx_attendance_day"`
	UserID     string     `json:"userId" gorm:"column:user_id"`
	Date       string     `json:"date" gorm:"uniqueIndex:idx_attendance_day"`
	CheckIn    *time.Time `json:"checkIn,omitempty" gorm:"column:check_in"`
	CheckOut   *time.Time `json:"checkOut,omitempty" gorm:"column:check_out"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"column:created_at"`
}

func (Attendance) TableName() string { return "attendance" }

// StatusFor classifies a check-in instant against the late cutoff.
func StatusFor(t time.Time) string {
	sinceMidnight := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	if sinceMidnight > lateAfter {
		return StatusLate
	}
	return StatusPresent
}

var (
	ErrAlreadyCheckedIn = internal.NewConflictError("Already checked in today", internal.ErrCodeValidationFailed)
	ErrNotCheckedIn     = internal.NewValidationError("No check-in found for today", internal.ErrCodeValidationFailed)
)
