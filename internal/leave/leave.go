package leave

import (
	"time"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/balance"
)

// Sub-statuses for the independent manager and HR review tracks.
const (
	SubStatusPending  = "pending"
	SubStatusApproved = "approved"
	SubStatusRejected = "rejected"
)

// Composite statuses derived from the two sub-statuses.
const (
	StatusPending         = "pending"
	StatusManagerApproved = "manager_approved"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
)

// Leave is a request moving through the two-stage approval workflow. Rows are
// never deleted; rejection is terminal, not removal. Approver ids are recorded
// once set and never cleared.
type Leave struct {
	ID         string `json:"id" gorm:"primaryKey"`
	UserID     string `json:"userId" gorm:"column:user_id;not null"`
	EmployeeID string `json:"employeeId" gorm:"column:employee_id;not null"`

	Category  balance.Category `json:"leaveType" gorm:"column:leave_type;not null"`
	StartDate time.Time        `json:"startDate" gorm:"column:start_date;type:date"`
	EndDate   time.Time        `json:"endDate" gorm:"column:end_date;type:date"`
	Reason    string           `json:"reason"`

	Status        string `json:"status" gorm:"default:pending"`
	ManagerStatus string `json:"managerStatus" gorm:"column:manager_status;default:pending"`
	HRStatus      string `json:"hrStatus" gorm:"column:hr_status;default:pending"`

	ManagerApprovedBy *string `json:"managerApprovedBy,omitempty" gorm:"column:manager_approved_by"`
	HRApprovedBy      *string `json:"hrApprovedBy,omitempty" gorm:"column:hr_approved_by"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Leave) TableName() string {
	return "leaves"
}

// Days is the inclusive duration of the range at day granularity.
func (l *Leave) Days() int {
	return DaysBetween(l.StartDate, l.EndDate)
}

func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// CompositeStatus derives the human-facing status from the two sub-statuses.
// A rejection on either track wins; both approvals are needed for approved.
func CompositeStatus(managerStatus, hrStatus string) string {
	if managerStatus == SubStatusRejected || hrStatus == SubStatusRejected {
		return StatusRejected
	}
	if managerStatus == SubStatusApproved && hrStatus == SubStatusApproved {
		return StatusApproved
	}
	if managerStatus == SubStatusApproved {
		return StatusManagerApproved
	}
	return StatusPending
}

// CheckManagerApprove guards the manager approval transition.
func (l *Leave) CheckManagerApprove() error {
	if l.ManagerStatus != SubStatusPending {
		return ErrAlreadyReviewedByManager
	}
	return nil
}

// CheckHRApprove guards the final approval transition: manager first, then at
// most one HR review.
func (l *Leave) CheckHRApprove() error {
	if l.ManagerStatus != SubStatusApproved {
		return ErrNotManagerApproved
	}
	if l.HRStatus != SubStatusPending {
		return ErrAlreadyReviewedByHR
	}
	return nil
}

var (
	ErrLeaveNotFound = internal.NewNotFoundError("Leave not found", internal.ErrCodeLeaveNotFound)

	ErrAlreadyReviewedByManager = internal.NewValidationError("Leave already reviewed by manager", internal.ErrCodeAlreadyReviewed)
	ErrAlreadyReviewedByHR      = internal.NewValidationError("Leave already reviewed by HR", internal.ErrCodeAlreadyReviewed)
	ErrNotManagerApproved       = internal.NewValidationError("Leave must be approved by manager first", internal.ErrCodeNotManagerApproved)
	ErrInvalidRange             = internal.NewValidationError("End date must not be before start date", internal.ErrCodeInvalidRange)
)
