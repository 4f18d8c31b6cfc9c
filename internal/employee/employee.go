package employee

import (
	"time"

	"github.com/frahmantamala/hr-portal/internal"
)

// Employment statuses.
const (
	StatusActive     = "active"
	StatusOnLeave    = "on_leave"
	StatusTerminated = "terminated"
)

// Employee is the HR profile attached to a principal. The department reference
// here is what the leave workflow routes manager approvals by; the manager's
// own department comes from the Department→manager relation instead.
type Employee struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"userId" gorm:"column:user_id;uniqueIndex;not null"`
	DepartmentID *string   `json:"departmentId,omitempty" gorm:"column:department_id"`
	EmpCode      string    `json:"empCode" gorm:"column:emp_code"`
	Designation  string    `json:"designation"`
	Status       string    `json:"status" gorm:"default:active"`
	JoinedAt     time.Time `json:"joinedAt" gorm:"column:joined_at"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Employee) TableName() string {
	return "employees"
}

type UpdateDTO struct {
	DepartmentID *string `json:"departmentId"`
	Designation  *string `json:"designation"`
	Status       *string `json:"status"`
}

func (dto UpdateDTO) Validate() error {
	if dto.Status != nil {
		switch *dto.Status {
		case StatusActive, StatusOnLeave, StatusTerminated:
		default:
			return internal.NewValidationError("invalid employment status", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

var ErrEmployeeNotFound = internal.NewNotFoundError("Employee record not found", internal.ErrCodeEmployeeNotFound)
