package leave

import (
	"time"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/balance"
)

type ApplyDTO struct {
	LeaveType balance.Category `json:"leaveType"`
	StartDate time.Time        `json:"startDate"`
	EndDate   time.Time        `json:"endDate"`
	Reason    string           `json:"reason"`
}

func (dto ApplyDTO) Validate() error {
	if !balance.ValidCategory(dto.LeaveType) {
		return internal.NewValidationError("invalid leave type", internal.ErrCodeValidationFailed)
	}
	if dto.StartDate.IsZero() || dto.EndDate.IsZero() {
		return internal.NewValidationError("start and end dates are required", internal.ErrCodeValidationFailed)
	}
	if dto.EndDate.Before(dto.StartDate) {
		return ErrInvalidRange
	}
	return nil
}

// Detail is a leave joined with the employee's department, which the policy
// layer needs to route manager reviews.
type Detail struct {
	Leave
	DepartmentID *string `json:"departmentId,omitempty" gorm:"column:department_id"`
}

// View is the listing read model with resolved names.
type View struct {
	ID                  string    `json:"id" gorm:"column:id"`
	UserID              string    `json:"userId" gorm:"column:user_id"`
	EmployeeID          string    `json:"employeeId" gorm:"column:employee_id"`
	EmpCode             string    `json:"empCode" gorm:"column:emp_code"`
	Name                string    `json:"name" gorm:"column:name"`
	DepartmentID        *string   `json:"departmentId,omitempty" gorm:"column:department_id"`
	DepartmentName      *string   `json:"departmentName,omitempty" gorm:"column:department_name"`
	LeaveType           string    `json:"leaveType" gorm:"column:leave_type"`
	StartDate           time.Time `json:"startDate" gorm:"column:start_date"`
	EndDate             time.Time `json:"endDate" gorm:"column:end_date"`
	Reason              string    `json:"reason" gorm:"column:reason"`
	Status              string    `json:"status" gorm:"column:status"`
	ManagerStatus       string    `json:"managerStatus" gorm:"column:manager_status"`
	HRStatus            string    `json:"hrStatus" gorm:"column:hr_status"`
	ManagerApprovedBy   *string   `json:"managerApprovedBy,omitempty" gorm:"column:manager_approved_by"`
	ManagerApproverName *string   `json:"managerApproverName,omitempty" gorm:"column:manager_approver_name"`
	HRApprovedBy        *string   `json:"hrApprovedBy,omitempty" gorm:"column:hr_approved_by"`
	HRApproverName      *string   `json:"hrApproverName,omitempty" gorm:"column:hr_approver_name"`
	CreatedAt           time.Time `json:"createdAt" gorm:"column:created_at"`
}
