package department

import (
	"time"

	"github.com/frahmantamala/hr-portal/internal"
)

type Department struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	ManagerID   *string   `json:"managerId,omitempty" gorm:"column:manager_id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Department) TableName() string {
	return "departments"
}

// View is the listing shape: department plus resolved manager identity and
// headcount.
type View struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ManagerID     *string   `json:"managerId,omitempty"`
	ManagerName   *string   `json:"managerName,omitempty"`
	ManagerEmail  *string   `json:"managerEmail,omitempty"`
	EmployeeCount int       `json:"employeeCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CreateDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (dto CreateDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type AssignManagerDTO struct {
	ManagerID *string `json:"managerId"`
}

var ErrDepartmentNotFound = internal.NewNotFoundError("Department not found", internal.ErrCodeDepartmentNotFound)
