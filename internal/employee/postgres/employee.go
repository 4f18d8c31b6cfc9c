package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frahmantamala/hr-portal/internal/employee"
)

// EmployeeRepository implements the employee.Repository interface using GORM
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*employee.Employee, error) {
	var e employee.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) GetByUserID(ctx context.Context, userID string) (*employee.Employee, error) {
	var e employee.Employee
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	var out []*employee.Employee
	err := r.db.WithContext(ctx).Order("emp_code").Find(&out).Error
	return out, err
}

func (r *EmployeeRepository) Update(ctx context.Context, id string, dto employee.UpdateDTO) (*employee.Employee, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if dto.DepartmentID != nil {
		updates["department_id"] = *dto.DepartmentID
	}
	if dto.Designation != nil {
		updates["designation"] = *dto.Designation
	}
	if dto.Status != nil {
		updates["status"] = *dto.Status
	}

	res := r.db.WithContext(ctx).Model(&employee.Employee{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, employee.ErrEmployeeNotFound
	}
	return r.GetByID(ctx, id)
}
