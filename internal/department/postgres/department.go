package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frahmantamala/hr-portal/internal/department"
	"github.com/frahmantamala/hr-portal/internal/user"
)

// RoleUpdater flips a principal's role inside the assignment transaction.
// The user repository implements it.
type RoleUpdater interface {
	UpdateRoleTx(tx *gorm.DB, id, role string) error
}

// DepartmentRepository implements the department.Repository interface using GORM
type DepartmentRepository struct {
	db    *gorm.DB
	roles RoleUpdater
}

func NewDepartmentRepository(db *gorm.DB, roles RoleUpdater) *DepartmentRepository {
	return &DepartmentRepository{db: db, roles: roles}
}

func (r *DepartmentRepository) Create(ctx context.Context, d *department.Department) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id string) (*department.Department, error) {
	var d department.Department
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, department.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) List(ctx context.Context) ([]*department.View, error) {
	var views []*department.View
	err := r.db.WithContext(ctx).Raw(`
		SELECT d.id, d.name, d.description, d.manager_id, d.created_at,
		       CASE WHEN mu.id IS NULL THEN NULL
		            ELSE mu.first_name || ' ' || mu.last_name END AS manager_name,
		       mu.email AS manager_email,
		       (SELECT COUNT(*) FROM employees e WHERE e.department_id = d.id) AS employee_count
		FROM departments d
		LEFT JOIN users mu ON d.manager_id = mu.id
		ORDER BY d.name`).Scan(&views).Error
	return views, err
}

// AssignManager sets the department's manager, clearing any prior assignment
// so a principal never manages two departments, and promotes plain employees
// to the manager role. Passing nil clears the assignment.
func (r *DepartmentRepository) AssignManager(ctx context.Context, departmentID string, managerID *string) (*department.Department, error) {
	var d department.Department
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", departmentID).First(&d).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return department.ErrDepartmentNotFound
			}
			return err
		}

		if managerID != nil {
			var u user.User
			if err := tx.Where("id = ?", *managerID).First(&u).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return user.ErrUserNotFound
				}
				return err
			}
			if u.Role == user.RoleEmployee {
				if err := r.roles.UpdateRoleTx(tx, u.ID, user.RoleManager); err != nil {
					return err
				}
			}
			if err := tx.Model(&department.Department{}).
				Where("manager_id = ?", *managerID).
				Update("manager_id", nil).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&department.Department{}).Where("id = ?", departmentID).
			Updates(map[string]interface{}{"manager_id": managerID, "updated_at": time.Now()}).Error; err != nil {
			return err
		}

		d.ManagerID = managerID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&department.Department{}).Error
}

// ManagedDepartmentID implements auth.DepartmentResolver.
func (r *DepartmentRepository) ManagedDepartmentID(ctx context.Context, userID string) (*string, error) {
	var d department.Department
	err := r.db.WithContext(ctx).Where("manager_id = ?", userID).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d.ID, nil
}
