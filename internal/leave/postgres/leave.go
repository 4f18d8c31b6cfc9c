package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/hr-portal/internal/balance"
	"github.com/frahmantamala/hr-portal/internal/leave"
)

// BalanceConsumer increments ledger usage inside the approval transaction.
type BalanceConsumer interface {
	ConsumeTx(tx *gorm.DB, employeeID, userID string, year int, category balance.Category, days int) error
}

// LeaveRepository implements the leave.Repository interface using GORM. Every
// guard-then-mutate transition runs in one transaction over a locked row, so
// concurrent reviews of the same request serialize and the loser sees the
// settled sub-status.
type LeaveRepository struct {
	db       *gorm.DB
	balances BalanceConsumer
}

func NewLeaveRepository(db *gorm.DB, balances BalanceConsumer) *LeaveRepository {
	return &LeaveRepository{db: db, balances: balances}
}

func (r *LeaveRepository) Create(ctx context.Context, l *leave.Leave) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LeaveRepository) GetByID(ctx context.Context, id string) (*leave.Detail, error) {
	var d leave.Detail
	err := r.db.WithContext(ctx).Raw(`
		SELECT l.*, e.department_id
		FROM leaves l
		JOIN employees e ON l.employee_id = e.id
		WHERE l.id = ?`, id).Scan(&d).Error
	if err != nil {
		return nil, err
	}
	if d.ID == "" {
		return nil, leave.ErrLeaveNotFound
	}
	return &d, nil
}

const listSelect = `
	SELECT l.id, l.user_id, l.employee_id, e.emp_code,
	       u.first_name || ' ' || u.last_name AS name,
	       e.department_id, d.name AS department_name,
	       l.leave_type, l.start_date, l.end_date, l.reason,
	       l.status, l.manager_status, l.hr_status,
	       l.manager_approved_by,
	       CASE WHEN mu.id IS NULL THEN NULL
	            ELSE mu.first_name || ' ' || mu.last_name END AS manager_approver_name,
	       l.hr_approved_by,
	       CASE WHEN hu.id IS NULL THEN NULL
	            ELSE hu.first_name || ' ' || hu.last_name END AS hr_approver_name,
	       l.created_at
	FROM leaves l
	JOIN users u ON l.user_id = u.id
	JOIN employees e ON l.employee_id = e.id
	LEFT JOIN departments d ON e.department_id = d.id
	LEFT JOIN users mu ON l.manager_approved_by = mu.id
	LEFT JOIN users hu ON l.hr_approved_by = hu.id`

func (r *LeaveRepository) ListAll(ctx context.Context) ([]*leave.View, error) {
	var views []*leave.View
	err := r.db.WithContext(ctx).Raw(listSelect + " ORDER BY l.created_at DESC").Scan(&views).Error
	return views, err
}

func (r *LeaveRepository) ListForUser(ctx context.Context, userID string) ([]*leave.View, error) {
	var views []*leave.View
	err := r.db.WithContext(ctx).
		Raw(listSelect+" WHERE l.user_id = ? ORDER BY l.created_at DESC", userID).
		Scan(&views).Error
	return views, err
}

// ListForManager returns the manager's own requests plus every request from
// their managed department.
func (r *LeaveRepository) ListForManager(ctx context.Context, userID, departmentID string) ([]*leave.View, error) {
	var views []*leave.View
	err := r.db.WithContext(ctx).
		Raw(listSelect+" WHERE l.user_id = ? OR e.department_id = ? ORDER BY l.created_at DESC", userID, departmentID).
		Scan(&views).Error
	return views, err
}

// lockByID loads the leave row FOR UPDATE within tx.
func lockByID(tx *gorm.DB, id string) (*leave.Leave, error) {
	var l leave.Leave
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leave.ErrLeaveNotFound
		}
		return nil, err
	}
	return &l, nil
}

func applyTransition(tx *gorm.DB, l *leave.Leave) error {
	return tx.Model(&leave.Leave{}).Where("id = ?", l.ID).
		Updates(map[string]interface{}{
			"manager_status":      l.ManagerStatus,
			"hr_status":           l.HRStatus,
			"status":              l.Status,
			"manager_approved_by": l.ManagerApprovedBy,
			"hr_approved_by":      l.HRApprovedBy,
			"updated_at":          time.Now(),
		}).Error
}

func (r *LeaveRepository) ManagerApprove(ctx context.Context, id, approverID string) (*leave.Leave, error) {
	var out *leave.Leave
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := lockByID(tx, id)
		if err != nil {
			return err
		}
		if err := l.CheckManagerApprove(); err != nil {
			return err
		}

		l.ManagerStatus = leave.SubStatusApproved
		l.ManagerApprovedBy = &approverID
		l.Status = leave.CompositeStatus(l.ManagerStatus, l.HRStatus)

		if err := applyTransition(tx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	return out, err
}

// ManagerReject is deliberately unguarded: re-rejecting is an idempotent
// terminal transition.
func (r *LeaveRepository) ManagerReject(ctx context.Context, id, approverID string) (*leave.Leave, error) {
	var out *leave.Leave
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := lockByID(tx, id)
		if err != nil {
			return err
		}

		l.ManagerStatus = leave.SubStatusRejected
		l.ManagerApprovedBy = &approverID
		l.Status = leave.StatusRejected

		if err := applyTransition(tx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	return out, err
}

// HRApprove settles the request and consumes the ledger in the same
// transaction. The ledger charge lands on the current calendar year, not the
// leave's start year. If the cap re-check fails the whole transition rolls
// back.
func (r *LeaveRepository) HRApprove(ctx context.Context, id, approverID string) (*leave.Leave, error) {
	var out *leave.Leave
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := lockByID(tx, id)
		if err != nil {
			return err
		}
		if err := l.CheckHRApprove(); err != nil {
			return err
		}

		l.HRStatus = leave.SubStatusApproved
		l.HRApprovedBy = &approverID
		l.Status = leave.CompositeStatus(l.ManagerStatus, l.HRStatus)

		if err := applyTransition(tx, l); err != nil {
			return err
		}

		if err := r.balances.ConsumeTx(tx, l.EmployeeID, l.UserID, time.Now().Year(), l.Category, l.Days()); err != nil {
			return err
		}

		out = l
		return nil
	})
	return out, err
}

// HRReject mirrors ManagerReject: terminal, unguarded on the HR sub-status,
// and never touches the ledger.
func (r *LeaveRepository) HRReject(ctx context.Context, id, approverID string) (*leave.Leave, error) {
	var out *leave.Leave
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := lockByID(tx, id)
		if err != nil {
			return err
		}

		l.HRStatus = leave.SubStatusRejected
		l.HRApprovedBy = &approverID
		l.Status = leave.StatusRejected

		if err := applyTransition(tx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	return out, err
}
