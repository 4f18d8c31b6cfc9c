package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frahmantamala/hr-portal/internal/attendance"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Create(ctx context.Context, a *attendance.Attendance) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AttendanceRepository) GetForDay(ctx context.Context, employeeID, date string) (*attendance.Attendance, error) {
	var a attendance.Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date = ?", employeeID, date).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttendanceRepository) SetCheckOut(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&attendance.Attendance{}).
		Where("id = ?", id).
		Update("check_out", at).Error
}

func (r *AttendanceRepository) ListForEmployee(ctx context.Context, employeeID string) ([]*attendance.Attendance, error) {
	var rows []*attendance.Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("date DESC").
		Limit(31).
		Find(&rows).Error
	return rows, err
}

func (r *AttendanceRepository) ListForDay(ctx context.Context, date string) ([]*attendance.Attendance, error) {
	var rows []*attendance.Attendance
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("check_in ASC").
		Find(&rows).Error
	return rows, err
}
