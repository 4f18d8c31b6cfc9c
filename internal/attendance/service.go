package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/frahmantamala/hr-portal/internal/employee"
)

type Repository interface {
	Create(ctx context.Context, a *Attendance) error
	GetForDay(ctx context.Context, employeeID, date string) (*Attendance, error)
	SetCheckOut(ctx context.Context, id string, at time.Time) error
	ListForEmployee(ctx context.Context, employeeID string) ([]*Attendance, error)
	ListForDay(ctx context.Context, date string) ([]*Attendance, error)
}

type EmployeeDirectory interface {
	GetByUserID(ctx context.Context, userID string) (*employee.Employee, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

type PolicyChecker interface {
	Can(ctx context.Context, principal *internal.Principal, action auth.Action, res auth.Resource) error
}

type Service struct {
	repo      Repository
	employees EmployeeDirectory
	policy    PolicyChecker
	bus       EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, employees EmployeeDirectory, policy PolicyChecker, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		employees: employees,
		policy:    policy,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// CheckIn opens today's row. A second check-in on the same day conflicts.
func (s *Service) CheckIn(ctx context.Context, principal *internal.Principal) (*Attendance, error) {
	emp, err := s.employees.GetByUserID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	date := now.Format("2006-01-02")

	existing, err := s.repo.GetForDay(ctx, emp.ID, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyCheckedIn
	}

	a := &Attendance{
		EmployeeID: emp.ID,
		UserID:     principal.ID,
		Date:       date,
		CheckIn:    &now,
		Status:     StatusFor(now),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.publishUpdate(ctx, a)
	s.logger.Info("checked in", "employee_id", emp.ID, "status", a.Status)
	return a, nil
}

// CheckOut closes today's row; checking out twice just moves the timestamp.
func (s *Service) CheckOut(ctx context.Context, principal *internal.Principal) (*Attendance, error) {
	emp, err := s.employees.GetByUserID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	date := now.Format("2006-01-02")

	a, err := s.repo.GetForDay(ctx, emp.ID, date)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotCheckedIn
	}

	if err := s.repo.SetCheckOut(ctx, a.ID, now); err != nil {
		return nil, err
	}
	a.CheckOut = &now

	s.publishUpdate(ctx, a)
	s.logger.Info("checked out", "employee_id", emp.ID)
	return a, nil
}

// History lists the caller's recent attendance.
func (s *Service) History(ctx context.Context, principal *internal.Principal) ([]*Attendance, error) {
	emp, err := s.employees.GetByUserID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForEmployee(ctx, emp.ID)
}

// Today lists everyone's row for the current day; HR and admin only.
func (s *Service) Today(ctx context.Context, principal *internal.Principal) ([]*Attendance, error) {
	if err := s.policy.Can(ctx, principal, auth.ActionViewAllAttendance, auth.Resource{}); err != nil {
		return nil, err
	}
	return s.repo.ListForDay(ctx, s.now().Format("2006-01-02"))
}

func (s *Service) publishUpdate(ctx context.Context, a *Attendance) {
	s.bus.Publish(ctx, events.NewAttendanceUpdated(events.AttendancePayload{
		UserID:     a.UserID,
		EmployeeID: a.EmployeeID,
		Date:       a.Date,
		CheckIn:    a.CheckIn,
		CheckOut:   a.CheckOut,
		Status:     a.Status,
	}))
}
