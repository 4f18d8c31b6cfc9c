package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/balance"
	"github.com/frahmantamala/hr-portal/internal/department"
	"github.com/frahmantamala/hr-portal/internal/employee"
	"github.com/frahmantamala/hr-portal/internal/user"
)

// Repository is the transactional store for leave requests. The approve and
// reject methods run their guard-then-mutate sequence atomically on a locked
// row; HRApprove additionally consumes the ledger in the same transaction.
type Repository interface {
	Create(ctx context.Context, l *Leave) error
	GetByID(ctx context.Context, id string) (*Detail, error)
	ListAll(ctx context.Context) ([]*View, error)
	ListForUser(ctx context.Context, userID string) ([]*View, error)
	ListForManager(ctx context.Context, userID, departmentID string) ([]*View, error)
	ManagerApprove(ctx context.Context, id, approverID string) (*Leave, error)
	ManagerReject(ctx context.Context, id, approverID string) (*Leave, error)
	HRApprove(ctx context.Context, id, approverID string) (*Leave, error)
	HRReject(ctx context.Context, id, approverID string) (*Leave, error)
}

type EmployeeDirectory interface {
	GetByUserID(ctx context.Context, userID string) (*employee.Employee, error)
}

type DepartmentDirectory interface {
	GetByID(ctx context.Context, id string) (*department.Department, error)
	ManagedDepartmentID(ctx context.Context, userID string) (*string, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	ListIDsByRoles(ctx context.Context, roles ...string) ([]string, error)
}

// BalanceChecker is the request-time availability pre-check. The authoritative
// re-check happens inside the HR approval transaction.
type BalanceChecker interface {
	CheckAvailability(ctx context.Context, employeeID, userID string, category balance.Category, days, year int) error
}

// Notifier appends to the outbox; the associated realtime push is best effort
// and failures are logged, never surfaced.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, category, link string)
}

type PolicyChecker interface {
	Can(ctx context.Context, principal *internal.Principal, action auth.Action, res auth.Resource) error
}

type Service struct {
	repo        Repository
	employees   EmployeeDirectory
	departments DepartmentDirectory
	users       UserDirectory
	balances    BalanceChecker
	policy      PolicyChecker
	notifier    Notifier
	logger      *slog.Logger
}

func NewService(
	repo Repository,
	employees EmployeeDirectory,
	departments DepartmentDirectory,
	users UserDirectory,
	balances BalanceChecker,
	policy PolicyChecker,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		employees:   employees,
		departments: departments,
		users:       users,
		balances:    balances,
		policy:      policy,
		notifier:    notifier,
		logger:      logger,
	}
}

// Apply creates a request with both sub-statuses pending after the ledger
// pre-check, then notifies the department manager and every HR/admin.
func (s *Service) Apply(ctx context.Context, principal *internal.Principal, dto ApplyDTO) (*Leave, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	emp, err := s.employees.GetByUserID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	days := DaysBetween(dto.StartDate, dto.EndDate)
	if dto.LeaveType != balance.CategoryUnpaid {
		if err := s.balances.CheckAvailability(ctx, emp.ID, principal.ID, dto.LeaveType, days, time.Now().Year()); err != nil {
			return nil, err
		}
	}

	l := &Leave{
		UserID:        principal.ID,
		EmployeeID:    emp.ID,
		Category:      dto.LeaveType,
		StartDate:     dto.StartDate,
		EndDate:       dto.EndDate,
		Reason:        dto.Reason,
		Status:        StatusPending,
		ManagerStatus: SubStatusPending,
		HRStatus:      SubStatusPending,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("failed to create leave", "error", err, "user_id", principal.ID)
		return nil, err
	}

	applicant := principal.Email
	if u, err := s.users.GetByID(ctx, principal.ID); err == nil {
		applicant = u.FullName()
	}

	if emp.DepartmentID != nil {
		if dept, err := s.departments.GetByID(ctx, *emp.DepartmentID); err == nil && dept.ManagerID != nil {
			s.notifier.Notify(ctx, *dept.ManagerID, "New Leave Request",
				fmt.Sprintf("%s applied for %s leave (%d days). Awaiting your approval.", applicant, l.Category, days),
				"leave", "/leaves")
		}
	}
	s.notifyRoles(ctx, "New Leave Request",
		fmt.Sprintf("%s applied for %s leave (%d days). Pending manager approval first.", applicant, l.Category, days))

	s.logger.Info("leave applied",
		"leave_id", l.ID,
		"user_id", principal.ID,
		"leave_type", l.Category,
		"days", days)
	return l, nil
}

// List applies the visibility contract: HR/admin see everything, a manager
// sees their own requests plus their department's, everyone else their own.
func (s *Service) List(ctx context.Context, principal *internal.Principal) ([]*View, error) {
	if s.policy.Can(ctx, principal, auth.ActionViewAllLeaves, auth.Resource{}) == nil {
		return s.repo.ListAll(ctx)
	}

	if principal.Role == user.RoleManager {
		managed, err := s.departments.ManagedDepartmentID(ctx, principal.ID)
		if err != nil {
			return nil, err
		}
		if managed != nil {
			return s.repo.ListForManager(ctx, principal.ID, *managed)
		}
	}

	return s.repo.ListForUser(ctx, principal.ID)
}

func (s *Service) ManagerApprove(ctx context.Context, principal *internal.Principal, id string) (*Leave, error) {
	detail, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Can(ctx, principal, auth.ActionManagerReviewLeave,
		auth.Resource{DepartmentID: detail.DepartmentID, OwnerID: detail.UserID}); err != nil {
		return nil, err
	}

	l, err := s.repo.ManagerApprove(ctx, id, principal.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, l.UserID, "Leave Approved by Manager",
		"Your leave request has been approved by your manager. Awaiting HR approval.", "leave", "/leaves")
	if l.Status != StatusApproved {
		s.notifyRoles(ctx, "Leave Awaiting HR Approval",
			"A leave request has been approved by manager and needs your final approval.")
	}

	s.logger.Info("leave approved by manager", "leave_id", id, "approver_id", principal.ID, "status", l.Status)
	return l, nil
}

func (s *Service) ManagerReject(ctx context.Context, principal *internal.Principal, id string) (*Leave, error) {
	detail, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Can(ctx, principal, auth.ActionManagerReviewLeave,
		auth.Resource{DepartmentID: detail.DepartmentID, OwnerID: detail.UserID}); err != nil {
		return nil, err
	}

	l, err := s.repo.ManagerReject(ctx, id, principal.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, l.UserID, "Leave Rejected by Manager",
		"Your leave request has been rejected by your manager.", "leave", "/leaves")

	s.logger.Info("leave rejected by manager", "leave_id", id, "approver_id", principal.ID)
	return l, nil
}

// HRApprove is the final transition: it settles the composite status and is
// the only place ledger consumption ever happens.
func (s *Service) HRApprove(ctx context.Context, principal *internal.Principal, id string) (*Leave, error) {
	if err := s.policy.Can(ctx, principal, auth.ActionHRReviewLeave, auth.Resource{}); err != nil {
		return nil, err
	}

	l, err := s.repo.HRApprove(ctx, id, principal.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, l.UserID, "Leave Fully Approved",
		"Your leave request has been approved by both manager and HR. Enjoy your time off!", "leave", "/leaves")

	s.logger.Info("leave fully approved",
		"leave_id", id,
		"approver_id", principal.ID,
		"leave_type", l.Category,
		"days", l.Days())
	return l, nil
}

func (s *Service) HRReject(ctx context.Context, principal *internal.Principal, id string) (*Leave, error) {
	if err := s.policy.Can(ctx, principal, auth.ActionHRReviewLeave, auth.Resource{}); err != nil {
		return nil, err
	}

	l, err := s.repo.HRReject(ctx, id, principal.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, l.UserID, "Leave Rejected by HR",
		"Your leave request has been rejected by HR.", "leave", "/leaves")

	s.logger.Info("leave rejected by hr", "leave_id", id, "approver_id", principal.ID)
	return l, nil
}

func (s *Service) notifyRoles(ctx context.Context, title, message string) {
	ids, err := s.users.ListIDsByRoles(ctx, user.RoleHR, user.RoleAdmin)
	if err != nil {
		s.logger.Error("failed to list hr/admin principals for notification", "error", err)
		return
	}
	for _, id := range ids {
		s.notifier.Notify(ctx, id, title, message, "leave", "/leaves")
	}
}
