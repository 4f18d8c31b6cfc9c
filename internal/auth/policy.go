package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/user"
)

// Action names every privileged operation the portal exposes. All role checks
// go through Policy.Can so the rules live in one place instead of being
// re-derived per route.
type Action string

const (
	ActionManagerReviewLeave Action = "leave:manager_review"
	ActionHRReviewLeave      Action = "leave:hr_review"
	ActionViewAllLeaves      Action = "leave:view_all"
	ActionEditBalance        Action = "balance:edit"
	ActionViewAllBalances    Action = "balance:view_all"
	ActionManageEmployees    Action = "employee:manage"
	ActionManageDepartments  Action = "department:manage"
	ActionAssignManager      Action = "department:assign_manager"
	ActionDeleteDepartment   Action = "department:delete"
	ActionViewAllAttendance  Action = "attendance:view_all"
)

// Resource carries the attributes a rule may need beyond the principal's role.
// DepartmentID is the department of the employee a leave request belongs to.
type Resource struct {
	DepartmentID *string
	OwnerID      string
}

// DepartmentResolver reports which department a principal manages, if any.
type DepartmentResolver interface {
	ManagedDepartmentID(ctx context.Context, userID string) (*string, error)
}

type Policy struct {
	departments DepartmentResolver
	logger      *slog.Logger
}

func NewPolicy(departments DepartmentResolver, logger *slog.Logger) *Policy {
	return &Policy{departments: departments, logger: logger}
}

// Can returns nil when the principal may perform the action on the resource,
// or a Forbidden AppError otherwise.
func (p *Policy) Can(ctx context.Context, principal *internal.Principal, action Action, res Resource) error {
	if principal == nil {
		return internal.ErrUnauthenticated
	}

	switch action {
	case ActionManagerReviewLeave:
		if principal.Role == user.RoleAdmin {
			return nil
		}
		if principal.Role != user.RoleManager {
			return internal.NewForbiddenError("Only managers can perform this action", internal.ErrCodeForbidden)
		}
		managed, err := p.departments.ManagedDepartmentID(ctx, principal.ID)
		if err != nil {
			return internal.NewInternalError("failed to resolve managed department", err)
		}
		if managed == nil || res.DepartmentID == nil || *managed != *res.DepartmentID {
			return internal.NewForbiddenError("You can only review leaves for your department", internal.ErrCodeForbidden)
		}
		return nil

	case ActionHRReviewLeave:
		if principal.Role == user.RoleHR || principal.Role == user.RoleAdmin {
			return nil
		}
		return internal.NewForbiddenError("Only HR can perform final approval", internal.ErrCodeForbidden)

	case ActionViewAllLeaves, ActionViewAllBalances, ActionViewAllAttendance, ActionEditBalance, ActionManageEmployees, ActionManageDepartments:
		if principal.Role == user.RoleHR || principal.Role == user.RoleAdmin {
			return nil
		}
		return internal.ErrForbidden

	case ActionAssignManager, ActionDeleteDepartment:
		if principal.Role == user.RoleAdmin {
			return nil
		}
		return internal.NewForbiddenError("Only admin can perform this action", internal.ErrCodeForbidden)
	}

	p.logger.Warn("policy check for unknown action", "action", string(action))
	return internal.ErrForbidden
}
