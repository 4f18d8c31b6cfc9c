package department

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
)

type Repository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id string) (*Department, error)
	List(ctx context.Context) ([]*View, error)
	AssignManager(ctx context.Context, departmentID string, managerID *string) (*Department, error)
	Delete(ctx context.Context, id string) error
}

type PolicyChecker interface {
	Can(ctx context.Context, principal *internal.Principal, action auth.Action, res auth.Resource) error
}

type Service struct {
	repo   Repository
	policy PolicyChecker
	logger *slog.Logger
}

func NewService(repo Repository, policy PolicyChecker, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: policy, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]*View, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, principal *internal.Principal, dto CreateDTO) (*Department, error) {
	if err := s.policy.Can(ctx, principal, auth.ActionManageDepartments, auth.Resource{}); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d := &Department{Name: dto.Name, Description: dto.Description}
	if err := s.repo.Create(ctx, d); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("department created", "department_id", d.ID, "name", d.Name, "by", principal.ID)
	return d, nil
}

// AssignManager points the department at a new manager principal. Any prior
// assignment of that principal is cleared first, so a user manages at most one
// department; a department left without a manager is an accepted state.
func (s *Service) AssignManager(ctx context.Context, principal *internal.Principal, departmentID string, dto AssignManagerDTO) (*Department, error) {
	if err := s.policy.Can(ctx, principal, auth.ActionAssignManager, auth.Resource{}); err != nil {
		return nil, err
	}

	d, err := s.repo.AssignManager(ctx, departmentID, dto.ManagerID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("manager assigned", "department_id", departmentID, "manager_id", dto.ManagerID, "by", principal.ID)
	return d, nil
}

func (s *Service) Delete(ctx context.Context, principal *internal.Principal, id string) error {
	if err := s.policy.Can(ctx, principal, auth.ActionDeleteDepartment, auth.Resource{}); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
