package employee

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
)

type Repository interface {
	Create(ctx context.Context, e *Employee) error
	GetByID(ctx context.Context, id string) (*Employee, error)
	GetByUserID(ctx context.Context, userID string) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
	Update(ctx context.Context, id string, dto UpdateDTO) (*Employee, error)
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

func (s *Service) List(ctx context.Context, principal *internal.Principal) ([]*Employee, error) {
	if err := s.policy.Can(ctx, principal, auth.ActionManageEmployees, auth.Resource{}); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// Me returns the caller's own employee record.
func (s *Service) Me(ctx context.Context, principal *internal.Principal) (*Employee, error) {
	return s.repo.GetByUserID(ctx, principal.ID)
}

// Update mutates the department reference, designation or employment status.
// Only HR/admin may do this; a manager's department follows the department's
// manager relation, never an edit here.
func (s *Service) Update(ctx context.Context, principal *internal.Principal, id string, dto UpdateDTO) (*Employee, error) {
	if err := s.policy.Can(ctx, principal, auth.ActionManageEmployees, auth.Resource{}); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e, err := s.repo.Update(ctx, id, dto)
	if err != nil {
		return nil, err
	}

	s.logger.Info("employee record updated", "employee_id", id, "by", principal.ID)
	return e, nil
}
