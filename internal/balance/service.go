package balance

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
)

type Repository interface {
	GetOrCreate(ctx context.Context, employeeID, userID string, year int) (*Balance, error)
	GetByEmployee(ctx context.Context, employeeID string, year int) (*Balance, error)
	ListByYear(ctx context.Context, year int) ([]*ListRow, error)
	ListByUser(ctx context.Context, userID string, year int) ([]*ListRow, error)
	UpdateTotals(ctx context.Context, id string, dto UpdateTotalsDTO) (*Balance, error)
	Consume(ctx context.Context, employeeID, userID string, year int, category Category, days int) error
}

type PolicyChecker interface {
	Can(ctx context.Context, principal *internal.Principal, action auth.Action, res auth.Resource) error
}

// Service is the balance ledger. Consumption happens inside the leave
// approval transaction; this service covers reads, entitlement edits and the
// request-time availability pre-check.
type Service struct {
	repo   Repository
	policy PolicyChecker
	logger *slog.Logger
}

func NewService(repo Repository, policy PolicyChecker, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: policy, logger: logger}
}

// List returns every ledger row for the year to HR/admin, or the caller's own
// rows otherwise.
func (s *Service) List(ctx context.Context, principal *internal.Principal, year int) ([]*View, error) {
	var (
		rows []*ListRow
		err  error
	)
	if s.policy.Can(ctx, principal, auth.ActionViewAllBalances, auth.Resource{}) == nil {
		rows, err = s.repo.ListByYear(ctx, year)
	} else {
		rows, err = s.repo.ListByUser(ctx, principal.ID, year)
	}
	if err != nil {
		return nil, err
	}

	views := make([]*View, len(rows))
	for i, b := range rows {
		views[i] = b.ToView()
	}
	return views, nil
}

// GetForEmployee lazily creates the row on first use.
func (s *Service) GetForEmployee(ctx context.Context, employeeID, userID string, year int) (*View, error) {
	b, err := s.repo.GetOrCreate(ctx, employeeID, userID, year)
	if err != nil {
		return nil, err
	}
	return b.ToView(), nil
}

// CheckAvailability fails with InsufficientBalance when a capped category
// cannot cover the requested days. Unpaid leave always passes. This is the
// request-time pre-check; final approval re-checks inside its transaction.
func (s *Service) CheckAvailability(ctx context.Context, employeeID, userID string, category Category, days, year int) error {
	if category == CategoryUnpaid {
		return nil
	}

	b, err := s.repo.GetOrCreate(ctx, employeeID, userID, year)
	if err != nil {
		return err
	}

	total, used := b.Available(category)
	if used+days > total {
		return NewInsufficientBalanceError(category, total-used, days)
	}
	return nil
}

// UpdateTotals lets HR/admin edit entitlements; usage counters are untouched.
func (s *Service) UpdateTotals(ctx context.Context, principal *internal.Principal, id string, dto UpdateTotalsDTO) (*View, error) {
	if err := s.policy.Can(ctx, principal, auth.ActionEditBalance, auth.Resource{}); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	b, err := s.repo.UpdateTotals(ctx, id, dto)
	if err != nil {
		return nil, err
	}

	s.logger.Info("entitlements updated", "balance_id", id, "by", principal.ID)
	return b.ToView(), nil
}
