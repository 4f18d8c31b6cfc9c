package balance_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/balance"
	"github.com/frahmantamala/hr-portal/internal/user"
)

func TestBalance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Balance Suite")
}

type mockBalanceRepository struct {
	rows     map[string]*balance.Balance // employeeID/year is implied; keyed by employeeID
	names    map[string]string
	empCodes map[string]string
}

func newMockBalanceRepository() *mockBalanceRepository {
	return &mockBalanceRepository{
		rows:     make(map[string]*balance.Balance),
		names:    make(map[string]string),
		empCodes: make(map[string]string),
	}
}

func (m *mockBalanceRepository) GetOrCreate(ctx context.Context, employeeID, userID string, year int) (*balance.Balance, error) {
	if b, ok := m.rows[employeeID]; ok {
		return b, nil
	}
	b := balance.NewBalance(employeeID, userID, year)
	b.ID = "bal-" + employeeID
	m.rows[employeeID] = b
	return b, nil
}

func (m *mockBalanceRepository) GetByEmployee(ctx context.Context, employeeID string, year int) (*balance.Balance, error) {
	b, ok := m.rows[employeeID]
	if !ok {
		return nil, balance.ErrBalanceNotFound
	}
	return b, nil
}

func (m *mockBalanceRepository) listRow(b *balance.Balance) *balance.ListRow {
	row := &balance.ListRow{Balance: *b}
	if id := m.names[b.EmployeeID]; id != "" {
		row.Name = id
	}
	if code := m.empCodes[b.EmployeeID]; code != "" {
		row.EmpCode = code
	}
	return row
}

func (m *mockBalanceRepository) ListByYear(ctx context.Context, year int) ([]*balance.ListRow, error) {
	out := []*balance.ListRow{}
	for _, b := range m.rows {
		out = append(out, m.listRow(b))
	}
	return out, nil
}

func (m *mockBalanceRepository) ListByUser(ctx context.Context, userID string, year int) ([]*balance.ListRow, error) {
	out := []*balance.ListRow{}
	for _, b := range m.rows {
		if b.UserID == userID {
			out = append(out, m.listRow(b))
		}
	}
	return out, nil
}

func (m *mockBalanceRepository) UpdateTotals(ctx context.Context, id string, dto balance.UpdateTotalsDTO) (*balance.Balance, error) {
	for _, b := range m.rows {
		if b.ID != id {
			continue
		}
		if dto.CasualTotal != nil {
			b.CasualTotal = *dto.CasualTotal
		}
		if dto.AnnualTotal != nil {
			b.AnnualTotal = *dto.AnnualTotal
		}
		return b, nil
	}
	return nil, balance.ErrBalanceNotFound
}

func (m *mockBalanceRepository) Consume(ctx context.Context, employeeID, userID string, year int, category balance.Category, days int) error {
	return nil
}

type allowAllPolicy struct {
	denied map[auth.Action]error
}

func (p *allowAllPolicy) Can(ctx context.Context, principal *internal.Principal, action auth.Action, res auth.Resource) error {
	if err, ok := p.denied[action]; ok {
		return err
	}
	return nil
}

var _ = Describe("BalanceService", func() {
	var (
		svc    *balance.Service
		repo   *mockBalanceRepository
		policy *allowAllPolicy
		ctx    context.Context

		hrPrincipal       *internal.Principal
		employeePrincipal *internal.Principal
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockBalanceRepository()
		policy = &allowAllPolicy{denied: map[auth.Action]error{}}
		svc = balance.NewService(repo, policy, logger)

		hrPrincipal = &internal.Principal{ID: "user-hana", Role: user.RoleHR}
		employeePrincipal = &internal.Principal{ID: "user-dewi", Role: user.RoleEmployee}
	})

	Describe("CheckAvailability", func() {
		It("passes when the category covers the requested days", func() {
			err := svc.CheckAvailability(ctx, "emp-1", "user-dewi", balance.CategoryCasual, 12, 2026)
			Expect(err).ToNot(HaveOccurred())
		})

		It("fails with remaining and requested days in the message", func() {
			b, _ := repo.GetOrCreate(ctx, "emp-1", "user-dewi", 2026)
			b.CasualUsed = 10

			err := svc.CheckAvailability(ctx, "emp-1", "user-dewi", balance.CategoryCasual, 5, 2026)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInsufficientBalance))
			Expect(appErr.Message).To(Equal("Insufficient casual leave balance. Available: 2 days, Requested: 5 days"))
		})

		It("never fails for unpaid leave", func() {
			err := svc.CheckAvailability(ctx, "emp-1", "user-dewi", balance.CategoryUnpaid, 365, 2026)
			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("GetForEmployee", func() {
		It("creates the row with default entitlements on first use", func() {
			v, err := svc.GetForEmployee(ctx, "emp-1", "user-dewi", 2026)
			Expect(err).ToNot(HaveOccurred())
			Expect(v.Casual.Total).To(Equal(balance.DefaultCasualTotal))
			Expect(v.Sick.Total).To(Equal(balance.DefaultSickTotal))
			Expect(v.Annual.Total).To(Equal(balance.DefaultAnnualTotal))
			Expect(v.Maternity.Total).To(Equal(balance.DefaultMaternityTotal))
			Expect(v.Paternity.Total).To(Equal(balance.DefaultPaternityTotal))
			Expect(v.Casual.Remaining).To(Equal(balance.DefaultCasualTotal))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			repo.GetOrCreate(ctx, "emp-1", "user-dewi", 2026)
			repo.GetOrCreate(ctx, "emp-2", "user-budi", 2026)
		})

		It("returns every row for HR", func() {
			views, err := svc.List(ctx, hrPrincipal, 2026)
			Expect(err).ToNot(HaveOccurred())
			Expect(views).To(HaveLen(2))
		})

		It("carries the employee identity from the joined listing", func() {
			repo.names["emp-1"] = "Dewi Lestari"
			repo.empCodes["emp-1"] = "EMP001"

			views, err := svc.List(ctx, hrPrincipal, 2026)
			Expect(err).ToNot(HaveOccurred())

			var dewi *balance.View
			for _, v := range views {
				if v.EmployeeID == "emp-1" {
					dewi = v
				}
			}
			Expect(dewi).ToNot(BeNil())
			Expect(dewi.Name).To(Equal("Dewi Lestari"))
			Expect(dewi.EmpCode).To(Equal("EMP001"))
		})

		It("returns only the caller's rows otherwise", func() {
			policy.denied[auth.ActionViewAllBalances] = internal.ErrForbidden

			views, err := svc.List(ctx, employeePrincipal, 2026)
			Expect(err).ToNot(HaveOccurred())
			Expect(views).To(HaveLen(1))
			Expect(views[0].UserID).To(Equal("user-dewi"))
		})
	})

	Describe("UpdateTotals", func() {
		BeforeEach(func() {
			repo.GetOrCreate(ctx, "emp-1", "user-dewi", 2026)
		})

		It("edits entitlements without touching usage", func() {
			b := repo.rows["emp-1"]
			b.CasualUsed = 4

			newTotal := 20
			v, err := svc.UpdateTotals(ctx, hrPrincipal, "bal-emp-1", balance.UpdateTotalsDTO{CasualTotal: &newTotal})
			Expect(err).ToNot(HaveOccurred())
			Expect(v.Casual.Total).To(Equal(20))
			Expect(v.Casual.Used).To(Equal(4))
			Expect(v.Casual.Remaining).To(Equal(16))
		})

		It("rejects negative entitlements", func() {
			bad := -1
			_, err := svc.UpdateTotals(ctx, hrPrincipal, "bal-emp-1", balance.UpdateTotalsDTO{CasualTotal: &bad})
			Expect(err).To(HaveOccurred())
		})

		It("is denied without the edit permission", func() {
			policy.denied[auth.ActionEditBalance] = internal.ErrForbidden

			newTotal := 20
			_, err := svc.UpdateTotals(ctx, employeePrincipal, "bal-emp-1", balance.UpdateTotalsDTO{CasualTotal: &newTotal})
			Expect(err).To(MatchError(internal.ErrForbidden))
		})
	})
})
