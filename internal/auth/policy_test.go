package auth_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/user"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

type mockDepartmentResolver struct {
	managed map[string]*string
}

func (m *mockDepartmentResolver) ManagedDepartmentID(ctx context.Context, userID string) (*string, error) {
	return m.managed[userID], nil
}

var _ = Describe("Policy", func() {
	var (
		policy   *auth.Policy
		resolver *mockDepartmentResolver
		ctx      context.Context

		engineering string
		sales       string

		admin    *internal.Principal
		hr       *internal.Principal
		manager  *internal.Principal
		employee *internal.Principal
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		engineering = "dept-eng"
		sales = "dept-sales"

		admin = &internal.Principal{ID: "u-admin", Role: user.RoleAdmin}
		hr = &internal.Principal{ID: "u-hr", Role: user.RoleHR}
		manager = &internal.Principal{ID: "u-manager", Role: user.RoleManager}
		employee = &internal.Principal{ID: "u-emp", Role: user.RoleEmployee}

		resolver = &mockDepartmentResolver{managed: map[string]*string{
			manager.ID: &engineering,
		}}
		policy = auth.NewPolicy(resolver, logger)
	})

	Describe("manager review", func() {
		It("allows the manager of the applicant's department", func() {
			err := policy.Can(ctx, manager, auth.ActionManagerReviewLeave, auth.Resource{DepartmentID: &engineering})
			Expect(err).ToNot(HaveOccurred())
		})

		It("denies a manager from another department", func() {
			err := policy.Can(ctx, manager, auth.ActionManagerReviewLeave, auth.Resource{DepartmentID: &sales})
			Expect(err).To(HaveOccurred())
		})

		It("denies a manager when the applicant has no department", func() {
			err := policy.Can(ctx, manager, auth.ActionManagerReviewLeave, auth.Resource{})
			Expect(err).To(HaveOccurred())
		})

		It("denies a manager with no department of their own", func() {
			delete(resolver.managed, manager.ID)
			err := policy.Can(ctx, manager, auth.ActionManagerReviewLeave, auth.Resource{DepartmentID: &engineering})
			Expect(err).To(HaveOccurred())
		})

		It("allows admin regardless of department", func() {
			err := policy.Can(ctx, admin, auth.ActionManagerReviewLeave, auth.Resource{DepartmentID: &sales})
			Expect(err).ToNot(HaveOccurred())
		})

		It("denies HR and employees", func() {
			Expect(policy.Can(ctx, hr, auth.ActionManagerReviewLeave, auth.Resource{DepartmentID: &engineering})).To(HaveOccurred())
			Expect(policy.Can(ctx, employee, auth.ActionManagerReviewLeave, auth.Resource{DepartmentID: &engineering})).To(HaveOccurred())
		})
	})

	Describe("HR review", func() {
		It("allows HR and admin", func() {
			Expect(policy.Can(ctx, hr, auth.ActionHRReviewLeave, auth.Resource{})).To(Succeed())
			Expect(policy.Can(ctx, admin, auth.ActionHRReviewLeave, auth.Resource{})).To(Succeed())
		})

		It("denies managers even for their own department", func() {
			err := policy.Can(ctx, manager, auth.ActionHRReviewLeave, auth.Resource{DepartmentID: &engineering})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("balance editing", func() {
		It("allows HR and admin, denies everyone else", func() {
			Expect(policy.Can(ctx, hr, auth.ActionEditBalance, auth.Resource{})).To(Succeed())
			Expect(policy.Can(ctx, admin, auth.ActionEditBalance, auth.Resource{})).To(Succeed())
			Expect(policy.Can(ctx, manager, auth.ActionEditBalance, auth.Resource{})).To(HaveOccurred())
			Expect(policy.Can(ctx, employee, auth.ActionEditBalance, auth.Resource{})).To(HaveOccurred())
		})
	})

	Describe("attendance roster", func() {
		It("allows HR and admin, denies everyone else", func() {
			Expect(policy.Can(ctx, hr, auth.ActionViewAllAttendance, auth.Resource{})).To(Succeed())
			Expect(policy.Can(ctx, admin, auth.ActionViewAllAttendance, auth.Resource{})).To(Succeed())
			Expect(policy.Can(ctx, manager, auth.ActionViewAllAttendance, auth.Resource{})).To(HaveOccurred())
			Expect(policy.Can(ctx, employee, auth.ActionViewAllAttendance, auth.Resource{})).To(HaveOccurred())
		})
	})

	Describe("department administration", func() {
		It("restricts manager assignment to admin", func() {
			Expect(policy.Can(ctx, admin, auth.ActionAssignManager, auth.Resource{})).To(Succeed())
			Expect(policy.Can(ctx, hr, auth.ActionAssignManager, auth.Resource{})).To(HaveOccurred())
		})
	})

	It("rejects a missing principal", func() {
		err := policy.Can(ctx, nil, auth.ActionViewAllLeaves, auth.Resource{})
		Expect(err).To(MatchError(internal.ErrUnauthenticated))
	})
})
