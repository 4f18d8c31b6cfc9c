package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/hr-portal/internal/department"
	departmentdb "github.com/frahmantamala/hr-portal/internal/department/postgres"
	"github.com/frahmantamala/hr-portal/internal/user"
	userdb "github.com/frahmantamala/hr-portal/internal/user/postgres"
)

func TestDepartmentRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Department Repository Suite")
}

var _ = Describe("AssignManager", func() {
	var (
		db       *gorm.DB
		repo     *departmentdb.DepartmentRepository
		ctx      context.Context
		dept     *department.Department
		employee *user.User
	)

	createUser := func(role string) *user.User {
		u := &user.User{
			ID:        uuid.NewString(),
			Email:     uuid.NewString() + "@mail.com",
			FirstName: "Test",
			LastName:  "User",
			Role:      role,
			IsActive:  true,
		}
		Expect(db.Create(u).Error).To(Succeed())
		return u
	}

	BeforeEach(func() {
		ctx = context.Background()

		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
		var err error
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(db.AutoMigrate(&user.User{}, &department.Department{})).To(Succeed())

		repo = departmentdb.NewDepartmentRepository(db, userdb.NewUserRepository(db))

		dept = &department.Department{Name: "Engineering"}
		Expect(repo.Create(ctx, dept)).To(Succeed())
		employee = createUser(user.RoleEmployee)
	})

	It("promotes a plain employee to manager in the same transaction", func() {
		d, err := repo.AssignManager(ctx, dept.ID, &employee.ID)
		Expect(err).ToNot(HaveOccurred())
		Expect(d.ManagerID).To(HaveValue(Equal(employee.ID)))

		var promoted user.User
		Expect(db.Where("id = ?", employee.ID).First(&promoted).Error).To(Succeed())
		Expect(promoted.Role).To(Equal(user.RoleManager))
	})

	It("leaves admin and hr roles untouched", func() {
		hr := createUser(user.RoleHR)

		_, err := repo.AssignManager(ctx, dept.ID, &hr.ID)
		Expect(err).ToNot(HaveOccurred())

		var unchanged user.User
		Expect(db.Where("id = ?", hr.ID).First(&unchanged).Error).To(Succeed())
		Expect(unchanged.Role).To(Equal(user.RoleHR))
	})

	It("clears the prior assignment so a principal manages one department", func() {
		other := &department.Department{Name: "People Operations"}
		Expect(repo.Create(ctx, other)).To(Succeed())

		_, err := repo.AssignManager(ctx, dept.ID, &employee.ID)
		Expect(err).ToNot(HaveOccurred())
		_, err = repo.AssignManager(ctx, other.ID, &employee.ID)
		Expect(err).ToNot(HaveOccurred())

		var previous department.Department
		Expect(db.Where("id = ?", dept.ID).First(&previous).Error).To(Succeed())
		Expect(previous.ManagerID).To(BeNil())
	})

	It("rejects an unknown manager id", func() {
		ghost := uuid.NewString()
		_, err := repo.AssignManager(ctx, dept.ID, &ghost)
		Expect(err).To(MatchError(user.ErrUserNotFound))
	})
})
