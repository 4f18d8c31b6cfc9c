package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/hr-portal/internal/balance"
	"github.com/frahmantamala/hr-portal/internal/employee"
	"github.com/frahmantamala/hr-portal/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample principals, departments and balances for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		_, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"messages", "notifications", "attendance", "leaves", "leave_balances", "employees", "departments", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)

		principals := []struct {
			Email string
			First string
			Last  string
			Role  string
		}{
			{"admin@mail.com", "Ada", "Admin", user.RoleAdmin},
			{"hr@mail.com", "Hana", "Resources", user.RoleHR},
			{"manager@mail.com", "Mira", "Manager", user.RoleManager},
			{"dewi@mail.com", "Dewi", "Lestari", user.RoleEmployee},
			{"budi@mail.com", "Budi", "Santoso", user.RoleEmployee},
		}

		ids := map[string]string{}
		for _, p := range principals {
			var existing user.User
			err := db.Where("email = ?", p.Email).First(&existing).Error
			if err == nil {
				fmt.Printf("user %s already exists, skipping\n", p.Email)
				ids[p.Email] = existing.ID
				continue
			}

			u := &user.User{
				ID:           uuid.NewString(),
				Email:        p.Email,
				PasswordHash: string(hash),
				FirstName:    p.First,
				LastName:     p.Last,
				Role:         p.Role,
				IsActive:     true,
			}
			if err := db.Create(u).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", p.Email, err)
			}
			ids[p.Email] = u.ID
			fmt.Printf("Seeded user: %s (%s)\n", p.Email, p.Role)
		}

		managerID := ids["manager@mail.com"]
		deptID := seedDepartment(db, "Engineering", &managerID)
		seedDepartment(db, "People Operations", nil)

		year := time.Now().Year()
		empCode := 1
		for _, email := range []string{"manager@mail.com", "dewi@mail.com", "budi@mail.com"} {
			userID := ids[email]
			var existing employee.Employee
			if err := db.Where("user_id = ?", userID).First(&existing).Error; err == nil {
				continue
			}

			e := &employee.Employee{
				ID:           uuid.NewString(),
				UserID:       userID,
				DepartmentID: &deptID,
				EmpCode:      fmt.Sprintf("EMP%03d", empCode),
				Designation:  "Software Engineer",
				Status:       employee.StatusActive,
				JoinedAt:     time.Now(),
			}
			if err := db.Create(e).Error; err != nil {
				log.Fatalf("failed to insert employee for %s: %v", email, err)
			}
			empCode++

			b := balance.NewBalance(e.ID, userID, year)
			b.ID = uuid.NewString()
			if err := db.Create(b).Error; err != nil {
				log.Fatalf("failed to insert balance for %s: %v", email, err)
			}
			fmt.Printf("Seeded employee + %d balance: %s\n", year, email)
		}

		fmt.Println("Seeding complete. All passwords are: password")
	},
}

func seedDepartment(db *gorm.DB, name string, managerID *string) string {
	var id string
	row := db.Raw("SELECT id FROM departments WHERE name = ?", name).Row()
	if err := row.Scan(&id); err == nil {
		return id
	}

	id = uuid.NewString()
	if err := db.Exec(
		"INSERT INTO departments (id, name, manager_id, created_at) VALUES (?, ?, ?, ?)",
		id, name, managerID, time.Now()).Error; err != nil {
		log.Fatalf("failed to insert department %s: %v", name, err)
	}
	fmt.Printf("Seeded department: %s\n", name)
	return id
}
