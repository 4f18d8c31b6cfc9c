package user

import (
	"time"

	"github.com/frahmantamala/hr-portal/internal"
)

// Roles carried by principals. Managers are regular users promoted through a
// department assignment; the department relation, not this field, decides
// which requests they may review.
const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	FirstName    string    `json:"firstName" gorm:"column:first_name"`
	LastName     string    `json:"lastName" gorm:"column:last_name"`
	Role         string    `json:"role" gorm:"default:employee"`
	Avatar       *string   `json:"avatar,omitempty"`
	IsActive     bool      `json:"isActive" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleHR, RoleManager, RoleEmployee:
		return true
	}
	return false
}

var ErrUserNotFound = internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
