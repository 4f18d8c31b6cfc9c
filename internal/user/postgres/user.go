package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frahmantamala/hr-portal/internal/user"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListIDsByRoles returns the ids of every active principal holding one of the
// given roles, used for the HR/admin notification fan-out.
func (r *UserRepository) ListIDsByRoles(ctx context.Context, roles ...string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&user.User{}).
		Where("role IN ? AND is_active = ?", roles, true).
		Pluck("id", &ids).Error
	return ids, err
}

// UpdateRoleTx changes a principal's role inside the caller's transaction.
// The manager promotion on department assignment runs through here so the
// role flip and the assignment commit together.
func (r *UserRepository) UpdateRoleTx(tx *gorm.DB, id, role string) error {
	return tx.Model(&user.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"role": role, "updated_at": time.Now()}).Error
}
