package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/hr-portal/internal/balance"
)

// BalanceRepository implements the balance.Repository interface using GORM
type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// usedColumn maps a category onto its usage column. Categories are a closed
// set, so the column name never comes from user input.
func usedColumn(c balance.Category) string {
	return fmt.Sprintf("%s_used", c)
}

func totalColumn(c balance.Category) string {
	return fmt.Sprintf("%s_total", c)
}

// GetOrCreate lazily creates the (employee, year) row with the default
// entitlement schedule on first use.
func (r *BalanceRepository) GetOrCreate(ctx context.Context, employeeID, userID string, year int) (*balance.Balance, error) {
	var b balance.Balance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND year = ?", employeeID, year).
		First(&b).Error
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := balance.NewBalance(employeeID, userID, year)
	fresh.ID = uuid.NewString()
	// a concurrent first use may have inserted the row already
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(fresh).Error; err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("employee_id = ? AND year = ?", employeeID, year).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BalanceRepository) GetByEmployee(ctx context.Context, employeeID string, year int) (*balance.Balance, error) {
	var b balance.Balance
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND year = ?", employeeID, year).
		First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, balance.ErrBalanceNotFound
		}
		return nil, err
	}
	return &b, nil
}

// listColumns joins each ledger row with the owning employee's display
// identity for the admin listing.
const listColumns = `leave_balances.*,
	u.first_name || ' ' || u.last_name AS name,
	e.emp_code,
	d.name AS department_name`

func (r *BalanceRepository) ListByYear(ctx context.Context, year int) ([]*balance.ListRow, error) {
	var out []*balance.ListRow
	err := r.db.WithContext(ctx).Model(&balance.Balance{}).
		Select(listColumns).
		Joins("JOIN employees e ON e.id = leave_balances.employee_id").
		Joins("JOIN users u ON u.id = leave_balances.user_id").
		Joins("LEFT JOIN departments d ON d.id = e.department_id").
		Where("leave_balances.year = ?", year).
		Order("name").
		Find(&out).Error
	return out, err
}

func (r *BalanceRepository) ListByUser(ctx context.Context, userID string, year int) ([]*balance.ListRow, error) {
	var out []*balance.ListRow
	err := r.db.WithContext(ctx).Model(&balance.Balance{}).
		Select(listColumns).
		Joins("JOIN employees e ON e.id = leave_balances.employee_id").
		Joins("JOIN users u ON u.id = leave_balances.user_id").
		Joins("LEFT JOIN departments d ON d.id = e.department_id").
		Where("leave_balances.user_id = ? AND leave_balances.year = ?", userID, year).
		Find(&out).Error
	return out, err
}

// UpdateTotals edits entitlement columns only.
func (r *BalanceRepository) UpdateTotals(ctx context.Context, id string, dto balance.UpdateTotalsDTO) (*balance.Balance, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if dto.CasualTotal != nil {
		updates["casual_total"] = *dto.CasualTotal
	}
	if dto.SickTotal != nil {
		updates["sick_total"] = *dto.SickTotal
	}
	if dto.AnnualTotal != nil {
		updates["annual_total"] = *dto.AnnualTotal
	}
	if dto.MaternityTotal != nil {
		updates["maternity_total"] = *dto.MaternityTotal
	}
	if dto.PaternityTotal != nil {
		updates["paternity_total"] = *dto.PaternityTotal
	}

	res := r.db.WithContext(ctx).Model(&balance.Balance{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, balance.ErrBalanceNotFound
	}

	var b balance.Balance
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ConsumeTx increments the usage counter inside the caller's transaction. The
// cap is re-checked in the UPDATE itself so two concurrent final approvals can
// never jointly overdraw a category: the second one matches zero rows. The
// (employee, year) row is created on the fly when consumption is its first
// touch, which happens for unpaid leave since it skips the pre-check.
func (r *BalanceRepository) ConsumeTx(tx *gorm.DB, employeeID, userID string, year int, category balance.Category, days int) error {
	fresh := balance.NewBalance(employeeID, userID, year)
	fresh.ID = uuid.NewString()
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(fresh).Error; err != nil {
		return err
	}

	used := usedColumn(category)

	if category == balance.CategoryUnpaid {
		res := tx.Exec(
			fmt.Sprintf("UPDATE leave_balances SET %s = %s + ?, updated_at = ? WHERE employee_id = ? AND year = ?", used, used),
			days, time.Now(), employeeID, year)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return balance.ErrBalanceNotFound
		}
		return nil
	}

	total := totalColumn(category)
	res := tx.Exec(
		fmt.Sprintf("UPDATE leave_balances SET %s = %s + ?, updated_at = ? WHERE employee_id = ? AND year = ? AND %s + ? <= %s",
			used, used, used, total),
		days, time.Now(), employeeID, year, days)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// distinguish a missing row from an exhausted one
		var b balance.Balance
		if err := tx.Where("employee_id = ? AND year = ?", employeeID, year).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return balance.ErrBalanceNotFound
			}
			return err
		}
		tot, u := b.Available(category)
		return balance.NewInsufficientBalanceError(category, tot-u, days)
	}
	return nil
}

// Consume runs ConsumeTx in its own transaction, for callers outside the leave
// approval path.
func (r *BalanceRepository) Consume(ctx context.Context, employeeID, userID string, year int, category balance.Category, days int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.ConsumeTx(tx, employeeID, userID, year, category, days)
	})
}
