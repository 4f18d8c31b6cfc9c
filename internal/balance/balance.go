package balance

import (
	"fmt"
	"time"

	"github.com/frahmantamala/hr-portal/internal"
)

// Category is a leave category tracked by the ledger. Every capped category
// has an entitlement total and a usage counter; unpaid leave only counts usage.
type Category string

const (
	CategoryCasual    Category = "casual"
	CategorySick      Category = "sick"
	CategoryAnnual    Category = "annual"
	CategoryMaternity Category = "maternity"
	CategoryPaternity Category = "paternity"
	CategoryUnpaid    Category = "unpaid"
)

func ValidCategory(c Category) bool {
	switch c {
	case CategoryCasual, CategorySick, CategoryAnnual, CategoryMaternity, CategoryPaternity, CategoryUnpaid:
		return true
	}
	return false
}

// Default yearly entitlement schedule applied when a ledger row is lazily
// created for an (employee, year) pair.
const (
	DefaultCasualTotal    = 12
	DefaultSickTotal      = 10
	DefaultAnnualTotal    = 15
	DefaultMaternityTotal = 90
	DefaultPaternityTotal = 15
)

// Balance is one ledger row per (employee, year).
type Balance struct {
	ID         string `json:"id" gorm:"primaryKey"`
	EmployeeID string `json:"employeeId" gorm:"column:employee_id;uniqueIndex:idx_balance_employee_year;not null"`
	UserID     string `json:"userId" gorm:"column:user_id;not null"`
	Year       int    `json:"year" gorm:"uniqueIndex:idx_balance_employee_year;not null"`

	CasualTotal    int `json:"-" gorm:"column:casual_total"`
	CasualUsed     int `json:"-" gorm:"column:casual_used"`
	SickTotal      int `json:"-" gorm:"column:sick_total"`
	SickUsed       int `json:"-" gorm:"column:sick_used"`
	AnnualTotal    int `json:"-" gorm:"column:annual_total"`
	AnnualUsed     int `json:"-" gorm:"column:annual_used"`
	MaternityTotal int `json:"-" gorm:"column:maternity_total"`
	MaternityUsed  int `json:"-" gorm:"column:maternity_used"`
	PaternityTotal int `json:"-" gorm:"column:paternity_total"`
	PaternityUsed  int `json:"-" gorm:"column:paternity_used"`
	UnpaidUsed     int `json:"-" gorm:"column:unpaid_used"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Balance) TableName() string {
	return "leave_balances"
}

func NewBalance(employeeID, userID string, year int) *Balance {
	return &Balance{
		EmployeeID:     employeeID,
		UserID:         userID,
		Year:           year,
		CasualTotal:    DefaultCasualTotal,
		SickTotal:      DefaultSickTotal,
		AnnualTotal:    DefaultAnnualTotal,
		MaternityTotal: DefaultMaternityTotal,
		PaternityTotal: DefaultPaternityTotal,
	}
}

// Available returns (total, used) for a capped category. Unpaid reports no cap.
func (b *Balance) Available(c Category) (total, used int) {
	switch c {
	case CategoryCasual:
		return b.CasualTotal, b.CasualUsed
	case CategorySick:
		return b.SickTotal, b.SickUsed
	case CategoryAnnual:
		return b.AnnualTotal, b.AnnualUsed
	case CategoryMaternity:
		return b.MaternityTotal, b.MaternityUsed
	case CategoryPaternity:
		return b.PaternityTotal, b.PaternityUsed
	case CategoryUnpaid:
		return 0, b.UnpaidUsed
	}
	return 0, 0
}

type CategoryView struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// View is the per-category read model returned to clients. The identity
// fields are only populated by the joined listing.
type View struct {
	ID             string       `json:"id"`
	EmployeeID     string       `json:"employeeId"`
	UserID         string       `json:"userId"`
	Year           int          `json:"year"`
	Name           string       `json:"name,omitempty"`
	EmpCode        string       `json:"empCode,omitempty"`
	DepartmentName *string      `json:"departmentName,omitempty"`
	Casual         CategoryView `json:"casual"`
	Sick           CategoryView `json:"sick"`
	Annual         CategoryView `json:"annual"`
	Maternity      CategoryView `json:"maternity"`
	Paternity      CategoryView `json:"paternity"`
	UnpaidUsed     int          `json:"unpaidUsed"`
}

// ListRow is a ledger row joined with the owning employee's identity for the
// admin listing screen.
type ListRow struct {
	Balance
	Name           string  `json:"-" gorm:"column:name"`
	EmpCode        string  `json:"-" gorm:"column:emp_code"`
	DepartmentName *string `json:"-" gorm:"column:department_name"`
}

func (lr *ListRow) ToView() *View {
	v := lr.Balance.ToView()
	v.Name = lr.Name
	v.EmpCode = lr.EmpCode
	v.DepartmentName = lr.DepartmentName
	return v
}

func (b *Balance) ToView() *View {
	cv := func(total, used int) CategoryView {
		return CategoryView{Total: total, Used: used, Remaining: total - used}
	}
	return &View{
		ID:         b.ID,
		EmployeeID: b.EmployeeID,
		UserID:     b.UserID,
		Year:       b.Year,
		Casual:     cv(b.CasualTotal, b.CasualUsed),
		Sick:       cv(b.SickTotal, b.SickUsed),
		Annual:     cv(b.AnnualTotal, b.AnnualUsed),
		Maternity:  cv(b.MaternityTotal, b.MaternityUsed),
		Paternity:  cv(b.PaternityTotal, b.PaternityUsed),
		UnpaidUsed: b.UnpaidUsed,
	}
}

// UpdateTotalsDTO adjusts entitlements only; usage counters are never edited.
type UpdateTotalsDTO struct {
	CasualTotal    *int `json:"casualTotal"`
	SickTotal      *int `json:"sickTotal"`
	AnnualTotal    *int `json:"annualTotal"`
	MaternityTotal *int `json:"maternityTotal"`
	PaternityTotal *int `json:"paternityTotal"`
}

func (dto UpdateTotalsDTO) Validate() error {
	for name, v := range map[string]*int{
		"casualTotal":    dto.CasualTotal,
		"sickTotal":      dto.SickTotal,
		"annualTotal":    dto.AnnualTotal,
		"maternityTotal": dto.MaternityTotal,
		"paternityTotal": dto.PaternityTotal,
	} {
		if v != nil && *v < 0 {
			return internal.NewValidationError(fmt.Sprintf("%s must not be negative", name), internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

var ErrBalanceNotFound = internal.NewNotFoundError("Leave balance not found", internal.ErrCodeBalanceNotFound)

// NewInsufficientBalanceError carries the rendered message plus structured
// detail so clients can show remaining days.
func NewInsufficientBalanceError(category Category, available, requested int) *internal.AppError {
	msg := fmt.Sprintf("Insufficient %s leave balance. Available: %d days, Requested: %d days",
		category, available, requested)
	return internal.NewValidationError(msg, internal.ErrCodeInsufficientBalance).
		WithDetails(map[string]int{"available": available, "requested": requested})
}
