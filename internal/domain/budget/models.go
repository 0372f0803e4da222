package budget

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrBudgetNotFound  = errors.New("budget not found")
	ErrInvalidCategory = errors.New("category is required")
	ErrInvalidLimit    = errors.New("limit must be greater than zero")
	ErrInvalidDay      = errors.New("anchor day must be between 1 and 28")
	ErrDuplicate       = errors.New("budget already exists for this category")
)

// Budget is a per (user, category) spending limit. AnchorDay (1-28) is the
// day of month on which the budget period rolls over.
type Budget struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Category  string          `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	AnchorDay int             `json:"anchorDay"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Status is a budget with its derived spend figures as of "now". Spent and
// Remaining are never stored; they are recomputed from the reconciled
// transaction history on every read.
type Status struct {
	Budget
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

// CreateParams contains parameters for creating a budget.
type CreateParams struct {
	UserID    int64
	Category  string
	Limit     decimal.Decimal
	AnchorDay int
}

// Validate checks the budget parameters against domain rules.
func (p CreateParams) Validate() error {
	if p.Category == "" {
		return ErrInvalidCategory
	}
	if !p.Limit.IsPositive() {
		return ErrInvalidLimit
	}
	if p.AnchorDay < 1 || p.AnchorDay > 28 {
		return ErrInvalidDay
	}
	return nil
}

// UpdateParams contains the mutable fields of a budget. Nil fields are left unchanged.
type UpdateParams struct {
	Limit     *decimal.Decimal
	AnchorDay *int
}

// AnchorDate returns the start of the budget's current period as of now:
// this month's anchor day, or the previous month's when the anchor day has
// not occurred yet this month. AnchorDay is capped at 28 so the previous
// month always has the day.
func (b *Budget) AnchorDate(now time.Time) time.Time {
	anchor := time.Date(now.Year(), now.Month(), b.AnchorDay, 0, 0, 0, 0, now.Location())
	if anchor.After(now) {
		anchor = time.Date(now.Year(), now.Month()-1, b.AnchorDay, 0, 0, 0, 0, now.Location())
	}
	return anchor
}
