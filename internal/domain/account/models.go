package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrForbidden       = errors.New("access forbidden")
)

// Account represents a bank account under a linked item. ProviderAccountID is
// unique within an item; the local ID is stable once assigned and is the join
// key used by transactions.
type Account struct {
	ID                int64           `json:"id"`
	ItemID            int64           `json:"itemId"`
	UserID            int64           `json:"userId"`
	ProviderAccountID string          `json:"providerAccountId"`
	Name              string          `json:"name"`
	OfficialName      string          `json:"officialName"`
	Mask              string          `json:"mask"`
	AccountType       string          `json:"accountType"`
	Subtype           string          `json:"subtype"`
	CurrentBalance    decimal.Decimal `json:"currentBalance"`
	AvailableBalance  decimal.Decimal `json:"availableBalance"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// CreateParams contains parameters for creating a new account.
// Balance fields carry the provider snapshot at creation time.
type CreateParams struct {
	ItemID            int64
	UserID            int64
	ProviderAccountID string
	Name              string
	OfficialName      string
	Mask              string
	AccountType       string
	Subtype           string
	CurrentBalance    decimal.Decimal
	AvailableBalance  decimal.Decimal
}
