package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents one financial movement. ProviderTransactionID is
// globally unique at the provider and determines at most one stored row.
//
// Amount follows the provider's sign convention: positive is an expense
// (outflow), negative is income. All downstream aggregation relies on this.
type Transaction struct {
	ID                    int64           `json:"id"`
	ProviderTransactionID string          `json:"providerTransactionId"`
	AccountID             int64           `json:"accountId"`
	UserID                int64           `json:"userId"`
	Name                  string          `json:"name"`
	MerchantName          string          `json:"merchantName"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
	Date                  time.Time       `json:"date"`
	Datetime              *time.Time      `json:"datetime,omitempty"`
	Category              string          `json:"category"`
	PaymentChannel        string          `json:"paymentChannel"`
	LogoURL               string          `json:"logoUrl"`
	Pending               bool            `json:"pending"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// CreateParams contains parameters for inserting a newly seen transaction.
type CreateParams struct {
	ProviderTransactionID string
	AccountID             int64
	UserID                int64
	Name                  string
	MerchantName          string
	Amount                decimal.Decimal
	Currency              string
	Date                  time.Time
	Datetime              *time.Time
	Category              string
	PaymentChannel        string
	LogoURL               string
	Pending               bool
}

// UpdateParams overwrites the mutable fields of an existing transaction.
// The provider transaction id and owning user id are never changed.
type UpdateParams struct {
	ProviderTransactionID string
	AccountID             int64
	Name                  string
	MerchantName          string
	Amount                decimal.Decimal
	Currency              string
	Date                  time.Time
	Datetime              *time.Time
	Category              string
	PaymentChannel        string
	LogoURL               string
	Pending               bool
}
