package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for transaction data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// GetByProviderID retrieves a transaction by the provider's id.
	// Returns nil when the transaction is not stored.
	GetByProviderID(ctx context.Context, userID int64, providerTransactionID string) (*Transaction, error)

	// LocalIDsByProviderIDs resolves provider transaction ids to local ids for
	// a user, in a single query. Unknown ids are absent from the result.
	LocalIDsByProviderIDs(ctx context.Context, userID int64, providerIDs []string) (map[string]int64, error)

	// CreateBatch inserts new transactions and returns how many were inserted
	CreateBatch(ctx context.Context, params []CreateParams) (int, error)

	// UpdateBatch overwrites the mutable fields of existing transactions,
	// matched by provider transaction id, and returns how many were updated
	UpdateBatch(ctx context.Context, userID int64, params []UpdateParams) (int, error)

	// DeleteByProviderIDs hard-deletes the rows whose provider ids appear in
	// ids, in one statement. Ids with no matching row are no-ops.
	DeleteByProviderIDs(ctx context.Context, userID int64, ids []string) (int64, error)

	// SumByCategorySince sums the signed amounts of a user's transactions in a
	// category with date >= since. With the expense-positive convention the
	// sum is the spend.
	SumByCategorySince(ctx context.Context, userID int64, category string, since time.Time) (decimal.Decimal, error)
}
