package account

import "context"

// Repository defines the interface for account data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// GetByID retrieves an account by its local ID
	GetByID(ctx context.Context, id int64) (*Account, error)

	// ListByUserID retrieves all accounts for a specific user
	ListByUserID(ctx context.Context, userID int64) ([]*Account, error)

	// ProviderIDsByItem returns the provider account ids already stored for an item
	ProviderIDsByItem(ctx context.Context, itemID int64) ([]string, error)

	// LocalIDsByProviderIDs resolves provider account ids to local ids for a
	// user, in a single query. Unknown ids are simply absent from the result.
	LocalIDsByProviderIDs(ctx context.Context, userID int64, providerIDs []string) (map[string]int64, error)

	// CreateBatch inserts new accounts and returns how many were inserted
	CreateBatch(ctx context.Context, params []CreateParams) (int, error)
}
