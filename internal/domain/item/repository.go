package item

import "context"

// Repository defines the interface for item data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create links a new item for a user
	Create(ctx context.Context, params CreateParams) (*Item, error)

	// GetForUser retrieves an item by its ID, scoped to the owning user.
	// Returns nil (not an error) when no such item exists for that user.
	GetForUser(ctx context.Context, id, userID int64) (*Item, error)

	// GetByProviderItemID retrieves an item by the provider's item identifier.
	// Returns nil when no item is linked under that identifier.
	GetByProviderItemID(ctx context.Context, providerItemID string) (*Item, error)

	// ListByUserID retrieves all items for a user
	ListByUserID(ctx context.Context, userID int64) ([]*Item, error)

	// ListUserIDs returns the distinct user ids that have at least one linked item
	ListUserIDs(ctx context.Context) ([]int64, error)

	// SaveCheckpoint persists the cursor and last-fetched timestamp atomically
	SaveCheckpoint(ctx context.Context, id int64, cp Checkpoint) error

	// Delete removes an item
	Delete(ctx context.Context, id int64) error
}
