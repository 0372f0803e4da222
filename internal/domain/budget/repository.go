package budget

import "context"

// Repository defines the interface for budget data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create stores a new budget
	Create(ctx context.Context, params CreateParams) (*Budget, error)

	// GetForUser retrieves a budget by ID, scoped to the owning user.
	// Returns nil when no such budget exists for that user.
	GetForUser(ctx context.Context, id, userID int64) (*Budget, error)

	// ListByUserID retrieves all budgets for a user
	ListByUserID(ctx context.Context, userID int64) ([]*Budget, error)

	// Update applies the non-nil fields of params to a budget
	Update(ctx context.Context, id int64, params UpdateParams) (*Budget, error)

	// Delete removes a budget
	Delete(ctx context.Context, id int64) error
}
