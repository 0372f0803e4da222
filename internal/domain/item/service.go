package item

import (
	"context"
	"fmt"
	"log"

	"centavo/internal/infrastructure/provider"
)

// Service contains the business logic for item operations
type Service struct {
	repo   Repository
	client provider.ClientInterface
}

// NewService creates a new item service
func NewService(repo Repository, client provider.ClientInterface) *Service {
	return &Service{repo: repo, client: client}
}

// Link creates a new item for a user after the provider handshake has
// produced an access token.
func (s *Service) Link(ctx context.Context, params CreateParams) (*Item, error) {
	if params.ProviderItemID == "" || params.AccessToken == "" {
		return nil, fmt.Errorf("provider item id and access token are required")
	}
	return s.repo.Create(ctx, params)
}

// ListItems retrieves all items for a user
func (s *Service) ListItems(ctx context.Context, userID int64) ([]*Item, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Unlink revokes the item's access token at the provider and then deletes the
// item locally. The local delete only happens after the revoke succeeds, so a
// failed revoke leaves the item intact and retryable.
func (s *Service) Unlink(ctx context.Context, id, userID int64) error {
	it, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to load item %d: %w", id, err)
	}
	if it == nil {
		return ErrItemNotFound
	}

	if err := s.client.RemoveItem(ctx, it.AccessToken); err != nil {
		return fmt.Errorf("failed to revoke item %d at provider: %w", id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}

	log.Printf("User %d: unlinked item %d (%s)", userID, id, it.InstitutionName)
	return nil
}
