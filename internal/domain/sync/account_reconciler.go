// Package sync implements the incremental synchronization engine: the
// per-item paginated sync loop, the account and transaction reconcilers it
// feeds, and the orchestrator that drives sync across a user's items.
package sync

import (
	"context"
	"fmt"
	"log"

	"centavo/internal/domain/account"
	"centavo/internal/infrastructure/provider"
)

// AccountReconciler merges a batch of provider-reported accounts into local
// storage. It is insert-only: accounts already known for the item are skipped,
// never overwritten (balance refresh is a separate concern).
type AccountReconciler struct {
	repo account.Repository
}

// NewAccountReconciler creates a new account reconciler
func NewAccountReconciler(repo account.Repository) *AccountReconciler {
	return &AccountReconciler{repo: repo}
}

// Reconcile inserts the accounts from one page that are not already stored
// for the item, deduplicating by provider account id. Returns the number of
// newly inserted accounts.
func (r *AccountReconciler) Reconcile(ctx context.Context, incoming []provider.Account, itemID, userID int64) (int, error) {
	if len(incoming) == 0 {
		return 0, nil
	}

	known, err := r.repo.ProviderIDsByItem(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to load known account ids for item %d: %w", itemID, err)
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, id := range known {
		knownSet[id] = struct{}{}
	}

	var toCreate []account.CreateParams
	for _, apiAccount := range incoming {
		if _, exists := knownSet[apiAccount.AccountID]; exists {
			log.Printf("Item %d: account %s already known, skipping", itemID, apiAccount.AccountID)
			continue
		}
		// Guard against the provider repeating an account within one page
		knownSet[apiAccount.AccountID] = struct{}{}

		toCreate = append(toCreate, account.CreateParams{
			ItemID:            itemID,
			UserID:            userID,
			ProviderAccountID: apiAccount.AccountID,
			Name:              apiAccount.Name,
			OfficialName:      apiAccount.OfficialName,
			Mask:              apiAccount.Mask,
			AccountType:       apiAccount.Type,
			Subtype:           apiAccount.Subtype,
			CurrentBalance:    apiAccount.Balances.CurrentOrZero(),
			AvailableBalance:  apiAccount.Balances.AvailableOrZero(),
		})
	}

	if len(toCreate) == 0 {
		return 0, nil
	}

	created, err := r.repo.CreateBatch(ctx, toCreate)
	if err != nil {
		return 0, fmt.Errorf("failed to insert accounts for item %d: %w", itemID, err)
	}

	log.Printf("Item %d: created %d new accounts (%d reported)", itemID, created, len(incoming))
	return created, nil
}
