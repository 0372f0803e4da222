package sync

import (
	"context"
	"fmt"
	"log"

	"centavo/internal/domain/account"
	"centavo/internal/domain/transaction"
	"centavo/internal/infrastructure/provider"
)

// TransactionReconciler merges one page's added, modified, and removed
// transaction sets into storage, at most once per provider transaction id.
//
// Anomalies are dropped with a warning rather than guessed at: a transaction
// whose account is not yet known locally is expected to arrive again on a
// later page once its account has been reconciled, and a transaction whose
// claimed state (added/modified) contradicts what storage shows is safer to
// skip than to duplicate.
type TransactionReconciler struct {
	txRepo      transaction.Repository
	accountRepo account.Repository
}

// NewTransactionReconciler creates a new transaction reconciler
func NewTransactionReconciler(txRepo transaction.Repository, accountRepo account.Repository) *TransactionReconciler {
	return &TransactionReconciler{txRepo: txRepo, accountRepo: accountRepo}
}

// Reconcile applies one page of transaction changes for a user. Returns the
// number of rows inserted plus updated; removals are logged but not counted.
func (r *TransactionReconciler) Reconcile(ctx context.Context, added, modified []provider.Transaction, removed []string, userID int64) (int, error) {
	existing, err := r.existingIDs(ctx, added, modified, userID)
	if err != nil {
		return 0, err
	}

	accountIDs, err := r.accountMapping(ctx, added, modified, userID)
	if err != nil {
		return 0, err
	}

	var toCreate []transaction.CreateParams
	staged := make(map[string]struct{})
	for _, apiTx := range added {
		if _, exists := existing[apiTx.TransactionID]; exists {
			log.Printf("User %d: transaction %s reported as added but already stored, skipping", userID, apiTx.TransactionID)
			continue
		}
		if _, dup := staged[apiTx.TransactionID]; dup {
			continue
		}

		accountID, ok := accountIDs[apiTx.AccountID]
		if !ok {
			log.Printf("Warning: user %d: transaction %s references unknown account %s, dropping (expected on a later page)",
				userID, apiTx.TransactionID, apiTx.AccountID)
			continue
		}

		date, err := apiTx.GetDate()
		if err != nil {
			log.Printf("Warning: user %d: transaction %s has unparsable date, dropping: %v", userID, apiTx.TransactionID, err)
			continue
		}
		datetime, err := apiTx.GetDatetime()
		if err != nil {
			log.Printf("Warning: user %d: transaction %s has unparsable datetime, ignoring it: %v", userID, apiTx.TransactionID, err)
			datetime = nil
		}

		staged[apiTx.TransactionID] = struct{}{}
		toCreate = append(toCreate, transaction.CreateParams{
			ProviderTransactionID: apiTx.TransactionID,
			AccountID:             accountID,
			UserID:                userID,
			Name:                  apiTx.Name,
			MerchantName:          apiTx.MerchantName,
			Amount:                apiTx.Amount,
			Currency:              apiTx.ISOCurrencyCode,
			Date:                  date,
			Datetime:              datetime,
			Category:              apiTx.Category.Primary,
			PaymentChannel:        apiTx.PaymentChannel,
			LogoURL:               apiTx.LogoURL,
			Pending:               apiTx.Pending,
		})
	}

	var toUpdate []transaction.UpdateParams
	for _, apiTx := range modified {
		if _, exists := existing[apiTx.TransactionID]; !exists {
			log.Printf("User %d: transaction %s reported as modified but not stored, skipping", userID, apiTx.TransactionID)
			continue
		}

		accountID, ok := accountIDs[apiTx.AccountID]
		if !ok {
			log.Printf("Warning: user %d: modified transaction %s references unknown account %s, dropping",
				userID, apiTx.TransactionID, apiTx.AccountID)
			continue
		}

		date, err := apiTx.GetDate()
		if err != nil {
			log.Printf("Warning: user %d: modified transaction %s has unparsable date, dropping: %v", userID, apiTx.TransactionID, err)
			continue
		}
		datetime, err := apiTx.GetDatetime()
		if err != nil {
			datetime = nil
		}

		toUpdate = append(toUpdate, transaction.UpdateParams{
			ProviderTransactionID: apiTx.TransactionID,
			AccountID:             accountID,
			Name:                  apiTx.Name,
			MerchantName:          apiTx.MerchantName,
			Amount:                apiTx.Amount,
			Currency:              apiTx.ISOCurrencyCode,
			Date:                  date,
			Datetime:              datetime,
			Category:              apiTx.Category.Primary,
			PaymentChannel:        apiTx.PaymentChannel,
			LogoURL:               apiTx.LogoURL,
			Pending:               apiTx.Pending,
		})
	}

	inserted := 0
	if len(toCreate) > 0 {
		inserted, err = r.txRepo.CreateBatch(ctx, toCreate)
		if err != nil {
			return 0, fmt.Errorf("failed to insert transactions: %w", err)
		}
	}

	updated := 0
	if len(toUpdate) > 0 {
		updated, err = r.txRepo.UpdateBatch(ctx, userID, toUpdate)
		if err != nil {
			return inserted, fmt.Errorf("failed to update transactions: %w", err)
		}
	}

	if len(removed) > 0 {
		deleted, err := r.txRepo.DeleteByProviderIDs(ctx, userID, removed)
		if err != nil {
			return inserted + updated, fmt.Errorf("failed to delete removed transactions: %w", err)
		}
		log.Printf("User %d: deleted %d of %d removed transactions", userID, deleted, len(removed))
	}

	return inserted + updated, nil
}

// existingIDs fetches, in one query, the set of provider transaction ids from
// added and modified that are already stored for the user.
func (r *TransactionReconciler) existingIDs(ctx context.Context, added, modified []provider.Transaction, userID int64) (map[string]int64, error) {
	seen := make(map[string]struct{}, len(added)+len(modified))
	ids := make([]string, 0, len(added)+len(modified))
	for _, batch := range [][]provider.Transaction{added, modified} {
		for _, apiTx := range batch {
			if _, ok := seen[apiTx.TransactionID]; ok {
				continue
			}
			seen[apiTx.TransactionID] = struct{}{}
			ids = append(ids, apiTx.TransactionID)
		}
	}

	if len(ids) == 0 {
		return map[string]int64{}, nil
	}

	existing, err := r.txRepo.LocalIDsByProviderIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing transactions: %w", err)
	}
	return existing, nil
}

// accountMapping fetches, in one query, the provider-to-local account id
// mapping for every distinct account referenced by the batch.
func (r *TransactionReconciler) accountMapping(ctx context.Context, added, modified []provider.Transaction, userID int64) (map[string]int64, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, batch := range [][]provider.Transaction{added, modified} {
		for _, apiTx := range batch {
			if _, ok := seen[apiTx.AccountID]; ok {
				continue
			}
			seen[apiTx.AccountID] = struct{}{}
			ids = append(ids, apiTx.AccountID)
		}
	}

	if len(ids) == 0 {
		return map[string]int64{}, nil
	}

	mapping, err := r.accountRepo.LocalIDsByProviderIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to map account ids: %w", err)
	}
	return mapping, nil
}
