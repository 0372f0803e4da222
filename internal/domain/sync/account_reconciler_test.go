package sync

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"centavo/internal/domain/account"
	"centavo/internal/infrastructure/provider"
)

func apiAccount(id, name string) provider.Account {
	current := decimal.NewFromFloat(1200.55)
	return provider.Account{
		AccountID: id,
		Name:      name,
		Mask:      "0001",
		Type:      "depository",
		Subtype:   "checking",
		Balances:  provider.Balances{Current: &current, ISOCurrencyCode: "USD"},
	}
}

func TestAccountReconciler_Reconcile(t *testing.T) {
	ctx := context.Background()
	itemID := int64(1)
	userID := int64(7)

	t.Run("Inserts Only Unknown Accounts", func(t *testing.T) {
		var created []account.CreateParams
		repo := &MockAccountRepo{
			ProviderIDsByItemFunc: func(ctx context.Context, id int64) ([]string, error) {
				return []string{"acc-known"}, nil
			},
			CreateBatchFunc: func(ctx context.Context, params []account.CreateParams) (int, error) {
				created = params
				return len(params), nil
			},
		}
		r := NewAccountReconciler(repo)

		n, err := r.Reconcile(ctx, []provider.Account{
			apiAccount("acc-known", "Checking"),
			apiAccount("acc-new", "Savings"),
		}, itemID, userID)
		if err != nil {
			t.Fatalf("Reconcile returned error: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 new account, got %d", n)
		}
		if len(created) != 1 || created[0].ProviderAccountID != "acc-new" {
			t.Errorf("unexpected creates: %+v", created)
		}
		if created[0].ItemID != itemID || created[0].UserID != userID {
			t.Errorf("create params missing ownership: %+v", created[0])
		}
	})

	t.Run("Duplicate Within Page Inserted Once", func(t *testing.T) {
		var created []account.CreateParams
		repo := &MockAccountRepo{
			CreateBatchFunc: func(ctx context.Context, params []account.CreateParams) (int, error) {
				created = params
				return len(params), nil
			},
		}
		r := NewAccountReconciler(repo)

		n, err := r.Reconcile(ctx, []provider.Account{
			apiAccount("acc-1", "Checking"),
			apiAccount("acc-1", "Checking"),
		}, itemID, userID)
		if err != nil {
			t.Fatalf("Reconcile returned error: %v", err)
		}
		if n != 1 || len(created) != 1 {
			t.Errorf("repeated account within one page must insert once, got n=%d creates=%d", n, len(created))
		}
	})

	t.Run("Empty Page Skips Storage", func(t *testing.T) {
		repo := &MockAccountRepo{
			ProviderIDsByItemFunc: func(ctx context.Context, id int64) ([]string, error) {
				t.Error("no query expected for an empty page")
				return nil, nil
			},
		}
		r := NewAccountReconciler(repo)

		n, err := r.Reconcile(ctx, nil, itemID, userID)
		if err != nil {
			t.Fatalf("Reconcile returned error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 for an empty page, got %d", n)
		}
	})

	t.Run("Omitted Balances Default To Zero", func(t *testing.T) {
		var created []account.CreateParams
		repo := &MockAccountRepo{
			CreateBatchFunc: func(ctx context.Context, params []account.CreateParams) (int, error) {
				created = params
				return len(params), nil
			},
		}
		r := NewAccountReconciler(repo)

		acc := apiAccount("acc-1", "Credit Card")
		acc.Balances = provider.Balances{ISOCurrencyCode: "USD"}

		if _, err := r.Reconcile(ctx, []provider.Account{acc}, itemID, userID); err != nil {
			t.Fatalf("Reconcile returned error: %v", err)
		}
		if len(created) != 1 {
			t.Fatalf("expected 1 create, got %d", len(created))
		}
		if !created[0].CurrentBalance.IsZero() || !created[0].AvailableBalance.IsZero() {
			t.Errorf("omitted balances must default to zero, got %+v", created[0])
		}
	})
}
