package sync

// Shared Func-field mocks for the sync package tests. Methods without a
// configured Func return zero values so each test only wires what it asserts.

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"centavo/internal/domain/account"
	"centavo/internal/domain/item"
	"centavo/internal/domain/transaction"
	"centavo/internal/infrastructure/provider"
)

type MockProviderClient struct {
	TransactionsSyncFunc func(ctx context.Context, accessToken, cursor string) (*provider.SyncResponse, error)
	RemoveItemFunc       func(ctx context.Context, accessToken string) error
}

func (m *MockProviderClient) TransactionsSync(ctx context.Context, accessToken, cursor string) (*provider.SyncResponse, error) {
	if m.TransactionsSyncFunc != nil {
		return m.TransactionsSyncFunc(ctx, accessToken, cursor)
	}
	return &provider.SyncResponse{}, nil
}

func (m *MockProviderClient) RemoveItem(ctx context.Context, accessToken string) error {
	if m.RemoveItemFunc != nil {
		return m.RemoveItemFunc(ctx, accessToken)
	}
	return nil
}

type MockItemRepo struct {
	CreateFunc              func(ctx context.Context, params item.CreateParams) (*item.Item, error)
	GetForUserFunc          func(ctx context.Context, id, userID int64) (*item.Item, error)
	GetByProviderItemIDFunc func(ctx context.Context, providerItemID string) (*item.Item, error)
	ListByUserIDFunc        func(ctx context.Context, userID int64) ([]*item.Item, error)
	ListUserIDsFunc         func(ctx context.Context) ([]int64, error)
	SaveCheckpointFunc      func(ctx context.Context, id int64, cp item.Checkpoint) error
	DeleteFunc              func(ctx context.Context, id int64) error
}

func (m *MockItemRepo) Create(ctx context.Context, params item.CreateParams) (*item.Item, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockItemRepo) GetForUser(ctx context.Context, id, userID int64) (*item.Item, error) {
	if m.GetForUserFunc != nil {
		return m.GetForUserFunc(ctx, id, userID)
	}
	return nil, nil
}

func (m *MockItemRepo) GetByProviderItemID(ctx context.Context, providerItemID string) (*item.Item, error) {
	if m.GetByProviderItemIDFunc != nil {
		return m.GetByProviderItemIDFunc(ctx, providerItemID)
	}
	return nil, nil
}

func (m *MockItemRepo) ListByUserID(ctx context.Context, userID int64) ([]*item.Item, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockItemRepo) ListUserIDs(ctx context.Context) ([]int64, error) {
	if m.ListUserIDsFunc != nil {
		return m.ListUserIDsFunc(ctx)
	}
	return nil, nil
}

func (m *MockItemRepo) SaveCheckpoint(ctx context.Context, id int64, cp item.Checkpoint) error {
	if m.SaveCheckpointFunc != nil {
		return m.SaveCheckpointFunc(ctx, id, cp)
	}
	return nil
}

func (m *MockItemRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type MockAccountRepo struct {
	GetByIDFunc               func(ctx context.Context, id int64) (*account.Account, error)
	ListByUserIDFunc          func(ctx context.Context, userID int64) ([]*account.Account, error)
	ProviderIDsByItemFunc     func(ctx context.Context, itemID int64) ([]string, error)
	LocalIDsByProviderIDsFunc func(ctx context.Context, userID int64, providerIDs []string) (map[string]int64, error)
	CreateBatchFunc           func(ctx context.Context, params []account.CreateParams) (int, error)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockAccountRepo) ProviderIDsByItem(ctx context.Context, itemID int64) ([]string, error) {
	if m.ProviderIDsByItemFunc != nil {
		return m.ProviderIDsByItemFunc(ctx, itemID)
	}
	return nil, nil
}

func (m *MockAccountRepo) LocalIDsByProviderIDs(ctx context.Context, userID int64, providerIDs []string) (map[string]int64, error) {
	if m.LocalIDsByProviderIDsFunc != nil {
		return m.LocalIDsByProviderIDsFunc(ctx, userID, providerIDs)
	}
	return map[string]int64{}, nil
}

func (m *MockAccountRepo) CreateBatch(ctx context.Context, params []account.CreateParams) (int, error) {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, params)
	}
	return len(params), nil
}

type MockTransactionRepo struct {
	GetByProviderIDFunc       func(ctx context.Context, userID int64, providerTransactionID string) (*transaction.Transaction, error)
	LocalIDsByProviderIDsFunc func(ctx context.Context, userID int64, providerIDs []string) (map[string]int64, error)
	CreateBatchFunc           func(ctx context.Context, params []transaction.CreateParams) (int, error)
	UpdateBatchFunc           func(ctx context.Context, userID int64, params []transaction.UpdateParams) (int, error)
	DeleteByProviderIDsFunc   func(ctx context.Context, userID int64, ids []string) (int64, error)
	SumByCategorySinceFunc    func(ctx context.Context, userID int64, category string, since time.Time) (decimal.Decimal, error)
}

func (m *MockTransactionRepo) GetByProviderID(ctx context.Context, userID int64, providerTransactionID string) (*transaction.Transaction, error) {
	if m.GetByProviderIDFunc != nil {
		return m.GetByProviderIDFunc(ctx, userID, providerTransactionID)
	}
	return nil, nil
}

func (m *MockTransactionRepo) LocalIDsByProviderIDs(ctx context.Context, userID int64, providerIDs []string) (map[string]int64, error) {
	if m.LocalIDsByProviderIDsFunc != nil {
		return m.LocalIDsByProviderIDsFunc(ctx, userID, providerIDs)
	}
	return map[string]int64{}, nil
}

func (m *MockTransactionRepo) CreateBatch(ctx context.Context, params []transaction.CreateParams) (int, error) {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, params)
	}
	return len(params), nil
}

func (m *MockTransactionRepo) UpdateBatch(ctx context.Context, userID int64, params []transaction.UpdateParams) (int, error) {
	if m.UpdateBatchFunc != nil {
		return m.UpdateBatchFunc(ctx, userID, params)
	}
	return len(params), nil
}

func (m *MockTransactionRepo) DeleteByProviderIDs(ctx context.Context, userID int64, ids []string) (int64, error) {
	if m.DeleteByProviderIDsFunc != nil {
		return m.DeleteByProviderIDsFunc(ctx, userID, ids)
	}
	return int64(len(ids)), nil
}

func (m *MockTransactionRepo) SumByCategorySince(ctx context.Context, userID int64, category string, since time.Time) (decimal.Decimal, error) {
	if m.SumByCategorySinceFunc != nil {
		return m.SumByCategorySinceFunc(ctx, userID, category, since)
	}
	return decimal.Zero, nil
}

// newTestService wires a sync service around the given mocks with reconcilers
// built from the same repos.
func newTestService(client *MockProviderClient, itemRepo *MockItemRepo, accountRepo *MockAccountRepo, txRepo *MockTransactionRepo) *Service {
	accounts := NewAccountReconciler(accountRepo)
	transactions := NewTransactionReconciler(txRepo, accountRepo)
	return NewService(client, itemRepo, accounts, transactions)
}
