package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"centavo/internal/domain/transaction"
)

type MockBudgetRepo struct {
	CreateFunc       func(ctx context.Context, params CreateParams) (*Budget, error)
	GetForUserFunc   func(ctx context.Context, id, userID int64) (*Budget, error)
	ListByUserIDFunc func(ctx context.Context, userID int64) ([]*Budget, error)
	UpdateFunc       func(ctx context.Context, id int64, params UpdateParams) (*Budget, error)
	DeleteFunc       func(ctx context.Context, id int64) error
}

func (m *MockBudgetRepo) Create(ctx context.Context, params CreateParams) (*Budget, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockBudgetRepo) GetForUser(ctx context.Context, id, userID int64) (*Budget, error) {
	if m.GetForUserFunc != nil {
		return m.GetForUserFunc(ctx, id, userID)
	}
	return nil, nil
}

func (m *MockBudgetRepo) ListByUserID(ctx context.Context, userID int64) ([]*Budget, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockBudgetRepo) Update(ctx context.Context, id int64, params UpdateParams) (*Budget, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil, nil
}

func (m *MockBudgetRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type MockTransactionRepo struct {
	SumByCategorySinceFunc func(ctx context.Context, userID int64, category string, since time.Time) (decimal.Decimal, error)
}

func (m *MockTransactionRepo) GetByProviderID(ctx context.Context, userID int64, providerTransactionID string) (*transaction.Transaction, error) {
	return nil, nil
}
func (m *MockTransactionRepo) LocalIDsByProviderIDs(ctx context.Context, userID int64, providerIDs []string) (map[string]int64, error) {
	return map[string]int64{}, nil
}
func (m *MockTransactionRepo) CreateBatch(ctx context.Context, params []transaction.CreateParams) (int, error) {
	return 0, nil
}
func (m *MockTransactionRepo) UpdateBatch(ctx context.Context, userID int64, params []transaction.UpdateParams) (int, error) {
	return 0, nil
}
func (m *MockTransactionRepo) DeleteByProviderIDs(ctx context.Context, userID int64, ids []string) (int64, error) {
	return 0, nil
}
func (m *MockTransactionRepo) SumByCategorySince(ctx context.Context, userID int64, category string, since time.Time) (decimal.Decimal, error) {
	if m.SumByCategorySinceFunc != nil {
		return m.SumByCategorySinceFunc(ctx, userID, category, since)
	}
	return decimal.Zero, nil
}

func TestAnchorDate(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name      string
		anchorDay int
		now       time.Time
		want      time.Time
	}{
		{
			name:      "Anchor Day Already Passed",
			anchorDay: 15,
			now:       time.Date(2026, 8, 20, 10, 0, 0, 0, loc),
			want:      time.Date(2026, 8, 15, 0, 0, 0, 0, loc),
		},
		{
			name:      "Anchor Day Not Yet Reached",
			anchorDay: 15,
			now:       time.Date(2026, 8, 7, 10, 0, 0, 0, loc),
			want:      time.Date(2026, 7, 15, 0, 0, 0, 0, loc),
		},
		{
			name:      "Anchor Day Is Today",
			anchorDay: 20,
			now:       time.Date(2026, 8, 20, 10, 0, 0, 0, loc),
			want:      time.Date(2026, 8, 20, 0, 0, 0, 0, loc),
		},
		{
			name:      "First Of Month",
			anchorDay: 1,
			now:       time.Date(2026, 8, 20, 10, 0, 0, 0, loc),
			want:      time.Date(2026, 8, 1, 0, 0, 0, 0, loc),
		},
		{
			name:      "Rollover Across Year Boundary",
			anchorDay: 25,
			now:       time.Date(2026, 1, 10, 10, 0, 0, 0, loc),
			want:      time.Date(2025, 12, 25, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Budget{AnchorDay: tt.anchorDay}
			got := b.AnchorDate(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("AnchorDate(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestCreateBudget_Validation(t *testing.T) {
	ctx := context.Background()
	s := NewService(&MockBudgetRepo{
		CreateFunc: func(ctx context.Context, params CreateParams) (*Budget, error) {
			return &Budget{ID: 1, UserID: params.UserID, Category: params.Category, Limit: params.Limit, AnchorDay: params.AnchorDay}, nil
		},
	}, &MockTransactionRepo{})

	tests := []struct {
		name    string
		params  CreateParams
		wantErr error
	}{
		{
			name:   "Valid",
			params: CreateParams{UserID: 7, Category: "FOOD_AND_DRINK", Limit: decimal.NewFromInt(500), AnchorDay: 1},
		},
		{
			name:    "Missing Category",
			params:  CreateParams{UserID: 7, Limit: decimal.NewFromInt(500), AnchorDay: 1},
			wantErr: ErrInvalidCategory,
		},
		{
			name:    "Zero Limit",
			params:  CreateParams{UserID: 7, Category: "FOOD_AND_DRINK", AnchorDay: 1},
			wantErr: ErrInvalidLimit,
		},
		{
			name:    "Negative Limit",
			params:  CreateParams{UserID: 7, Category: "FOOD_AND_DRINK", Limit: decimal.NewFromInt(-10), AnchorDay: 1},
			wantErr: ErrInvalidLimit,
		},
		{
			name:    "Anchor Day Too Low",
			params:  CreateParams{UserID: 7, Category: "FOOD_AND_DRINK", Limit: decimal.NewFromInt(500), AnchorDay: 0},
			wantErr: ErrInvalidDay,
		},
		{
			name:    "Anchor Day Past 28",
			params:  CreateParams{UserID: 7, Category: "FOOD_AND_DRINK", Limit: decimal.NewFromInt(500), AnchorDay: 29},
			wantErr: ErrInvalidDay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := s.CreateBudget(ctx, tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateBudget error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && b == nil {
				t.Error("expected a budget back on success")
			}
		})
	}
}

func TestGetBudgets_DerivesSpentAndRemaining(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	repo := &MockBudgetRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*Budget, error) {
			return []*Budget{
				{ID: 1, UserID: userID, Category: "FOOD_AND_DRINK", Limit: decimal.NewFromInt(500), AnchorDay: 15},
				{ID: 2, UserID: userID, Category: "TRANSPORTATION", Limit: decimal.NewFromInt(200), AnchorDay: 1},
			}, nil
		},
	}

	var sinceByCategory = map[string]time.Time{}
	txRepo := &MockTransactionRepo{
		SumByCategorySinceFunc: func(ctx context.Context, userID int64, category string, since time.Time) (decimal.Decimal, error) {
			sinceByCategory[category] = since
			if category == "FOOD_AND_DRINK" {
				return decimal.NewFromFloat(123.45), nil
			}
			return decimal.Zero, nil
		},
	}

	s := NewService(repo, txRepo)
	s.now = func() time.Time { return now }

	statuses, err := s.GetBudgets(ctx, 7)
	if err != nil {
		t.Fatalf("GetBudgets returned error: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}

	food := statuses[0]
	if !food.Spent.Equal(decimal.NewFromFloat(123.45)) {
		t.Errorf("food Spent = %s, want 123.45", food.Spent)
	}
	if !food.Remaining.Equal(decimal.NewFromFloat(376.55)) {
		t.Errorf("food Remaining = %s, want 376.55", food.Remaining)
	}

	transport := statuses[1]
	if !transport.Spent.IsZero() {
		t.Errorf("transport Spent = %s, want 0", transport.Spent)
	}
	if !transport.Remaining.Equal(decimal.NewFromInt(200)) {
		t.Errorf("transport Remaining = %s, want 200", transport.Remaining)
	}

	wantFoodSince := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	if !sinceByCategory["FOOD_AND_DRINK"].Equal(wantFoodSince) {
		t.Errorf("food since = %v, want %v", sinceByCategory["FOOD_AND_DRINK"], wantFoodSince)
	}
}

func TestUpdateBudget(t *testing.T) {
	ctx := context.Background()

	t.Run("Not Found", func(t *testing.T) {
		s := NewService(&MockBudgetRepo{}, &MockTransactionRepo{})
		newLimit := decimal.NewFromInt(300)
		_, err := s.UpdateBudget(ctx, 1, 7, UpdateParams{Limit: &newLimit})
		if !errors.Is(err, ErrBudgetNotFound) {
			t.Errorf("expected ErrBudgetNotFound, got %v", err)
		}
	})

	t.Run("Invalid Limit", func(t *testing.T) {
		s := NewService(&MockBudgetRepo{
			GetForUserFunc: func(ctx context.Context, id, userID int64) (*Budget, error) {
				return &Budget{ID: id, UserID: userID}, nil
			},
		}, &MockTransactionRepo{})
		zero := decimal.Zero
		_, err := s.UpdateBudget(ctx, 1, 7, UpdateParams{Limit: &zero})
		if !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("expected ErrInvalidLimit, got %v", err)
		}
	})

	t.Run("Applies Changes", func(t *testing.T) {
		var gotParams UpdateParams
		s := NewService(&MockBudgetRepo{
			GetForUserFunc: func(ctx context.Context, id, userID int64) (*Budget, error) {
				return &Budget{ID: id, UserID: userID}, nil
			},
			UpdateFunc: func(ctx context.Context, id int64, params UpdateParams) (*Budget, error) {
				gotParams = params
				return &Budget{ID: id}, nil
			},
		}, &MockTransactionRepo{})

		newLimit := decimal.NewFromInt(300)
		newDay := 10
		if _, err := s.UpdateBudget(ctx, 1, 7, UpdateParams{Limit: &newLimit, AnchorDay: &newDay}); err != nil {
			t.Fatalf("UpdateBudget returned error: %v", err)
		}
		if gotParams.Limit == nil || !gotParams.Limit.Equal(newLimit) {
			t.Errorf("limit not forwarded: %+v", gotParams)
		}
		if gotParams.AnchorDay == nil || *gotParams.AnchorDay != 10 {
			t.Errorf("anchor day not forwarded: %+v", gotParams)
		}
	})
}

func TestDeleteBudget(t *testing.T) {
	ctx := context.Background()

	t.Run("Not Found", func(t *testing.T) {
		s := NewService(&MockBudgetRepo{}, &MockTransactionRepo{})
		if err := s.DeleteBudget(ctx, 1, 7); !errors.Is(err, ErrBudgetNotFound) {
			t.Errorf("expected ErrBudgetNotFound, got %v", err)
		}
	})

	t.Run("Deletes Owned Budget", func(t *testing.T) {
		deleted := false
		s := NewService(&MockBudgetRepo{
			GetForUserFunc: func(ctx context.Context, id, userID int64) (*Budget, error) {
				return &Budget{ID: id, UserID: userID}, nil
			},
			DeleteFunc: func(ctx context.Context, id int64) error {
				deleted = true
				return nil
			},
		}, &MockTransactionRepo{})

		if err := s.DeleteBudget(ctx, 1, 7); err != nil {
			t.Fatalf("DeleteBudget returned error: %v", err)
		}
		if !deleted {
			t.Error("expected the repository delete to be called")
		}
	})
}
