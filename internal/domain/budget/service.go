package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"centavo/internal/domain/transaction"
)

// Service contains the business logic for budget operations, including the
// derivation of spend figures from the reconciled transaction history.
type Service struct {
	repo   Repository
	txRepo transaction.Repository
	now    func() time.Time
}

// NewService creates a new budget service
func NewService(repo Repository, txRepo transaction.Repository) *Service {
	return &Service{repo: repo, txRepo: txRepo, now: time.Now}
}

// CreateBudget creates a new budget with business validation
func (s *Service) CreateBudget(ctx context.Context, params CreateParams) (*Budget, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, params)
}

// UpdateBudget applies the given changes to a budget after verifying ownership
func (s *Service) UpdateBudget(ctx context.Context, id, userID int64, params UpdateParams) (*Budget, error) {
	existing, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrBudgetNotFound
	}

	if params.Limit != nil && !params.Limit.IsPositive() {
		return nil, ErrInvalidLimit
	}
	if params.AnchorDay != nil && (*params.AnchorDay < 1 || *params.AnchorDay > 28) {
		return nil, ErrInvalidDay
	}

	return s.repo.Update(ctx, id, params)
}

// DeleteBudget deletes a budget after verifying ownership
func (s *Service) DeleteBudget(ctx context.Context, id, userID int64) error {
	existing, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrBudgetNotFound
	}
	return s.repo.Delete(ctx, id)
}

// GetBudgets returns every budget for a user with spent/remaining computed as
// of now. Spent is the sum of in-category transaction amounts since the
// current period's anchor date; with the expense-positive sign convention the
// sum is the spend directly. A category with no anchor-period transactions
// yields spent = 0.
func (s *Service) GetBudgets(ctx context.Context, userID int64) ([]*Status, error) {
	if userID <= 0 {
		return nil, errors.New("valid user ID is required")
	}

	budgets, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	now := s.now()
	statuses := make([]*Status, 0, len(budgets))
	for _, b := range budgets {
		spent, err := s.txRepo.SumByCategorySince(ctx, userID, b.Category, b.AnchorDate(now))
		if err != nil {
			return nil, fmt.Errorf("failed to sum spend for category %q: %w", b.Category, err)
		}

		statuses = append(statuses, &Status{
			Budget:    *b,
			Spent:     spent,
			Remaining: b.Limit.Sub(spent),
		})
	}

	return statuses, nil
}
