package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"centavo/internal/domain/budget"
)

type BudgetRepository struct {
	db *DB
}

func NewBudgetRepository(db *DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

const budgetColumns = `id, user_id, category, spend_limit, anchor_day, created_at, updated_at`

func (r *BudgetRepository) Create(ctx context.Context, params budget.CreateParams) (*budget.Budget, error) {
	query := `
		INSERT INTO budgets (user_id, category, spend_limit, anchor_day)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + budgetColumns

	b, err := scanBudget(r.db.QueryRowContext(ctx, query,
		params.UserID, params.Category, params.Limit, params.AnchorDay))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return nil, budget.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}
	return b, nil
}

func (r *BudgetRepository) GetForUser(ctx context.Context, id, userID int64) (*budget.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1 AND user_id = $2`

	b, err := scanBudget(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return b, nil
}

func (r *BudgetRepository) ListByUserID(ctx context.Context, userID int64) ([]*budget.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 ORDER BY category`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*budget.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}

	return budgets, nil
}

func (r *BudgetRepository) Update(ctx context.Context, id int64, params budget.UpdateParams) (*budget.Budget, error) {
	query := `
		UPDATE budgets
		SET spend_limit = COALESCE($1, spend_limit),
		    anchor_day = COALESCE($2, anchor_day),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING ` + budgetColumns

	b, err := scanBudget(r.db.QueryRowContext(ctx, query, params.Limit, params.AnchorDay, id))
	if err == sql.ErrNoRows {
		return nil, budget.ErrBudgetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	return b, nil
}

func (r *BudgetRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return budget.ErrBudgetNotFound
	}

	return nil
}

func scanBudget(s scanner) (*budget.Budget, error) {
	var b budget.Budget
	err := s.Scan(
		&b.ID, &b.UserID, &b.Category, &b.Limit, &b.AnchorDay,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
