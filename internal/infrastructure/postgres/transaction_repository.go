package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"centavo/internal/domain/transaction"
)

type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, provider_transaction_id, account_id, user_id, name, merchant_name,
	       amount, currency, date, datetime, category, payment_channel, logo_url, pending,
	       created_at, updated_at`

func (r *TransactionRepository) GetByProviderID(ctx context.Context, userID int64, providerTransactionID string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1 AND provider_transaction_id = $2`

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, userID, providerTransactionID))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

func (r *TransactionRepository) LocalIDsByProviderIDs(ctx context.Context, userID int64, providerIDs []string) (map[string]int64, error) {
	if len(providerIDs) == 0 {
		return map[string]int64{}, nil
	}

	query := `
		SELECT provider_transaction_id, id
		FROM transactions
		WHERE user_id = $1 AND provider_transaction_id = ANY($2)
	`

	rows, err := r.db.QueryContext(ctx, query, userID, pq.Array(providerIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to look up transactions: %w", err)
	}
	defer rows.Close()

	mapping := make(map[string]int64)
	for rows.Next() {
		var providerID string
		var localID int64
		if err := rows.Scan(&providerID, &localID); err != nil {
			return nil, fmt.Errorf("failed to scan transaction mapping: %w", err)
		}
		mapping[providerID] = localID
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction mapping: %w", err)
	}

	return mapping, nil
}

// CreateBatch inserts transactions in one multi-row statement. ON CONFLICT DO
// NOTHING enforces at-most-one row per provider transaction id even under
// replayed pages.
func (r *TransactionRepository) CreateBatch(ctx context.Context, params []transaction.CreateParams) (int, error) {
	if len(params) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO transactions (provider_transaction_id, account_id, user_id, name, merchant_name,
		                          amount, currency, date, datetime, category, payment_channel, logo_url, pending)
		VALUES `)

	args := make([]any, 0, len(params)*13)
	for i, p := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 13
		placeholders := make([]string, 13)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		sb.WriteString("(" + strings.Join(placeholders, ", ") + ")")
		args = append(args, p.ProviderTransactionID, p.AccountID, p.UserID, p.Name, p.MerchantName,
			p.Amount, p.Currency, p.Date, p.Datetime, p.Category, p.PaymentChannel, p.LogoURL, p.Pending)
	}
	sb.WriteString(` ON CONFLICT (provider_transaction_id) DO NOTHING`)

	result, err := r.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to batch insert transactions: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(inserted), nil
}

// UpdateBatch overwrites the mutable fields of each transaction, matched by
// provider transaction id. The provider id and owning user id never change.
func (r *TransactionRepository) UpdateBatch(ctx context.Context, userID int64, params []transaction.UpdateParams) (int, error) {
	if len(params) == 0 {
		return 0, nil
	}

	query := `
		UPDATE transactions
		SET account_id = $3, name = $4, merchant_name = $5, amount = $6, currency = $7,
		    date = $8, datetime = $9, category = $10, payment_channel = $11, logo_url = $12,
		    pending = $13, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1 AND provider_transaction_id = $2
	`

	updated := 0
	for _, p := range params {
		result, err := r.db.ExecContext(ctx, query,
			userID, p.ProviderTransactionID, p.AccountID, p.Name, p.MerchantName, p.Amount, p.Currency,
			p.Date, p.Datetime, p.Category, p.PaymentChannel, p.LogoURL, p.Pending)
		if err != nil {
			return updated, fmt.Errorf("failed to update transaction %s: %w", p.ProviderTransactionID, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return updated, fmt.Errorf("failed to get affected rows: %w", err)
		}
		updated += int(rowsAffected)
	}

	return updated, nil
}

func (r *TransactionRepository) DeleteByProviderIDs(ctx context.Context, userID int64, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM transactions WHERE user_id = $1 AND provider_transaction_id = ANY($2)`

	result, err := r.db.ExecContext(ctx, query, userID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return deleted, nil
}

func (r *TransactionRepository) SumByCategorySince(ctx context.Context, userID int64, category string, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND category = $2 AND date >= $3
	`

	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, userID, category, since).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum category spend: %w", err)
	}

	return sum, nil
}

func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction
	var datetime sql.NullTime

	err := s.Scan(
		&tx.ID, &tx.ProviderTransactionID, &tx.AccountID, &tx.UserID,
		&tx.Name, &tx.MerchantName, &tx.Amount, &tx.Currency,
		&tx.Date, &datetime, &tx.Category, &tx.PaymentChannel,
		&tx.LogoURL, &tx.Pending, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if datetime.Valid {
		tx.Datetime = &datetime.Time
	}

	return &tx, nil
}
