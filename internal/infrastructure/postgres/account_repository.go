package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"centavo/internal/domain/account"
)

type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, item_id, user_id, provider_account_id, name, official_name, mask,
	       account_type, subtype, current_balance, available_balance, created_at, updated_at`

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	acc, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

func (r *AccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) ProviderIDsByItem(ctx context.Context, itemID int64) ([]string, error) {
	query := `SELECT provider_account_id FROM accounts WHERE item_id = $1`

	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider account ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan provider account id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating provider account ids: %w", err)
	}

	return ids, nil
}

func (r *AccountRepository) LocalIDsByProviderIDs(ctx context.Context, userID int64, providerIDs []string) (map[string]int64, error) {
	if len(providerIDs) == 0 {
		return map[string]int64{}, nil
	}

	query := `
		SELECT provider_account_id, id
		FROM accounts
		WHERE user_id = $1 AND provider_account_id = ANY($2)
	`

	rows, err := r.db.QueryContext(ctx, query, userID, pq.Array(providerIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to map account ids: %w", err)
	}
	defer rows.Close()

	mapping := make(map[string]int64, len(providerIDs))
	for rows.Next() {
		var providerID string
		var localID int64
		if err := rows.Scan(&providerID, &localID); err != nil {
			return nil, fmt.Errorf("failed to scan account mapping: %w", err)
		}
		mapping[providerID] = localID
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account mapping: %w", err)
	}

	return mapping, nil
}

// CreateBatch inserts accounts in one multi-row statement. ON CONFLICT DO
// NOTHING keeps a concurrent insert of the same provider account id from
// failing the whole page.
func (r *AccountRepository) CreateBatch(ctx context.Context, params []account.CreateParams) (int, error) {
	if len(params) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO accounts (item_id, user_id, provider_account_id, name, official_name, mask,
		                      account_type, subtype, current_balance, available_balance)
		VALUES `)

	args := make([]any, 0, len(params)*10)
	for i, p := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 10
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10))
		args = append(args, p.ItemID, p.UserID, p.ProviderAccountID, p.Name, p.OfficialName, p.Mask,
			p.AccountType, p.Subtype, p.CurrentBalance, p.AvailableBalance)
	}
	sb.WriteString(` ON CONFLICT (item_id, provider_account_id) DO NOTHING`)

	result, err := r.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to batch insert accounts: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(inserted), nil
}

func scanAccount(s scanner) (*account.Account, error) {
	var acc account.Account
	err := s.Scan(
		&acc.ID, &acc.ItemID, &acc.UserID, &acc.ProviderAccountID,
		&acc.Name, &acc.OfficialName, &acc.Mask,
		&acc.AccountType, &acc.Subtype,
		&acc.CurrentBalance, &acc.AvailableBalance,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}
