package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"centavo/internal/domain/item"
	"centavo/internal/infrastructure/crypto"
)

type ItemRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

func NewItemRepository(db *DB, encryptor *crypto.Encryptor) *ItemRepository {
	return &ItemRepository{db: db, encryptor: encryptor}
}

const itemColumns = `id, user_id, provider_item_id, access_token, institution_id, institution_name,
	       cursor, last_fetched_at, created_at, updated_at`

func (r *ItemRepository) Create(ctx context.Context, params item.CreateParams) (*item.Item, error) {
	encryptedToken, err := r.encryptor.Encrypt(params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	query := `
		INSERT INTO items (user_id, provider_item_id, access_token, institution_id, institution_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + itemColumns

	it, err := r.scanItem(r.db.QueryRowContext(ctx, query,
		params.UserID, params.ProviderItemID, encryptedToken, params.InstitutionID, params.InstitutionName,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return it, nil
}

func (r *ItemRepository) GetForUser(ctx context.Context, id, userID int64) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 AND user_id = $2`

	it, err := r.scanItem(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

func (r *ItemRepository) GetByProviderItemID(ctx context.Context, providerItemID string) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE provider_item_id = $1`

	it, err := r.scanItem(r.db.QueryRowContext(ctx, query, providerItemID))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by provider id: %w", err)
	}
	return it, nil
}

func (r *ItemRepository) ListByUserID(ctx context.Context, userID int64) ([]*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*item.Item
	for rows.Next() {
		it, err := r.scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

func (r *ItemRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT DISTINCT user_id FROM items ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}

	return userIDs, nil
}

// SaveCheckpoint writes cursor and last-fetched in one statement so the
// checkpoint is always internally consistent.
func (r *ItemRepository) SaveCheckpoint(ctx context.Context, id int64, cp item.Checkpoint) error {
	query := `
		UPDATE items
		SET cursor = $1, last_fetched_at = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, cp.Cursor, cp.LastFetchedAt, id)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("item %d not found", id)
	}

	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("item not found")
	}

	return nil
}

// scanner covers both *sql.Rows and the traced row wrapper.
type scanner interface {
	Scan(dest ...any) error
}

func (r *ItemRepository) scanItem(s scanner) (*item.Item, error) {
	var it item.Item
	var encryptedToken string
	var cursor sql.NullString
	var lastFetchedAt sql.NullTime

	err := s.Scan(
		&it.ID, &it.UserID, &it.ProviderItemID, &encryptedToken,
		&it.InstitutionID, &it.InstitutionName,
		&cursor, &lastFetchedAt, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	token, err := r.encryptor.Decrypt(encryptedToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	it.AccessToken = token

	if cursor.Valid {
		it.Cursor = &cursor.String
	}
	if lastFetchedAt.Valid {
		it.LastFetchedAt = &lastFetchedAt.Time
	}

	return &it, nil
}
