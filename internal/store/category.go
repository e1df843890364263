package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jianji/ledger-assistant/internal/category"
	"jianji/ledger-assistant/internal/models"
)

// CategoriesByLedger returns the stored category records of a ledger, oldest
// first so expansion order stays stable across fetches.
func (s *Store) CategoriesByLedger(ctx context.Context, ledgerID string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ledger_id, user_id, type, name, created_at
		 FROM categories WHERE ledger_id = ? ORDER BY rowid`, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.LedgerID, &c.UserID, &c.Type, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// CategoryByID fetches a single stored category record.
func (s *Store) CategoryByID(ctx context.Context, id string) (models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, ledger_id, user_id, type, name, created_at FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.LedgerID, &c.UserID, &c.Type, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, category.ErrNotFound
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to fetch category: %w", err)
	}
	return c, nil
}

// CreateCategory inserts a stored record and returns its generated id.
func (s *Store) CreateCategory(ctx context.Context, c models.Category) (string, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, ledger_id, user_id, type, name, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.LedgerID, c.UserID, c.Type, c.Name, c.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert category: %w", err)
	}
	return c.ID, nil
}

// UpdateCategoryName rewrites a stored record's packed name.
func (s *Store) UpdateCategoryName(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return category.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a stored record. Transactions referencing it keep
// their category_id; deletion never cascades into ledger history.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return category.ErrNotFound
	}
	return nil
}
