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

// Default categories seeded into every new ledger, in stored packed form.
var defaultCategories = []struct {
	typ  models.TransactionType
	name string
}{
	{models.TypeExpense, "餐饮;交通;购物;娱乐;其他支出"},
	{models.TypeIncome, "工资收入;其他收入"},
}

// CreateLedger creates a ledger, registers the owner as a member, and seeds
// the default category records so the parsers have a taxonomy to resolve
// against from the first message.
func (s *Store) CreateLedger(ctx context.Context, ownerID, name, description string) (models.Ledger, error) {
	ledger := models.Ledger{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Ledger{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledgers (id, owner_id, name, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		ledger.ID, ledger.OwnerID, ledger.Name, ledger.Description, ledger.CreatedAt)
	if err != nil {
		return models.Ledger{}, fmt.Errorf("failed to insert ledger: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO members (ledger_id, user_id, permission, created_at) VALUES (?, ?, ?, ?)`,
		ledger.ID, ownerID, models.PermissionOwner, ledger.CreatedAt)
	if err != nil {
		return models.Ledger{}, fmt.Errorf("failed to insert owner membership: %w", err)
	}

	for _, dc := range defaultCategories {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO categories (id, ledger_id, user_id, type, name, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), ledger.ID, ownerID, dc.typ, dc.name, ledger.CreatedAt)
		if err != nil {
			return models.Ledger{}, fmt.Errorf("failed to seed default categories: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Ledger{}, fmt.Errorf("failed to commit ledger creation: %w", err)
	}

	s.log.WithField("ledger_id", ledger.ID).Info("Ledger created")
	return ledger, nil
}

// LedgerByID fetches a single ledger.
func (s *Store) LedgerByID(ctx context.Context, id string) (models.Ledger, error) {
	var l models.Ledger
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, description, created_at FROM ledgers WHERE id = ?`, id).
		Scan(&l.ID, &l.OwnerID, &l.Name, &l.Description, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ledger{}, category.ErrNotFound
	}
	if err != nil {
		return models.Ledger{}, fmt.Errorf("failed to fetch ledger: %w", err)
	}
	return l, nil
}

// LedgersByUser lists the ledgers the user is a member of, oldest first.
func (s *Store) LedgersByUser(ctx context.Context, userID string) ([]models.Ledger, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.id, l.owner_id, l.name, l.description, l.created_at
		 FROM ledgers l JOIN members m ON m.ledger_id = l.id
		 WHERE m.user_id = ? ORDER BY l.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []models.Ledger
	for rows.Next() {
		var l models.Ledger
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Description, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}
		ledgers = append(ledgers, l)
	}
	return ledgers, rows.Err()
}

// AddMember grants a user access to a ledger at the given permission level,
// replacing any existing membership.
func (s *Store) AddMember(ctx context.Context, ledgerID, userID string, perm models.Permission) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (ledger_id, user_id, permission, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(ledger_id, user_id) DO UPDATE SET permission = excluded.permission`,
		ledgerID, userID, perm, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// MemberPermission returns the user's permission on the ledger, or empty when
// the user is not a member.
func (s *Store) MemberPermission(ctx context.Context, ledgerID, userID string) (models.Permission, error) {
	var perm models.Permission
	err := s.db.QueryRowContext(ctx,
		`SELECT permission FROM members WHERE ledger_id = ? AND user_id = ?`, ledgerID, userID).
		Scan(&perm)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch member permission: %w", err)
	}
	return perm, nil
}
